// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/compute/compute"
)

// Event is an engine event as stored in the index.
type Event struct {
	Height uint32
	Index  uint32
	Time   uint64
	Name   string
	Ref    compute.Bytes32
	Actor  compute.Address
	Amount *big.Int
	Attrs  map[string]string
}

type attr struct {
	Key   string
	Value string
}

// encodeAttrs encodes attrs as an rlp list sorted by key.
func encodeAttrs(attrs map[string]string) ([]byte, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	list := make([]attr, 0, len(attrs))
	for k, v := range attrs {
		list = append(list, attr{k, v})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	return rlp.EncodeToBytes(list)
}

func decodeAttrs(data []byte) (map[string]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var list []attr
	if err := rlp.DecodeBytes(data, &list); err != nil {
		return nil, err
	}
	attrs := make(map[string]string, len(list))
	for _, a := range list {
		attrs[a.Key] = a.Value
	}
	return attrs, nil
}

type RangeType string

const (
	Height RangeType = "height"
	Time   RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria matches events on every non-nil field.
type EventCriteria struct {
	Name  *string
	Ref   *compute.Bytes32
	Actor *compute.Address
}

// EventFilter selects events matching any of the criteria within the range.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
