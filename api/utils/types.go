// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/logdb"
	"github.com/vechain/compute/node"
)

// Amount converts v for JSON output. A nil v reads as zero.
func Amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return (*math.HexOrDecimal256)(new(big.Int))
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

// BigInt converts an optional JSON amount. A nil v reads as zero.
func BigInt(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(v))
}

type EventMeta struct {
	Height uint64 `json:"height"`
	Index  uint32 `json:"index"`
	Time   uint64 `json:"time"`
}

// Event is an engine event in JSON form.
type Event struct {
	Name   string                `json:"name"`
	Ref    *compute.Bytes32      `json:"ref,omitempty"`
	Actor  *compute.Address      `json:"actor,omitempty"`
	Amount *math.HexOrDecimal256 `json:"amount"`
	Attrs  map[string]string     `json:"attrs,omitempty"`
	Meta   EventMeta             `json:"meta"`
}

func ConvertEvent(ev *logdb.Event) *Event {
	out := &Event{
		Name:   ev.Name,
		Amount: Amount(ev.Amount),
		Attrs:  ev.Attrs,
		Meta: EventMeta{
			Height: uint64(ev.Height),
			Index:  ev.Index,
			Time:   ev.Time,
		},
	}
	if !ev.Ref.IsZero() {
		ref := ev.Ref
		out.Ref = &ref
	}
	if !ev.Actor.IsZero() {
		actor := ev.Actor
		out.Actor = &actor
	}
	return out
}

// Receipt is the outcome of a committed operation.
type Receipt struct {
	Op     string   `json:"op"`
	Height uint64   `json:"height"`
	Time   uint64   `json:"time"`
	Events []*Event `json:"events"`
	Result any      `json:"result,omitempty"`
}

func ConvertReceipt(r *node.Receipt, result any) *Receipt {
	events := make([]*Event, 0, len(r.Events))
	for _, ev := range r.Events {
		events = append(events, ConvertEvent(ev))
	}
	return &Receipt{
		Op:     r.Op,
		Height: r.Height,
		Time:   r.Time,
		Events: events,
		Result: result,
	}
}
