// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/vechain/compute/compute"
)

// Array is an append-only list stored under a base position: the length at
// `pos`, element i at blake2b(i, pos).
type Array[V any] struct {
	length *Uint256
	items  *Mapping[compute.Bytes32, V]
}

func NewArray[V any](context *Context, pos compute.Bytes32) *Array[V] {
	return &Array[V]{
		length: NewUint256(context, pos),
		items:  NewMapping[compute.Bytes32, V](context, pos),
	}
}

func index(i uint64) compute.Bytes32 {
	var b compute.Bytes32
	binary.BigEndian.PutUint64(b[24:], i)
	return b
}

func (a *Array[V]) Len() (uint64, error) {
	n, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

func (a *Array[V]) Get(i uint64) (value V, err error) {
	n, err := a.Len()
	if err != nil {
		return value, err
	}
	if i >= n {
		return value, fmt.Errorf("array: index %d out of range [0, %d)", i, n)
	}
	return a.items.Get(index(i))
}

// Push appends value and returns its index.
func (a *Array[V]) Push(value V) (uint64, error) {
	n, err := a.Len()
	if err != nil {
		return 0, err
	}
	if err := a.items.Set(index(n), value); err != nil {
		return 0, err
	}
	a.length.Set(new(big.Int).SetUint64(n + 1))
	return n, nil
}
