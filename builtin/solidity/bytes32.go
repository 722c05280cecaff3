// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/compute/compute"
)

// Bytes32 is a wrapper for storage and retrieval of [32]byte
type Bytes32 struct {
	context *Context
	pos     compute.Bytes32
}

func NewBytes32(context *Context, pos compute.Bytes32) *Bytes32 {
	return &Bytes32{context: context, pos: pos}
}

func (b *Bytes32) Get() (compute.Bytes32, error) {
	return b.context.state.GetStorage(b.context.address, b.pos)
}

func (b *Bytes32) Set(value compute.Bytes32) {
	b.context.state.SetStorage(b.context.address, b.pos, value)
}

// Bool stores a flag as a one byte word.
type Bool struct {
	Bytes32
}

func NewBool(context *Context, pos compute.Bytes32) *Bool {
	return &Bool{Bytes32{context: context, pos: pos}}
}

func (b *Bool) Get() (bool, error) {
	v, err := b.Bytes32.Get()
	if err != nil {
		return false, err
	}
	return !v.IsZero(), nil
}

func (b *Bool) Set(flag bool) {
	var v compute.Bytes32
	if flag {
		v[31] = 1
	}
	b.Bytes32.Set(v)
}
