// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package datagen generates random test values.
package datagen

import (
	"crypto/rand"
	mathrand "math/rand/v2"

	"github.com/vechain/compute/compute"
)

func RandomHash() compute.Bytes32 {
	var b32 compute.Bytes32
	rand.Read(b32[:])
	return b32
}

func RandAddress() compute.Address {
	var addr compute.Address
	rand.Read(addr[:])
	return addr
}

func RandBytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}

func RandUint64N(n uint64) uint64 {
	return mathrand.Uint64N(n) //#nosec G404
}
