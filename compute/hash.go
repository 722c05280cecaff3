// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package compute

import (
	"hash"
	"sync"

	"github.com/ethereum/go-ethereum/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// NewBlake2b returns a blake2b-256 hasher.
func NewBlake2b() hash.Hash {
	h, _ := blake2b.New256(nil)
	return h
}

// hasherPool recycles hashers of one algorithm. Every hasher it hands out is reset.
type hasherPool struct {
	pool sync.Pool
}

func newHasherPool(fn func() hash.Hash) *hasherPool {
	return &hasherPool{pool: sync.Pool{New: func() any { return fn() }}}
}

func (p *hasherPool) sum(data [][]byte) (out Bytes32) {
	h := p.pool.Get().(hash.Hash)
	for _, b := range data {
		h.Write(b)
	}
	h.Sum(out[:0])
	h.Reset()
	p.pool.Put(h)
	return
}

var (
	blake2bHashers   = newHasherPool(NewBlake2b)
	keccak256Hashers = newHasherPool(sha3.NewLegacyKeccak256)
)

// Blake2b computes the blake2b-256 digest of the concatenated data.
// Storage positions are derived with it.
func Blake2b(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	return blake2bHashers.sum(data)
}

// Keccak256 computes the legacy keccak-256 digest of the concatenated data.
// Entity ids (models, tasks, commitments) are derived with it.
func Keccak256(data ...[]byte) Bytes32 {
	return keccak256Hashers.sum(data)
}
