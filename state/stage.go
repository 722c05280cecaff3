// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/kv"
)

// Stage holds the changes of a state, ready to be written.
type Stage struct {
	store   kv.Store
	cache   *cache
	changes map[storageKey]rlp.RawValue
}

// Len returns the number of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash computes a digest over the changed slots, in key order.
func (s *Stage) Hash() compute.Bytes32 {
	keys := make([][]byte, 0, len(s.changes))
	values := make(map[string]rlp.RawValue, len(s.changes))
	for k, v := range s.changes {
		b := k.bytes()
		keys = append(keys, b)
		values[string(b)] = v
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })

	hasher := compute.NewBlake2b()
	for _, k := range keys {
		hasher.Write(k)
		hasher.Write(values[string(k)])
	}
	var h compute.Bytes32
	hasher.Sum(h[:0])
	return h
}

// Commit writes all changes in one bulk.
func (s *Stage) Commit() error {
	bulk := s.store.Bulk()
	for k, v := range s.changes {
		var err error
		if len(v) == 0 {
			err = bulk.Delete(k.bytes())
		} else {
			err = bulk.Put(k.bytes(), v)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}
	for k, v := range s.changes {
		s.cache.set(k.bytes(), v)
	}
	return nil
}
