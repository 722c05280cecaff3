// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/kv"
	"github.com/vechain/compute/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr compute.Address
	key  compute.Bytes32
}

func (k storageKey) bytes() []byte {
	b := make([]byte, 0, compute.AddressLength+32)
	b = append(b, k.addr[:]...)
	return append(b, k.key[:]...)
}

// State is the single ledger state container. Builtins read and write it
// through typed storage helpers; it is not safe for concurrent use.
type State struct {
	store kv.Store
	cache *cache
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New create state object over the committed store.
func New(store kv.Store) *State {
	return newState(store, nil)
}

func newState(store kv.Store, c *cache) *State {
	s := &State{store: store, cache: c}
	s.sm = stackedmap.New(s.load)
	s.sm.Push() // base level
	return s
}

// load implements stackedmap.MapGetter over the committed slots.
func (s *State) load(key storageKey) (rlp.RawValue, bool, error) {
	k := key.bytes()
	if raw, ok := s.cache.get(k); ok {
		return raw, true, nil
	}
	raw, err := s.store.Get(k)
	if err != nil {
		if !s.store.IsNotFound(err) {
			return nil, false, err
		}
		raw = nil
	}
	s.cache.set(k, raw)
	return raw, true, nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr compute.Address, key compute.Bytes32) (compute.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return compute.Bytes32{}, err
	}
	if len(raw) == 0 {
		return compute.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return compute.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// structured value, identify it by its hash
		return compute.Blake2b(raw), nil
	}
	return compute.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr compute.Address, key, value compute.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr compute.Address, key compute.Bytes32) (rlp.RawValue, error) {
	raw, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return raw, nil
}

// SetRawStorage set storage value in rlp raw. Empty raw deletes the slot.
func (s *State) SetRawStorage(addr compute.Address, key compute.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr compute.Address, key compute.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
func (s *State) DecodeStorage(addr compute.Address, key compute.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Stage collects the cumulative changes for commit.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		changes[k] = v
		return true
	})
	return &Stage{store: s.store, cache: s.cache, changes: changes}
}
