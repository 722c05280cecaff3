// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/qianbin/directcache"

	"github.com/vechain/compute/kv"
)

// Stater is the state creator. States created by one stater share a cache of
// committed slots.
type Stater struct {
	store kv.Store
	cache *cache
}

// NewStater create a new stater. cacheSize is in bytes, 0 disables the cache.
func NewStater(store kv.Store, cacheSize int) *Stater {
	var c *cache
	if cacheSize > 0 {
		c = &cache{directcache.New(cacheSize)}
	}
	return &Stater{store, c}
}

// NewState create a new state object.
func (s *Stater) NewState() *State {
	return newState(s.store, s.cache)
}

// cache keeps committed slot values. A nil cache is valid and caches nothing.
type cache struct {
	slots *directcache.Cache
}

func (c *cache) get(key []byte) (raw []byte, ok bool) {
	if c == nil {
		return nil, false
	}
	ok = c.slots.AdvGet(key, func(val []byte) {
		if len(val) > 0 {
			raw = append([]byte(nil), val...)
		}
	}, false)
	return
}

func (c *cache) set(key, raw []byte) {
	if c == nil {
		return
	}
	_ = c.slots.Set(key, raw)
}
