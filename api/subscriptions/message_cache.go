// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"

	"github.com/vechain/compute/api/utils"
	"github.com/vechain/compute/cache"
	"github.com/vechain/compute/logdb"
)

// messageCache keeps encoded event messages, so an event fanned out to many
// subscribers is encoded once.
type messageCache struct {
	cache *cache.LRU[uint64, []byte]
}

func newMessageCache(size int) *messageCache {
	if size > 1000 {
		size = 1000
	}
	if size <= 0 {
		size = 1
	}
	c, err := cache.NewLRU[uint64, []byte](size)
	if err != nil {
		// only fails on a non-positive size
		panic(err)
	}
	return &messageCache{c}
}

func messageKey(ev *logdb.Event) uint64 {
	return uint64(ev.Height)<<32 | uint64(ev.Index)
}

// GetOrAdd returns the message of ev, encoding it on a miss.
func (mc *messageCache) GetOrAdd(ev *logdb.Event) ([]byte, error) {
	return mc.cache.GetOrLoad(messageKey(ev), func(uint64) ([]byte, error) {
		return json.Marshal(utils.ConvertEvent(ev))
	})
}
