// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package xenv provides the environment an engine operation executes in.
package xenv

import (
	"sync/atomic"
	"time"
)

// Clock is the time and height oracle of the ledger.
// Now is in unix seconds and never goes backwards. Height strictly increases
// across sequential operations and is only used to order commitments.
type Clock interface {
	Now() uint64
	Height() uint64
}

// Heights is a height counter that can be advanced by the executor.
type Heights struct {
	height atomic.Uint64
}

func (h *Heights) Height() uint64 {
	return h.height.Load()
}

// Advance increments the height and returns the new value.
func (h *Heights) Advance() uint64 {
	return h.height.Add(1)
}

// Set forces the height, used when restoring a persisted ledger.
func (h *Heights) Set(height uint64) {
	h.height.Store(height)
}

// WallClock reads time from the system clock, clamped to be monotonic.
type WallClock struct {
	Heights
	last atomic.Uint64
}

func NewWallClock(height uint64) *WallClock {
	c := &WallClock{}
	c.Set(height)
	return c
}

func (c *WallClock) Now() uint64 {
	now := uint64(time.Now().Unix())
	for {
		last := c.last.Load()
		if now <= last {
			return last
		}
		if c.last.CompareAndSwap(last, now) {
			return now
		}
	}
}

// ManualClock is a clock driven explicitly, for tests and replays.
type ManualClock struct {
	Heights
	now atomic.Uint64
}

func NewManualClock(now, height uint64) *ManualClock {
	c := &ManualClock{}
	c.now.Store(now)
	c.Set(height)
	return c
}

func (c *ManualClock) Now() uint64 {
	return c.now.Load()
}

// Warp moves the clock forward by seconds.
func (c *ManualClock) Warp(seconds uint64) {
	c.now.Add(seconds)
}

// SetNow moves the clock to now. Earlier values are ignored.
func (c *ManualClock) SetNow(now uint64) {
	for {
		cur := c.now.Load()
		if now <= cur || c.now.CompareAndSwap(cur, now) {
			return
		}
	}
}
