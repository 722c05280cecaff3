// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
)

// Reader is the query side of the event index.
type Reader interface {
	// FilterEvents returns the events matching filter.
	FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error)

	// NewestHeight returns the height of the newest indexed event, 0 if none.
	NewestHeight() (uint64, error)
}

var _ Reader = (*LogDB)(nil)
