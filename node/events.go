// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"math/big"

	"github.com/vechain/compute/builtin/engine"
	"github.com/vechain/compute/logdb"
)

func convertEvents(events []*engine.Event, height, time uint64) []*logdb.Event {
	out := make([]*logdb.Event, 0, len(events))
	for i, ev := range events {
		amount := new(big.Int)
		if ev.Amount != nil {
			amount.Set(ev.Amount)
		}
		out = append(out, &logdb.Event{
			Height: uint32(height),
			Index:  uint32(i),
			Time:   time,
			Name:   ev.Name,
			Ref:    ev.Ref,
			Actor:  ev.Actor,
			Amount: amount,
			Attrs:  ev.Attrs,
		})
	}
	return out
}
