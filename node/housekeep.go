// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"math/big"
	"time"

	"github.com/beevik/ntp"

	"github.com/vechain/compute/compute"
)

// Run starts the background loops. They stop when ctx is done or the node is closed.
func (n *Node) Run(ctx context.Context) {
	n.goes.Go(func(stop context.Context) {
		n.houseKeeping(ctx, stop)
	})
	if !n.opts.SkipNTP {
		go checkClockOffset()
	}
}

func (n *Node) houseKeeping(ctx, stop context.Context) {
	logger.Debug("enter house keeping")
	defer logger.Debug("leave house keeping")

	statsTicker := time.NewTicker(time.Minute)
	clockSyncTicker := time.NewTicker(10 * time.Minute)
	defer func() {
		statsTicker.Stop()
		clockSyncTicker.Stop()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop.Done():
			return
		case <-statsTicker.C:
			n.reportCacheStats()
			n.reportTotals()
		case <-clockSyncTicker.C:
			if !n.opts.SkipNTP {
				go checkClockOffset()
			}
		}
	}
}

func (n *Node) reportCacheStats() {
	changed, hit, miss := n.models.Stats().Stats()
	if !changed {
		return
	}
	if lookups := hit + miss; lookups > 0 {
		metricModelCache().Set(hit * 1000 / lookups)
	}
	logger.Debug("model cache stats", "hit", hit, "miss", miss)
}

func (n *Node) reportTotals() {
	err := n.View(func(l *Ledger) error {
		held, err := l.Engine.TotalHeld()
		if err != nil {
			return err
		}
		fees, err := l.Engine.AccruedFees()
		if err != nil {
			return err
		}
		metricTotalHeld().Set(new(big.Int).Quo(held, compute.Unit).Int64())
		metricAccruedFees().Set(new(big.Int).Quo(fees, compute.Unit).Int64())
		return nil
	})
	if err != nil {
		logger.Warn("failed to read ledger totals", "err", err)
	}
}

func checkClockOffset() {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	metricClockDrift().Set(resp.ClockOffset.Milliseconds())
	if resp.ClockOffset > time.Duration(2)*time.Second || resp.ClockOffset < -time.Duration(2)*time.Second {
		logger.Warn("clock offset detected", "offset", resp.ClockOffset)
	}
}
