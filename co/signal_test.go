// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/compute/co"
)

func TestSignalBroadcastBeforeWait(t *testing.T) {
	var sig co.Signal
	sig.Broadcast()

	select {
	case <-sig.Wait():
		t.Fatal("woken by an earlier broadcast")
	default:
	}
}

func TestSignalBroadcastAfterWait(t *testing.T) {
	var sig co.Signal

	var ws []<-chan struct{}
	for range 10 {
		ws = append(ws, sig.Wait())
	}
	sig.Broadcast()
	for _, w := range ws {
		<-w
	}
}

func TestGoes(t *testing.T) {
	var (
		g       co.Goes
		stopped atomic.Int32
	)
	for range 3 {
		g.Go(func(ctx context.Context) {
			<-ctx.Done()
			stopped.Add(1)
		})
	}
	g.Stop()
	<-g.Done()
	assert.Equal(t, int32(3), stopped.Load())
}
