// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testnode builds an in-memory node with funded accounts for tests.
package testnode

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/compute/builtin/engine"
	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/logdb"
	"github.com/vechain/compute/lvldb"
	"github.com/vechain/compute/node"
	"github.com/vechain/compute/xenv"
)

const StartTime = 1_700_000_000

var (
	Owner = compute.BytesToAddress([]byte("owner"))
	Alice = compute.BytesToAddress([]byte("alice"))
	Bob   = compute.BytesToAddress([]byte("bob"))
)

// Tokens returns n whole tokens.
func Tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), compute.Unit)
}

type TestNode struct {
	*node.Node
	Clock *xenv.ManualClock
}

// New returns an initialized node. Alice and Bob hold 1000 tokens each and
// have approved the engine for all of them.
func New(t testing.TB) *TestNode {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ldb, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { ldb.Close() })

	clock := xenv.NewManualClock(StartTime, 1)
	n, err := node.New(db, ldb, clock, node.Options{SkipNTP: true})
	require.NoError(t, err)
	t.Cleanup(n.Close)

	_, err = n.Init(&node.Genesis{
		Engine: engine.Genesis{
			Owner:     Owner,
			Treasury:  Owner,
			StartTime: StartTime,
		},
		Accounts: []node.Account{
			{Address: Alice, Balance: Tokens(1000)},
			{Address: Bob, Balance: Tokens(1000)},
		},
	})
	require.NoError(t, err)

	_, err = n.Exec("approve", func(l *node.Ledger) error {
		for _, addr := range []compute.Address{Alice, Bob} {
			if err := l.Token.Approve(addr, compute.EngineAddress, Tokens(1000)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return &TestNode{n, clock}
}
