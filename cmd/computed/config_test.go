// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/compute/builtin/params"
	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/lvldb"
	"github.com/vechain/compute/node"
	"github.com/vechain/compute/xenv"
)

const sampleConfig = `
owner: 0x0000000000000000000000000000000000000001
treasury: 0x0000000000000000000000000000000000000002
startTime: 1700000000
params:
  solutionFeePercentage: "0x16345785d8a0000"
  minClaimSolutionTime: 60
accounts:
  - address: 0x00000000000000000000000000000000000000aa
    balance: "1000000000000000000000"
`

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	gene, err := cfg.Genesis(42)
	require.NoError(t, err)

	assert.Equal(t, compute.MustParseAddress("0x0000000000000000000000000000000000000001"), gene.Engine.Owner)
	assert.Equal(t, compute.MustParseAddress("0x0000000000000000000000000000000000000002"), gene.Engine.Treasury)
	assert.True(t, gene.Engine.Pauser.IsZero())
	assert.Equal(t, uint64(1700000000), gene.Engine.StartTime)

	defaults := params.DefaultValues()
	assert.Equal(t, big.NewInt(1e17), gene.Engine.Params.SolutionFeePercentage)
	assert.Equal(t, uint64(60), gene.Engine.Params.MinClaimSolutionTime)
	assert.Equal(t, defaults.SlashAmountPercentage, gene.Engine.Params.SlashAmountPercentage)
	assert.Equal(t, defaults.ExitValidatorMinUnlockTime, gene.Engine.Params.ExitValidatorMinUnlockTime)

	require.Len(t, gene.Accounts, 1)
	assert.Equal(t, compute.MustParseAddress("0x00000000000000000000000000000000000000aa"), gene.Accounts[0].Address)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(1000), compute.Unit), gene.Accounts[0].Balance)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		loadErr bool
		geneErr string
	}{
		{"unknown field", "owner: 0x0000000000000000000000000000000000000001\nbeneficiary: x\n", true, ""},
		{"bad amount", "owner: 0x0000000000000000000000000000000000000001\naccounts:\n  - address: 0x00000000000000000000000000000000000000aa\n    balance: lots\n", true, ""},
		{"missing owner", "treasury: 0x0000000000000000000000000000000000000002\n", false, "owner: required"},
		{"bad treasury", "owner: 0x0000000000000000000000000000000000000001\ntreasury: 0x12\n", false, "treasury"},
		{"missing balance", "owner: 0x0000000000000000000000000000000000000001\naccounts:\n  - address: 0x00000000000000000000000000000000000000aa\n", false, "accounts[0].balance: required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.content))
			if tt.loadErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, err = cfg.Genesis(42)
			assert.ErrorContains(t, err, tt.geneErr)
		})
	}
}

func TestDevConfig(t *testing.T) {
	cfg := DevConfig()
	id1, err := cfg.ID()
	require.NoError(t, err)
	id2, err := DevConfig().ID()
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "dev config id is stable")

	cfg.Version = 1
	id3, err := cfg.ID()
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)

	gene, err := DevConfig().Genesis(42)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), gene.Engine.StartTime, "zero start time is replaced")
	assert.Equal(t, gene.Engine.Owner, gene.Engine.Treasury, "treasury defaults to the owner")
	assert.Len(t, gene.Accounts, devAccountCount)

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	n, err := node.New(db, nil, xenv.NewManualClock(42, 1), node.Options{SkipNTP: true})
	require.NoError(t, err)
	defer n.Close()

	written, err := n.Init(gene)
	require.NoError(t, err)
	assert.True(t, written)

	require.NoError(t, n.View(func(l *node.Ledger) error {
		bal, err := l.Token.BalanceOf(devAccount(3))
		require.NoError(t, err)
		assert.Equal(t, new(big.Int).Mul(big.NewInt(10_000), compute.Unit), bal)
		return nil
	}))
}
