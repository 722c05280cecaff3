// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/lvldb"
	"github.com/vechain/compute/state"
)

func newParams(t *testing.T) *Params {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(compute.ParamsAddress, state.New(db))
}

func TestParamsGetSet(t *testing.T) {
	p := newParams(t)
	key := compute.BytesToBytes32([]byte("key"))

	p.Set(key, big.NewInt(10))
	got, err := p.Get(key)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Int64())
}

func TestParamsStoreLoad(t *testing.T) {
	p := newParams(t)

	defaults := DefaultValues()
	p.Store(defaults)

	loaded, err := p.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, defaults.SlashAmountPercentage.Cmp(loaded.SlashAmountPercentage))
	assert.Equal(t, 0, defaults.ValidatorMinimumPercentage.Cmp(loaded.ValidatorMinimumPercentage))
	assert.Equal(t, 0, defaults.SolutionsStakeAmount.Cmp(loaded.SolutionsStakeAmount))
	assert.Equal(t, uint64(2000), loaded.MinClaimSolutionTime)
	assert.Equal(t, uint64(360), loaded.MinContestationVotePeriodTime)
	assert.Equal(t, uint64(10), loaded.ContestationVoteExtensionTime)
	assert.Equal(t, uint64(86400), loaded.MaxContestationValidatorStakeSince)
	assert.Equal(t, uint64(86400), loaded.ExitValidatorMinUnlockTime)
	assert.Equal(t, uint64(1), loaded.SolutionRateLimit)

	p.Set(compute.KeySolutionRateLimit, big.NewInt(5))
	loaded, err = p.Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), loaded.SolutionRateLimit)
}

func TestParamsLoadOverflow(t *testing.T) {
	p := newParams(t)
	p.Set(compute.KeyMinClaimSolutionTime, new(big.Int).Lsh(big.NewInt(1), 70))

	_, err := p.Load()
	assert.Error(t, err)
}
