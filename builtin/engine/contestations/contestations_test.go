// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contestations

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/compute/builtin/engine/reverts"
	"github.com/vechain/compute/builtin/solidity"
	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/lvldb"
	"github.com/vechain/compute/state"
	"github.com/vechain/compute/test/datagen"
)

var timing = Timing{VotePeriod: 360, VoteExtension: 10, MaxStakeSince: 86400}

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(compute.EngineAddress, state.New(db)))
}

func TestOpenAndVotes(t *testing.T) {
	s := newService(t)
	task := datagen.RandomHash()
	challenger := datagen.RandAddress()
	accused := datagen.RandAddress()

	_, err := s.Get(task)
	assert.ErrorIs(t, err, reverts.ErrContestationNotFound)

	require.NoError(t, s.Open(task, &Contestation{Validator: challenger, Blocktime: 1000, SlashAmount: big.NewInt(7)}))
	assert.ErrorIs(t, s.Open(task, &Contestation{Validator: accused, Blocktime: 1001}), reverts.ErrContestationExists)

	require.NoError(t, s.AddVote(task, challenger, true))
	require.NoError(t, s.AddVote(task, accused, false))

	yeas, nays, err := s.Counts(task)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), yeas)
	assert.Equal(t, uint64(1), nays)

	v, err := s.Voter(task, true, 0)
	require.NoError(t, err)
	assert.Equal(t, challenger, v)
	v, err = s.Voter(task, false, 0)
	require.NoError(t, err)
	assert.Equal(t, accused, v)
	_, err = s.Voter(task, false, 1)
	assert.Error(t, err)

	voted, err := s.HasVoted(task, accused)
	require.NoError(t, err)
	assert.True(t, voted)
	voted, _ = s.HasVoted(datagen.RandomHash(), accused)
	assert.False(t, voted, "votes are per task")

	require.NoError(t, s.SetFinishStartIndex(task, 1))
	c, err := s.Get(task)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c.FinishStartIndex)
	assert.Equal(t, int64(7), c.SlashAmount.Int64())
}

func TestVotingPeriodExtends(t *testing.T) {
	s := newService(t)
	task := datagen.RandomHash()
	require.NoError(t, s.Open(task, &Contestation{Validator: datagen.RandAddress(), Blocktime: 1000, SlashAmount: big.NewInt(1)}))

	ended, err := s.VotingPeriodEnded(task, 1360, timing)
	require.NoError(t, err)
	assert.False(t, ended)
	ended, _ = s.VotingPeriodEnded(task, 1361, timing)
	assert.True(t, ended)

	require.NoError(t, s.AddVote(task, datagen.RandAddress(), true))
	require.NoError(t, s.AddVote(task, datagen.RandAddress(), false))
	ended, _ = s.VotingPeriodEnded(task, 1380, timing)
	assert.False(t, ended)
	ended, _ = s.VotingPeriodEnded(task, 1381, timing)
	assert.True(t, ended)
}

func TestCanVote(t *testing.T) {
	s := newService(t)
	task := datagen.RandomHash()
	voter := datagen.RandAddress()
	const opened = uint64(200_000)

	status, err := s.CanVote(task, voter, 1, opened, timing)
	require.NoError(t, err)
	assert.Equal(t, VoteNoContestation, status)

	require.NoError(t, s.Open(task, &Contestation{Validator: datagen.RandAddress(), Blocktime: opened, SlashAmount: big.NewInt(1)}))

	tests := []struct {
		name  string
		since uint64
		now   uint64
		want  VoteStatus
	}{
		{"period ended", 1, opened + 361, VotePeriodEnded},
		{"never staked", 0, opened + 1, VoteNeverStaked},
		{"corrupt", opened + 2, opened + 1, VoteStakeCorrupt},
		{"too recent", opened - 86400 + 1, opened + 1, VoteStakedTooRecently},
		{"allowed on boundary", opened - 86400, opened + 1, VoteAllowed},
		{"allowed", 1, opened, VoteAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := s.CanVote(task, voter, tt.since, tt.now, timing)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status, status.String())
		})
	}

	require.NoError(t, s.AddVote(task, voter, true))
	status, err = s.CanVote(task, voter, 1, opened+1, timing)
	require.NoError(t, err)
	assert.Equal(t, VoteAlreadyVoted, status)
}
