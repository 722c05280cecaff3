// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/compute/builtin/engine/contestations"
	"github.com/vechain/compute/builtin/engine/reverts"
	"github.com/vechain/compute/builtin/params"
	"github.com/vechain/compute/compute"
)

// contestedTask has accused solve a fresh task and challenger contest it.
func (te *testEngine) contestedTask(challenger, accused compute.Address) (model, task compute.Bytes32) {
	te.t.Helper()
	model = te.registerModel(10)
	task = te.submitTask(model, 10)
	te.solve(accused, task, []byte("bad answer"))
	te.must(func() error { return te.SubmitContestation(challenger, task) })
	return model, task
}

func (te *testEngine) vote(voter compute.Address, task compute.Bytes32, yea bool) {
	te.t.Helper()
	te.must(func() error { return te.VoteOnContestation(voter, task, yea) })
}

func (te *testEngine) finish(task compute.Bytes32, batch uint64) error {
	return te.exec(func() error { return te.ContestationVoteFinish(carol, task, batch) })
}

func TestSplitPool(t *testing.T) {
	tests := []struct {
		pool               int64
		n                  uint64
		first, other, dust int64
	}{
		{0, 1, 0, 0, 0},
		{10, 0, 10, 0, 0},
		{10, 1, 10, 0, 0},
		{10, 2, 5, 5, 0},
		{10, 3, 5, 2, 1},
		{11, 3, 5, 3, 0},
		{20, 4, 10, 3, 1},
	}
	for _, tt := range tests {
		first, other, dust := splitPool(big.NewInt(tt.pool), tt.n)
		assert.Equal(t, tt.first, first.Int64())
		assert.Equal(t, tt.other, other.Int64())
		assert.Equal(t, tt.dust, dust.Int64())
		// nothing is created or lost
		if tt.n > 0 {
			total := new(big.Int).Mul(other, new(big.Int).SetUint64(tt.n-1))
			assert.Equal(t, tt.pool, total.Add(total, first).Add(total, dust).Int64())
		}
	}
}

// Scenario B: the accused cannot cover the slash, so the lone challenger wins.
func TestContestationSucceedsUnopposed(t *testing.T) {
	te := newTestEngine(t, func(g *Genesis) {
		g.Params.ValidatorMinimumPercentage = big.NewInt(1e13)
	})
	minStake, err := te.MinimumStake()
	require.NoError(t, err)
	assert.Equal(t, compute.Unit.String(), minStake.String())

	te.deposit(alice, tokens(1000))
	te.deposit(bob, tokens(5))
	te.clock.Warp(100_000)

	model, task := te.contestedTask(alice, bob)

	assert.Equal(t, tokens(990).String(), te.staked(alice).String())
	assert.Equal(t, sub(tokens(5), big.NewInt(1e15)).String(), te.staked(bob).String(), "no bond for the accused")
	yeas, nays, err := te.ContestationVotes(task)
	require.NoError(t, err)
	assert.Equal(t, []compute.Address{alice}, yeas)
	assert.Empty(t, nays)

	c, err := te.Contestation(task)
	require.NoError(t, err)
	assert.Equal(t, alice, c.Validator)
	assert.Equal(t, tokens(10).String(), c.SlashAmount.String())

	te.clock.Warp(370)
	assert.ErrorIs(t, te.finish(task, 10), reverts.ErrVotingPeriodOpen)
	te.clock.Warp(1)
	ended, err := te.VotingPeriodEnded(task)
	require.NoError(t, err)
	assert.True(t, ended)

	require.NoError(t, te.finish(task, 10))

	assert.Equal(t, add(tokens(1000), big.NewInt(1e15)).String(), te.staked(alice).String())
	assert.Equal(t, sub(tokens(5), big.NewInt(1e15)).String(), te.staked(bob).String())
	assert.Equal(t, tokens(10_000).String(), te.balance(user).String(), "fee refunded")
	assert.Equal(t, "0", te.balance(modelOwner).String())
	loss, err := te.LastContestationLoss(bob)
	require.NoError(t, err)
	assert.Equal(t, te.clock.Now(), loss)
	te.assertSettled()

	assert.ErrorIs(t, te.finish(task, 10), reverts.ErrContestationSettled)
	assert.ErrorIs(t, te.exec(func() error { return te.ClaimSolution(bob, task) }), reverts.ErrContestationExists)

	// the loser sits out one claim period plus one vote period
	next := te.submitTask(model, 10)
	te.must(func() error { return te.SignalCommitment(bob, GenerateCommitment(bob, next, []byte("retry"))) })
	te.clock.Advance()
	assert.ErrorIs(t, te.exec(func() error { return te.SubmitSolution(bob, next, []byte("retry")) }), reverts.ErrContestationCooldown)
	te.clock.Warp(2360)
	assert.ErrorIs(t, te.exec(func() error { return te.SubmitSolution(bob, next, []byte("retry")) }), reverts.ErrContestationCooldown)
	te.clock.Warp(1)
	te.must(func() error { return te.SubmitSolution(bob, next, []byte("retry")) })
}

// The challenger is awarded the stake reserved at submission, not the current amount.
func TestContestationAwardsReservedStake(t *testing.T) {
	te := newTestEngine(t, func(g *Genesis) {
		g.Params.ValidatorMinimumPercentage = big.NewInt(1e13)
	})
	te.deposit(alice, tokens(1000))
	te.deposit(bob, tokens(5))
	te.clock.Warp(100_000)

	_, task := te.contestedTask(alice, bob)

	p := params.DefaultValues()
	p.ValidatorMinimumPercentage = big.NewInt(1e13)
	p.SolutionsStakeAmount = big.NewInt(5e18)
	te.must(func() error { return te.SetParams(owner, p) })
	te.clock.Warp(371)
	require.NoError(t, te.finish(task, 10))

	assert.Equal(t, add(tokens(1000), big.NewInt(1e15)).String(), te.staked(alice).String())
	assert.Equal(t, sub(tokens(5), big.NewInt(1e15)).String(), te.staked(bob).String())
	te.assertSettled()
}

// A loss bars claims on solutions submitted before it, even once their timelock passed.
func TestClaimSolutionAfterLoss(t *testing.T) {
	te := newTestEngine(t, func(g *Genesis) {
		g.Params.ValidatorMinimumPercentage = big.NewInt(1e13)
	})
	te.deposit(alice, tokens(1000))
	te.deposit(bob, tokens(5))
	te.clock.Warp(100_000)

	model := te.registerModel(10)
	earlier := te.submitTask(model, 10)
	te.solve(bob, earlier, []byte("answer"))

	_, contested := te.contestedTask(alice, bob)
	te.clock.Warp(371)
	require.NoError(t, te.finish(contested, 10))
	loss, err := te.LastContestationLoss(bob)
	require.NoError(t, err)
	assert.NotZero(t, loss)

	te.clock.Warp(2001)
	staked := te.staked(bob)
	assert.ErrorIs(t, te.exec(func() error { return te.ClaimSolution(carol, earlier) }), reverts.ErrContestationCooldown)

	sol, err := te.Solution(earlier)
	require.NoError(t, err)
	assert.False(t, sol.Claimed)
	assert.Equal(t, staked.String(), te.staked(bob).String())
	assert.Equal(t, "0", te.balance(modelOwner).String())
}

// Scenario C: a tie sides with the accused, settled one voter per side at a time.
func TestContestationTie(t *testing.T) {
	te := newTestEngine(t, nil)
	for _, v := range []compute.Address{alice, bob, carol, dave} {
		te.deposit(v, tokens(1000))
	}
	te.clock.Warp(100_000)

	_, task := te.contestedTask(alice, bob)
	assert.Equal(t, tokens(990).String(), te.staked(alice).String())
	assert.Equal(t, sub(tokens(990), big.NewInt(1e15)).String(), te.staked(bob).String())

	status, err := te.ValidatorCanVote(carol, task)
	require.NoError(t, err)
	assert.Equal(t, contestations.VoteAllowed, status)

	te.vote(carol, task, true)
	te.vote(dave, task, false)

	status, err = te.ValidatorCanVote(carol, task)
	require.NoError(t, err)
	assert.Equal(t, contestations.VoteAlreadyVoted, status)
	assert.ErrorIs(t, te.exec(func() error { return te.VoteOnContestation(carol, task, false) }), reverts.ErrAlreadyVoted)

	// stake younger than the contestation does not vote
	te.deposit(erin, tokens(1000))
	status, err = te.ValidatorCanVote(erin, task)
	require.NoError(t, err)
	assert.Equal(t, contestations.VoteStakedTooRecently, status)
	assert.ErrorIs(t, te.exec(func() error { return te.VoteOnContestation(erin, task, true) }), reverts.ErrVoteNotAllowed)

	// four votes extend the period to 400 seconds
	te.clock.Warp(400)
	assert.ErrorIs(t, te.finish(task, 1), reverts.ErrVotingPeriodOpen)
	te.clock.Warp(1)
	assert.ErrorIs(t, te.exec(func() error { return te.VoteOnContestation(erin, task, true) }), reverts.ErrVotingPeriodEnded)
	assert.ErrorIs(t, te.finish(task, 0), reverts.ErrInvalidCount)

	require.NoError(t, te.finish(task, 1))
	c, err := te.Contestation(task)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c.FinishStartIndex)
	assert.Equal(t, tokens(1010).String(), te.staked(bob).String())
	assert.Equal(t, tokens(990).String(), te.staked(dave).String(), "not settled yet")

	sol, err := te.Solution(task)
	require.NoError(t, err)
	assert.True(t, sol.Claimed)
	assert.Equal(t, "10", te.balance(modelOwner).String())

	require.NoError(t, te.finish(task, 1))
	assert.ErrorIs(t, te.finish(task, 1), reverts.ErrContestationSettled)

	assert.Equal(t, tokens(990).String(), te.staked(alice).String())
	assert.Equal(t, tokens(990).String(), te.staked(carol).String())
	assert.Equal(t, tokens(1010).String(), te.staked(bob).String())
	assert.Equal(t, tokens(1010).String(), te.staked(dave).String())
	loss, err := te.LastContestationLoss(bob)
	require.NoError(t, err)
	assert.Zero(t, loss)
	te.assertSettled()
}

func TestContestationMajority(t *testing.T) {
	te := newTestEngine(t, nil)
	for _, v := range []compute.Address{alice, bob, carol, dave, erin} {
		te.deposit(v, tokens(1000))
	}
	te.clock.Warp(100_000)

	_, task := te.contestedTask(alice, bob)
	te.vote(carol, task, true)
	te.vote(dave, task, false)
	te.vote(erin, task, true)

	te.clock.Warp(411)
	require.NoError(t, te.finish(task, 2))
	assert.Equal(t, add(tokens(1010), big.NewInt(1e15)).String(), te.staked(alice).String())
	assert.Equal(t, tokens(1005).String(), te.staked(carol).String())
	assert.Equal(t, tokens(990).String(), te.staked(erin).String(), "third winner waits for the next batch")

	require.NoError(t, te.finish(task, 2))
	assert.Equal(t, tokens(1005).String(), te.staked(erin).String())
	assert.Equal(t, sub(tokens(990), big.NewInt(1e15)).String(), te.staked(bob).String())
	assert.Equal(t, tokens(990).String(), te.staked(dave).String())
	assert.Equal(t, tokens(10_000).String(), te.balance(user).String())

	sol, err := te.Solution(task)
	require.NoError(t, err)
	assert.False(t, sol.Claimed, "a refuted solution is never paid")
	te.assertSettled()
}

func TestSubmitContestationChecks(t *testing.T) {
	te := newTestEngine(t, nil)
	for _, v := range []compute.Address{alice, bob, carol} {
		te.deposit(v, tokens(1000))
	}
	model := te.registerModel(0)
	task := te.submitTask(model, 0)
	te.solve(bob, task, []byte("answer"))

	contest := func(caller compute.Address) error {
		return te.exec(func() error { return te.SubmitContestation(caller, task) })
	}
	assert.ErrorIs(t, contest(bob), reverts.ErrSelfContestation)
	assert.ErrorIs(t, contest(erin), reverts.ErrNotEligible)
	assert.ErrorIs(t, te.exec(func() error { return te.SubmitContestation(alice, compute.Bytes32{1}) }), reverts.ErrSolutionNotFound)
	assert.ErrorIs(t, te.exec(func() error { return te.VoteOnContestation(carol, task, true) }), reverts.ErrContestationNotFound)

	te.clock.Warp(1999)
	require.NoError(t, contest(alice))
	assert.ErrorIs(t, contest(carol), reverts.ErrContestationExists)

	other := te.submitTask(model, 0)
	te.solve(bob, other, []byte("answer"))
	te.clock.Warp(2000)
	err := te.exec(func() error { return te.SubmitContestation(alice, other) })
	assert.ErrorIs(t, err, reverts.ErrContestWindowClosed)
	assert.Equal(t, reverts.TimingViolation, reverts.KindOf(err))

	te.clock.Warp(1)
	te.must(func() error { return te.ClaimSolution(alice, other) })
	assert.ErrorIs(t, te.exec(func() error { return te.SubmitContestation(alice, other) }), reverts.ErrSolutionClaimed)
}
