// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"math/big"

	"github.com/vechain/compute/builtin/engine/contestations"
	"github.com/vechain/compute/builtin/engine/reverts"
	"github.com/vechain/compute/builtin/engine/solutions"
	"github.com/vechain/compute/builtin/params"
	"github.com/vechain/compute/compute"
)

func timing(p *params.Values) contestations.Timing {
	return contestations.Timing{
		VotePeriod:    p.MinContestationVotePeriodTime,
		VoteExtension: p.ContestationVoteExtensionTime,
		MaxStakeSince: p.MaxContestationValidatorStakeSince,
	}
}

// SubmitContestation disputes the solution of task. The challenger votes yea and
// the accused votes nay if it can cover the frozen slash amount.
func (e *Engine) SubmitContestation(caller compute.Address, task compute.Bytes32) error {
	if err := e.requireNotPaused(); err != nil {
		return err
	}
	if err := e.requireEligible(caller); err != nil {
		return err
	}
	p, err := e.params.Load()
	if err != nil {
		return err
	}
	sol, err := e.solutionService.Get(task)
	if err != nil {
		return err
	}
	if sol.Validator == caller {
		return reverts.ErrSelfContestation
	}
	if sol.Claimed {
		return reverts.ErrSolutionClaimed
	}
	now := e.clock.Now()
	if now >= sol.Blocktime+p.MinClaimSolutionTime {
		return reverts.ErrContestWindowClosed
	}

	slash, err := e.SlashAmount()
	if err != nil {
		return err
	}
	if err := e.contestationService.Open(task, &contestations.Contestation{
		Validator:   caller,
		Blocktime:   now,
		SlashAmount: slash,
	}); err != nil {
		return err
	}
	e.emit(EventContestationSubmitted, task, caller, slash, "accused", sol.Validator.String())

	if err := e.castVote(task, caller, true, slash); err != nil {
		return err
	}
	accused, err := e.validatorService.Get(sol.Validator)
	if err != nil {
		return err
	}
	if accused.Staked.Cmp(slash) >= 0 {
		if err := e.castVote(task, sol.Validator, false, slash); err != nil {
			return err
		}
	}
	logger.Info("contestation submitted", "task", task, "challenger", caller, "accused", sol.Validator)
	return nil
}

// castVote freezes the bond of voter and records the vote.
func (e *Engine) castVote(task compute.Bytes32, voter compute.Address, yea bool, bond *big.Int) error {
	if err := e.validatorService.Debit(voter, bond); err != nil {
		return err
	}
	if err := e.contestationService.AddVote(task, voter, yea); err != nil {
		return err
	}
	side := "nay"
	if yea {
		side = "yea"
	}
	e.emit(EventContestationVote, task, voter, bond, "vote", side)
	return nil
}

// ValidatorCanVote tells whether validator may vote on the contestation of task.
func (e *Engine) ValidatorCanVote(validator compute.Address, task compute.Bytes32) (contestations.VoteStatus, error) {
	p, err := e.params.Load()
	if err != nil {
		return 0, err
	}
	v, err := e.validatorService.Get(validator)
	if err != nil {
		return 0, err
	}
	return e.contestationService.CanVote(task, validator, v.Since, e.clock.Now(), timing(p))
}

// VotingPeriodEnded reports whether votes on the contestation of task are closed.
func (e *Engine) VotingPeriodEnded(task compute.Bytes32) (bool, error) {
	p, err := e.params.Load()
	if err != nil {
		return false, err
	}
	return e.contestationService.VotingPeriodEnded(task, e.clock.Now(), timing(p))
}

// VoteOnContestation casts caller's vote, freezing the contestation's slash amount as a bond.
// yea supports the challenger.
func (e *Engine) VoteOnContestation(caller compute.Address, task compute.Bytes32, yea bool) error {
	if err := e.requireNotPaused(); err != nil {
		return err
	}
	status, err := e.ValidatorCanVote(caller, task)
	if err != nil {
		return err
	}
	switch status {
	case contestations.VoteAllowed:
	case contestations.VoteNoContestation:
		return reverts.ErrContestationNotFound
	case contestations.VotePeriodEnded:
		return reverts.ErrVotingPeriodEnded
	case contestations.VoteAlreadyVoted:
		return reverts.ErrAlreadyVoted
	default:
		return reverts.ErrVoteNotAllowed
	}
	if err := e.requireEligible(caller); err != nil {
		return err
	}
	c, err := e.contestationService.Get(task)
	if err != nil {
		return err
	}
	return e.castVote(task, caller, yea, c.SlashAmount)
}

// splitPool returns the shares of a forfeited pool among n winners: the first
// winner takes half, or all of it when alone, the others split the rest evenly.
func splitPool(pool *big.Int, n uint64) (first, other, dust *big.Int) {
	if n <= 1 {
		return new(big.Int).Set(pool), new(big.Int), new(big.Int)
	}
	first = new(big.Int).Quo(pool, big.NewInt(2))
	rest := new(big.Int).Sub(pool, first)
	other = new(big.Int).Quo(rest, new(big.Int).SetUint64(n-1))
	dust = rest.Sub(rest, new(big.Int).Mul(other, new(big.Int).SetUint64(n-1)))
	return first, other, dust
}

// ContestationVoteFinish settles up to batch voters of each side once voting has ended.
// Ties side with the accused. Winners get their bond back plus a share of the losing
// side's bonds. Repeated calls resume where the previous one stopped.
func (e *Engine) ContestationVoteFinish(caller compute.Address, task compute.Bytes32, batch uint64) error {
	if err := e.requireNotPaused(); err != nil {
		return err
	}
	if batch == 0 {
		return reverts.ErrInvalidCount
	}
	p, err := e.params.Load()
	if err != nil {
		return err
	}
	c, err := e.contestationService.Get(task)
	if err != nil {
		return err
	}
	ended, err := e.contestationService.VotingPeriodEnded(task, e.clock.Now(), timing(p))
	if err != nil {
		return err
	}
	if !ended {
		return reverts.ErrVotingPeriodOpen
	}
	yeas, nays, err := e.contestationService.Counts(task)
	if err != nil {
		return err
	}
	total := max(yeas, nays)
	start := c.FinishStartIndex
	if start >= total {
		return reverts.ErrContestationSettled
	}
	end := min(start+batch, total)

	sol, err := e.solutionService.Get(task)
	if err != nil {
		return err
	}

	succeeded := yeas > nays
	winners, losers := nays, yeas
	if succeeded {
		winners, losers = yeas, nays
	}
	pool := new(big.Int).Mul(c.SlashAmount, new(big.Int).SetUint64(losers))
	first, other, dust := splitPool(pool, winners)

	if start == 0 {
		if err := e.accruedFees.Add(dust); err != nil {
			return err
		}
		if succeeded {
			if err := e.challengeSucceeded(task, c, sol); err != nil {
				return err
			}
		} else {
			if err := e.solutionService.MarkClaimed(task); err != nil {
				return err
			}
			if err := e.settleSolution(task, sol, p); err != nil {
				return err
			}
		}
	}

	for i := start; i < end && i < winners; i++ {
		voter, err := e.contestationService.Voter(task, succeeded, i)
		if err != nil {
			return err
		}
		share := other
		if i == 0 {
			share = first
		}
		if err := e.validatorService.Credit(voter, new(big.Int).Add(c.SlashAmount, share)); err != nil {
			return err
		}
	}

	if err := e.contestationService.SetFinishStartIndex(task, end); err != nil {
		return err
	}
	e.emit(EventContestationVoteFinish, task, caller, nil, "start", u64(start), "end", u64(end))
	logger.Debug("contestation settled", "task", task, "start", start, "end", end, "succeeded", succeeded)
	return nil
}

// challengeSucceeded refunds the task fee to its owner, awards the accused's solution
// stake to the challenger and starts the accused's cooldown.
func (e *Engine) challengeSucceeded(task compute.Bytes32, c *contestations.Contestation, sol *solutions.Solution) error {
	t, err := e.taskService.GetTask(task)
	if err != nil {
		return err
	}
	if err := e.validatorService.Credit(c.Validator, sol.StakeAmount()); err != nil {
		return err
	}
	if err := e.solutionService.SetLastLoss(sol.Validator, e.clock.Now()); err != nil {
		return err
	}
	return e.pay(t.Owner, t.Fee)
}
