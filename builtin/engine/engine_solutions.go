// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"math/big"

	"github.com/vechain/compute/builtin/engine/commitments"
	"github.com/vechain/compute/builtin/engine/reverts"
	"github.com/vechain/compute/builtin/engine/solutions"
	"github.com/vechain/compute/builtin/params"
	"github.com/vechain/compute/compute"
)

// cooldown is how long a validator that lost a contestation is barred from submitting.
func cooldown(p *params.Values) uint64 {
	return p.MinClaimSolutionTime + p.MinContestationVotePeriodTime
}

// preSubmit runs the checks shared by single and bulk submission for n solutions.
func (e *Engine) preSubmit(caller compute.Address, p *params.Values, n uint64) error {
	now := e.clock.Now()
	inCooldown, err := e.solutionService.InCooldown(caller, now, cooldown(p))
	if err != nil {
		return err
	}
	if inCooldown {
		return reverts.ErrContestationCooldown
	}

	stake := new(big.Int).Mul(p.SolutionsStakeAmount, new(big.Int).SetUint64(n))
	if err := e.validatorService.Debit(caller, stake); err != nil {
		return err
	}
	if err := e.solutionService.CheckRateLimit(caller, now, p.SolutionRateLimit, n); err != nil {
		return err
	}
	return e.requireEligible(caller)
}

func (e *Engine) submitSolution(caller compute.Address, task compute.Bytes32, content []byte, p *params.Values) error {
	if _, err := e.taskService.GetTask(task); err != nil {
		return err
	}
	if err := e.commitmentService.Verify(commitments.Generate(caller, task, content), e.clock.Height()); err != nil {
		return err
	}
	if err := e.solutionService.Add(task, &solutions.Solution{
		Validator: caller,
		Blocktime: e.clock.Now(),
		Cid:       content,
		Stake:     new(big.Int).Set(p.SolutionsStakeAmount),
	}); err != nil {
		return err
	}
	e.emit(EventSolutionSubmitted, task, caller, nil)
	return nil
}

// SubmitSolution reveals the solution caller committed to for task.
func (e *Engine) SubmitSolution(caller compute.Address, task compute.Bytes32, content []byte) error {
	if err := e.requireNotPaused(); err != nil {
		return err
	}
	p, err := e.params.Load()
	if err != nil {
		return err
	}
	if err := e.preSubmit(caller, p, 1); err != nil {
		return err
	}
	if err := e.submitSolution(caller, task, content, p); err != nil {
		return err
	}
	logger.Debug("solution submitted", "task", task, "validator", caller)
	return nil
}

// BulkSubmitSolution reveals solutions for several tasks at once, contents[i] solving tasks[i].
func (e *Engine) BulkSubmitSolution(caller compute.Address, taskIDs []compute.Bytes32, contents [][]byte) error {
	if err := e.requireNotPaused(); err != nil {
		return err
	}
	if len(taskIDs) == 0 {
		return reverts.ErrInvalidCount
	}
	if len(taskIDs) != len(contents) {
		return reverts.ErrMismatchedSolutionInput
	}
	p, err := e.params.Load()
	if err != nil {
		return err
	}
	if err := e.preSubmit(caller, p, uint64(len(taskIDs))); err != nil {
		return err
	}
	for i, task := range taskIDs {
		if err := e.submitSolution(caller, task, contents[i], p); err != nil {
			return err
		}
	}
	logger.Debug("solutions submitted", "count", len(taskIDs), "validator", caller)
	return nil
}

// ClaimSolution settles an uncontested solution after the claim timelock.
// Anyone may call it, payouts go to the solution's validator.
func (e *Engine) ClaimSolution(caller compute.Address, task compute.Bytes32) error {
	if err := e.requireNotPaused(); err != nil {
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
	if err := e.requireEligible(sol.Validator); err != nil {
		return err
	}
	contested, err := e.contestationService.Exists(task)
	if err != nil {
		return err
	}
	if contested {
		return reverts.ErrContestationExists
	}
	if e.clock.Now() <= sol.Blocktime+p.MinClaimSolutionTime {
		return reverts.ErrClaimTooEarly
	}
	// the solution must postdate the validator's last loss and its cooldown
	inCooldown, err := e.solutionService.InCooldown(sol.Validator, sol.Blocktime, cooldown(p))
	if err != nil {
		return err
	}
	if inCooldown {
		return reverts.ErrContestationCooldown
	}
	if err := e.solutionService.MarkClaimed(task); err != nil {
		return err
	}
	if err := e.settleSolution(task, sol, p); err != nil {
		return err
	}
	e.emit(EventSolutionClaimed, task, sol.Validator, nil, "caller", caller.String())
	logger.Debug("solution claimed", "task", task, "validator", sol.Validator)
	return nil
}

// settleSolution pays the model fee, splits the rest of the task fee between treasury
// and validator, pays the mining emission and refunds the validator's solution stake.
func (e *Engine) settleSolution(task compute.Bytes32, sol *solutions.Solution, p *params.Values) error {
	t, err := e.taskService.GetTask(task)
	if err != nil {
		return err
	}
	m, err := e.taskService.GetModel(t.Model)
	if err != nil {
		return err
	}
	treasury, err := e.treasury.Get()
	if err != nil {
		return err
	}

	modelFee := new(big.Int).Set(m.Fee)
	if t.Fee.Cmp(modelFee) < 0 {
		modelFee.Set(t.Fee)
	}
	remaining := new(big.Int).Sub(t.Fee, modelFee)
	treasuryFee := percentOf(remaining, p.SolutionFeePercentage)
	validatorFee := new(big.Int).Sub(remaining, treasuryFee)

	var (
		treasuryReward  = new(big.Int)
		ownerReward     = new(big.Int)
		validatorReward = new(big.Int)
	)
	if m.Rate.Sign() > 0 {
		total, err := e.CurrentReward()
		if err != nil {
			return err
		}
		emission := percentOf(total, m.Rate)
		treasuryReward = percentOf(emission, p.TreasuryRewardPercentage)
		ownerReward = percentOf(emission, p.TaskOwnerRewardPercentage)
		validatorReward.Sub(emission, treasuryReward).Sub(validatorReward, ownerReward)
	}

	// bookkeeping first, transfers last
	if err := e.accruedFees.Add(treasuryFee); err != nil {
		return err
	}
	if err := e.validatorService.Credit(sol.Validator, sol.StakeAmount()); err != nil {
		return err
	}
	if err := e.pay(m.Addr, modelFee); err != nil {
		return err
	}
	if err := e.pay(sol.Validator, validatorFee); err != nil {
		return err
	}
	e.emit(EventFeesPaid, task, sol.Validator, validatorFee,
		"model", modelFee.String(), "treasury", treasuryFee.String())

	if m.Rate.Sign() > 0 {
		if err := e.send(sol.Validator, validatorReward); err != nil {
			return err
		}
		if err := e.send(treasury, treasuryReward); err != nil {
			return err
		}
		if err := e.send(t.Owner, ownerReward); err != nil {
			return err
		}
		e.emit(EventRewardsPaid, task, sol.Validator, validatorReward,
			"treasury", treasuryReward.String(), "owner", ownerReward.String())
	}
	return nil
}
