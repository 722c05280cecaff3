// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"math/big"

	"github.com/vechain/compute/builtin/engine/reverts"
	"github.com/vechain/compute/compute"
)

// ValidatorDeposit stakes amount of caller's funds for validator.
func (e *Engine) ValidatorDeposit(caller, validator compute.Address, amount *big.Int) error {
	if err := e.requireNotPaused(); err != nil {
		return err
	}
	if validator.IsZero() {
		return reverts.ErrZeroAddress
	}
	if amount.Sign() <= 0 {
		return reverts.ErrInvalidAmount
	}
	// the minimum is read before the deposit changes custody
	minStake, err := e.MinimumStake()
	if err != nil {
		return err
	}
	if err := e.validatorService.Deposit(validator, amount, minStake, e.clock.Now()); err != nil {
		return err
	}
	if err := e.pull(caller, amount); err != nil {
		return err
	}
	e.emit(EventValidatorDeposit, compute.Bytes32{}, validator, amount, "from", caller.String())
	logger.Debug("validator deposit", "validator", validator, "amount", amount)
	return nil
}

// InitiateValidatorWithdraw reserves amount of caller's stake for withdrawal after the exit delay.
func (e *Engine) InitiateValidatorWithdraw(caller compute.Address, amount *big.Int) (uint64, error) {
	if err := e.requireNotPaused(); err != nil {
		return 0, err
	}
	if amount.Sign() <= 0 {
		return 0, reverts.ErrInvalidAmount
	}
	p, err := e.params.Load()
	if err != nil {
		return 0, err
	}
	unlock := e.clock.Now() + p.ExitValidatorMinUnlockTime
	id, err := e.validatorService.NewWithdrawal(caller, amount, unlock)
	if err != nil {
		return 0, err
	}
	e.emit(EventValidatorWithdrawInitiated, compute.Bytes32{}, caller, amount, "id", u64(id), "unlock", u64(unlock))
	return id, nil
}

// CancelValidatorWithdraw drops a pending withdrawal of caller.
func (e *Engine) CancelValidatorWithdraw(caller compute.Address, id uint64) error {
	if err := e.requireNotPaused(); err != nil {
		return err
	}
	w, err := e.validatorService.RemoveWithdrawal(caller, id)
	if err != nil {
		return err
	}
	e.emit(EventValidatorWithdrawCancelled, compute.Bytes32{}, caller, w.Amount, "id", u64(id))
	return nil
}

// ValidatorWithdraw completes an unlocked withdrawal of caller, paying to.
func (e *Engine) ValidatorWithdraw(caller compute.Address, id uint64, to compute.Address) error {
	if err := e.requireNotPaused(); err != nil {
		return err
	}
	if to.IsZero() {
		return reverts.ErrZeroAddress
	}
	w, err := e.validatorService.GetWithdrawal(caller, id)
	if err != nil {
		return err
	}
	if e.clock.Now() < w.UnlockTime {
		return reverts.ErrWithdrawalStillLocked
	}
	// a slash may have cut the stake below the reserved amount
	v, err := e.validatorService.Get(caller)
	if err != nil {
		return err
	}
	if v.Staked.Cmp(w.Amount) < 0 {
		return reverts.ErrInsufficientStake
	}

	if _, err := e.validatorService.RemoveWithdrawal(caller, id); err != nil {
		return err
	}
	if err := e.validatorService.Debit(caller, w.Amount); err != nil {
		return err
	}
	if err := e.pay(to, w.Amount); err != nil {
		return err
	}
	e.emit(EventValidatorWithdraw, compute.Bytes32{}, caller, w.Amount, "id", u64(id), "to", to.String())
	logger.Debug("validator withdraw", "validator", caller, "amount", w.Amount)
	return nil
}
