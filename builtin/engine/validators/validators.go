// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package validators keeps validator stakes and the withdrawal timelock queue.
package validators

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/compute/builtin/engine/reverts"
	"github.com/vechain/compute/builtin/solidity"
	"github.com/vechain/compute/compute"
)

var (
	slotValidators     = compute.BytesToBytes32([]byte("validators"))
	slotPendingAmounts = compute.BytesToBytes32([]byte("validators-pending-amount"))
	slotWithdrawals    = compute.BytesToBytes32([]byte("validators-withdrawals"))
	slotCounters       = compute.BytesToBytes32([]byte("validators-withdrawal-counter"))
)

// Validator is the stake record of a validator.
type Validator struct {
	Address compute.Address
	Staked  *big.Int
	Since   uint64 // when the stake last reached the minimum
}

// Withdrawal is a pending withdrawal request.
type Withdrawal struct {
	UnlockTime uint64
	Amount     *big.Int
}

func (w *Withdrawal) Exists() bool {
	return w.Amount != nil && w.Amount.Sign() > 0
}

type Service struct {
	validators  *solidity.Mapping[compute.Address, *Validator]
	pending     *solidity.Mapping[compute.Address, *big.Int]
	withdrawals *solidity.Mapping[compute.Bytes32, *Withdrawal]
	counters    *solidity.Mapping[compute.Address, uint64]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		validators:  solidity.NewMapping[compute.Address, *Validator](sctx, slotValidators),
		pending:     solidity.NewMapping[compute.Address, *big.Int](sctx, slotPendingAmounts),
		withdrawals: solidity.NewMapping[compute.Bytes32, *Withdrawal](sctx, slotWithdrawals),
		counters:    solidity.NewMapping[compute.Address, uint64](sctx, slotCounters),
	}
}

// MinimumStake returns ts − ts·(1 − pct), the stake needed to be eligible.
func MinimumStake(ts, pct *big.Int) *big.Int {
	rest := new(big.Int).Sub(compute.Unit, pct)
	rest.Mul(rest, ts).Quo(rest, compute.Unit)
	return rest.Sub(ts, rest)
}

// SlashAmount returns the bond frozen for one contestation vote.
func SlashAmount(ts, pct *big.Int) *big.Int {
	return MinimumStake(ts, pct)
}

func withdrawalKey(validator compute.Address, id uint64) compute.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return compute.Blake2b(validator.Bytes(), b[:])
}

// Get returns the validator record, a zero stake if the address never staked.
func (s *Service) Get(validator compute.Address) (*Validator, error) {
	v, err := s.validators.Get(validator)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get validator")
	}
	if v.Staked == nil {
		v.Staked = new(big.Int)
	}
	return v, nil
}

func (s *Service) set(validator compute.Address, v *Validator) error {
	v.Address = validator
	if err := s.validators.Set(validator, v); err != nil {
		return errors.Wrap(err, "failed to set validator")
	}
	return nil
}

// PendingAmount returns the amount reserved by pending withdrawals.
func (s *Service) PendingAmount(validator compute.Address) (*big.Int, error) {
	return s.pending.Get(validator)
}

// Available returns the stake not reserved by pending withdrawals.
// It is negative when a slash cut the stake below the reserved amount.
func (s *Service) Available(validator compute.Address) (*big.Int, error) {
	v, err := s.Get(validator)
	if err != nil {
		return nil, err
	}
	pending, err := s.PendingAmount(validator)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(v.Staked, pending), nil
}

// IsEligible reports whether the available stake reaches minStake.
func (s *Service) IsEligible(validator compute.Address, minStake *big.Int) (bool, error) {
	available, err := s.Available(validator)
	if err != nil {
		return false, err
	}
	return available.Cmp(minStake) >= 0, nil
}

// Deposit adds amount to the stake. Crossing minStake from below stamps Since with now.
func (s *Service) Deposit(validator compute.Address, amount, minStake *big.Int, now uint64) error {
	v, err := s.Get(validator)
	if err != nil {
		return err
	}
	below := v.Staked.Cmp(minStake) < 0
	v.Staked = new(big.Int).Add(v.Staked, amount)
	if below && v.Staked.Cmp(minStake) >= 0 {
		v.Since = now
	}
	return s.set(validator, v)
}

// Credit adds amount to the stake without touching Since. Used for refunds and awards.
func (s *Service) Credit(validator compute.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	v, err := s.Get(validator)
	if err != nil {
		return err
	}
	v.Staked = new(big.Int).Add(v.Staked, amount)
	return s.set(validator, v)
}

// Debit removes amount from the stake.
func (s *Service) Debit(validator compute.Address, amount *big.Int) error {
	v, err := s.Get(validator)
	if err != nil {
		return err
	}
	if v.Staked.Cmp(amount) < 0 {
		return reverts.ErrInsufficientStake
	}
	v.Staked = new(big.Int).Sub(v.Staked, amount)
	return s.set(validator, v)
}

// NewWithdrawal reserves amount of the available stake until unlockTime and returns the request id.
func (s *Service) NewWithdrawal(validator compute.Address, amount *big.Int, unlockTime uint64) (uint64, error) {
	available, err := s.Available(validator)
	if err != nil {
		return 0, err
	}
	if available.Cmp(amount) < 0 {
		return 0, reverts.ErrInsufficientStake
	}

	id, err := s.counters.Get(validator)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get withdrawal counter")
	}
	id++
	if err := s.counters.Set(validator, id); err != nil {
		return 0, errors.Wrap(err, "failed to set withdrawal counter")
	}
	if err := s.withdrawals.Set(withdrawalKey(validator, id), &Withdrawal{UnlockTime: unlockTime, Amount: amount}); err != nil {
		return 0, errors.Wrap(err, "failed to set withdrawal")
	}
	if err := s.addPending(validator, amount); err != nil {
		return 0, err
	}
	return id, nil
}

// GetWithdrawal returns a pending request. Missing requests fail with InvalidState.
func (s *Service) GetWithdrawal(validator compute.Address, id uint64) (*Withdrawal, error) {
	w, err := s.withdrawals.Get(withdrawalKey(validator, id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get withdrawal")
	}
	if !w.Exists() {
		return nil, reverts.ErrWithdrawalNotFound
	}
	return w, nil
}

// RemoveWithdrawal deletes a request and releases its reservation.
func (s *Service) RemoveWithdrawal(validator compute.Address, id uint64) (*Withdrawal, error) {
	w, err := s.GetWithdrawal(validator, id)
	if err != nil {
		return nil, err
	}
	s.withdrawals.Delete(withdrawalKey(validator, id))
	if err := s.addPending(validator, new(big.Int).Neg(w.Amount)); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) addPending(validator compute.Address, delta *big.Int) error {
	pending, err := s.pending.Get(validator)
	if err != nil {
		return errors.Wrap(err, "failed to get pending amount")
	}
	if err := s.pending.Set(validator, new(big.Int).Add(pending, delta)); err != nil {
		return errors.Wrap(err, "failed to set pending amount")
	}
	return nil
}
