// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package engine is the coordination ledger of the compute marketplace.
// It composes the validator, task, commitment, solution and contestation
// services over one engine account and settles fees and emissions through
// the value ledger.
//
// Operations are not atomic on their own: a failed operation may have written
// to state before it failed. Callers run every operation inside a state
// checkpoint and revert it on error, see package node.
package engine

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/compute/builtin/engine/commitments"
	"github.com/vechain/compute/builtin/engine/contestations"
	"github.com/vechain/compute/builtin/engine/reverts"
	"github.com/vechain/compute/builtin/engine/reward"
	"github.com/vechain/compute/builtin/engine/solutions"
	"github.com/vechain/compute/builtin/engine/tasks"
	"github.com/vechain/compute/builtin/engine/validators"
	"github.com/vechain/compute/builtin/params"
	"github.com/vechain/compute/builtin/solidity"
	"github.com/vechain/compute/builtin/token"
	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/log"
	"github.com/vechain/compute/state"
	"github.com/vechain/compute/xenv"
)

var logger = log.WithContext("pkg", "engine")

func SetLogger(l log.Logger) {
	logger = l
}

var (
	slotInitialized = compute.BytesToBytes32([]byte("initialized"))
	slotAccruedFees = compute.BytesToBytes32([]byte("accrued-fees"))
	slotTotalHeld   = compute.BytesToBytes32([]byte("total-held"))
	slotStartTime   = compute.BytesToBytes32([]byte("start-time"))
	slotVersion     = compute.BytesToBytes32([]byte("version"))
	slotPaused      = compute.BytesToBytes32([]byte("paused"))
	slotOwner       = compute.BytesToBytes32([]byte("owner"))
	slotTreasury    = compute.BytesToBytes32([]byte("treasury"))
	slotPauser      = compute.BytesToBytes32([]byte("pauser"))
)

// Ledger is the value ledger the engine custodies funds in.
// A failed transfer must leave balances untouched.
type Ledger interface {
	Transfer(from, to compute.Address, amount *big.Int) error
	TransferFrom(spender, from, to compute.Address, amount *big.Int) error
	BalanceOf(addr compute.Address) (*big.Int, error)
}

// Engine implements the operations of the engine account.
type Engine struct {
	addr   compute.Address
	ledger Ledger
	params *params.Params
	clock  xenv.Clock

	validatorService    *validators.Service
	taskService         *tasks.Service
	commitmentService   *commitments.Service
	solutionService     *solutions.Service
	contestationService *contestations.Service

	initialized *solidity.Bool
	accruedFees *solidity.Uint256
	totalHeld   *solidity.Uint256
	startTime   *solidity.Uint256
	version     *solidity.Uint256
	paused      *solidity.Bool
	owner       *solidity.Address
	treasury    *solidity.Address
	pauser      *solidity.Address

	events []*Event
}

// New create a new instance.
func New(addr compute.Address, state *state.State, ledger Ledger, params *params.Params, clock xenv.Clock) *Engine {
	sctx := solidity.NewContext(addr, state)
	return &Engine{
		addr:   addr,
		ledger: ledger,
		params: params,
		clock:  clock,

		validatorService:    validators.New(sctx),
		taskService:         tasks.New(sctx),
		commitmentService:   commitments.New(sctx),
		solutionService:     solutions.New(sctx),
		contestationService: contestations.New(sctx),

		initialized: solidity.NewBool(sctx, slotInitialized),
		accruedFees: solidity.NewUint256(sctx, slotAccruedFees),
		totalHeld:   solidity.NewUint256(sctx, slotTotalHeld),
		startTime:   solidity.NewUint256(sctx, slotStartTime),
		version:     solidity.NewUint256(sctx, slotVersion),
		paused:      solidity.NewBool(sctx, slotPaused),
		owner:       solidity.NewAddress(sctx, slotOwner),
		treasury:    solidity.NewAddress(sctx, slotTreasury),
		pauser:      solidity.NewAddress(sctx, slotPauser),
	}
}

// Address returns the engine account.
func (e *Engine) Address() compute.Address {
	return e.addr
}

// Events returns the events emitted so far.
func (e *Engine) Events() []*Event {
	return e.events
}

func (e *Engine) AccruedFees() (*big.Int, error)     { return e.accruedFees.Get() }
func (e *Engine) TotalHeld() (*big.Int, error)       { return e.totalHeld.Get() }
func (e *Engine) Paused() (bool, error)              { return e.paused.Get() }
func (e *Engine) Owner() (compute.Address, error)    { return e.owner.Get() }
func (e *Engine) Treasury() (compute.Address, error) { return e.treasury.Get() }
func (e *Engine) Pauser() (compute.Address, error)   { return e.pauser.Get() }

func (e *Engine) StartTime() (uint64, error) {
	v, err := e.startTime.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func (e *Engine) Version() (uint64, error) {
	v, err := e.version.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// Params returns the current protocol params.
func (e *Engine) Params() (*params.Values, error) {
	return e.params.Load()
}

// PseudoTotalSupply returns the supply that has left the engine.
func (e *Engine) PseudoTotalSupply() (*big.Int, error) {
	balance, err := e.ledger.BalanceOf(e.addr)
	if err != nil {
		return nil, errors.Wrap(err, "engine balance")
	}
	held, err := e.totalHeld.Get()
	if err != nil {
		return nil, err
	}
	return reward.PseudoTotalSupply(balance, held), nil
}

// MinimumStake returns the stake a validator needs to be eligible.
func (e *Engine) MinimumStake() (*big.Int, error) {
	ts, err := e.PseudoTotalSupply()
	if err != nil {
		return nil, err
	}
	pct, err := e.params.Get(compute.KeyValidatorMinimumPercentage)
	if err != nil {
		return nil, err
	}
	return validators.MinimumStake(ts, pct), nil
}

// SlashAmount returns the bond a contestation vote freezes.
func (e *Engine) SlashAmount() (*big.Int, error) {
	ts, err := e.PseudoTotalSupply()
	if err != nil {
		return nil, err
	}
	pct, err := e.params.Get(compute.KeySlashAmountPercentage)
	if err != nil {
		return nil, err
	}
	return validators.SlashAmount(ts, pct), nil
}

// CurrentReward returns the emission of one solution at the current time.
func (e *Engine) CurrentReward() (*big.Int, error) {
	start, err := e.StartTime()
	if err != nil {
		return nil, err
	}
	var elapsed uint64
	if now := e.clock.Now(); now > start {
		elapsed = now - start
	}
	ts, err := e.PseudoTotalSupply()
	if err != nil {
		return nil, err
	}
	return reward.Reward(elapsed, ts), nil
}

// IsEligible reports whether validator may submit solutions and contest.
func (e *Engine) IsEligible(validator compute.Address) (bool, error) {
	minStake, err := e.MinimumStake()
	if err != nil {
		return false, err
	}
	return e.validatorService.IsEligible(validator, minStake)
}

func (e *Engine) Validator(addr compute.Address) (*validators.Validator, error) {
	return e.validatorService.Get(addr)
}

func (e *Engine) PendingWithdrawalAmount(addr compute.Address) (*big.Int, error) {
	return e.validatorService.PendingAmount(addr)
}

func (e *Engine) Withdrawal(addr compute.Address, id uint64) (*validators.Withdrawal, error) {
	return e.validatorService.GetWithdrawal(addr, id)
}

func (e *Engine) Model(id compute.Bytes32) (*tasks.Model, error) {
	return e.taskService.GetModel(id)
}

func (e *Engine) Task(id compute.Bytes32) (*tasks.Task, error) {
	return e.taskService.GetTask(id)
}

func (e *Engine) LastTaskID() (compute.Bytes32, error) {
	return e.taskService.LastTaskID()
}

func (e *Engine) CommitmentHeight(commitment compute.Bytes32) (uint64, error) {
	return e.commitmentService.Height(commitment)
}

func (e *Engine) Solution(task compute.Bytes32) (*solutions.Solution, error) {
	return e.solutionService.Get(task)
}

func (e *Engine) LastContestationLoss(addr compute.Address) (uint64, error) {
	return e.solutionService.LastLoss(addr)
}

func (e *Engine) Contestation(task compute.Bytes32) (*contestations.Contestation, error) {
	return e.contestationService.Get(task)
}

// ContestationVotes returns the voters supporting and opposing the challenger.
func (e *Engine) ContestationVotes(task compute.Bytes32) (yeas []compute.Address, nays []compute.Address, err error) {
	y, n, err := e.contestationService.Counts(task)
	if err != nil {
		return nil, nil, err
	}
	load := func(yea bool, count uint64) ([]compute.Address, error) {
		out := make([]compute.Address, 0, count)
		for i := range count {
			v, err := e.contestationService.Voter(task, yea, i)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	if yeas, err = load(true, y); err != nil {
		return nil, nil, err
	}
	if nays, err = load(false, n); err != nil {
		return nil, nil, err
	}
	return yeas, nays, nil
}

func (e *Engine) requireNotPaused() error {
	paused, err := e.paused.Get()
	if err != nil {
		return err
	}
	if paused {
		return reverts.ErrPaused
	}
	return nil
}

func (e *Engine) requireEligible(validator compute.Address) error {
	ok, err := e.IsEligible(validator)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.ErrNotEligible
	}
	return nil
}

// pull moves amount from owner into custody. It requires an allowance for the engine.
func (e *Engine) pull(from compute.Address, amount *big.Int) error {
	if err := ledgerError(e.ledger.TransferFrom(e.addr, from, e.addr, amount)); err != nil {
		return err
	}
	return e.totalHeld.Add(amount)
}

// pay moves amount out of custody.
func (e *Engine) pay(to compute.Address, amount *big.Int) error {
	if err := e.subHeld(amount); err != nil {
		return err
	}
	return e.send(to, amount)
}

// send transfers out of the engine balance without touching custody bookkeeping.
func (e *Engine) send(to compute.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	return ledgerError(e.ledger.Transfer(e.addr, to, amount))
}

func (e *Engine) subHeld(amount *big.Int) error {
	if err := e.totalHeld.Sub(amount); err != nil {
		return errors.Wrap(err, "total held")
	}
	return nil
}

func ledgerError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, token.ErrInsufficientBalance), errors.Is(err, token.ErrInsufficientAllowance):
		return errors.WithMessage(reverts.ErrInsufficientBalance, err.Error())
	default:
		return errors.Wrap(err, "ledger")
	}
}

func percentOf(amount, pct *big.Int) *big.Int {
	v := new(big.Int).Mul(amount, pct)
	return v.Quo(v, compute.Unit)
}
