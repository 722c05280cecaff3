// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"math/big"
	"strconv"

	"github.com/vechain/compute/builtin/engine/reverts"
	"github.com/vechain/compute/builtin/params"
	"github.com/vechain/compute/compute"
)

// Genesis is the initial configuration of the engine.
type Genesis struct {
	Owner     compute.Address
	Treasury  compute.Address
	Pauser    compute.Address
	StartTime uint64
	Version   uint64
	Params    *params.Values
}

// Initialize writes the genesis roles and params. It can run once.
func (e *Engine) Initialize(g *Genesis) error {
	done, err := e.initialized.Get()
	if err != nil {
		return err
	}
	if done {
		return reverts.ErrAlreadyInitialized
	}
	if g.Owner.IsZero() || g.Treasury.IsZero() {
		return reverts.ErrZeroAddress
	}
	pauser := g.Pauser
	if pauser.IsZero() {
		pauser = g.Owner
	}
	values := g.Params
	if values == nil {
		values = params.DefaultValues()
	}

	e.initialized.Set(true)
	e.owner.Set(g.Owner)
	e.treasury.Set(g.Treasury)
	e.pauser.Set(pauser)
	e.startTime.Set(new(big.Int).SetUint64(g.StartTime))
	e.version.Set(new(big.Int).SetUint64(g.Version))
	e.params.Store(values)

	logger.Info("engine initialized", "owner", g.Owner, "treasury", g.Treasury, "start", g.StartTime)
	return nil
}

func (e *Engine) requireOwner(caller compute.Address) error {
	owner, err := e.owner.Get()
	if err != nil {
		return err
	}
	if caller != owner {
		return reverts.ErrNotOwner
	}
	return nil
}

// TransferOwnership hands the owner role to owner.
func (e *Engine) TransferOwnership(caller, owner compute.Address) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if owner.IsZero() {
		return reverts.ErrZeroAddress
	}
	e.owner.Set(owner)
	e.emit(EventOwnershipTransferred, compute.Bytes32{}, owner, nil, "previous", caller.String())
	return nil
}

// TransferTreasury changes where treasury fees and rewards are paid.
func (e *Engine) TransferTreasury(caller, treasury compute.Address) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if treasury.IsZero() {
		return reverts.ErrZeroAddress
	}
	e.treasury.Set(treasury)
	e.emit(EventTreasuryTransferred, compute.Bytes32{}, treasury, nil)
	return nil
}

// TransferPauser hands the pauser role to pauser.
func (e *Engine) TransferPauser(caller, pauser compute.Address) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.pauser.Set(pauser)
	e.emit(EventPauserTransferred, compute.Bytes32{}, pauser, nil)
	return nil
}

// SetPaused toggles the pause flag. Only the pauser may call it.
func (e *Engine) SetPaused(caller compute.Address, paused bool) error {
	pauser, err := e.pauser.Get()
	if err != nil {
		return err
	}
	if caller != pauser {
		return reverts.ErrNotPauser
	}
	e.paused.Set(paused)
	e.emit(EventPausedChanged, compute.Bytes32{}, caller, nil, "paused", strconv.FormatBool(paused))
	logger.Info("pause changed", "paused", paused)
	return nil
}

// SetSolutionMineableRate sets the share of the reward a model's solutions mine.
func (e *Engine) SetSolutionMineableRate(caller compute.Address, model compute.Bytes32, rate *big.Int) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if rate.Sign() < 0 || rate.Cmp(compute.Unit) > 0 {
		return reverts.ErrInvalidRate
	}
	if err := e.taskService.SetRate(model, rate); err != nil {
		return err
	}
	e.emit(EventSolutionMineableRateChange, model, caller, rate)
	return nil
}

// SetVersion sets the protocol version marker.
func (e *Engine) SetVersion(caller compute.Address, version uint64) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.version.Set(new(big.Int).SetUint64(version))
	e.emit(EventVersionChanged, compute.Bytes32{}, caller, nil, "version", u64(version))
	return nil
}

// SetStartBlockTime moves the origin of the emission curve.
func (e *Engine) SetStartBlockTime(caller compute.Address, start uint64) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.startTime.Set(new(big.Int).SetUint64(start))
	e.emit(EventStartBlockTimeChanged, compute.Bytes32{}, caller, nil, "start", u64(start))
	return nil
}

// SetParams replaces the protocol params.
func (e *Engine) SetParams(caller compute.Address, values *params.Values) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.params.Store(values)
	return nil
}

// WithdrawAccruedFees pays the accrued treasury fees to the treasury. Anyone may call it.
func (e *Engine) WithdrawAccruedFees(caller compute.Address) error {
	if err := e.requireNotPaused(); err != nil {
		return err
	}
	fees, err := e.accruedFees.Get()
	if err != nil {
		return err
	}
	treasury, err := e.treasury.Get()
	if err != nil {
		return err
	}
	e.accruedFees.Set(new(big.Int))
	if err := e.pay(treasury, fees); err != nil {
		return err
	}
	e.emit(EventTreasuryFeesWithdrawn, compute.Bytes32{}, treasury, fees, "caller", caller.String())
	return nil
}
