// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"math/big"

	"github.com/vechain/compute/builtin/engine/commitments"
	"github.com/vechain/compute/builtin/engine/reverts"
	"github.com/vechain/compute/builtin/engine/tasks"
	"github.com/vechain/compute/cid"
	"github.com/vechain/compute/compute"
)

// RegisterModel registers the model template with a fee floor, paying fees to payout.
func (e *Engine) RegisterModel(caller, payout compute.Address, fee *big.Int, template []byte) (compute.Bytes32, error) {
	if err := e.requireNotPaused(); err != nil {
		return compute.Bytes32{}, err
	}
	if fee.Sign() < 0 {
		return compute.Bytes32{}, reverts.ErrInvalidAmount
	}
	m := &tasks.Model{
		Fee:  new(big.Int).Set(fee),
		Addr: payout,
		Rate: new(big.Int),
		Cid:  cid.Sum(template),
	}
	id, err := e.taskService.RegisterModel(caller, m)
	if err != nil {
		return compute.Bytes32{}, err
	}
	e.emit(EventModelRegistered, id, caller, fee, "payout", payout.String())
	logger.Debug("model registered", "id", id, "payout", payout)
	return id, nil
}

// SubmitTask requests one unit of work on model, escrowing fee from caller.
func (e *Engine) SubmitTask(caller compute.Address, version uint64, owner compute.Address, model compute.Bytes32, fee *big.Int, input []byte) (compute.Bytes32, error) {
	ids, err := e.submitTasks(caller, version, owner, model, fee, input, 1)
	if err != nil {
		return compute.Bytes32{}, err
	}
	return ids[0], nil
}

// BulkSubmitTask requests n identical units of work, escrowing fee·n.
func (e *Engine) BulkSubmitTask(caller compute.Address, version uint64, owner compute.Address, model compute.Bytes32, fee *big.Int, input []byte, n uint64) ([]compute.Bytes32, error) {
	return e.submitTasks(caller, version, owner, model, fee, input, n)
}

func (e *Engine) submitTasks(caller compute.Address, version uint64, owner compute.Address, model compute.Bytes32, fee *big.Int, input []byte, n uint64) ([]compute.Bytes32, error) {
	if err := e.requireNotPaused(); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, reverts.ErrInvalidCount
	}
	if fee.Sign() < 0 {
		return nil, reverts.ErrInvalidAmount
	}
	m, err := e.taskService.GetModel(model)
	if err != nil {
		return nil, err
	}
	if fee.Cmp(m.Fee) < 0 {
		return nil, reverts.ErrInsufficientFee
	}

	content := cid.Sum(input)
	now := e.clock.Now()
	ids := make([]compute.Bytes32, 0, n)
	for range n {
		id, err := e.taskService.AddTask(caller, &tasks.Task{
			Model:     model,
			Fee:       new(big.Int).Set(fee),
			Owner:     owner,
			Blocktime: now,
			Version:   version,
			Cid:       content,
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		e.emit(EventTaskSubmitted, id, owner, fee, "model", model.String(), "sender", caller.String())
	}

	total := new(big.Int).Mul(fee, new(big.Int).SetUint64(n))
	if err := e.pull(caller, total); err != nil {
		return nil, err
	}
	logger.Debug("tasks submitted", "count", n, "model", model, "fee", fee)
	return ids, nil
}

// SignalCommitment registers a blinded solution commitment at the current height.
func (e *Engine) SignalCommitment(caller compute.Address, commitment compute.Bytes32) error {
	if err := e.requireNotPaused(); err != nil {
		return err
	}
	height := e.clock.Height()
	if err := e.commitmentService.Signal(commitment, height); err != nil {
		return err
	}
	e.emit(EventSignalCommitment, commitment, caller, nil, "height", u64(height))
	return nil
}

// GenerateCommitment returns the commitment of validator to the solution content of task.
func GenerateCommitment(validator compute.Address, task compute.Bytes32, content []byte) compute.Bytes32 {
	return commitments.Generate(validator, task, content)
}
