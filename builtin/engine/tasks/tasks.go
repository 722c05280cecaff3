// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tasks is the append-only registry of models and tasks.
package tasks

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/compute/builtin/engine/reverts"
	"github.com/vechain/compute/builtin/solidity"
	"github.com/vechain/compute/compute"
)

var (
	slotModels     = compute.BytesToBytes32([]byte("models"))
	slotTasks      = compute.BytesToBytes32([]byte("tasks"))
	slotLastTaskID = compute.BytesToBytes32([]byte("last-task-id"))
)

// Model is a registered model template.
type Model struct {
	Fee  *big.Int
	Addr compute.Address // payout address
	Rate *big.Int        // mining rate, 1e18 is 100%
	Cid  []byte
}

func (m *Model) Exists() bool {
	return !m.Addr.IsZero()
}

// Task is a unit of requested work.
type Task struct {
	Model     compute.Bytes32
	Fee       *big.Int
	Owner     compute.Address
	Blocktime uint64
	Version   uint64
	Cid       []byte
}

func (t *Task) Exists() bool {
	return !t.Owner.IsZero()
}

// ModelID returns the id of a model registered by registrant.
func ModelID(registrant, payout compute.Address, fee *big.Int, cid []byte) compute.Bytes32 {
	return compute.Keccak256(registrant.Bytes(), payout.Bytes(), math.U256Bytes(new(big.Int).Set(fee)), cid)
}

// TaskID returns the id of a task chained to prev.
func TaskID(submitter compute.Address, prev, model compute.Bytes32, fee *big.Int, cid []byte) compute.Bytes32 {
	return compute.Keccak256(submitter.Bytes(), prev.Bytes(), model.Bytes(), math.U256Bytes(new(big.Int).Set(fee)), cid)
}

type Service struct {
	models     *solidity.Mapping[compute.Bytes32, *Model]
	tasks      *solidity.Mapping[compute.Bytes32, *Task]
	lastTaskID *solidity.Bytes32
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		models:     solidity.NewMapping[compute.Bytes32, *Model](sctx, slotModels),
		tasks:      solidity.NewMapping[compute.Bytes32, *Task](sctx, slotTasks),
		lastTaskID: solidity.NewBytes32(sctx, slotLastTaskID),
	}
}

// GetModel returns the model, failing with InvalidState if it is not registered.
func (s *Service) GetModel(id compute.Bytes32) (*Model, error) {
	m, err := s.models.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get model")
	}
	if !m.Exists() {
		return nil, reverts.ErrModelNotFound
	}
	normalizeModel(m)
	return m, nil
}

// RegisterModel stores a new model under its id.
func (s *Service) RegisterModel(registrant compute.Address, m *Model) (compute.Bytes32, error) {
	if m.Addr.IsZero() {
		return compute.Bytes32{}, reverts.ErrZeroAddress
	}
	normalizeModel(m)
	id := ModelID(registrant, m.Addr, m.Fee, m.Cid)
	existing, err := s.models.Get(id)
	if err != nil {
		return compute.Bytes32{}, errors.Wrap(err, "failed to get model")
	}
	if existing.Exists() {
		return compute.Bytes32{}, reverts.ErrModelExists
	}
	if err := s.models.Set(id, m); err != nil {
		return compute.Bytes32{}, errors.Wrap(err, "failed to set model")
	}
	return id, nil
}

// SetRate adjusts the mining rate of a registered model.
func (s *Service) SetRate(id compute.Bytes32, rate *big.Int) error {
	m, err := s.GetModel(id)
	if err != nil {
		return err
	}
	m.Rate = rate
	if err := s.models.Set(id, m); err != nil {
		return errors.Wrap(err, "failed to set model")
	}
	return nil
}

// GetTask returns the task, failing with InvalidState if it does not exist.
func (s *Service) GetTask(id compute.Bytes32) (*Task, error) {
	t, err := s.tasks.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get task")
	}
	if !t.Exists() {
		return nil, reverts.ErrTaskNotFound
	}
	if t.Fee == nil {
		t.Fee = new(big.Int)
	}
	return t, nil
}

// AddTask chains a new task to the last task id and stores it.
func (s *Service) AddTask(submitter compute.Address, t *Task) (compute.Bytes32, error) {
	if t.Owner.IsZero() {
		return compute.Bytes32{}, reverts.ErrZeroAddress
	}
	prev, err := s.lastTaskID.Get()
	if err != nil {
		return compute.Bytes32{}, errors.Wrap(err, "failed to get last task id")
	}
	id := TaskID(submitter, prev, t.Model, t.Fee, t.Cid)
	if err := s.tasks.Set(id, t); err != nil {
		return compute.Bytes32{}, errors.Wrap(err, "failed to set task")
	}
	s.lastTaskID.Set(id)
	return id, nil
}

// LastTaskID returns the chain tip.
func (s *Service) LastTaskID() (compute.Bytes32, error) {
	return s.lastTaskID.Get()
}

func normalizeModel(m *Model) {
	if m.Fee == nil {
		m.Fee = new(big.Int)
	}
	if m.Rate == nil {
		m.Rate = new(big.Int)
	}
}
