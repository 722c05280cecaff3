// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solutions records solutions and the per-validator submission bookkeeping.
package solutions

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/compute/builtin/engine/reverts"
	"github.com/vechain/compute/builtin/solidity"
	"github.com/vechain/compute/compute"
)

var (
	slotSolutions      = compute.BytesToBytes32([]byte("solutions"))
	slotLastSubmission = compute.BytesToBytes32([]byte("last-solution-submission"))
	slotLastLoss       = compute.BytesToBytes32([]byte("last-contestation-loss"))
)

// Solution is the revealed answer to a task. Claimed is a one-way latch.
// Stake is what was reserved at submission, and what settlement releases.
type Solution struct {
	Validator compute.Address
	Blocktime uint64
	Claimed   bool
	Cid       []byte
	Stake     *big.Int `rlp:"optional"`
}

// StakeAmount returns the reserved stake, zero if none was recorded.
func (s *Solution) StakeAmount() *big.Int {
	if s.Stake == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(s.Stake)
}

func (s *Solution) Exists() bool {
	return !s.Validator.IsZero()
}

type Service struct {
	solutions      *solidity.Mapping[compute.Bytes32, *Solution]
	lastSubmission *solidity.Mapping[compute.Address, uint64]
	lastLoss       *solidity.Mapping[compute.Address, uint64]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		solutions:      solidity.NewMapping[compute.Bytes32, *Solution](sctx, slotSolutions),
		lastSubmission: solidity.NewMapping[compute.Address, uint64](sctx, slotLastSubmission),
		lastLoss:       solidity.NewMapping[compute.Address, uint64](sctx, slotLastLoss),
	}
}

// Get returns the solution of task, failing with InvalidState if there is none.
func (s *Service) Get(task compute.Bytes32) (*Solution, error) {
	sol, err := s.solutions.Get(task)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get solution")
	}
	if !sol.Exists() {
		return nil, reverts.ErrSolutionNotFound
	}
	return sol, nil
}

// Add records the solution of task. A task has at most one solution.
func (s *Service) Add(task compute.Bytes32, sol *Solution) error {
	existing, err := s.solutions.Get(task)
	if err != nil {
		return errors.Wrap(err, "failed to get solution")
	}
	if existing.Exists() {
		return reverts.ErrSolutionExists
	}
	return s.set(task, sol)
}

// MarkClaimed latches the claimed flag.
func (s *Service) MarkClaimed(task compute.Bytes32) error {
	sol, err := s.Get(task)
	if err != nil {
		return err
	}
	if sol.Claimed {
		return reverts.ErrSolutionClaimed
	}
	sol.Claimed = true
	return s.set(task, sol)
}

func (s *Service) set(task compute.Bytes32, sol *Solution) error {
	if err := s.solutions.Set(task, sol); err != nil {
		return errors.Wrap(err, "failed to set solution")
	}
	return nil
}

// CheckRateLimit enforces now − last > rateLimit·n and stamps the submission.
func (s *Service) CheckRateLimit(validator compute.Address, now, rateLimit, n uint64) error {
	last, err := s.lastSubmission.Get(validator)
	if err != nil {
		return errors.Wrap(err, "failed to get last submission")
	}
	if now < last || now-last <= rateLimit*n {
		return reverts.ErrRateLimited
	}
	if err := s.lastSubmission.Set(validator, now); err != nil {
		return errors.Wrap(err, "failed to set last submission")
	}
	return nil
}

// LastSubmission returns when validator last submitted a solution.
func (s *Service) LastSubmission(validator compute.Address) (uint64, error) {
	return s.lastSubmission.Get(validator)
}

// LastLoss returns when validator last lost a contestation, 0 if never.
func (s *Service) LastLoss(validator compute.Address) (uint64, error) {
	return s.lastLoss.Get(validator)
}

// SetLastLoss stamps a lost contestation.
func (s *Service) SetLastLoss(validator compute.Address, now uint64) error {
	if err := s.lastLoss.Set(validator, now); err != nil {
		return errors.Wrap(err, "failed to set last contestation loss")
	}
	return nil
}

// InCooldown reports whether at is still within the cooldown following validator's last loss.
func (s *Service) InCooldown(validator compute.Address, at, cooldown uint64) (bool, error) {
	loss, err := s.LastLoss(validator)
	if err != nil {
		return false, err
	}
	return loss != 0 && at <= loss+cooldown, nil
}
