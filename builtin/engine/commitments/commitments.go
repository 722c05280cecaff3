// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package commitments stores blinded solution commitments and the height they were signalled at.
package commitments

import (
	"github.com/pkg/errors"

	"github.com/vechain/compute/builtin/engine/reverts"
	"github.com/vechain/compute/builtin/solidity"
	"github.com/vechain/compute/compute"
)

var slotCommitments = compute.BytesToBytes32([]byte("commitments"))

// Generate returns the commitment of validator to the solution cid of task.
func Generate(validator compute.Address, task compute.Bytes32, cid []byte) compute.Bytes32 {
	return compute.Keccak256(validator.Bytes(), task.Bytes(), cid)
}

type Service struct {
	heights *solidity.Mapping[compute.Bytes32, uint64]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		heights: solidity.NewMapping[compute.Bytes32, uint64](sctx, slotCommitments),
	}
}

// Height returns the height commitment was signalled at, 0 if never.
func (s *Service) Height(commitment compute.Bytes32) (uint64, error) {
	h, err := s.heights.Get(commitment)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get commitment")
	}
	return h, nil
}

// Signal registers commitment at height. A commitment is write-once.
func (s *Service) Signal(commitment compute.Bytes32, height uint64) error {
	h, err := s.Height(commitment)
	if err != nil {
		return err
	}
	if h != 0 {
		return reverts.ErrCommitmentExists
	}
	if err := s.heights.Set(commitment, height); err != nil {
		return errors.Wrap(err, "failed to set commitment")
	}
	return nil
}

// Verify checks that commitment was signalled strictly before height.
func (s *Service) Verify(commitment compute.Bytes32, height uint64) error {
	h, err := s.Height(commitment)
	if err != nil {
		return err
	}
	if h == 0 {
		return reverts.ErrCommitmentNotFound
	}
	if h >= height {
		return reverts.ErrCommitmentTooRecent
	}
	return nil
}
