// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package contestations stores disputes over solutions and their votes.
package contestations

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/compute/builtin/engine/reverts"
	"github.com/vechain/compute/builtin/solidity"
	"github.com/vechain/compute/compute"
)

var (
	slotContestations = compute.BytesToBytes32([]byte("contestations"))
	slotVoted         = compute.BytesToBytes32([]byte("contestation-voted"))
	slotYeas          = compute.BytesToBytes32([]byte("contestation-yeas"))
	slotNays          = compute.BytesToBytes32([]byte("contestation-nays"))
)

// Contestation is a dispute opened by Validator against the solution of a task.
// SlashAmount is frozen when the dispute opens.
type Contestation struct {
	Validator        compute.Address
	Blocktime        uint64
	FinishStartIndex uint64
	SlashAmount      *big.Int
}

func (c *Contestation) Exists() bool {
	return !c.Validator.IsZero()
}

// Timing holds the params that bound a vote.
type Timing struct {
	VotePeriod    uint64
	VoteExtension uint64
	MaxStakeSince uint64
}

// VoteStatus tells whether a validator can vote on a contestation, and why not.
type VoteStatus uint8

const (
	VoteAllowed VoteStatus = iota
	VoteNoContestation
	VotePeriodEnded
	VoteAlreadyVoted
	VoteNeverStaked
	VoteStakeCorrupt
	VoteStakedTooRecently
)

func (s VoteStatus) String() string {
	switch s {
	case VoteAllowed:
		return "allowed"
	case VoteNoContestation:
		return "no contestation"
	case VotePeriodEnded:
		return "voting period ended"
	case VoteAlreadyVoted:
		return "already voted"
	case VoteNeverStaked:
		return "never staked"
	case VoteStakeCorrupt:
		return "stake timestamp corrupt"
	case VoteStakedTooRecently:
		return "staked too recently"
	default:
		return "unknown"
	}
}

type Service struct {
	sctx          *solidity.Context
	contestations *solidity.Mapping[compute.Bytes32, *Contestation]
	voted         *solidity.Mapping[compute.Bytes32, bool]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		sctx:          sctx,
		contestations: solidity.NewMapping[compute.Bytes32, *Contestation](sctx, slotContestations),
		voted:         solidity.NewMapping[compute.Bytes32, bool](sctx, slotVoted),
	}
}

func (s *Service) votes(task compute.Bytes32, yea bool) *solidity.Array[compute.Address] {
	slot := slotNays
	if yea {
		slot = slotYeas
	}
	return solidity.NewArray[compute.Address](s.sctx, compute.Blake2b(slot.Bytes(), task.Bytes()))
}

func votedKey(task compute.Bytes32, voter compute.Address) compute.Bytes32 {
	return compute.Blake2b(task.Bytes(), voter.Bytes())
}

func (s *Service) get(task compute.Bytes32) (*Contestation, error) {
	c, err := s.contestations.Get(task)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get contestation")
	}
	if c.SlashAmount == nil {
		c.SlashAmount = new(big.Int)
	}
	return c, nil
}

// Get returns the contestation of task, failing with InvalidState if there is none.
func (s *Service) Get(task compute.Bytes32) (*Contestation, error) {
	c, err := s.get(task)
	if err != nil {
		return nil, err
	}
	if !c.Exists() {
		return nil, reverts.ErrContestationNotFound
	}
	return c, nil
}

// Exists reports whether task has been contested.
func (s *Service) Exists(task compute.Bytes32) (bool, error) {
	c, err := s.get(task)
	if err != nil {
		return false, err
	}
	return c.Exists(), nil
}

// Open records a new contestation. A task can be contested once.
func (s *Service) Open(task compute.Bytes32, c *Contestation) error {
	exists, err := s.Exists(task)
	if err != nil {
		return err
	}
	if exists {
		return reverts.ErrContestationExists
	}
	return s.set(task, c)
}

func (s *Service) set(task compute.Bytes32, c *Contestation) error {
	if err := s.contestations.Set(task, c); err != nil {
		return errors.Wrap(err, "failed to set contestation")
	}
	return nil
}

// SetFinishStartIndex persists the settlement cursor.
func (s *Service) SetFinishStartIndex(task compute.Bytes32, index uint64) error {
	c, err := s.Get(task)
	if err != nil {
		return err
	}
	c.FinishStartIndex = index
	return s.set(task, c)
}

// HasVoted reports whether voter has voted on task.
func (s *Service) HasVoted(task compute.Bytes32, voter compute.Address) (bool, error) {
	return s.voted.Get(votedKey(task, voter))
}

// AddVote appends voter to the yea (supporting the challenger) or nay list.
func (s *Service) AddVote(task compute.Bytes32, voter compute.Address, yea bool) error {
	if err := s.voted.Set(votedKey(task, voter), true); err != nil {
		return errors.Wrap(err, "failed to set voted")
	}
	if _, err := s.votes(task, yea).Push(voter); err != nil {
		return errors.Wrap(err, "failed to push vote")
	}
	return nil
}

// Counts returns the number of yea and nay votes.
func (s *Service) Counts(task compute.Bytes32) (yeas uint64, nays uint64, err error) {
	if yeas, err = s.votes(task, true).Len(); err != nil {
		return 0, 0, err
	}
	if nays, err = s.votes(task, false).Len(); err != nil {
		return 0, 0, err
	}
	return yeas, nays, nil
}

// Voter returns the i-th voter of a side.
func (s *Service) Voter(task compute.Bytes32, yea bool, i uint64) (compute.Address, error) {
	return s.votes(task, yea).Get(i)
}

// VotingPeriodEnded reports whether now is past the vote window, which every vote extends.
func (s *Service) VotingPeriodEnded(task compute.Bytes32, now uint64, timing Timing) (bool, error) {
	c, err := s.Get(task)
	if err != nil {
		return false, err
	}
	yeas, nays, err := s.Counts(task)
	if err != nil {
		return false, err
	}
	return now > c.Blocktime+timing.VotePeriod+(yeas+nays)*timing.VoteExtension, nil
}

// CanVote checks whether voter, whose stake became eligible at since, may vote on task.
func (s *Service) CanVote(task compute.Bytes32, voter compute.Address, since, now uint64, timing Timing) (VoteStatus, error) {
	c, err := s.get(task)
	if err != nil {
		return 0, err
	}
	if !c.Exists() {
		return VoteNoContestation, nil
	}
	ended, err := s.VotingPeriodEnded(task, now, timing)
	if err != nil {
		return 0, err
	}
	if ended {
		return VotePeriodEnded, nil
	}
	voted, err := s.HasVoted(task, voter)
	if err != nil {
		return 0, err
	}
	if voted {
		return VoteAlreadyVoted, nil
	}
	if since == 0 {
		return VoteNeverStaked, nil
	}
	if since > now {
		return VoteStakeCorrupt, nil
	}
	if since+timing.MaxStakeSince > c.Blocktime {
		return VoteStakedTooRecently, nil
	}
	return VoteAllowed, nil
}
