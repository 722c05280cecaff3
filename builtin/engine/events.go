// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"math/big"
	"strconv"

	"github.com/vechain/compute/compute"
)

// Event names.
const (
	EventModelRegistered            = "ModelRegistered"
	EventSolutionMineableRateChange = "SolutionMineableRateChange"
	EventTaskSubmitted              = "TaskSubmitted"
	EventSignalCommitment           = "SignalCommitment"
	EventSolutionSubmitted          = "SolutionSubmitted"
	EventSolutionClaimed            = "SolutionClaimed"
	EventFeesPaid                   = "FeesPaid"
	EventRewardsPaid                = "RewardsPaid"
	EventContestationSubmitted      = "ContestationSubmitted"
	EventContestationVote           = "ContestationVote"
	EventContestationVoteFinish     = "ContestationVoteFinish"
	EventValidatorDeposit           = "ValidatorDeposit"
	EventValidatorWithdrawInitiated = "ValidatorWithdrawInitiated"
	EventValidatorWithdrawCancelled = "ValidatorWithdrawCancelled"
	EventValidatorWithdraw          = "ValidatorWithdraw"
	EventTreasuryFeesWithdrawn      = "TreasuryFeesWithdrawn"
	EventOwnershipTransferred       = "OwnershipTransferred"
	EventTreasuryTransferred        = "TreasuryTransferred"
	EventPauserTransferred          = "PauserTransferred"
	EventPausedChanged              = "PausedChanged"
	EventVersionChanged             = "VersionChanged"
	EventStartBlockTimeChanged      = "StartBlockTimeChanged"
)

// Event is a record of something an operation did.
// Ref is the entity the event is about: a model, task or commitment id.
type Event struct {
	Name   string
	Ref    compute.Bytes32
	Actor  compute.Address
	Amount *big.Int
	Attrs  map[string]string
}

func (e *Engine) emit(name string, ref compute.Bytes32, actor compute.Address, amount *big.Int, attrs ...string) {
	ev := &Event{
		Name:   name,
		Ref:    ref,
		Actor:  actor,
		Amount: amount,
	}
	if len(attrs) > 0 {
		ev.Attrs = make(map[string]string, len(attrs)/2)
		for i := 0; i+1 < len(attrs); i += 2 {
			ev.Attrs[attrs[i]] = attrs[i+1]
		}
	}
	if ev.Amount == nil {
		ev.Amount = new(big.Int)
	}
	e.events = append(e.events, ev)
}

func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}
