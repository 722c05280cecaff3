// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the errors an engine operation aborts with.
// A revert leaves no trace in state: the executor discards every write of the
// failed operation.
package reverts

import (
	"errors"
)

// Kind classifies a revert so callers can decide whether to retry, top up or give up.
type Kind uint8

const (
	KindUnknown Kind = iota
	NotAuthorized
	InvalidState
	TimingViolation
	InsufficientBalance
	RateLimited
)

func (k Kind) String() string {
	switch k {
	case NotAuthorized:
		return "NotAuthorized"
	case InvalidState:
		return "InvalidState"
	case TimingViolation:
		return "TimingViolation"
	case InsufficientBalance:
		return "InsufficientBalance"
	case RateLimited:
		return "RateLimited"
	default:
		return "Unknown"
	}
}

type Error struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *Error {
	return &Error{
		kind:    kind,
		message: message,
	}
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Kind() Kind {
	return e.kind
}

// IsRevertErr reports whether err wraps a revert.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var re *Error
	return errors.As(e, &re)
}

// KindOf returns the kind of the revert wrapped by err, or KindUnknown.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.kind
	}
	return KindUnknown
}

var (
	// authorization
	ErrNotOwner         = New(NotAuthorized, "caller is not the owner")
	ErrNotPauser        = New(NotAuthorized, "caller is not the pauser")
	ErrNotEligible      = New(NotAuthorized, "validator is not eligible")
	ErrSelfContestation = New(NotAuthorized, "cannot contest own solution")
	ErrVoteNotAllowed   = New(NotAuthorized, "validator cannot vote")

	// state
	ErrPaused                  = New(InvalidState, "engine is paused")
	ErrAlreadyInitialized      = New(InvalidState, "engine already initialized")
	ErrZeroAddress             = New(InvalidState, "address must not be zero")
	ErrInvalidAmount           = New(InvalidState, "amount must be positive")
	ErrInvalidCount            = New(InvalidState, "count must be positive")
	ErrInvalidRate             = New(InvalidState, "rate must not exceed one")
	ErrModelExists             = New(InvalidState, "model already registered")
	ErrModelNotFound           = New(InvalidState, "model does not exist")
	ErrTaskNotFound            = New(InvalidState, "task does not exist")
	ErrCommitmentExists        = New(InvalidState, "commitment already registered")
	ErrCommitmentNotFound      = New(InvalidState, "commitment not registered")
	ErrSolutionExists          = New(InvalidState, "solution already submitted")
	ErrSolutionNotFound        = New(InvalidState, "solution does not exist")
	ErrSolutionClaimed         = New(InvalidState, "solution already claimed")
	ErrContestationExists      = New(InvalidState, "contestation already exists")
	ErrContestationNotFound    = New(InvalidState, "contestation does not exist")
	ErrContestationSettled     = New(InvalidState, "contestation already settled")
	ErrWithdrawalNotFound      = New(InvalidState, "withdrawal request does not exist")
	ErrMismatchedSolutionInput = New(InvalidState, "task and content lists differ in length")
	ErrAlreadyVoted            = New(InvalidState, "validator already voted")

	// timing
	ErrCommitmentTooRecent   = New(TimingViolation, "commitment must be registered in an earlier height")
	ErrClaimTooEarly         = New(TimingViolation, "claim timelock has not elapsed")
	ErrContestationCooldown  = New(TimingViolation, "validator is in contestation cooldown")
	ErrContestWindowClosed   = New(TimingViolation, "contestation window has closed")
	ErrVotingPeriodOpen      = New(TimingViolation, "voting period has not ended")
	ErrVotingPeriodEnded     = New(TimingViolation, "voting period has ended")
	ErrWithdrawalStillLocked = New(TimingViolation, "withdrawal still locked")

	// balance
	ErrInsufficientStake   = New(InsufficientBalance, "insufficient stake")
	ErrInsufficientBalance = New(InsufficientBalance, "insufficient balance")
	ErrInsufficientFee     = New(InsufficientBalance, "fee below model floor")

	// rate
	ErrRateLimited = New(RateLimited, "solution submitted too soon")
)
