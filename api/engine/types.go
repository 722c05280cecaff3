// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/compute/api/utils"
	"github.com/vechain/compute/builtin/engine/contestations"
	"github.com/vechain/compute/builtin/engine/solutions"
	"github.com/vechain/compute/builtin/engine/tasks"
	"github.com/vechain/compute/builtin/engine/validators"
	"github.com/vechain/compute/builtin/params"
	"github.com/vechain/compute/cid"
	"github.com/vechain/compute/compute"
)

type Status struct {
	Height            uint64                `json:"height"`
	Time              uint64                `json:"time"`
	Paused            bool                  `json:"paused"`
	Owner             compute.Address       `json:"owner"`
	Treasury          compute.Address       `json:"treasury"`
	Pauser            compute.Address       `json:"pauser"`
	Version           uint64                `json:"version"`
	StartTime         uint64                `json:"startTime"`
	TotalHeld         *math.HexOrDecimal256 `json:"totalHeld"`
	AccruedFees       *math.HexOrDecimal256 `json:"accruedFees"`
	PseudoTotalSupply *math.HexOrDecimal256 `json:"pseudoTotalSupply"`
	MinimumStake      *math.HexOrDecimal256 `json:"minimumStake"`
	SlashAmount       *math.HexOrDecimal256 `json:"slashAmount"`
	CurrentReward     *math.HexOrDecimal256 `json:"currentReward"`
	LastTaskID        compute.Bytes32       `json:"lastTaskID"`
}

// Params is the JSON form of params.Values. Omitted fields keep their current value on update.
type Params struct {
	ValidatorMinimumPercentage *math.HexOrDecimal256 `json:"validatorMinimumPercentage,omitempty"`
	SlashAmountPercentage      *math.HexOrDecimal256 `json:"slashAmountPercentage,omitempty"`
	SolutionFeePercentage      *math.HexOrDecimal256 `json:"solutionFeePercentage,omitempty"`
	TreasuryRewardPercentage   *math.HexOrDecimal256 `json:"treasuryRewardPercentage,omitempty"`
	TaskOwnerRewardPercentage  *math.HexOrDecimal256 `json:"taskOwnerRewardPercentage,omitempty"`
	SolutionsStakeAmount       *math.HexOrDecimal256 `json:"solutionsStakeAmount,omitempty"`

	MinClaimSolutionTime               *uint64 `json:"minClaimSolutionTime,omitempty"`
	MinContestationVotePeriodTime      *uint64 `json:"minContestationVotePeriodTime,omitempty"`
	ContestationVoteExtensionTime      *uint64 `json:"contestationVoteExtensionTime,omitempty"`
	MaxContestationValidatorStakeSince *uint64 `json:"maxContestationValidatorStakeSince,omitempty"`
	ExitValidatorMinUnlockTime         *uint64 `json:"exitValidatorMinUnlockTime,omitempty"`
	SolutionRateLimit                  *uint64 `json:"solutionRateLimit,omitempty"`
}

func convertParams(v *params.Values) *Params {
	u := func(x uint64) *uint64 { return &x }
	return &Params{
		ValidatorMinimumPercentage: utils.Amount(v.ValidatorMinimumPercentage),
		SlashAmountPercentage:      utils.Amount(v.SlashAmountPercentage),
		SolutionFeePercentage:      utils.Amount(v.SolutionFeePercentage),
		TreasuryRewardPercentage:   utils.Amount(v.TreasuryRewardPercentage),
		TaskOwnerRewardPercentage:  utils.Amount(v.TaskOwnerRewardPercentage),
		SolutionsStakeAmount:       utils.Amount(v.SolutionsStakeAmount),

		MinClaimSolutionTime:               u(v.MinClaimSolutionTime),
		MinContestationVotePeriodTime:      u(v.MinContestationVotePeriodTime),
		ContestationVoteExtensionTime:      u(v.ContestationVoteExtensionTime),
		MaxContestationValidatorStakeSince: u(v.MaxContestationValidatorStakeSince),
		ExitValidatorMinUnlockTime:         u(v.ExitValidatorMinUnlockTime),
		SolutionRateLimit:                  u(v.SolutionRateLimit),
	}
}

// apply overwrites the fields of v present in p.
func (p *Params) apply(v *params.Values) {
	bigs := []struct {
		src *math.HexOrDecimal256
		dst **big.Int
	}{
		{p.ValidatorMinimumPercentage, &v.ValidatorMinimumPercentage},
		{p.SlashAmountPercentage, &v.SlashAmountPercentage},
		{p.SolutionFeePercentage, &v.SolutionFeePercentage},
		{p.TreasuryRewardPercentage, &v.TreasuryRewardPercentage},
		{p.TaskOwnerRewardPercentage, &v.TaskOwnerRewardPercentage},
		{p.SolutionsStakeAmount, &v.SolutionsStakeAmount},
	}
	for _, f := range bigs {
		if f.src != nil {
			*f.dst = utils.BigInt(f.src)
		}
	}
	uints := []struct {
		src *uint64
		dst *uint64
	}{
		{p.MinClaimSolutionTime, &v.MinClaimSolutionTime},
		{p.MinContestationVotePeriodTime, &v.MinContestationVotePeriodTime},
		{p.ContestationVoteExtensionTime, &v.ContestationVoteExtensionTime},
		{p.MaxContestationValidatorStakeSince, &v.MaxContestationValidatorStakeSince},
		{p.ExitValidatorMinUnlockTime, &v.ExitValidatorMinUnlockTime},
		{p.SolutionRateLimit, &v.SolutionRateLimit},
	}
	for _, f := range uints {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
}

type Model struct {
	ID     compute.Bytes32       `json:"id"`
	Fee    *math.HexOrDecimal256 `json:"fee"`
	Payout compute.Address       `json:"payout"`
	Rate   *math.HexOrDecimal256 `json:"rate"`
	Cid    string                `json:"cid"`
}

func convertModel(id compute.Bytes32, m *tasks.Model) *Model {
	return &Model{
		ID:     id,
		Fee:    utils.Amount(m.Fee),
		Payout: m.Addr,
		Rate:   utils.Amount(m.Rate),
		Cid:    cidString(m.Cid),
	}
}

type Task struct {
	ID        compute.Bytes32       `json:"id"`
	Model     compute.Bytes32       `json:"model"`
	Fee       *math.HexOrDecimal256 `json:"fee"`
	Owner     compute.Address       `json:"owner"`
	Blocktime uint64                `json:"blocktime"`
	Version   uint64                `json:"version"`
	Cid       string                `json:"cid"`
}

func convertTask(id compute.Bytes32, t *tasks.Task) *Task {
	return &Task{
		ID:        id,
		Model:     t.Model,
		Fee:       utils.Amount(t.Fee),
		Owner:     t.Owner,
		Blocktime: t.Blocktime,
		Version:   t.Version,
		Cid:       cidString(t.Cid),
	}
}

type Solution struct {
	Task      compute.Bytes32 `json:"task"`
	Validator compute.Address `json:"validator"`
	Blocktime uint64          `json:"blocktime"`
	Claimed   bool            `json:"claimed"`
	Cid       string          `json:"cid"`
}

func convertSolution(task compute.Bytes32, s *solutions.Solution) *Solution {
	return &Solution{
		Task:      task,
		Validator: s.Validator,
		Blocktime: s.Blocktime,
		Claimed:   s.Claimed,
		Cid:       cidString(s.Cid),
	}
}

type Contestation struct {
	Task              compute.Bytes32       `json:"task"`
	Validator         compute.Address       `json:"validator"`
	Blocktime         uint64                `json:"blocktime"`
	FinishStartIndex  uint64                `json:"finishStartIndex"`
	SlashAmount       *math.HexOrDecimal256 `json:"slashAmount"`
	Yeas              []compute.Address     `json:"yeas"`
	Nays              []compute.Address     `json:"nays"`
	VotingPeriodEnded bool                  `json:"votingPeriodEnded"`
}

func convertContestation(task compute.Bytes32, c *contestations.Contestation, yeas, nays []compute.Address, ended bool) *Contestation {
	return &Contestation{
		Task:              task,
		Validator:         c.Validator,
		Blocktime:         c.Blocktime,
		FinishStartIndex:  c.FinishStartIndex,
		SlashAmount:       utils.Amount(c.SlashAmount),
		Yeas:              orEmpty(yeas),
		Nays:              orEmpty(nays),
		VotingPeriodEnded: ended,
	}
}

type Validator struct {
	Address           compute.Address       `json:"address"`
	Staked            *math.HexOrDecimal256 `json:"staked"`
	Since             uint64                `json:"since"`
	Eligible          bool                  `json:"eligible"`
	PendingWithdrawal *math.HexOrDecimal256 `json:"pendingWithdrawal"`
	LastLoss          uint64                `json:"lastContestationLoss"`
}

func convertValidator(v *validators.Validator, eligible bool, pending *big.Int, lastLoss uint64) *Validator {
	return &Validator{
		Address:           v.Address,
		Staked:            utils.Amount(v.Staked),
		Since:             v.Since,
		Eligible:          eligible,
		PendingWithdrawal: utils.Amount(pending),
		LastLoss:          lastLoss,
	}
}

type Withdrawal struct {
	ID         uint64                `json:"id"`
	UnlockTime uint64                `json:"unlockTime"`
	Amount     *math.HexOrDecimal256 `json:"amount"`
}

type VoterStatus struct {
	Status  string `json:"status"`
	CanVote bool   `json:"canVote"`
}

type RegisterModel struct {
	Caller   compute.Address       `json:"caller"`
	Payout   compute.Address       `json:"payout"`
	Fee      *math.HexOrDecimal256 `json:"fee"`
	Template hexutil.Bytes         `json:"template"`
}

type SetRate struct {
	Caller compute.Address       `json:"caller"`
	Rate   *math.HexOrDecimal256 `json:"rate"`
}

// SubmitTask requests Count tasks, one when Count is zero.
type SubmitTask struct {
	Caller  compute.Address       `json:"caller"`
	Version uint64                `json:"version"`
	Owner   compute.Address       `json:"owner"`
	Model   compute.Bytes32       `json:"model"`
	Fee     *math.HexOrDecimal256 `json:"fee"`
	Input   hexutil.Bytes         `json:"input"`
	Count   uint64                `json:"count,omitempty"`
}

type SignalCommitment struct {
	Caller     compute.Address `json:"caller"`
	Commitment compute.Bytes32 `json:"commitment"`
}

type GenerateCommitment struct {
	Validator compute.Address `json:"validator"`
	Task      compute.Bytes32 `json:"task"`
	Content   hexutil.Bytes   `json:"content"`
}

type CommitmentStatus struct {
	Commitment compute.Bytes32 `json:"commitment"`
	Height     uint64          `json:"height"`
}

// SubmitSolutions reveals one solution per task. More than one task is a bulk submission.
type SubmitSolutions struct {
	Caller   compute.Address   `json:"caller"`
	Tasks    []compute.Bytes32 `json:"tasks"`
	Contents []hexutil.Bytes   `json:"contents"`
}

type Caller struct {
	Caller compute.Address `json:"caller"`
}

type SubmitContestation struct {
	Caller compute.Address `json:"caller"`
	Task   compute.Bytes32 `json:"task"`
}

type Vote struct {
	Caller compute.Address `json:"caller"`
	Yea    bool            `json:"yea"`
}

type FinishVote struct {
	Caller compute.Address `json:"caller"`
	Batch  uint64          `json:"batch"`
}

type Deposit struct {
	Caller compute.Address       `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type CompleteWithdrawal struct {
	Caller compute.Address `json:"caller"`
	To     compute.Address `json:"to"`
}

// AdminAction carries the argument of one admin action; unrelated fields are ignored.
type AdminAction struct {
	Caller    compute.Address `json:"caller"`
	Address   compute.Address `json:"address,omitempty"`
	Paused    bool            `json:"paused,omitempty"`
	Version   uint64          `json:"version,omitempty"`
	StartTime uint64          `json:"startTime,omitempty"`
	Params    *Params         `json:"params,omitempty"`
}

func cidString(id []byte) string {
	if len(id) == 0 {
		return ""
	}
	s, err := cid.String(id)
	if err != nil {
		return hexutil.Encode(id)
	}
	return s
}

func orEmpty(addrs []compute.Address) []compute.Address {
	if addrs == nil {
		return []compute.Address{}
	}
	return addrs
}
