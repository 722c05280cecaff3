// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/compute/builtin/solidity"
	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/state"
)

// Params binder of the protocol params account.
type Params struct {
	ctx *solidity.Context
}

func New(addr compute.Address, state *state.State) *Params {
	return &Params{solidity.NewContext(addr, state)}
}

// Get native way to get param.
func (p *Params) Get(key compute.Bytes32) (*big.Int, error) {
	return solidity.NewUint256(p.ctx, key).Get()
}

// Set native way to set param.
func (p *Params) Set(key compute.Bytes32, value *big.Int) {
	solidity.NewUint256(p.ctx, key).Set(value)
}

// Values is a decoded snapshot of all protocol params.
// Percentages are 18-decimal fractions, times are seconds.
type Values struct {
	ValidatorMinimumPercentage *big.Int
	SlashAmountPercentage      *big.Int
	SolutionFeePercentage      *big.Int
	TreasuryRewardPercentage   *big.Int
	TaskOwnerRewardPercentage  *big.Int
	SolutionsStakeAmount       *big.Int

	MinClaimSolutionTime               uint64
	MinContestationVotePeriodTime      uint64
	ContestationVoteExtensionTime      uint64
	MaxContestationValidatorStakeSince uint64
	ExitValidatorMinUnlockTime         uint64
	SolutionRateLimit                  uint64
}

// DefaultValues returns the initial params.
func DefaultValues() *Values {
	return &Values{
		ValidatorMinimumPercentage: new(big.Int).Set(compute.InitialValidatorMinimumPercentage),
		SlashAmountPercentage:      new(big.Int).Set(compute.InitialSlashAmountPercentage),
		SolutionFeePercentage:      new(big.Int).Set(compute.InitialSolutionFeePercentage),
		TreasuryRewardPercentage:   new(big.Int).Set(compute.InitialTreasuryRewardPercentage),
		TaskOwnerRewardPercentage:  new(big.Int).Set(compute.InitialTaskOwnerRewardPercentage),
		SolutionsStakeAmount:       new(big.Int).Set(compute.InitialSolutionsStakeAmount),

		MinClaimSolutionTime:               compute.InitialMinClaimSolutionTime.Uint64(),
		MinContestationVotePeriodTime:      compute.InitialMinContestationVotePeriodTime.Uint64(),
		ContestationVoteExtensionTime:      compute.InitialContestationVoteExtensionTime.Uint64(),
		MaxContestationValidatorStakeSince: compute.InitialMaxContestationValidatorStakeSince.Uint64(),
		ExitValidatorMinUnlockTime:         compute.InitialExitValidatorMinUnlockTime.Uint64(),
		SolutionRateLimit:                  compute.InitialSolutionRateLimit.Uint64(),
	}
}

type bigField struct {
	key compute.Bytes32
	ptr **big.Int
}

type uintField struct {
	key compute.Bytes32
	ptr *uint64
}

func (v *Values) fields() ([]bigField, []uintField) {
	return []bigField{
			{compute.KeyValidatorMinimumPercentage, &v.ValidatorMinimumPercentage},
			{compute.KeySlashAmountPercentage, &v.SlashAmountPercentage},
			{compute.KeySolutionFeePercentage, &v.SolutionFeePercentage},
			{compute.KeyTreasuryRewardPercentage, &v.TreasuryRewardPercentage},
			{compute.KeyTaskOwnerRewardPercentage, &v.TaskOwnerRewardPercentage},
			{compute.KeySolutionsStakeAmount, &v.SolutionsStakeAmount},
		}, []uintField{
			{compute.KeyMinClaimSolutionTime, &v.MinClaimSolutionTime},
			{compute.KeyMinContestationVotePeriodTime, &v.MinContestationVotePeriodTime},
			{compute.KeyContestationVoteExtensionTime, &v.ContestationVoteExtensionTime},
			{compute.KeyMaxContestationValidatorStakeSince, &v.MaxContestationValidatorStakeSince},
			{compute.KeyExitValidatorMinUnlockTime, &v.ExitValidatorMinUnlockTime},
			{compute.KeySolutionRateLimit, &v.SolutionRateLimit},
		}
}

// Load reads all params.
func (p *Params) Load() (*Values, error) {
	var v Values
	bigs, uints := v.fields()
	for _, f := range bigs {
		val, err := p.Get(f.key)
		if err != nil {
			return nil, errors.WithMessagef(err, "load param %v", f.key)
		}
		*f.ptr = val
	}
	for _, f := range uints {
		val, err := p.Get(f.key)
		if err != nil {
			return nil, errors.WithMessagef(err, "load param %v", f.key)
		}
		if !val.IsUint64() {
			return nil, errors.Errorf("param %v overflows uint64", f.key)
		}
		*f.ptr = val.Uint64()
	}
	return &v, nil
}

// Store writes all params. Nil amounts are written as zero.
func (p *Params) Store(v *Values) {
	bigs, uints := v.fields()
	for _, f := range bigs {
		val := *f.ptr
		if val == nil {
			val = new(big.Int)
		}
		p.Set(f.key, val)
	}
	for _, f := range uints {
		p.Set(f.key, new(big.Int).SetUint64(*f.ptr))
	}
}
