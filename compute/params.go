// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package compute

import (
	"math/big"
)

// Constants of the emission curve.
const (
	RewardHalfLife uint64 = 60 * 60 * 24 * 365 // one year, in seconds
	RewardCutoff   uint64 = RewardHalfLife * 100
)

var (
	// Unit is the fixed-point one (18 decimals).
	Unit = big.NewInt(1e18)
	// MaxSupply is the amount the engine account holds before any emission.
	MaxSupply = new(big.Int).Mul(big.NewInt(600_000), Unit)
	// BaseReward is paid per solution while the pseudo total supply is zero.
	BaseReward = new(big.Int).Set(Unit)
)

// Addresses of the builtin accounts.
var (
	EngineAddress = BytesToAddress([]byte("Engine"))
	TokenAddress  = BytesToAddress([]byte("Token"))
	ParamsAddress = BytesToAddress([]byte("Params"))
)

// Keys of protocol params.
var (
	KeyValidatorMinimumPercentage         = BytesToBytes32([]byte("validator-min-pct"))
	KeySlashAmountPercentage              = BytesToBytes32([]byte("slash-amount-pct"))
	KeySolutionFeePercentage              = BytesToBytes32([]byte("solution-fee-pct"))
	KeyTreasuryRewardPercentage           = BytesToBytes32([]byte("treasury-reward-pct"))
	KeyTaskOwnerRewardPercentage          = BytesToBytes32([]byte("task-owner-reward-pct"))
	KeySolutionsStakeAmount               = BytesToBytes32([]byte("solutions-stake"))
	KeyMinClaimSolutionTime               = BytesToBytes32([]byte("min-claim-time"))
	KeyMinContestationVotePeriodTime      = BytesToBytes32([]byte("min-vote-period"))
	KeyContestationVoteExtensionTime      = BytesToBytes32([]byte("vote-extension"))
	KeyMaxContestationValidatorStakeSince = BytesToBytes32([]byte("max-stake-since"))
	KeyExitValidatorMinUnlockTime         = BytesToBytes32([]byte("exit-unlock-time"))
	KeySolutionRateLimit                  = BytesToBytes32([]byte("solution-rate-limit"))
)

// Initial values of protocol params.
var (
	InitialValidatorMinimumPercentage         = big.NewInt(24e14) // 0.24%
	InitialSlashAmountPercentage              = big.NewInt(1e14)  // 0.01%
	InitialSolutionFeePercentage              = big.NewInt(1e17)  // 10%
	InitialTreasuryRewardPercentage           = big.NewInt(1e17)  // 10%
	InitialTaskOwnerRewardPercentage          = big.NewInt(1e17)  // 10%
	InitialSolutionsStakeAmount               = big.NewInt(1e15)  // 0.001 token
	InitialMinClaimSolutionTime               = big.NewInt(2000)
	InitialMinContestationVotePeriodTime      = big.NewInt(360)
	InitialContestationVoteExtensionTime      = big.NewInt(10)
	InitialMaxContestationValidatorStakeSince = big.NewInt(60 * 60 * 24)
	InitialExitValidatorMinUnlockTime         = big.NewInt(60 * 60 * 24)
	InitialSolutionRateLimit                  = big.NewInt(1)
)
