// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward implements the emission curve. All values are 18-decimal
// fixed point and every division truncates toward zero.
package reward

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vechain/compute/compute"
)

// ErrExp2Overflow is returned when the exponent exceeds the representable range.
var ErrExp2Overflow = errors.New("reward: exp2 input overflow")

var (
	unit        = compute.Unit
	unitSquared = new(big.Int).Mul(unit, unit)

	maxExp2Input, _ = new(big.Int).SetString("192000000000000000000", 10)
	// below this 2^x truncates to zero
	minExp2Input, _ = new(big.Int).SetString("-59794705707972522261", 10)

	// d at which 2^(-c) reaches the cap, i.e. 1 - log2(100)/50
	inflection       = big.NewInt(867122876204505506)
	cappedMultiplier = new(big.Int).Mul(big.NewInt(100), unit)

	// roots[j] = 2^(2^-(j+1)) in Q64.64
	roots [64]*uint256.Int
)

func init() {
	k := new(big.Int).Sqrt(new(big.Int).Lsh(big.NewInt(1), 129))
	for j := range roots {
		if j > 0 {
			k = new(big.Int).Sqrt(new(big.Int).Lsh(k, 64))
		}
		roots[j], _ = uint256.FromBig(k)
	}
}

// Exp2 computes 2^x for a signed fixed-point x.
// Negative exponents are computed as the reciprocal of 2^|x|.
func Exp2(x *big.Int) (*big.Int, error) {
	if x.Sign() >= 0 {
		return exp2(x)
	}
	if x.Cmp(minExp2Input) < 0 {
		return new(big.Int), nil
	}
	y, err := exp2(new(big.Int).Neg(x))
	if err != nil {
		return nil, err
	}
	return y.Quo(unitSquared, y), nil
}

func exp2(x *big.Int) (*big.Int, error) {
	if x.Cmp(maxExp2Input) >= 0 {
		return nil, ErrExp2Overflow
	}
	ipart, frac := new(big.Int).QuoRem(x, unit, new(big.Int))

	// fractional part as a 64 bit binary fraction
	bits := frac.Lsh(frac, 64).Quo(frac, unit).Uint64()

	r := new(uint256.Int).Lsh(uint256.NewInt(1), 64)
	for j := range roots {
		if bits&(1<<(63-j)) != 0 {
			r.Mul(r, roots[j])
			r.Rsh(r, 64)
		}
	}

	out := r.ToBig()
	out.Mul(out, unit)
	out.Lsh(out, uint(ipart.Uint64()))
	return out.Rsh(out, 64), nil
}

// TargetSupply returns M·(1 − 2^(−t/halfLife)), saturating at M past the cutoff.
func TargetSupply(t uint64) *big.Int {
	if t > compute.RewardCutoff {
		return new(big.Int).Set(compute.MaxSupply)
	}
	x := new(big.Int).SetUint64(t)
	x.Mul(x, unit).Quo(x, new(big.Int).SetUint64(compute.RewardHalfLife))

	// x <= 100e18 below the cutoff
	e, err := Exp2(x)
	if err != nil {
		panic(err)
	}
	decay := new(big.Int).Mul(compute.MaxSupply, unit)
	decay.Quo(decay, e)
	return decay.Sub(compute.MaxSupply, decay)
}

// DifficultyMultiplier scales the reward by how far ts deviates from the target supply.
// It is capped at 100 while ts lags far behind the target, and decays to zero as ts overshoots it.
func DifficultyMultiplier(t uint64, ts *big.Int) *big.Int {
	target := TargetSupply(t)
	if target.Sign() == 0 {
		return new(big.Int).Set(cappedMultiplier)
	}

	d := new(big.Int).Mul(ts, unit)
	d.Quo(d, target)
	if d.Cmp(inflection) < 0 {
		return new(big.Int).Set(cappedMultiplier)
	}

	// c = (1 + 100·(d−1) − 1) / 2
	c := new(big.Int).Sub(d, unit)
	c.Mul(c, big.NewInt(100)).Quo(c, big.NewInt(2))

	m, err := Exp2(c.Neg(c))
	if err != nil {
		return new(big.Int)
	}
	return m
}

// Reward returns the emission available for one solution at time t with pseudo total supply ts.
func Reward(t uint64, ts *big.Int) *big.Int {
	if ts.Sign() == 0 {
		return new(big.Int).Set(compute.BaseReward)
	}
	if ts.Cmp(compute.MaxSupply) >= 0 {
		return new(big.Int)
	}
	r := new(big.Int).Sub(compute.MaxSupply, ts)
	r.Mul(r, compute.BaseReward)
	r.Mul(r, DifficultyMultiplier(t, ts))
	r.Quo(r, compute.MaxSupply)
	return r.Quo(r, unit)
}

// PseudoTotalSupply derives the circulating supply from what the engine holds
// beyond the funds it merely custodies.
func PseudoTotalSupply(balance, totalHeld *big.Int) *big.Int {
	diff := new(big.Int).Sub(balance, totalHeld)
	if diff.Sign() < 0 {
		diff.SetInt64(0)
	}
	if diff.Cmp(compute.MaxSupply) >= 0 {
		return new(big.Int)
	}
	return diff.Sub(compute.MaxSupply, diff)
}

// Emission returns the share of reward mined at rate.
func Emission(reward, rate *big.Int) *big.Int {
	e := new(big.Int).Mul(reward, rate)
	return e.Quo(e, unit)
}
