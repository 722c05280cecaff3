// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the value ledger the engine moves funds through.
package token

import (
	"errors"
	"math/big"

	"github.com/vechain/compute/builtin/solidity"
	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/state"
)

var (
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrNegativeAmount        = errors.New("token: negative amount")
)

var (
	slotTotalSupply = compute.BytesToBytes32([]byte("total-supply"))
	slotBalances    = compute.BytesToBytes32([]byte("balances"))
	slotAllowances  = compute.BytesToBytes32([]byte("allowances"))
)

func allowanceKey(owner, spender compute.Address) compute.Bytes32 {
	return compute.Blake2b(owner.Bytes(), spender.Bytes())
}

// Token is an account-balance ledger with ERC20 style allowances.
type Token struct {
	totalSupply *solidity.Uint256
	balances    *solidity.Mapping[compute.Address, *big.Int]
	allowances  *solidity.Mapping[compute.Bytes32, *big.Int]
}

func New(addr compute.Address, state *state.State) *Token {
	ctx := solidity.NewContext(addr, state)
	return &Token{
		totalSupply: solidity.NewUint256(ctx, slotTotalSupply),
		balances:    solidity.NewMapping[compute.Address, *big.Int](ctx, slotBalances),
		allowances:  solidity.NewMapping[compute.Bytes32, *big.Int](ctx, slotAllowances),
	}
}

// TotalSupply returns the sum of all minted amounts.
func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

// BalanceOf returns the balance of addr.
func (t *Token) BalanceOf(addr compute.Address) (*big.Int, error) {
	bal, err := t.balances.Get(addr)
	if err != nil {
		return nil, err
	}
	if bal == nil {
		return new(big.Int), nil
	}
	return bal, nil
}

// Mint credits new supply to addr.
func (t *Token) Mint(to compute.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	if err := t.totalSupply.Add(amount); err != nil {
		return err
	}
	return t.add(to, amount)
}

// Transfer moves amount from one account to another.
func (t *Token) Transfer(from, to compute.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	if err := t.sub(from, amount); err != nil {
		return err
	}
	return t.add(to, amount)
}

// Approve sets the amount spender may move out of owner's balance.
func (t *Token) Approve(owner, spender compute.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	return t.allowances.Set(allowanceKey(owner, spender), amount)
}

// Allowance returns the remaining amount spender may move out of owner's balance.
func (t *Token) Allowance(owner, spender compute.Address) (*big.Int, error) {
	v, err := t.allowances.Get(allowanceKey(owner, spender))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// TransferFrom moves amount out of from's balance on behalf of spender,
// consuming spender's allowance.
func (t *Token) TransferFrom(spender, from, to compute.Address, amount *big.Int) error {
	allowance, err := t.Allowance(from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := t.Transfer(from, to, amount); err != nil {
		return err
	}
	return t.allowances.Set(allowanceKey(from, spender), allowance.Sub(allowance, amount))
}

func (t *Token) add(addr compute.Address, amount *big.Int) error {
	bal, err := t.BalanceOf(addr)
	if err != nil {
		return err
	}
	return t.balances.Set(addr, bal.Add(bal, amount))
}

func (t *Token) sub(addr compute.Address, amount *big.Int) error {
	bal, err := t.BalanceOf(addr)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	return t.balances.Set(addr, bal.Sub(bal, amount))
}
