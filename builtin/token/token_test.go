// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/lvldb"
	"github.com/vechain/compute/state"
	"github.com/vechain/compute/test/datagen"
)

func newToken(t *testing.T) *Token {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(compute.TokenAddress, state.New(db))
}

func balance(t *testing.T, tk *Token, addr compute.Address) int64 {
	bal, err := tk.BalanceOf(addr)
	require.NoError(t, err)
	return bal.Int64()
}

func TestMintAndTransfer(t *testing.T) {
	tk := newToken(t)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	assert.Equal(t, int64(0), balance(t, tk, alice))
	require.NoError(t, tk.Mint(alice, big.NewInt(100)))

	supply, err := tk.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, int64(100), supply.Int64())

	require.NoError(t, tk.Transfer(alice, bob, big.NewInt(40)))
	assert.Equal(t, int64(60), balance(t, tk, alice))
	assert.Equal(t, int64(40), balance(t, tk, bob))

	assert.ErrorIs(t, tk.Transfer(alice, bob, big.NewInt(61)), ErrInsufficientBalance)
	assert.ErrorIs(t, tk.Transfer(alice, bob, big.NewInt(-1)), ErrNegativeAmount)
	assert.Equal(t, int64(60), balance(t, tk, alice))
}

func TestTransferFrom(t *testing.T) {
	tk := newToken(t)
	owner, spender, to := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()
	require.NoError(t, tk.Mint(owner, big.NewInt(100)))

	assert.ErrorIs(t, tk.TransferFrom(spender, owner, to, big.NewInt(1)), ErrInsufficientAllowance)

	require.NoError(t, tk.Approve(owner, spender, big.NewInt(50)))
	require.NoError(t, tk.TransferFrom(spender, owner, to, big.NewInt(30)))

	allowance, err := tk.Allowance(owner, spender)
	require.NoError(t, err)
	assert.Equal(t, int64(20), allowance.Int64())
	assert.Equal(t, int64(70), balance(t, tk, owner))
	assert.Equal(t, int64(30), balance(t, tk, to))

	assert.ErrorIs(t, tk.TransferFrom(spender, owner, to, big.NewInt(21)), ErrInsufficientAllowance)
}
