// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/compute/compute"
)

// Account for marshal account
type Account struct {
	Balance   *math.HexOrDecimal256 `json:"balance"`
	Spender   compute.Address       `json:"spender"`
	Allowance *math.HexOrDecimal256 `json:"allowance"`
}

// Transfer represents transfer body
type Transfer struct {
	Caller compute.Address       `json:"caller"`
	To     compute.Address       `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Approval represents approve body
type Approval struct {
	Caller  compute.Address       `json:"caller"`
	Spender compute.Address       `json:"spender"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}
