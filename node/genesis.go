// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/compute/builtin/engine"
	"github.com/vechain/compute/compute"
)

// Account is a genesis balance.
type Account struct {
	Address compute.Address
	Balance *big.Int
}

// Genesis describes the ledger before its first operation.
type Genesis struct {
	Engine   engine.Genesis
	Accounts []Account
}

// Init writes genesis unless the ledger was already initialized.
// The engine account is funded with the max supply.
func (n *Node) Init(g *Genesis) (bool, error) {
	var initialized bool
	if err := n.View(func(l *Ledger) error {
		owner, err := l.Engine.Owner()
		initialized = !owner.IsZero()
		return err
	}); err != nil {
		return false, err
	}
	if initialized {
		return false, nil
	}

	_, err := n.Exec("genesis", func(l *Ledger) error {
		if err := l.Token.Mint(compute.EngineAddress, compute.MaxSupply); err != nil {
			return errors.Wrap(err, "fund engine")
		}
		for _, acc := range g.Accounts {
			if err := l.Token.Mint(acc.Address, acc.Balance); err != nil {
				return errors.Wrapf(err, "fund %v", acc.Address)
			}
		}
		return l.Engine.Initialize(&g.Engine)
	})
	if err != nil {
		return false, err
	}
	logger.Info("genesis written", "owner", g.Engine.Owner, "accounts", len(g.Accounts))
	return true, nil
}
