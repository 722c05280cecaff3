// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/compute/api/utils"
	"github.com/vechain/compute/builtin/token"
	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/node"
)

type Accounts struct {
	node *node.Node
}

func New(n *node.Node) *Accounts {
	return &Accounts{n}
}

// ledgerError maps token failures to client errors.
func ledgerError(err error) error {
	switch {
	case errors.Is(err, token.ErrInsufficientBalance), errors.Is(err, token.ErrInsufficientAllowance):
		return utils.HTTPError(err, http.StatusPaymentRequired)
	case errors.Is(err, token.ErrNegativeAmount):
		return utils.BadRequest(err)
	default:
		return err
	}
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	spender := compute.EngineAddress
	if s := req.URL.Query().Get("spender"); s != "" {
		if spender, err = compute.ParseAddress(s); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "spender"))
		}
	}

	acc := &Account{Spender: spender}
	if err := a.node.View(func(l *node.Ledger) error {
		balance, err := l.Token.BalanceOf(addr)
		if err != nil {
			return err
		}
		allowance, err := l.Token.Allowance(addr, spender)
		if err != nil {
			return err
		}
		acc.Balance = utils.Amount(balance)
		acc.Allowance = utils.Amount(allowance)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func (a *Accounts) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	var body Transfer
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.To.IsZero() {
		return utils.BadRequest(errors.New("body: to required"))
	}
	receipt, err := a.node.Exec("transfer", func(l *node.Ledger) error {
		return l.Token.Transfer(body.Caller, body.To, utils.BigInt(body.Amount))
	})
	if err != nil {
		return ledgerError(err)
	}
	return utils.WriteJSON(w, utils.ConvertReceipt(receipt, nil))
}

func (a *Accounts) handleApprove(w http.ResponseWriter, req *http.Request) error {
	var body Approval
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := a.node.Exec("approve", func(l *node.Ledger) error {
		return l.Token.Approve(body.Caller, body.Spender, utils.BigInt(body.Amount))
	})
	if err != nil {
		return ledgerError(err)
	}
	return utils.WriteJSON(w, utils.ConvertReceipt(receipt, nil))
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/transfer").
		Methods(http.MethodPost).
		Name("POST /accounts/transfer").
		HandlerFunc(utils.WrapHandlerFunc(a.handleTransfer))
	sub.Path("/approve").
		Methods(http.MethodPost).
		Name("POST /accounts/approve").
		HandlerFunc(utils.WrapHandlerFunc(a.handleApprove))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}
