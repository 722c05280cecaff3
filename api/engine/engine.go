// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/compute/api/utils"
	"github.com/vechain/compute/builtin/engine"
	"github.com/vechain/compute/builtin/engine/contestations"
	"github.com/vechain/compute/builtin/engine/reverts"
	"github.com/vechain/compute/builtin/engine/tasks"
	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/logdb"
	"github.com/vechain/compute/node"
)

const maxModelsPage = 100

type Engine struct {
	node *node.Node
}

func New(n *node.Node) *Engine {
	return &Engine{n}
}

// exec runs op on the node and responds with its receipt.
func (e *Engine) exec(w http.ResponseWriter, name string, op func(*node.Ledger) (any, error)) error {
	var result any
	receipt, err := e.node.Exec(name, func(l *node.Ledger) (err error) {
		result, err = op(l)
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.ConvertReceipt(receipt, result))
}

// notFound maps a missing-record revert to 404.
func notFound(err error) error {
	for _, target := range []error{
		reverts.ErrModelNotFound,
		reverts.ErrTaskNotFound,
		reverts.ErrSolutionNotFound,
		reverts.ErrContestationNotFound,
	} {
		if errors.Is(err, target) {
			return utils.NotFound(err)
		}
	}
	return err
}

func parseBody(req *http.Request, v any) error {
	if err := utils.ParseJSON(req.Body, v); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return nil
}

func (e *Engine) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	status := &Status{
		Height: e.node.Height(),
		Time:   e.node.Now(),
	}
	err := e.node.View(func(l *node.Ledger) (err error) {
		eng := l.Engine
		if status.Paused, err = eng.Paused(); err != nil {
			return
		}
		if status.Owner, err = eng.Owner(); err != nil {
			return
		}
		if status.Treasury, err = eng.Treasury(); err != nil {
			return
		}
		if status.Pauser, err = eng.Pauser(); err != nil {
			return
		}
		if status.Version, err = eng.Version(); err != nil {
			return
		}
		if status.StartTime, err = eng.StartTime(); err != nil {
			return
		}
		if status.LastTaskID, err = eng.LastTaskID(); err != nil {
			return
		}
		amounts := []struct {
			get func() (*big.Int, error)
			dst **math.HexOrDecimal256
		}{
			{eng.TotalHeld, &status.TotalHeld},
			{eng.AccruedFees, &status.AccruedFees},
			{eng.PseudoTotalSupply, &status.PseudoTotalSupply},
			{eng.MinimumStake, &status.MinimumStake},
			{eng.SlashAmount, &status.SlashAmount},
			{eng.CurrentReward, &status.CurrentReward},
		}
		for _, a := range amounts {
			v, err := a.get()
			if err != nil {
				return err
			}
			*a.dst = utils.Amount(v)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, status)
}

func (e *Engine) handleGetParams(w http.ResponseWriter, _ *http.Request) error {
	var out *Params
	if err := e.node.View(func(l *node.Ledger) error {
		v, err := l.Engine.Params()
		if err != nil {
			return err
		}
		out = convertParams(v)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (e *Engine) handleRegisterModel(w http.ResponseWriter, req *http.Request) error {
	var body RegisterModel
	if err := parseBody(req, &body); err != nil {
		return err
	}
	return e.exec(w, "registerModel", func(l *node.Ledger) (any, error) {
		id, err := l.Engine.RegisterModel(body.Caller, body.Payout, utils.BigInt(body.Fee), body.Template)
		if err != nil {
			return nil, err
		}
		return utils.M{"id": &id}, nil
	})
}

func (e *Engine) handleGetModel(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.Bytes32Var(req, "id")
	if err != nil {
		return err
	}
	m, err := e.node.Model(id)
	if err != nil {
		return notFound(err)
	}
	return utils.WriteJSON(w, convertModel(id, m))
}

// handleListModels pages through registered models in registration order.
// The model ids come from the event index.
func (e *Engine) handleListModels(w http.ResponseWriter, req *http.Request) error {
	logDB := e.node.LogDB()
	if logDB == nil {
		return utils.Forbidden(errors.New("event index disabled"))
	}
	query := req.URL.Query()
	offset, limit := uint64(0), uint64(maxModelsPage)
	for _, q := range []struct {
		name string
		dst  *uint64
	}{{"offset", &offset}, {"limit", &limit}} {
		if v := query.Get(q.name); v != "" {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return utils.BadRequest(errors.WithMessage(err, q.name))
			}
			*q.dst = n
		}
	}
	if limit == 0 || limit > maxModelsPage {
		return utils.BadRequest(errors.Errorf("limit: must be within [1, %d]", maxModelsPage))
	}

	name := engine.EventModelRegistered
	evs, err := logDB.FilterEvents(req.Context(), &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Name: &name}},
		Options:     &logdb.Options{Offset: offset, Limit: limit},
	})
	if err != nil {
		return err
	}
	models := make([]*Model, 0, len(evs))
	for _, ev := range evs {
		m, err := e.node.Model(ev.Ref)
		if err != nil {
			return err
		}
		models = append(models, convertModel(ev.Ref, m))
	}
	return utils.WriteJSON(w, models)
}

func (e *Engine) handleSetRate(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.Bytes32Var(req, "id")
	if err != nil {
		return err
	}
	var body SetRate
	if err := parseBody(req, &body); err != nil {
		return err
	}
	if body.Rate == nil {
		return utils.BadRequest(errors.New("body: rate required"))
	}
	return e.exec(w, "setSolutionMineableRate", func(l *node.Ledger) (any, error) {
		return nil, l.Engine.SetSolutionMineableRate(body.Caller, id, utils.BigInt(body.Rate))
	})
}

func (e *Engine) handleSubmitTask(w http.ResponseWriter, req *http.Request) error {
	var body SubmitTask
	if err := parseBody(req, &body); err != nil {
		return err
	}
	if body.Count <= 1 {
		return e.exec(w, "submitTask", func(l *node.Ledger) (any, error) {
			id, err := l.Engine.SubmitTask(body.Caller, body.Version, body.Owner, body.Model, utils.BigInt(body.Fee), body.Input)
			if err != nil {
				return nil, err
			}
			return utils.M{"ids": []compute.Bytes32{id}}, nil
		})
	}
	return e.exec(w, "bulkSubmitTask", func(l *node.Ledger) (any, error) {
		ids, err := l.Engine.BulkSubmitTask(body.Caller, body.Version, body.Owner, body.Model, utils.BigInt(body.Fee), body.Input, body.Count)
		if err != nil {
			return nil, err
		}
		return utils.M{"ids": ids}, nil
	})
}

func (e *Engine) handleGetTask(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.Bytes32Var(req, "id")
	if err != nil {
		return err
	}
	var t *tasks.Task
	if err := e.node.View(func(l *node.Ledger) (err error) {
		t, err = l.Engine.Task(id)
		return
	}); err != nil {
		return notFound(err)
	}
	return utils.WriteJSON(w, convertTask(id, t))
}

func (e *Engine) handleSignalCommitment(w http.ResponseWriter, req *http.Request) error {
	var body SignalCommitment
	if err := parseBody(req, &body); err != nil {
		return err
	}
	return e.exec(w, "signalCommitment", func(l *node.Ledger) (any, error) {
		return nil, l.Engine.SignalCommitment(body.Caller, body.Commitment)
	})
}

func (e *Engine) handleGetCommitment(w http.ResponseWriter, req *http.Request) error {
	hash, err := utils.Bytes32Var(req, "hash")
	if err != nil {
		return err
	}
	var height uint64
	if err := e.node.View(func(l *node.Ledger) (err error) {
		height, err = l.Engine.CommitmentHeight(hash)
		return
	}); err != nil {
		return err
	}
	if height == 0 {
		return utils.NotFound(errors.New("commitment not signalled"))
	}
	return utils.WriteJSON(w, &CommitmentStatus{hash, height})
}

func (e *Engine) handleGenerateCommitment(w http.ResponseWriter, req *http.Request) error {
	var body GenerateCommitment
	if err := parseBody(req, &body); err != nil {
		return err
	}
	c := engine.GenerateCommitment(body.Validator, body.Task, body.Content)
	return utils.WriteJSON(w, utils.M{"commitment": &c})
}

func (e *Engine) handleSubmitSolutions(w http.ResponseWriter, req *http.Request) error {
	var body SubmitSolutions
	if err := parseBody(req, &body); err != nil {
		return err
	}
	switch {
	case len(body.Tasks) == 0:
		return utils.BadRequest(errors.New("body: tasks required"))
	case len(body.Tasks) != len(body.Contents):
		return utils.BadRequest(errors.New("body: tasks and contents differ in length"))
	case len(body.Tasks) == 1:
		return e.exec(w, "submitSolution", func(l *node.Ledger) (any, error) {
			return nil, l.Engine.SubmitSolution(body.Caller, body.Tasks[0], body.Contents[0])
		})
	}
	contents := make([][]byte, len(body.Contents))
	for i, c := range body.Contents {
		contents[i] = c
	}
	return e.exec(w, "bulkSubmitSolution", func(l *node.Ledger) (any, error) {
		return nil, l.Engine.BulkSubmitSolution(body.Caller, body.Tasks, contents)
	})
}

func (e *Engine) handleGetSolution(w http.ResponseWriter, req *http.Request) error {
	task, err := utils.Bytes32Var(req, "task")
	if err != nil {
		return err
	}
	var out *Solution
	if err := e.node.View(func(l *node.Ledger) error {
		sol, err := l.Engine.Solution(task)
		if err != nil {
			return err
		}
		out = convertSolution(task, sol)
		return nil
	}); err != nil {
		return notFound(err)
	}
	return utils.WriteJSON(w, out)
}

func (e *Engine) handleClaimSolution(w http.ResponseWriter, req *http.Request) error {
	task, err := utils.Bytes32Var(req, "task")
	if err != nil {
		return err
	}
	var body Caller
	if err := parseBody(req, &body); err != nil {
		return err
	}
	return e.exec(w, "claimSolution", func(l *node.Ledger) (any, error) {
		return nil, l.Engine.ClaimSolution(body.Caller, task)
	})
}

func (e *Engine) handleSubmitContestation(w http.ResponseWriter, req *http.Request) error {
	var body SubmitContestation
	if err := parseBody(req, &body); err != nil {
		return err
	}
	return e.exec(w, "submitContestation", func(l *node.Ledger) (any, error) {
		return nil, l.Engine.SubmitContestation(body.Caller, body.Task)
	})
}

func (e *Engine) handleGetContestation(w http.ResponseWriter, req *http.Request) error {
	task, err := utils.Bytes32Var(req, "task")
	if err != nil {
		return err
	}
	var out *Contestation
	if err := e.node.View(func(l *node.Ledger) error {
		c, err := l.Engine.Contestation(task)
		if err != nil {
			return err
		}
		yeas, nays, err := l.Engine.ContestationVotes(task)
		if err != nil {
			return err
		}
		ended, err := l.Engine.VotingPeriodEnded(task)
		if err != nil {
			return err
		}
		out = convertContestation(task, c, yeas, nays, ended)
		return nil
	}); err != nil {
		return notFound(err)
	}
	return utils.WriteJSON(w, out)
}

func (e *Engine) handleVote(w http.ResponseWriter, req *http.Request) error {
	task, err := utils.Bytes32Var(req, "task")
	if err != nil {
		return err
	}
	var body Vote
	if err := parseBody(req, &body); err != nil {
		return err
	}
	return e.exec(w, "voteOnContestation", func(l *node.Ledger) (any, error) {
		return nil, l.Engine.VoteOnContestation(body.Caller, task, body.Yea)
	})
}

func (e *Engine) handleFinishVote(w http.ResponseWriter, req *http.Request) error {
	task, err := utils.Bytes32Var(req, "task")
	if err != nil {
		return err
	}
	var body FinishVote
	if err := parseBody(req, &body); err != nil {
		return err
	}
	return e.exec(w, "contestationVoteFinish", func(l *node.Ledger) (any, error) {
		return nil, l.Engine.ContestationVoteFinish(body.Caller, task, body.Batch)
	})
}

func (e *Engine) handleGetVoter(w http.ResponseWriter, req *http.Request) error {
	task, err := utils.Bytes32Var(req, "task")
	if err != nil {
		return err
	}
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var out *VoterStatus
	if err := e.node.View(func(l *node.Ledger) error {
		status, err := l.Engine.ValidatorCanVote(addr, task)
		if err != nil {
			return err
		}
		out = &VoterStatus{status.String(), status == contestations.VoteAllowed}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (e *Engine) handleGetValidator(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var out *Validator
	if err := e.node.View(func(l *node.Ledger) error {
		v, err := l.Engine.Validator(addr)
		if err != nil {
			return err
		}
		eligible, err := l.Engine.IsEligible(addr)
		if err != nil {
			return err
		}
		pending, err := l.Engine.PendingWithdrawalAmount(addr)
		if err != nil {
			return err
		}
		lastLoss, err := l.Engine.LastContestationLoss(addr)
		if err != nil {
			return err
		}
		out = convertValidator(v, eligible, pending, lastLoss)
		out.Address = addr
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (e *Engine) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var body Deposit
	if err := parseBody(req, &body); err != nil {
		return err
	}
	return e.exec(w, "validatorDeposit", func(l *node.Ledger) (any, error) {
		return nil, l.Engine.ValidatorDeposit(body.Caller, addr, utils.BigInt(body.Amount))
	})
}

func (e *Engine) handleInitiateWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body Deposit
	if err := parseBody(req, &body); err != nil {
		return err
	}
	return e.exec(w, "initiateValidatorWithdraw", func(l *node.Ledger) (any, error) {
		id, err := l.Engine.InitiateValidatorWithdraw(body.Caller, utils.BigInt(body.Amount))
		if err != nil {
			return nil, err
		}
		wd, err := l.Engine.Withdrawal(body.Caller, id)
		if err != nil {
			return nil, err
		}
		return &Withdrawal{id, wd.UnlockTime, utils.Amount(wd.Amount)}, nil
	})
}

func withdrawalID(req *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func (e *Engine) handleCancelWithdraw(w http.ResponseWriter, req *http.Request) error {
	id, err := withdrawalID(req)
	if err != nil {
		return err
	}
	var body Caller
	if err := parseBody(req, &body); err != nil {
		return err
	}
	return e.exec(w, "cancelValidatorWithdraw", func(l *node.Ledger) (any, error) {
		return nil, l.Engine.CancelValidatorWithdraw(body.Caller, id)
	})
}

func (e *Engine) handleCompleteWithdraw(w http.ResponseWriter, req *http.Request) error {
	id, err := withdrawalID(req)
	if err != nil {
		return err
	}
	var body CompleteWithdrawal
	if err := parseBody(req, &body); err != nil {
		return err
	}
	return e.exec(w, "validatorWithdraw", func(l *node.Ledger) (any, error) {
		return nil, l.Engine.ValidatorWithdraw(body.Caller, id, body.To)
	})
}

func (e *Engine) handleAdmin(w http.ResponseWriter, req *http.Request) error {
	action := mux.Vars(req)["action"]
	var body AdminAction
	if err := parseBody(req, &body); err != nil {
		return err
	}

	var op func(*engine.Engine) error
	switch action {
	case "transferOwnership":
		op = func(eng *engine.Engine) error { return eng.TransferOwnership(body.Caller, body.Address) }
	case "transferTreasury":
		op = func(eng *engine.Engine) error { return eng.TransferTreasury(body.Caller, body.Address) }
	case "transferPauser":
		op = func(eng *engine.Engine) error { return eng.TransferPauser(body.Caller, body.Address) }
	case "setPaused":
		op = func(eng *engine.Engine) error { return eng.SetPaused(body.Caller, body.Paused) }
	case "setVersion":
		op = func(eng *engine.Engine) error { return eng.SetVersion(body.Caller, body.Version) }
	case "setStartBlockTime":
		op = func(eng *engine.Engine) error { return eng.SetStartBlockTime(body.Caller, body.StartTime) }
	case "withdrawAccruedFees":
		op = func(eng *engine.Engine) error { return eng.WithdrawAccruedFees(body.Caller) }
	case "setParams":
		if body.Params == nil {
			return utils.BadRequest(errors.New("body: params required"))
		}
		op = func(eng *engine.Engine) error {
			v, err := eng.Params()
			if err != nil {
				return err
			}
			body.Params.apply(v)
			return eng.SetParams(body.Caller, v)
		}
	default:
		return utils.NotFound(errors.Errorf("unknown action %q", action))
	}
	return e.exec(w, action, func(l *node.Ledger) (any, error) {
		return nil, op(l.Engine)
	})
}

func (e *Engine) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/status").
		Methods(http.MethodGet).
		Name("GET /engine/status").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetStatus))
	sub.Path("/params").
		Methods(http.MethodGet).
		Name("GET /engine/params").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetParams))

	sub.Path("/models").
		Methods(http.MethodGet).
		Name("GET /engine/models").
		HandlerFunc(utils.WrapHandlerFunc(e.handleListModels))
	sub.Path("/models").
		Methods(http.MethodPost).
		Name("POST /engine/models").
		HandlerFunc(utils.WrapHandlerFunc(e.handleRegisterModel))
	sub.Path("/models/{id}").
		Methods(http.MethodGet).
		Name("GET /engine/models/{id}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetModel))
	sub.Path("/models/{id}/rate").
		Methods(http.MethodPost).
		Name("POST /engine/models/{id}/rate").
		HandlerFunc(utils.WrapHandlerFunc(e.handleSetRate))

	sub.Path("/tasks").
		Methods(http.MethodPost).
		Name("POST /engine/tasks").
		HandlerFunc(utils.WrapHandlerFunc(e.handleSubmitTask))
	sub.Path("/tasks/{id}").
		Methods(http.MethodGet).
		Name("GET /engine/tasks/{id}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetTask))

	sub.Path("/commitments").
		Methods(http.MethodPost).
		Name("POST /engine/commitments").
		HandlerFunc(utils.WrapHandlerFunc(e.handleSignalCommitment))
	sub.Path("/commitments/generate").
		Methods(http.MethodPost).
		Name("POST /engine/commitments/generate").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGenerateCommitment))
	sub.Path("/commitments/{hash}").
		Methods(http.MethodGet).
		Name("GET /engine/commitments/{hash}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetCommitment))

	sub.Path("/solutions").
		Methods(http.MethodPost).
		Name("POST /engine/solutions").
		HandlerFunc(utils.WrapHandlerFunc(e.handleSubmitSolutions))
	sub.Path("/solutions/{task}").
		Methods(http.MethodGet).
		Name("GET /engine/solutions/{task}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetSolution))
	sub.Path("/solutions/{task}/claim").
		Methods(http.MethodPost).
		Name("POST /engine/solutions/{task}/claim").
		HandlerFunc(utils.WrapHandlerFunc(e.handleClaimSolution))

	sub.Path("/contestations").
		Methods(http.MethodPost).
		Name("POST /engine/contestations").
		HandlerFunc(utils.WrapHandlerFunc(e.handleSubmitContestation))
	sub.Path("/contestations/{task}").
		Methods(http.MethodGet).
		Name("GET /engine/contestations/{task}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetContestation))
	sub.Path("/contestations/{task}/votes").
		Methods(http.MethodPost).
		Name("POST /engine/contestations/{task}/votes").
		HandlerFunc(utils.WrapHandlerFunc(e.handleVote))
	sub.Path("/contestations/{task}/finish").
		Methods(http.MethodPost).
		Name("POST /engine/contestations/{task}/finish").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFinishVote))
	sub.Path("/contestations/{task}/voters/{address}").
		Methods(http.MethodGet).
		Name("GET /engine/contestations/{task}/voters/{address}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetVoter))

	sub.Path("/validators/{address}").
		Methods(http.MethodGet).
		Name("GET /engine/validators/{address}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetValidator))
	sub.Path("/validators/{address}/deposit").
		Methods(http.MethodPost).
		Name("POST /engine/validators/{address}/deposit").
		HandlerFunc(utils.WrapHandlerFunc(e.handleDeposit))
	sub.Path("/withdrawals").
		Methods(http.MethodPost).
		Name("POST /engine/withdrawals").
		HandlerFunc(utils.WrapHandlerFunc(e.handleInitiateWithdraw))
	sub.Path("/withdrawals/{id}").
		Methods(http.MethodDelete).
		Name("DELETE /engine/withdrawals/{id}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleCancelWithdraw))
	sub.Path("/withdrawals/{id}/complete").
		Methods(http.MethodPost).
		Name("POST /engine/withdrawals/{id}/complete").
		HandlerFunc(utils.WrapHandlerFunc(e.handleCompleteWithdraw))

	sub.Path("/admin/{action}").
		Methods(http.MethodPost).
		Name("POST /engine/admin/{action}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleAdmin))
}
