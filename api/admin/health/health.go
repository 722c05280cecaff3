// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vechain/compute/api/utils"
	"github.com/vechain/compute/node"
)

type Status struct {
	Healthy     bool       `json:"healthy"`
	Height      uint64     `json:"height"`
	Time        uint64     `json:"time"`
	LastCommit  *time.Time `json:"lastCommit"`
	IndexFailed bool       `json:"indexFailed"`
	StateError  string     `json:"stateError,omitempty"`
}

type Health struct {
	node *node.Node
}

func New(n *node.Node) *Health {
	return &Health{n}
}

func (h *Health) status() *Status {
	lastCommit, indexFailed := h.node.Health()
	status := &Status{
		Height:      h.node.Height(),
		Time:        h.node.Now(),
		IndexFailed: indexFailed,
	}
	if !lastCommit.IsZero() {
		status.LastCommit = &lastCommit
	}
	// the state must be readable
	if err := h.node.View(func(l *node.Ledger) error {
		_, err := l.Engine.Paused()
		return err
	}); err != nil {
		status.StateError = err.Error()
	}
	status.Healthy = !indexFailed && status.StateError == ""
	return status
}

func (h *Health) handleGetHealth(w http.ResponseWriter, _ *http.Request) error {
	status := h.status()
	w.Header().Set("Content-Type", utils.JSONContentType)
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return utils.WriteJSON(w, status)
}

func (h *Health) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /admin/health").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetHealth))
}
