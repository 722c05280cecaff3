// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/vechain/compute/builtin/engine/reverts"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{reverts.ErrNotOwner, http.StatusForbidden},
		{reverts.ErrPaused, http.StatusConflict},
		{errors.Wrap(reverts.ErrModelNotFound, "engine"), http.StatusConflict},
		{reverts.ErrInsufficientBalance, http.StatusPaymentRequired},
		{BadRequest(errors.New("body")), http.StatusBadRequest},
		{NotFound(errors.New("task")), http.StatusNotFound},
		{errors.New("disk failure"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), tt.err.Error())
	}
	for _, kind := range []reverts.Kind{reverts.TimingViolation, reverts.RateLimited} {
		err := reverts.New(kind, kind.String())
		assert.NotEqual(t, http.StatusInternalServerError, StatusOf(err), kind.String())
	}
	assert.Equal(t, http.StatusTooEarly, StatusOf(reverts.New(reverts.TimingViolation, "early")))
	assert.Equal(t, http.StatusTooManyRequests, StatusOf(reverts.New(reverts.RateLimited, "slow down")))
}

func TestWrapHandlerFunc(t *testing.T) {
	h := WrapHandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		switch r.URL.Path {
		case "/ok":
			return WriteJSON(w, M{"amount": Amount(big.NewInt(16))})
		case "/revert":
			return reverts.ErrNotOwner
		default:
			return HTTPError(nil, http.StatusTeapot)
		}
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, JSONContentType, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"amount":"0x10"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/revert", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, reverts.ErrNotOwner.Error(), strings.TrimSpace(rec.Body.String()))

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestParseJSON(t *testing.T) {
	var v struct {
		Amount *big.Int `json:"amount"`
	}
	assert.NoError(t, ParseJSON(strings.NewReader(`{"amount":1}`), &v))
	assert.Error(t, ParseJSON(strings.NewReader(`{"amount":1,"extra":true}`), &v))
}
