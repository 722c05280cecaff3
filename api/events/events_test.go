// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/compute/api/events"
	"github.com/vechain/compute/api/utils"
	"github.com/vechain/compute/builtin/engine"
	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/node"
	"github.com/vechain/compute/test/testnode"
)

// initEventServer commits three deposits by bob and one model registration by alice.
func initEventServer(t *testing.T, limit uint64) (*httptest.Server, compute.Bytes32) {
	n := testnode.New(t)
	for i := int64(1); i <= 3; i++ {
		_, err := n.Exec("validatorDeposit", func(l *node.Ledger) error {
			return l.Engine.ValidatorDeposit(testnode.Bob, testnode.Bob, big.NewInt(i))
		})
		require.NoError(t, err)
	}
	var model compute.Bytes32
	_, err := n.Exec("registerModel", func(l *node.Ledger) (err error) {
		model, err = l.Engine.RegisterModel(testnode.Alice, testnode.Alice, big.NewInt(0), []byte("template"))
		return
	})
	require.NoError(t, err)

	router := mux.NewRouter()
	events.New(n.LogDB(), limit).Mount(router, "/logs/event")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, model
}

func filterEvents(t *testing.T, ts *httptest.Server, filter any) (int, []*utils.Event) {
	data, err := json.Marshal(filter)
	require.NoError(t, err)
	res, err := http.Post(ts.URL+"/logs/event", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if res.StatusCode != http.StatusOK {
		return res.StatusCode, nil
	}
	var evs []*utils.Event
	require.NoError(t, json.Unmarshal(body, &evs))
	return res.StatusCode, evs
}

func TestFilter(t *testing.T) {
	ts, model := initEventServer(t, 100)

	status, evs := filterEvents(t, ts, utils.M{})
	require.Equal(t, http.StatusOK, status)
	require.Len(t, evs, 4)
	assert.Equal(t, engine.EventValidatorDeposit, evs[0].Name)
	assert.Equal(t, int64(1), (*big.Int)(evs[0].Amount).Int64())
	assert.Less(t, evs[0].Meta.Height, evs[1].Meta.Height)

	name := engine.EventModelRegistered
	status, evs = filterEvents(t, ts, &events.EventFilter{
		CriteriaSet: []*events.EventCriteria{{Name: &name}},
	})
	require.Equal(t, http.StatusOK, status)
	require.Len(t, evs, 1)
	assert.Equal(t, model, *evs[0].Ref)
	assert.Equal(t, testnode.Alice, *evs[0].Actor)
	assert.Equal(t, testnode.Alice.String(), evs[0].Attrs["payout"])

	limit := uint64(2)
	status, evs = filterEvents(t, ts, &events.EventFilter{
		CriteriaSet: []*events.EventCriteria{{Actor: &testnode.Bob}},
		Options:     &events.Options{Offset: 0, Limit: &limit},
		Order:       "desc",
	})
	require.Equal(t, http.StatusOK, status)
	require.Len(t, evs, 2)
	assert.Equal(t, int64(3), (*big.Int)(evs[0].Amount).Int64())
	assert.Equal(t, int64(2), (*big.Int)(evs[1].Amount).Int64())

	from := evs[0].Meta.Height
	status, evs = filterEvents(t, ts, utils.M{"range": utils.M{"unit": "height", "from": from}})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, evs, 2)
}

func TestFilterLimits(t *testing.T) {
	ts, _ := initEventServer(t, 3)

	status, _ := filterEvents(t, ts, utils.M{})
	assert.Equal(t, http.StatusForbidden, status, "more events than the limit")

	status, _ = filterEvents(t, ts, utils.M{"options": utils.M{"limit": 4}})
	assert.Equal(t, http.StatusForbidden, status)

	status, evs := filterEvents(t, ts, utils.M{"options": utils.M{"offset": 1, "limit": 3}})
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, evs, 3)
}

func TestBadFilter(t *testing.T) {
	ts, _ := initEventServer(t, 100)

	for _, filter := range []any{
		utils.M{"range": utils.M{"from": 5, "to": 1}},
		utils.M{"range": utils.M{"unit": "block"}},
		utils.M{"order": "random"},
		utils.M{"criteriaSet": []any{nil}},
		utils.M{"unknown": true},
	} {
		status, _ := filterEvents(t, ts, filter)
		assert.Equal(t, http.StatusBadRequest, status, filter)
	}
}
