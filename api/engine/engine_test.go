// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/compute/api/engine"
	"github.com/vechain/compute/api/utils"
	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/test/testnode"
)

var (
	owner = testnode.Owner
	alice = testnode.Alice
	bob   = testnode.Bob
)

func initEngineServer(t *testing.T) (*testnode.TestNode, *httptest.Server) {
	n := testnode.New(t)
	router := mux.NewRouter()
	engine.New(n.Node).Mount(router, "/engine")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return n, ts
}

func httpDo(t *testing.T, method, url string, body any) (int, []byte) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, data
}

func httpGet(t *testing.T, url string) (int, []byte) {
	return httpDo(t, http.MethodGet, url, nil)
}

func httpPost(t *testing.T, url string, body any) (int, []byte) {
	return httpDo(t, http.MethodPost, url, body)
}

type receipt struct {
	Op     string          `json:"op"`
	Height uint64          `json:"height"`
	Events []*utils.Event  `json:"events"`
	Result json.RawMessage `json:"result"`
}

func postOp(t *testing.T, url string, body any) *receipt {
	status, data := httpPost(t, url, body)
	require.Equal(t, http.StatusOK, status, string(data))
	var r receipt
	require.NoError(t, json.Unmarshal(data, &r))
	return &r
}

func registerModel(t *testing.T, ts *httptest.Server) compute.Bytes32 {
	r := postOp(t, ts.URL+"/engine/models", utils.M{
		"caller":   &alice,
		"payout":   &alice,
		"fee":      "0x0",
		"template": "0x01",
	})
	var res struct {
		ID compute.Bytes32 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(r.Result, &res))
	return res.ID
}

func submitTasks(t *testing.T, ts *httptest.Server, model compute.Bytes32, count uint64) []compute.Bytes32 {
	r := postOp(t, ts.URL+"/engine/tasks", utils.M{
		"caller": &alice,
		"owner":  &alice,
		"model":  &model,
		"fee":    "0",
		"input":  "0x02",
		"count":  count,
	})
	var res struct {
		IDs []compute.Bytes32 `json:"ids"`
	}
	require.NoError(t, json.Unmarshal(r.Result, &res))
	return res.IDs
}

func TestStatus(t *testing.T) {
	_, ts := initEngineServer(t)

	status, data := httpGet(t, ts.URL+"/engine/status")
	require.Equal(t, http.StatusOK, status)
	var s engine.Status
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, uint64(3), s.Height)
	assert.Equal(t, uint64(testnode.StartTime), s.Time)
	assert.Equal(t, owner, s.Owner)
	assert.Equal(t, owner, s.Pauser)
	assert.False(t, s.Paused)
	assert.Zero(t, (*big.Int)(s.TotalHeld).Sign())

	status, data = httpGet(t, ts.URL+"/engine/params")
	require.Equal(t, http.StatusOK, status)
	var p engine.Params
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, uint64(2000), *p.MinClaimSolutionTime)
}

func TestModelsAndTasks(t *testing.T) {
	_, ts := initEngineServer(t)

	model := registerModel(t, ts)
	status, data := httpGet(t, ts.URL+"/engine/models/"+model.String())
	require.Equal(t, http.StatusOK, status)
	var m engine.Model
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, alice, m.Payout)
	assert.NotEmpty(t, m.Cid)

	status, _ = httpGet(t, ts.URL+"/engine/models/"+compute.Bytes32{1}.String())
	assert.Equal(t, http.StatusNotFound, status)

	status, data = httpGet(t, ts.URL+"/engine/models")
	require.Equal(t, http.StatusOK, status)
	var list []*engine.Model
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, model, list[0].ID)

	status, data = httpGet(t, ts.URL+"/engine/models?offset=1")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(data))

	status, _ = httpGet(t, ts.URL+"/engine/models?limit=0")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = httpGet(t, ts.URL+"/engine/models?offset=x")
	assert.Equal(t, http.StatusBadRequest, status)

	ids := submitTasks(t, ts, model, 2)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])

	status, data = httpGet(t, ts.URL+"/engine/tasks/"+ids[1].String())
	require.Equal(t, http.StatusOK, status)
	var task engine.Task
	require.NoError(t, json.Unmarshal(data, &task))
	assert.Equal(t, model, task.Model)
	assert.Equal(t, alice, task.Owner)

	status, _ = httpGet(t, ts.URL+"/engine/tasks/"+compute.Bytes32{1}.String())
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = httpPost(t, ts.URL+"/engine/models/"+model.String()+"/rate", utils.M{"caller": &alice, "rate": "1"})
	assert.Equal(t, http.StatusForbidden, status)

	r := postOp(t, ts.URL+"/engine/models/"+model.String()+"/rate", utils.M{"caller": &owner, "rate": "1000000000000000000"})
	require.Len(t, r.Events, 1)
	assert.Equal(t, "SolutionMineableRateChange", r.Events[0].Name)

	_, data = httpGet(t, ts.URL+"/engine/models/"+model.String())
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, compute.Unit.String(), (*big.Int)(m.Rate).String())
}

func TestSolutionLifecycle(t *testing.T) {
	n, ts := initEngineServer(t)

	model := registerModel(t, ts)
	task := submitTasks(t, ts, model, 0)[0]
	postOp(t, ts.URL+"/engine/validators/"+bob.String()+"/deposit", utils.M{"caller": &bob, "amount": "10000000000000000000"})

	content := hexutil.Bytes("answer")
	status, data := httpPost(t, ts.URL+"/engine/commitments/generate", utils.M{"validator": &bob, "task": &task, "content": content})
	require.Equal(t, http.StatusOK, status)
	var gen struct {
		Commitment compute.Bytes32 `json:"commitment"`
	}
	require.NoError(t, json.Unmarshal(data, &gen))

	status, _ = httpGet(t, ts.URL+"/engine/commitments/"+gen.Commitment.String())
	assert.Equal(t, http.StatusNotFound, status)

	signalled := postOp(t, ts.URL+"/engine/commitments", utils.M{"caller": &bob, "commitment": &gen.Commitment})
	status, data = httpGet(t, ts.URL+"/engine/commitments/"+gen.Commitment.String())
	require.Equal(t, http.StatusOK, status)
	var c engine.CommitmentStatus
	require.NoError(t, json.Unmarshal(data, &c))
	assert.Equal(t, signalled.Height, c.Height)

	status, _ = httpPost(t, ts.URL+"/engine/solutions", utils.M{"caller": &bob, "tasks": []compute.Bytes32{task}})
	assert.Equal(t, http.StatusBadRequest, status)

	n.Clock.Warp(2)
	postOp(t, ts.URL+"/engine/solutions", utils.M{"caller": &bob, "tasks": []compute.Bytes32{task}, "contents": []hexutil.Bytes{content}})

	status, _ = httpPost(t, ts.URL+"/engine/solutions/"+task.String()+"/claim", utils.M{"caller": &alice})
	assert.Equal(t, http.StatusTooEarly, status)

	n.Clock.Warp(2001)
	r := postOp(t, ts.URL+"/engine/solutions/"+task.String()+"/claim", utils.M{"caller": &alice})
	var names []string
	for _, ev := range r.Events {
		names = append(names, ev.Name)
	}
	assert.Contains(t, names, "SolutionClaimed")

	status, data = httpGet(t, ts.URL+"/engine/solutions/"+task.String())
	require.Equal(t, http.StatusOK, status)
	var sol engine.Solution
	require.NoError(t, json.Unmarshal(data, &sol))
	assert.True(t, sol.Claimed)
	assert.Equal(t, bob, sol.Validator)

	status, _ = httpPost(t, ts.URL+"/engine/solutions/"+task.String()+"/claim", utils.M{"caller": &alice})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = httpGet(t, ts.URL+"/engine/contestations/"+task.String())
	assert.Equal(t, http.StatusNotFound, status)
}

func TestValidatorWithdrawals(t *testing.T) {
	n, ts := initEngineServer(t)

	postOp(t, ts.URL+"/engine/validators/"+bob.String()+"/deposit", utils.M{"caller": &bob, "amount": "0x64"})
	r := postOp(t, ts.URL+"/engine/withdrawals", utils.M{"caller": &bob, "amount": "0x28"})
	var wd engine.Withdrawal
	require.NoError(t, json.Unmarshal(r.Result, &wd))
	assert.Equal(t, uint64(1), wd.ID)
	assert.Equal(t, int64(40), (*big.Int)(wd.Amount).Int64())
	assert.Greater(t, wd.UnlockTime, uint64(testnode.StartTime))

	status, data := httpGet(t, ts.URL+"/engine/validators/"+bob.String())
	require.Equal(t, http.StatusOK, status)
	var v engine.Validator
	require.NoError(t, json.Unmarshal(data, &v))
	assert.Equal(t, int64(100), (*big.Int)(v.Staked).Int64())
	assert.Equal(t, int64(40), (*big.Int)(v.PendingWithdrawal).Int64())

	status, _ = httpPost(t, ts.URL+"/engine/withdrawals/1/complete", utils.M{"caller": &bob, "to": &bob})
	assert.Equal(t, http.StatusTooEarly, status)

	n.Clock.SetNow(wd.UnlockTime + 1)
	postOp(t, ts.URL+"/engine/withdrawals/1/complete", utils.M{"caller": &bob, "to": &bob})

	status, _ = httpDo(t, http.MethodDelete, ts.URL+"/engine/withdrawals/1", utils.M{"caller": &bob})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = httpPost(t, ts.URL+"/engine/withdrawals/x/complete", utils.M{"caller": &bob, "to": &bob})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdmin(t *testing.T) {
	_, ts := initEngineServer(t)

	status, _ := httpPost(t, ts.URL+"/engine/admin/setPaused", utils.M{"caller": &alice, "paused": true})
	assert.Equal(t, http.StatusForbidden, status)

	postOp(t, ts.URL+"/engine/admin/setPaused", utils.M{"caller": &owner, "paused": true})
	status, _ = httpPost(t, ts.URL+"/engine/models", utils.M{"caller": &alice, "payout": &alice, "fee": "0", "template": "0x01"})
	assert.Equal(t, http.StatusConflict, status)

	postOp(t, ts.URL+"/engine/admin/setParams", utils.M{"caller": &owner, "params": utils.M{"solutionRateLimit": 7}})
	_, data := httpGet(t, ts.URL+"/engine/params")
	var p engine.Params
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, uint64(7), *p.SolutionRateLimit)
	assert.Equal(t, uint64(2000), *p.MinClaimSolutionTime, "omitted params unchanged")

	status, _ = httpPost(t, ts.URL+"/engine/admin/selfDestruct", utils.M{"caller": &owner})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = httpPost(t, ts.URL+"/engine/admin/setPaused", utils.M{"caller": &owner, "unknown": 1})
	assert.Equal(t, http.StatusBadRequest, status)
}
