// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/compute/test/testnode"
)

func TestHealth(t *testing.T) {
	n := testnode.New(t)
	router := mux.NewRouter()
	New(n.Node).Mount(router, "/admin/health")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

	var status Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.True(t, status.Healthy)
	assert.Equal(t, uint64(3), status.Height)
	assert.Equal(t, uint64(testnode.StartTime), status.Time)
	assert.NotNil(t, status.LastCommit, "genesis and approvals were committed")
	assert.False(t, status.IndexFailed)
	assert.Empty(t, status.StateError)
}
