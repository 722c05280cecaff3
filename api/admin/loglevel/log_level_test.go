// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package loglevel

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/compute/log"
)

func TestLogLevelHandler(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		code   int
		want   string // reported level, empty on error
		errMsg string
		level  slog.Level
	}{
		{"set debug", http.MethodPost, `{"level":"debug"}`, http.StatusOK, "DBUG", "", log.LevelDebug},
		{"set trace", http.MethodPost, `{"level":"trace"}`, http.StatusOK, "TRCE", "", log.LevelTrace},
		{"set crit", http.MethodPost, `{"level":"crit"}`, http.StatusOK, "CRIT", "", log.LevelCrit},
		{"unknown level", http.MethodPost, `{"level":"loud"}`, http.StatusBadRequest, "", "Invalid verbosity level", log.LevelInfo},
		{"malformed body", http.MethodPost, `{"level":`, http.StatusBadRequest, "", "", log.LevelInfo},
		{"get", http.MethodGet, "", http.StatusOK, "INFO", "", log.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var level slog.LevelVar
			level.Set(log.LevelInfo)

			router := mux.NewRouter()
			New(&level).Mount(router, "/admin/loglevel")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, "/admin/loglevel", strings.NewReader(tt.body)))

			assert.Equal(t, tt.code, rr.Code)
			assert.Equal(t, tt.level, level.Level())

			switch {
			case tt.want != "":
				var resp Response
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.want, resp.CurrentLevel)
			case tt.errMsg != "":
				assert.Equal(t, tt.errMsg, strings.TrimSpace(rr.Body.String()))
			}
		})
	}
}
