// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/vechain/compute/log"
)

// maxLoggedBody caps the logged part of a request body. Handlers still read all of it.
const maxLoggedBody = 4096

// RequestLoggerHandler logs method, uri, client and body of each request while enabled is set.
func RequestLoggerHandler(handler http.Handler, logger log.Logger, enabled *atomic.Bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !enabled.Load() {
			handler.ServeHTTP(w, r)
			return
		}

		var body []byte
		if r.Body != nil {
			var err error
			if body, err = io.ReadAll(r.Body); err != nil {
				logger.Warn("failed to read request body", "uri", r.URL.String(), "err", err)
				http.Error(w, "unreadable body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		logged := body[:min(len(body), maxLoggedBody)]
		logger.Info("API Request",
			"method", r.Method,
			"uri", r.URL.String(),
			"client", clientKey(r),
			"body", string(logged),
			"truncated", len(logged) < len(body),
		)
		handler.ServeHTTP(w, r)
	})
}
