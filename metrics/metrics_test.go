// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	m := defaultNoopMetrics()
	assert.NotPanics(t, func() {
		m.GetOrCreateCountMeter("c").Add(1)
		m.GetOrCreateCountVecMeter("cv", []string{"l"}).AddWithLabel(1, map[string]string{"l": "v"})
		m.GetOrCreateGaugeMeter("g").Set(1)
		m.GetOrCreateHistogramVecMeter("h", []string{"l"}, BucketOps).ObserveWithLabels(1, map[string]string{"l": "v"})
	})
}

func TestPrometheusMetrics(t *testing.T) {
	m := newPrometheusMetrics()

	counter := m.GetOrCreateCountVecMeter("ops_total", []string{"op", "result"})
	counter.AddWithLabel(2, map[string]string{"op": "submitTask", "result": "ok"})
	assert.Same(t, counter, m.GetOrCreateCountVecMeter("ops_total", []string{"op", "result"}))

	m.GetOrCreateGaugeMeter("total_held").Set(42)
	m.GetOrCreateCountMeter("events").Add(3)
	m.GetOrCreateHistogramVecMeter("op_duration_ms", []string{"op"}, BucketOps).
		ObserveWithLabels(4, map[string]string{"op": "claimSolution"})

	srv := httptest.NewServer(m.GetOrCreateHandler())
	defer srv.Close()

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `compute_metrics_ops_total{op="submitTask",result="ok"} 2`)
	assert.Contains(t, text, "compute_metrics_total_held 42")
	assert.Contains(t, text, "compute_metrics_events 3")
	assert.Contains(t, text, `compute_metrics_op_duration_ms_count{op="claimSolution"} 1`)
}

func TestLazyLoad(t *testing.T) {
	calls := 0
	f := LazyLoad(func() int {
		calls++
		return calls
	})
	assert.Equal(t, 1, f())
	assert.Equal(t, 1, f())
	assert.Equal(t, 1, calls)
}
