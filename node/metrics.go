// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"github.com/vechain/compute/metrics"
)

var (
	metricOpCount    = metrics.LazyLoadCounterVec("op_count", []string{"op", "result"})
	metricOpDuration = metrics.LazyLoadHistogramVec("op_duration_ms", []string{"op"}, metrics.BucketOps)
	metricHeight     = metrics.LazyLoadGauge("height")
	metricClockDrift = metrics.LazyLoadGauge("clock_offset_ms")
	metricModelCache = metrics.LazyLoadGauge("model_cache_hit_permille")

	// whole tokens
	metricTotalHeld   = metrics.LazyLoadGauge("total_held")
	metricAccruedFees = metrics.LazyLoadGauge("accrued_fees")
)
