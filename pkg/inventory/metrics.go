// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package inventory

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsInventory holds Prometheus metrics for source parsing.
type metricsInventory struct {
	once sync.Once

	filesParsed   prometheus.Counter
	parseFailures prometheus.Counter
	functions     prometheus.Counter
	filesSkipped  *prometheus.CounterVec

	parseDuration prometheus.Histogram
	walkDuration  prometheus.Histogram
}

var invMetrics metricsInventory

func (m *metricsInventory) init() {
	m.once.Do(func() {
		m.filesParsed = prometheus.NewCounter(prometheus.CounterOpts{Name: "mcpify_inventory_files_parsed_total", Help: "Python files parsed"})
		m.parseFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "mcpify_inventory_parse_failures_total", Help: "Files that could not be read or parsed"})
		m.functions = prometheus.NewCounter(prometheus.CounterOpts{Name: "mcpify_inventory_functions_total", Help: "Function records extracted"})
		m.filesSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "mcpify_inventory_files_skipped_total", Help: "Files and directories skipped while walking"}, []string{"reason"})

		buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
		m.parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "mcpify_inventory_parse_seconds", Help: "Per-file parse duration", Buckets: buckets})
		m.walkDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "mcpify_inventory_walk_seconds", Help: "Whole-project inventory duration", Buckets: buckets})

		prometheus.MustRegister(
			m.filesParsed, m.parseFailures, m.functions, m.filesSkipped,
			m.parseDuration, m.walkDuration,
		)
	})
}

func recordParseFailure() { invMetrics.init(); invMetrics.parseFailures.Inc() }

func recordFileParsed(functions int, d time.Duration) {
	invMetrics.init()
	invMetrics.filesParsed.Inc()
	invMetrics.functions.Add(float64(functions))
	invMetrics.parseDuration.Observe(d.Seconds())
}

func recordSkipped(reason string) {
	invMetrics.init()
	invMetrics.filesSkipped.WithLabelValues(reason).Inc()
}

func recordWalk(d time.Duration) { invMetrics.init(); invMetrics.walkDuration.Observe(d.Seconds()) }
