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

package detect

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsDetect holds Prometheus metrics for detection runs.
type metricsDetect struct {
	once sync.Once

	runs         *prometheus.CounterVec
	failures     *prometheus.CounterVec
	toolsEmitted *prometheus.CounterVec
	ruleFailures *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

var detMetrics metricsDetect

func (m *metricsDetect) init() {
	m.once.Do(func() {
		m.runs = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "mcpify_detect_runs_total", Help: "Detection runs by strategy"}, []string{"strategy"})
		m.failures = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "mcpify_detect_strategy_failures_total", Help: "Strategy failures, including those contained by the composite"}, []string{"strategy"})
		m.toolsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "mcpify_detect_tools_total", Help: "Validated tools emitted by strategy"}, []string{"strategy"})
		m.ruleFailures = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "mcpify_detect_rule_failures_total", Help: "Heuristic rule failures by rule"}, []string{"rule"})
		m.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mcpify_detect_seconds",
			Help:    "Detection run duration",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"strategy"})

		prometheus.MustRegister(m.runs, m.failures, m.toolsEmitted, m.ruleFailures, m.duration)
	})
}

func recordDetection(strategy string, tools int, d time.Duration) {
	detMetrics.init()
	detMetrics.runs.WithLabelValues(strategy).Inc()
	detMetrics.toolsEmitted.WithLabelValues(strategy).Add(float64(tools))
	detMetrics.duration.WithLabelValues(strategy).Observe(d.Seconds())
}

func recordStrategyFailure(strategy string) {
	detMetrics.init()
	detMetrics.failures.WithLabelValues(strategy).Inc()
}

func recordRuleFailure(rule string) {
	detMetrics.init()
	detMetrics.ruleFailures.WithLabelValues(rule).Inc()
}
