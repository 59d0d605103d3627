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

package llm

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsLLM struct {
	once sync.Once

	requests *prometheus.CounterVec
	retries  *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var llmMetrics metricsLLM

func (m *metricsLLM) init() {
	m.once.Do(func() {
		m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "mcpify_llm_requests_total", Help: "LLM chat requests by provider and outcome"}, []string{"provider", "outcome"})
		m.retries = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "mcpify_llm_retries_total", Help: "LLM request retries"}, []string{"provider"})
		m.latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mcpify_llm_request_seconds",
			Help:    "LLM request latency including retries",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"provider"})

		prometheus.MustRegister(m.requests, m.retries, m.latency)
	})
}

func recordRequest(provider, outcome string, d time.Duration) {
	llmMetrics.init()
	llmMetrics.requests.WithLabelValues(provider, outcome).Inc()
	llmMetrics.latency.WithLabelValues(provider).Observe(d.Seconds())
}

func recordRetry(provider string) {
	llmMetrics.init()
	llmMetrics.retries.WithLabelValues(provider).Inc()
}
