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

package embedding

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsEmbedding struct {
	once sync.Once

	calls     *prometheus.CounterVec
	retries   prometheus.Counter
	cacheHits prometheus.Counter
	duration  prometheus.Histogram
}

var embMetrics metricsEmbedding

func (m *metricsEmbedding) init() {
	m.once.Do(func() {
		m.calls = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "mcpify_embedding_calls_total", Help: "Embedding provider calls by outcome"}, []string{"outcome"})
		m.retries = prometheus.NewCounter(prometheus.CounterOpts{Name: "mcpify_embedding_retries_total", Help: "Embedding call retries"})
		m.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{Name: "mcpify_embedding_cache_hits_total", Help: "Vectors served from the in-process cache"})
		m.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mcpify_embedding_call_seconds",
			Help:    "Embedding call duration",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		})

		prometheus.MustRegister(m.calls, m.retries, m.cacheHits, m.duration)
	})
}

func recordEmbedCall(err error, d time.Duration) {
	embMetrics.init()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	embMetrics.calls.WithLabelValues(outcome).Inc()
	embMetrics.duration.Observe(d.Seconds())
}

func recordEmbedRetry() { embMetrics.init(); embMetrics.retries.Inc() }

func recordCacheHit() { embMetrics.init(); embMetrics.cacheHits.Inc() }
