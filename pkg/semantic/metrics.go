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

package semantic

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsSemantic struct {
	once sync.Once

	ranks              *prometheus.CounterVec
	embeddingFallbacks prometheus.Counter
	toolsGenerated     prometheus.Counter
	unresolved         prometheus.Counter
}

var semMetrics metricsSemantic

func (m *metricsSemantic) init() {
	m.once.Do(func() {
		m.ranks = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "mcpify_semantic_rank_total", Help: "Rank runs by mode"}, []string{"mode"})
		m.embeddingFallbacks = prometheus.NewCounter(prometheus.CounterOpts{Name: "mcpify_semantic_embedding_fallback_total", Help: "Embedding ranks that fell back to keywords"})
		m.toolsGenerated = prometheus.NewCounter(prometheus.CounterOpts{Name: "mcpify_semantic_tools_generated_total", Help: "Tools generated from proposals"})
		m.unresolved = prometheus.NewCounter(prometheus.CounterOpts{Name: "mcpify_semantic_unresolved_total", Help: "Proposals naming unknown functions"})

		prometheus.MustRegister(m.ranks, m.embeddingFallbacks, m.toolsGenerated, m.unresolved)
	})
}

func recordRank(mode Mode)       { semMetrics.init(); semMetrics.ranks.WithLabelValues(string(mode)).Inc() }
func recordEmbeddingFallback()   { semMetrics.init(); semMetrics.embeddingFallbacks.Inc() }
func recordToolsGenerated(n int) { semMetrics.init(); semMetrics.toolsGenerated.Add(float64(n)) }
func recordUnresolved()          { semMetrics.init(); semMetrics.unresolved.Inc() }
