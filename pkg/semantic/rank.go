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
	"context"
	"path"
	"sort"
	"strings"

	"github.com/kraklabs/mcpify/pkg/embedding"
	"github.com/kraklabs/mcpify/pkg/model"
)

// Mode names the ranking method used for a match.
type Mode string

const (
	ModeEmbedding Mode = "embedding"
	ModeKeyword   Mode = "keyword"
)

const topScoresLogged = 5

// Scored is a function with its relevance to a request.
type Scored struct {
	Function model.FunctionInfo `json:"function"`
	Score    float64            `json:"score"`
}

// Rank orders functions by relevance to request, most relevant first.
func (m *Matcher) Rank(ctx context.Context, functions []model.FunctionInfo, request string) []Scored {
	ranked, _ := m.rank(ctx, functions, request)
	return ranked
}

func (m *Matcher) rank(ctx context.Context, functions []model.FunctionInfo, request string) ([]Scored, Mode) {
	if m.embedder != nil {
		ranked, err := m.rankEmbedding(ctx, functions, request)
		if err == nil {
			recordRank(ModeEmbedding)
			return ranked, ModeEmbedding
		}
		recordEmbeddingFallback()
		m.logger.Warn("semantic.rank.embedding_failed", "err", err)
		m.warn("embedding ranking failed, falling back to keyword matching: " + err.Error())
	}
	recordRank(ModeKeyword)
	return m.rankKeyword(functions, request), ModeKeyword
}

func (m *Matcher) rankEmbedding(ctx context.Context, functions []model.FunctionInfo, request string) ([]Scored, error) {
	texts := make([]string, 0, len(functions)+1)
	for _, fn := range functions {
		texts = append(texts, CompositeText(fn))
	}
	texts = append(texts, request)

	vecs, err := embedding.EncodeAll(ctx, m.embedder, texts)
	if err != nil {
		return nil, err
	}
	query := vecs[len(vecs)-1]

	scored := make([]Scored, 0, len(functions))
	for i, fn := range functions {
		scored = append(scored, Scored{Function: fn, Score: embedding.Cosine(vecs[i], query)})
	}
	sortScored(scored)

	kept := scored[:0]
	for _, s := range scored {
		if s.Score >= m.cfg.SimilarityFloor {
			kept = append(kept, s)
		}
	}
	m.logTop(ModeEmbedding, kept)
	return kept, nil
}

// CompositeText is the text embedded for a function: its spaced name,
// class, parameter names, the first docstring lines and the file stem.
func CompositeText(fn model.FunctionInfo) string {
	parts := []string{spaced(fn.Name)}
	if fn.ClassName != "" {
		parts = append(parts, "class "+spaced(fn.ClassName))
	}
	if len(fn.Parameters) > 0 {
		names := make([]string, 0, len(fn.Parameters))
		for _, p := range fn.Parameters {
			names = append(names, p.Name)
		}
		parts = append(parts, "parameters: "+strings.Join(names, " "))
	}
	if fn.Docstring != "" {
		var lines []string
		for _, line := range strings.Split(fn.Docstring, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
				if len(lines) == 3 {
					break
				}
			}
		}
		if len(lines) > 0 {
			parts = append(parts, strings.Join(lines, " "))
		}
	}
	file := path.Base(strings.ReplaceAll(fn.FilePath, "\\", "/"))
	stem := strings.TrimSuffix(file, path.Ext(file))
	switch stem {
	case "", ".", "main", "__init__", "utils":
	default:
		parts = append(parts, spaced(stem))
	}
	return strings.Join(parts, "\n")
}

func spaced(s string) string { return strings.ReplaceAll(s, "_", " ") }

func (m *Matcher) rankKeyword(functions []model.FunctionInfo, request string) []Scored {
	words := wordSet(strings.ToLower(request))

	scored := make([]Scored, 0, len(functions))
	for _, fn := range functions {
		scored = append(scored, Scored{Function: fn, Score: KeywordScore(fn, words)})
	}
	sortScored(scored)

	kept := scored[:0]
	for _, s := range scored {
		if s.Score >= m.cfg.MinKeywordScore {
			kept = append(kept, s)
		}
	}
	m.logTop(ModeKeyword, kept)
	return kept
}

// KeywordScore weighs overlap between request words and a function's name,
// docstring, class and path, plus bonuses for long docstrings and modest
// parameter counts.
func KeywordScore(fn model.FunctionInfo, request map[string]struct{}) float64 {
	score := 3 * float64(overlap(request, wordSet(spaced(strings.ToLower(fn.Name)))))
	if fn.Docstring != "" {
		score += 2 * float64(overlap(request, wordSet(strings.ToLower(fn.Docstring))))
	}
	if fn.ClassName != "" {
		score += 1.5 * float64(overlap(request, wordSet(spaced(strings.ToLower(fn.ClassName)))))
	}
	filePath := strings.NewReplacer("/", " ", "_", " ").Replace(strings.ToLower(fn.FilePath))
	score += float64(overlap(request, wordSet(filePath)))

	if len(fn.Docstring) > 50 {
		score++
	}
	if n := len(fn.Parameters); n >= 1 && n <= 5 {
		score += 0.5
	}
	return score
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for w := range b {
		if _, ok := a[w]; ok {
			n++
		}
	}
	return n
}

func sortScored(s []Scored) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Score > s[j].Score })
}

func (m *Matcher) logTop(mode Mode, ranked []Scored) {
	for i, s := range ranked {
		if i == topScoresLogged {
			break
		}
		m.logger.Debug("semantic.rank.top",
			"mode", mode,
			"rank", i+1,
			"function", s.Function.QualifiedName(),
			"score", s.Score,
		)
	}
}
