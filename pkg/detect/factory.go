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
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kraklabs/mcpify/pkg/llm"
)

// Kind names a detection strategy selection policy.
type Kind string

const (
	KindAuto      Kind = "auto"
	KindLLM       Kind = "llm"
	KindHeuristic Kind = "heuristic"
	KindComposite Kind = "composite"
	KindLocalOnly Kind = "local-only"
)

// Kinds lists every accepted Kind.
var Kinds = []Kind{KindAuto, KindLLM, KindHeuristic, KindComposite, KindLocalOnly}

// ErrStrategiesExhausted is returned when no candidate strategy can be built.
var ErrStrategiesExhausted = errors.New("no detection strategy available")

// ParseKind validates s. The empty string selects KindAuto.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return KindAuto, nil
	}
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown detection strategy %q (want one of auto, llm, heuristic, composite, local-only)", s)
}

// Candidate is a strategy that may fail to construct.
type Candidate struct {
	Name      string
	Networked bool
	Build     func() (Strategy, error)
}

// FirstSuccess returns the first candidate that builds.
func FirstSuccess(candidates []Candidate) (Strategy, error) {
	return firstSuccess(candidates, nil)
}

func firstSuccess(candidates []Candidate, logger *slog.Logger) (Strategy, error) {
	var last error
	for _, c := range candidates {
		s, err := c.Build()
		if err == nil {
			return s, nil
		}
		last = err
		if logger != nil {
			logger.Warn("detect.strategy.unavailable", "strategy", c.Name, "err", err)
		}
	}
	if last == nil {
		return nil, ErrStrategiesExhausted
	}
	return nil, fmt.Errorf("%w: %w", ErrStrategiesExhausted, last)
}

// FactoryConfig carries what the factory needs to build any strategy.
type FactoryConfig struct {
	LLM       LLMConfig
	Heuristic []HeuristicOption
	Detector  []DetectorOption
	// Enhance passes detected tools through the LLM strategy when it can be
	// built. It is ignored for local-only.
	Enhance bool
	Logger  *slog.Logger
}

// Candidates returns the LLM and heuristic candidates in preference order.
func (cfg FactoryConfig) Candidates() []Candidate {
	logger := cfg.logger()
	return []Candidate{
		{
			Name:      "llm",
			Networked: cfg.LLM.Provider == nil && llm.Networked(cfg.LLM.Type),
			Build:     func() (Strategy, error) { return NewLLM(cfg.LLM, logger) },
		},
		{
			Name:  "heuristic",
			Build: func() (Strategy, error) { return NewHeuristic(logger, cfg.Heuristic...), nil },
		},
	}
}

func (cfg FactoryConfig) logger() *slog.Logger {
	if cfg.Logger == nil {
		return slog.Default()
	}
	return cfg.Logger
}

// New builds a Detector for kind.
//
//   - auto tries the LLM strategy and falls back to the heuristic one, both
//     when the LLM strategy cannot be built and when a run fails or finds nothing
//   - composite merges the LLM strategy, when it builds, with the heuristic one
//   - local-only never selects a networked strategy
func New(kind Kind, cfg FactoryConfig) (*Detector, error) {
	logger := cfg.logger()
	candidates := cfg.Candidates()

	var (
		s   Strategy
		err error
	)
	switch kind {
	case KindAuto, "":
		s, err = firstSuccess(candidates, logger)
		if ls, ok := s.(*LLMStrategy); ok && err == nil {
			h, herr := candidates[1].Build()
			if herr == nil {
				s = NewFallback(logger, ls, h)
			}
		}
	case KindLLM:
		s, err = candidates[0].Build()
	case KindHeuristic:
		s, err = candidates[1].Build()
	case KindComposite:
		var members []Strategy
		for _, c := range candidates {
			m, berr := c.Build()
			if berr != nil {
				logger.Warn("detect.strategy.unavailable", "strategy", c.Name, "err", berr)
				continue
			}
			members = append(members, m)
		}
		if len(members) == 0 {
			return nil, ErrStrategiesExhausted
		}
		s = NewComposite(logger, members...)
	case KindLocalOnly:
		var local []Candidate
		for _, c := range candidates {
			if !c.Networked {
				local = append(local, c)
			}
		}
		s, err = firstSuccess(local, logger)
	default:
		return nil, fmt.Errorf("unknown detection strategy %q", kind)
	}
	if err != nil {
		return nil, err
	}

	opts := append([]DetectorOption{}, cfg.Detector...)
	if cfg.Enhance {
		if e := enhancerFor(kind, candidates[0], logger); e != nil {
			opts = append(opts, WithEnhancer(e))
		}
	}

	logger.Debug("detect.strategy.selected", "kind", kind, "strategy", s.Name(), "enhance", cfg.Enhance)
	return NewDetector(s, logger, opts...), nil
}

func enhancerFor(kind Kind, llmCandidate Candidate, logger *slog.Logger) Enhancer {
	if kind == KindLocalOnly && llmCandidate.Networked {
		logger.Warn("detect.enhance.skipped", "reason", "local-only never calls a networked provider")
		return nil
	}
	s, err := llmCandidate.Build()
	if err != nil {
		logger.Warn("detect.enhance.unavailable", "err", err)
		return nil
	}
	e, ok := s.(Enhancer)
	if !ok {
		return nil
	}
	return e
}
