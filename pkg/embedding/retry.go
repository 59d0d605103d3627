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
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"time"
)

// RetryConfig controls classified retries of embedding calls.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// DefaultRetryConfig returns 3 attempts starting at 200ms, capped at 2s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3, InitialBackoff: 200 * time.Millisecond, MaxBackoff: 2 * time.Second, Multiplier: 2.0}
}

// Retrying wraps a provider and retries transient failures with exponential
// backoff and full jitter. It always exposes EmbedBatch; when the wrapped
// provider has no batch path it embeds texts one at a time.
type Retrying struct {
	inner  Provider
	cfg    RetryConfig
	logger *slog.Logger
}

// WithRetry wraps p. Zero fields of cfg take DefaultRetryConfig values.
func WithRetry(p Provider, cfg RetryConfig, logger *slog.Logger) *Retrying {
	def := DefaultRetryConfig()
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.Multiplier <= 1.0 {
		cfg.Multiplier = def.Multiplier
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrying{inner: p, cfg: cfg, logger: logger}
}

// Embed embeds one text with retries.
func (r *Retrying) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := r.do(ctx, func() error {
		var err error
		vec, err = r.inner.Embed(ctx, text)
		return err
	})
	return vec, err
}

// EmbedBatch embeds texts with retries around the whole batch.
func (r *Retrying) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vecs [][]float32
	err := r.do(ctx, func() error {
		var err error
		vecs, err = EncodeAll(ctx, r.inner, texts)
		return err
	})
	return vecs, err
}

func (r *Retrying) do(ctx context.Context, call func() error) error {
	var err error
	for attempt := 0; attempt < r.cfg.MaxRetries; attempt++ {
		start := time.Now()
		err = call()
		recordEmbedCall(err, time.Since(start))
		if err == nil {
			return nil
		}
		if !isRetryable(err) || attempt == r.cfg.MaxRetries-1 {
			break
		}
		sleep := computeBackoffWithJitter(r.cfg.InitialBackoff, attempt, r.cfg.Multiplier, r.cfg.MaxBackoff)
		recordEmbedRetry()
		r.logger.Warn("embedding.retry", "attempt", attempt+1, "sleep_ms", sleep.Milliseconds(), "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
	return err
}

// isRetryable classifies provider errors: network timeouts and HTTP 5xx/429
// are retryable.
func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"timeout", "temporarily unavailable", "connection refused", "connection reset", "deadline exceeded", "eof"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// computeBackoffWithJitter returns exponential backoff with full jitter.
func computeBackoffWithJitter(base time.Duration, attempt int, mult float64, capDur time.Duration) time.Duration {
	exp := float64(base)
	for i := 0; i < attempt; i++ {
		exp *= mult
	}
	d := time.Duration(exp)
	if d > capDur {
		d = capDur
	}
	if d <= 0 {
		return base
	}
	return time.Duration(rand.Int64N(int64(d) + 1))
}
