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
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Provider generates an embedding vector for a text.
type Provider interface {
	// Embed returns a normalized vector (L2 norm = 1.0) or an error.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchProvider encodes many texts in one call. The result is index-aligned
// with texts.
type BatchProvider interface {
	Provider
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// CredentialError is returned when a networked provider is requested
// without its API key.
type CredentialError struct {
	Provider string
	EnvVar   string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s embeddings: API key not configured (set %s)", e.Provider, e.EnvVar)
}

// EncodeAll embeds texts, using EmbedBatch when p supports it and falling
// back to one Embed call per text otherwise.
func EncodeAll(ctx context.Context, p Provider, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if bp, ok := p.(BatchProvider); ok {
		vecs, err := bp.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("embedding batch returned %d vectors for %d texts", len(vecs), len(texts))
		}
		return vecs, nil
	}

	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := p.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		vecs[i] = v
	}
	return vecs, nil
}

// CreateProvider creates an embedding provider by name.
// Supported providers:
//   - "mock": deterministic hash vectors for tests (384 dimensions)
//   - "ollama": local Ollama server (OLLAMA_BASE_URL, OLLAMA_EMBED_MODEL)
//   - "openai": OpenAI-compatible API (OPENAI_API_KEY, OPENAI_API_BASE, OPENAI_EMBED_MODEL)
//   - "nomic": Nomic Atlas API (NOMIC_API_KEY, NOMIC_API_BASE, NOMIC_MODEL)
//   - "gemini": Google Gemini API (GEMINI_API_KEY or GOOGLE_API_KEY, GEMINI_EMBED_MODEL)
//
// Networked providers are wrapped with WithRetry.
func CreateProvider(providerType string, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var p Provider
	switch strings.ToLower(providerType) {
	case "mock":
		return NewMockProvider(384), nil

	case "ollama", "local_model":
		baseURL := envOr("OLLAMA_BASE_URL", "http://localhost:11434")
		model := envOr("OLLAMA_EMBED_MODEL", "nomic-embed-text")
		p = NewOllamaProvider(baseURL, model, logger)

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, &CredentialError{Provider: "openai", EnvVar: "OPENAI_API_KEY"}
		}
		baseURL := envOr("OPENAI_API_BASE", "https://api.openai.com/v1")
		model := envOr("OPENAI_EMBED_MODEL", "text-embedding-3-small")
		p = NewOpenAIProvider(apiKey, baseURL, model, logger)

	case "nomic":
		apiKey := os.Getenv("NOMIC_API_KEY")
		if apiKey == "" {
			return nil, &CredentialError{Provider: "nomic", EnvVar: "NOMIC_API_KEY"}
		}
		baseURL := envOr("NOMIC_API_BASE", "https://api-atlas.nomic.ai/v1")
		model := envOr("NOMIC_MODEL", "nomic-embed-text-v1.5")
		p = NewNomicProvider(apiKey, baseURL, model, logger)

	case "gemini", "genai":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			apiKey = os.Getenv("GOOGLE_API_KEY")
		}
		if apiKey == "" {
			return nil, &CredentialError{Provider: "gemini", EnvVar: "GEMINI_API_KEY"}
		}
		gp, err := NewGeminiProvider(context.Background(), apiKey, os.Getenv("GEMINI_EMBED_MODEL"))
		if err != nil {
			return nil, err
		}
		p = gp

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: mock, ollama, openai, nomic, gemini)", providerType)
	}

	return WithRetry(p, DefaultRetryConfig(), logger), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
