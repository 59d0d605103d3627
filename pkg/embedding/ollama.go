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
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OllamaProvider generates embeddings with a local Ollama server.
type OllamaProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOllamaProvider creates an Ollama embedding provider.
func NewOllamaProvider(baseURL, model string, logger *slog.Logger) *OllamaProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &OllamaProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
	}
}

// isNomicModel reports whether model expects nomic task prefixes.
func isNomicModel(model string) bool {
	return strings.Contains(strings.ToLower(model), "nomic")
}

// Embed generates an embedding for text.
func (o *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	prompt := text
	if isNomicModel(o.model) {
		prompt = "search_document: " + text
	}

	var resp struct {
		Embedding []float64 `json:"embedding"`
	}
	err := postJSON(ctx, o.httpClient, "ollama", o.baseURL+"/api/embeddings", nil,
		map[string]string{"model": o.model, "prompt": prompt}, &resp, ollamaDetail)
	if err != nil {
		return nil, fmt.Errorf("ollama embed (is Ollama running at %s?): %w", o.baseURL, err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned empty embedding")
	}
	return Normalize(toFloat32(resp.Embedding)), nil
}

func ollamaDetail(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil {
		return e.Error
	}
	return ""
}
