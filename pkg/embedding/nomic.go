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

// NomicProvider generates embeddings with the Nomic Atlas API.
type NomicProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewNomicProvider creates a Nomic embedding provider.
func NewNomicProvider(apiKey, baseURL, model string, logger *slog.Logger) *NomicProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &NomicProvider{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// Embed generates an embedding for text.
func (n *NomicProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := n.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one request.
func (n *NomicProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	payload := map[string]any{
		"texts":     texts,
		"model":     n.model,
		"task_type": "search_document",
	}
	headers := map[string]string{"Authorization": "Bearer " + n.apiKey}

	var resp struct {
		Embeddings [][]float64 `json:"embeddings"`
	}
	if err := postJSON(ctx, n.httpClient, "nomic", n.baseURL+"/embedding/text", headers, payload, &resp, nomicDetail); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("nomic returned %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		out[i] = Normalize(toFloat32(e))
	}
	return out, nil
}

func nomicDetail(body []byte) string {
	var e struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &e) == nil {
		return e.Detail
	}
	return ""
}
