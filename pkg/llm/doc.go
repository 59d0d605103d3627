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

// Package llm provides a unified chat interface over the LLM providers used
// for tool detection and request analysis.
//
// # Supported Providers
//
//   - OpenAI and OpenAI-compatible APIs (default model gpt-4o-mini)
//   - Anthropic (Claude models)
//   - Ollama, local models, no API key required
//   - Mock, for tests
//
// # Quick Start
//
//	provider, err := llm.NewProvider(llm.ProviderConfig{Type: "openai"})
//	if err != nil {
//	    var cerr *llm.CredentialError
//	    if errors.As(err, &cerr) {
//	        // no key configured; fall back to offline detection
//	    }
//	    return err
//	}
//
//	resp, err := provider.Chat(ctx, llm.ChatRequest{
//	    Messages:    llm.BuildMessages(system, user),
//	    Temperature: 0.1,
//	    MaxTokens:   2000,
//	})
//
// # Credentials
//
// Networked providers refuse to construct without an API key. The key comes
// from ProviderConfig.APIKey, else the provider's environment variable:
//
//   - OPENAI_API_KEY (OPENAI_BASE_URL, OPENAI_MODEL optional)
//   - ANTHROPIC_API_KEY (ANTHROPIC_MODEL optional)
//
// Ollama reads OLLAMA_HOST or OLLAMA_BASE_URL (default http://localhost:11434)
// and OLLAMA_MODEL.
//
// # Retries
//
// Transient failures (timeouts, refused connections, HTTP 429 and 5xx) are
// retried up to MaxRetries times with exponential backoff and full jitter.
// Other errors are returned immediately.
package llm
