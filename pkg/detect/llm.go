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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kraklabs/mcpify/pkg/llm"
	"github.com/kraklabs/mcpify/pkg/model"
)

// LLMConfidence is the confidence reported by the LLM strategy.
const LLMConfidence = 0.85

const (
	readmeLimit      = 1500
	fileLimit        = 2500
	maxContextFiles  = 5
	listingDepth     = 2
	listingMaxItems  = 100
	enhanceLimit     = 800
	maxPromptFuncs   = 50
	analyzeMaxTokens = 2000
	analyzeTemp      = 0.1
	detectMaxTokens  = 4000
	detectTemp       = 0.2
)

// ErrInvalidResponse marks a model reply that could not be turned into tools.
var ErrInvalidResponse = errors.New("invalid model response")

const detectSystemPrompt = `You are an expert software engineer specializing in API analysis and tool detection. Your task is to analyze projects and identify all tools/APIs/commands that can be exposed as MCP (Model Context Protocol) tools.

For each tool you find, name the Python function that implements it, give the tool a clear snake_case name, describe what it does, and list its parameters with accurate types.

Always provide detailed, accurate analysis in JSON format.`

const analyzeSystemPrompt = "You are a helpful assistant that analyzes code and generates MCP tool specifications. Always respond with valid JSON."

const toolObjectFormat = `{
  "function_name": "name of the implementing function",
  "tool_name": "tool_name",
  "description": "what the tool does",
  "args": ["optional", "command", "template", "{param}"],
  "parameters": [
    {"name": "param", "type": "string|integer|number|boolean|array|object", "description": "what it is", "required": true}
  ]
}`

// LLMConfig configures the LLM strategy.
type LLMConfig struct {
	// Provider, when set, is used as is and Provider config is ignored.
	Provider llm.Provider `yaml:"-"`

	llm.ProviderConfig `yaml:",inline"`
}

// ToolProposal is one tool suggested by the model for a named function.
type ToolProposal struct {
	FunctionName string
	ToolName     string
	Description  string
	Parameters   []model.ParamSpec
	Args         []string
}

// ToolSpec converts the proposal into a detector-level spec with a snake
// case name and default args when none were given.
func (p ToolProposal) ToolSpec() model.ToolSpec {
	args := p.Args
	if len(args) == 0 {
		args = []string{p.FunctionName}
		for _, param := range p.Parameters {
			args = append(args, "{"+param.Name+"}")
		}
	}
	return model.ToolSpec{
		Name:        SnakeCase(p.ToolName),
		Description: p.Description,
		Args:        args,
		Parameters:  p.Parameters,
	}
}

// LLMStrategy asks a language model to find tools in a project.
type LLMStrategy struct {
	provider llm.Provider
	model    string
	logger   *slog.Logger
}

// NewLLM builds the strategy. A networked provider without a key fails with
// *llm.CredentialError before any request is made.
func NewLLM(cfg LLMConfig, logger *slog.Logger) (*LLMStrategy, error) {
	if logger == nil {
		logger = slog.Default()
	}
	provider := cfg.Provider
	if provider == nil {
		pc := cfg.ProviderConfig
		if pc.Logger == nil {
			pc.Logger = logger
		}
		p, err := llm.NewProvider(pc)
		if err != nil {
			return nil, err
		}
		provider = p
	}
	return &LLMStrategy{provider: provider, model: cfg.DefaultModel, logger: logger}, nil
}

func (s *LLMStrategy) Name() string { return "llm" }

func (s *LLMStrategy) Confidence() float64 { return LLMConfidence }

// DetectTools sends one bounded description of the project to the model and
// parses the tools out of its reply.
func (s *LLMStrategy) DetectTools(ctx context.Context, root string, info *model.ProjectInfo) ([]model.ToolSpec, error) {
	prompt := detectPrompt(ProjectContext(root, info))
	resp, err := s.provider.Chat(ctx, llm.ChatRequest{
		Messages:    llm.BuildMessages(detectSystemPrompt, prompt),
		Model:       s.model,
		MaxTokens:   detectMaxTokens,
		Temperature: detectTemp,
	})
	if err != nil {
		s.logger.Error("detect.llm.request_failed", "provider", s.provider.Name(), "err", err)
		return nil, fmt.Errorf("llm analysis: %w", err)
	}

	tools := ParseToolSpecs(resp.Message.Content, s.logger)
	s.logger.Info("detect.llm.done", "provider", s.provider.Name(), "tools", len(tools))
	return tools, nil
}

// EnhanceTool asks the model to improve one tool. The input is returned
// unchanged on any failure.
func (s *LLMStrategy) EnhanceTool(ctx context.Context, spec model.ToolSpec) model.ToolSpec {
	raw, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return spec
	}
	prompt := fmt.Sprintf(`Enhance this tool definition with a better description and parameter details:

Tool: %s

Provide the improved tool definition as a single JSON object with:
- a clear, concise description
- detailed parameter descriptions
- correct parameter types
- the same args structure

Format:
%s`, truncate(string(raw), enhanceLimit), toolObjectFormat)

	resp, err := s.provider.Chat(ctx, llm.ChatRequest{
		Messages:    llm.BuildMessages(analyzeSystemPrompt, prompt),
		Model:       s.model,
		MaxTokens:   analyzeMaxTokens,
		Temperature: analyzeTemp,
	})
	if err != nil {
		s.logger.Warn("detect.llm.enhance_failed", "tool", spec.Name, "err", err)
		return spec
	}

	improved, err := parseEnhanced(resp.Message.Content, spec)
	if err != nil {
		s.logger.Debug("detect.llm.enhance_invalid", "tool", spec.Name, "err", err)
		return spec
	}
	return improved
}

// AnalyzeRequest asks the model which of functions best serve request.
func (s *LLMStrategy) AnalyzeRequest(ctx context.Context, request string, functions []model.FunctionInfo) []ToolProposal {
	if len(functions) == 0 {
		return nil
	}
	resp, err := s.provider.Chat(ctx, llm.ChatRequest{
		Messages:    llm.BuildMessages(analyzeSystemPrompt, analyzePrompt(request, functions)),
		Model:       s.model,
		MaxTokens:   analyzeMaxTokens,
		Temperature: analyzeTemp,
	})
	if err != nil {
		s.logger.Error("detect.llm.analyze_failed", "provider", s.provider.Name(), "err", err)
		return nil
	}
	proposals, err := ParseProposals(resp.Message.Content, s.logger)
	if err != nil {
		s.logger.Warn("detect.llm.analyze_invalid", "err", err)
		return nil
	}
	return proposals
}

func detectPrompt(projectContext string) string {
	return fmt.Sprintf(`Analyze this project and identify every tool that can be exposed through MCP.

%s

Consider:
1. CLI Commands: argument parser options, subcommands, flags
2. Web APIs: HTTP endpoints, route handlers
3. Functions: public functions that perform useful operations
4. Scripts: executable scripts with clear purposes
5. Interactive Commands: commands handled by input loops

Respond with a JSON array of tool objects in this format:
[
%s
]

Only include tools that make sense to expose. Return [] when there are none.`, projectContext, toolObjectFormat)
}

func analyzePrompt(request string, functions []model.FunctionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User request: %q\n\nAvailable functions:\n", request)
	for i, fn := range functions {
		if i == maxPromptFuncs {
			fmt.Fprintf(&b, "... and %d more\n", len(functions)-maxPromptFuncs)
			break
		}
		doc := fn.Docstring
		if doc == "" {
			doc = "No documentation"
		}
		fmt.Fprintf(&b, "\n%d. %s\n   Signature: %s\n   Doc: %s\n   Location: %s:%d\n",
			i+1, fn.QualifiedName(), fn.Signature(), doc, fn.FilePath, fn.LineNumber)
	}
	fmt.Fprintf(&b, `
Select the 1-3 functions most relevant to the request and describe an MCP tool for each.
Use kebab-case tool names. Respond with a JSON array in this format:
[
%s
]`, toolObjectFormat)
	return b.String()
}

// ProjectContext renders the bounded project description sent to the model.
func ProjectContext(root string, info *model.ProjectInfo) string {
	var parts []string
	parts = append(parts,
		"Project Name: "+info.Name,
		"Project Type: "+string(info.ProjectType),
		"Description: "+info.Description,
	)
	if len(info.Dependencies) > 0 {
		parts = append(parts, "Dependencies: "+strings.Join(info.Dependencies, ", "))
	}
	if info.ReadmeContent != "" {
		parts = append(parts, "README:\n"+truncate(info.ReadmeContent, readmeLimit))
	}
	if listing := directoryListing(root); listing != "" {
		parts = append(parts, "Directory Structure:\n"+listing)
	}

	if len(info.MainFiles) > 0 {
		parts = append(parts, "\nKey Code Files:")
		for i, f := range info.MainFiles {
			if i == maxContextFiles {
				break
			}
			data, err := os.ReadFile(filepath.Join(root, f))
			if err != nil {
				continue
			}
			parts = append(parts, fmt.Sprintf("\n=== %s ===\n%s", f, truncate(string(data), fileLimit)))
		}
	}
	return strings.Join(parts, "\n")
}

// directoryListing draws the tree under root, directories first, hidden
// entries skipped, bounded in depth and size.
func directoryListing(root string) string {
	var lines []string
	var walk func(dir, prefix string, depth int)
	walk = func(dir, prefix string, depth int) {
		if depth > listingDepth {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		visible := entries[:0:0]
		for _, e := range entries {
			if !strings.HasPrefix(e.Name(), ".") {
				visible = append(visible, e)
			}
		}
		sort.SliceStable(visible, func(i, j int) bool {
			if visible[i].IsDir() != visible[j].IsDir() {
				return visible[i].IsDir()
			}
			return visible[i].Name() < visible[j].Name()
		})
		for i, e := range visible {
			if len(lines) >= listingMaxItems {
				return
			}
			last := i == len(visible)-1
			branch, next := "├── ", "│   "
			if last {
				branch, next = "└── ", "    "
			}
			name := e.Name()
			if e.IsDir() {
				name += "/"
			}
			lines = append(lines, prefix+branch+name)
			if e.IsDir() {
				walk(filepath.Join(dir, e.Name()), prefix+next, depth+1)
			}
		}
	}
	walk(root, "", 1)
	return strings.Join(lines, "\n")
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ParseToolSpecs extracts tools from a model reply. Malformed replies yield
// no tools and malformed elements are dropped.
func ParseToolSpecs(content string, logger *slog.Logger) []model.ToolSpec {
	proposals, err := ParseProposals(content, logger)
	if err != nil {
		if logger != nil {
			logger.Debug("detect.llm.parse_failed", "err", err)
		}
		return []model.ToolSpec{}
	}
	tools := make([]model.ToolSpec, 0, len(proposals))
	for _, p := range proposals {
		tools = append(tools, p.ToolSpec())
	}
	return tools
}

// ParseProposals decodes the JSON array embedded in a model reply. It
// returns ErrInvalidResponse when no array can be decoded.
func ParseProposals(content string, logger *slog.Logger) ([]ToolProposal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON array", ErrInvalidResponse)
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(content[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	proposals := make([]ToolProposal, 0, len(items))
	for i, item := range items {
		p, err := proposalFromMap(item)
		if err != nil {
			logger.Debug("detect.llm.element_dropped", "index", i, "err", err)
			continue
		}
		proposals = append(proposals, p)
	}
	return proposals, nil
}

func proposalFromMap(m map[string]any) (ToolProposal, error) {
	var p ToolProposal
	var ok bool
	if p.FunctionName, ok = stringField(m, "function_name"); !ok {
		return p, errors.New("missing function_name")
	}
	if p.ToolName, ok = stringField(m, "tool_name"); !ok {
		return p, errors.New("missing tool_name")
	}
	if p.Description, ok = stringField(m, "description"); !ok {
		return p, errors.New("missing description")
	}
	params, err := paramsField(m)
	if err != nil {
		return p, err
	}
	p.Parameters = params
	p.Args, err = argsField(m)
	if err != nil {
		return p, err
	}
	return p, nil
}

func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}

func paramsField(m map[string]any) ([]model.ParamSpec, error) {
	raw, ok := m["parameters"].([]any)
	if !ok {
		return nil, errors.New("parameters is not a list")
	}
	params := make([]model.ParamSpec, 0, len(raw))
	for _, r := range raw {
		pm, ok := r.(map[string]any)
		if !ok {
			return nil, errors.New("parameter is not an object")
		}
		name, ok := stringField(pm, "name")
		if !ok {
			return nil, errors.New("parameter missing name")
		}
		typeName, _ := pm["type"].(string)
		typ, ok := model.ParseParamType(typeName)
		if !ok {
			return nil, fmt.Errorf("parameter %s: invalid type %q", name, typeName)
		}
		desc, ok := pm["description"].(string)
		if !ok {
			return nil, fmt.Errorf("parameter %s missing description", name)
		}
		required, ok := pm["required"].(bool)
		if !ok {
			return nil, fmt.Errorf("parameter %s missing required", name)
		}
		params = append(params, model.ParamSpec{Name: name, Type: typ, Description: desc, Required: required})
	}
	return params, nil
}

func argsField(m map[string]any) ([]string, error) {
	raw, present := m["args"]
	if !present || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, errors.New("args is not a list")
	}
	args := make([]string, 0, len(list))
	for _, a := range list {
		s, ok := a.(string)
		if !ok {
			return nil, errors.New("args must be strings")
		}
		args = append(args, s)
	}
	return args, nil
}

// parseEnhanced decodes a single improved tool object. Missing fields keep
// the original values.
func parseEnhanced(content string, orig model.ToolSpec) (model.ToolSpec, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return orig, fmt.Errorf("%w: no JSON object", ErrInvalidResponse)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(content[start:end+1]), &m); err != nil {
		return orig, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	out := orig
	if desc, ok := stringField(m, "description"); ok {
		out.Description = desc
	}
	if _, ok := m["parameters"]; ok {
		params, err := paramsField(m)
		if err != nil {
			return orig, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		out.Parameters = params
	}
	args, err := argsField(m)
	if err != nil {
		return orig, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(args) > 0 {
		out.Args = args
	}
	if err := out.Validate(); err != nil {
		return orig, err
	}
	return out, nil
}

// SnakeCase lowercases s and joins its words with underscores. Word breaks
// are separators and lower-to-upper case changes.
func SnakeCase(s string) string {
	var b strings.Builder
	prevLower := false
	pendingSep := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if (pendingSep || (prevLower && unicode.IsUpper(r))) && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		default:
			pendingSep = true
			prevLower = false
		}
	}
	return b.String()
}
