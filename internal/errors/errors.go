// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides the user-facing error type of the mcpify CLI.
//
// A UserError says what went wrong, why, and how to fix it, and carries the
// process exit code. FromDomain converts the typed errors of the pipeline
// packages into UserErrors so every command reports failures the same way:
//
//	result, err := det.Detect(ctx, path)
//	if err != nil {
//	    errors.FatalError(errors.FromDomain(err), jsonMode)
//	}
//
// Terminal output is colored:
//
//	Error: No API key configured for openai
//	Cause: OPENAI_API_KEY is not set
//	Fix:   Export OPENAI_API_KEY or run with --strategy heuristic
//
// # Exit Codes
//
//   - ExitSuccess (0)
//   - ExitConfig (1): missing or invalid configuration and credentials
//   - ExitProvider (2): an LLM or embedding provider rejected a request
//   - ExitNetwork (3): a provider could not be reached
//   - ExitInput (4): bad arguments
//   - ExitPermission (5): file access denied
//   - ExitNotFound (6): project path or file missing
//   - ExitInternal (10): bugs
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/kraklabs/mcpify/pkg/detect"
	"github.com/kraklabs/mcpify/pkg/embedding"
	"github.com/kraklabs/mcpify/pkg/llm"
	"github.com/kraklabs/mcpify/pkg/model"
	"github.com/kraklabs/mcpify/pkg/project"
)

// Exit codes.
const (
	ExitSuccess    = 0
	ExitConfig     = 1
	ExitProvider   = 2
	ExitNetwork    = 3
	ExitInput      = 4
	ExitPermission = 5
	ExitNotFound   = 6
	ExitInternal   = 10
)

// UserError is an error with a cause, a suggested fix and an exit code.
type UserError struct {
	// Message describes what went wrong.
	Message string
	// Cause explains why.
	Cause string
	// Fix is an actionable suggestion.
	Fix string

	ExitCode int

	// Err is the wrapped error, visible to errors.Is and errors.As.
	Err error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func newUserError(code int, msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: code, Err: err}
}

// NewConfigError reports a missing or invalid configuration.
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitConfig, msg, cause, fix, err)
}

// NewProviderError reports a provider that answered with a failure.
func NewProviderError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitProvider, msg, cause, fix, err)
}

// NewNetworkError reports a provider that could not be reached.
func NewNetworkError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitNetwork, msg, cause, fix, err)
}

// NewInputError reports invalid arguments. It wraps nothing.
func NewInputError(msg, cause, fix string) *UserError {
	return newUserError(ExitInput, msg, cause, fix, nil)
}

// NewPermissionError reports denied file access.
func NewPermissionError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitPermission, msg, cause, fix, err)
}

// NewNotFoundError reports a missing project or file. It wraps nothing.
func NewNotFoundError(msg, cause, fix string) *UserError {
	return newUserError(ExitNotFound, msg, cause, fix, nil)
}

// NewInternalError reports a bug.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitInternal, msg, cause, fix, err)
}

// FromDomain maps pipeline errors to UserErrors. A UserError anywhere in the
// chain is returned as is; unrecognized errors become internal errors.
func FromDomain(err error) *UserError {
	if err == nil {
		return nil
	}

	var (
		ue       *UserError
		notFound *project.PathNotFoundError
		llmCred  *llm.CredentialError
		embCred  *embedding.CredentialError
		llmHTTP  *llm.StatusError
		embHTTP  *embedding.StatusError
		invalid  *model.ValidationError
		netErr   net.Error
	)
	switch {
	case stderrors.As(err, &ue):
		return ue
	case stderrors.As(err, &notFound):
		return NewNotFoundError(
			"Project not found",
			fmt.Sprintf("%s does not exist or is not a directory", notFound.Path),
			"Pass the path of a project directory",
		)
	case stderrors.As(err, &llmCred):
		return NewConfigError(
			fmt.Sprintf("No API key configured for %s", llmCred.Provider),
			fmt.Sprintf("%s is not set", llmCred.EnvVar),
			fmt.Sprintf("Export %s or run with --strategy heuristic", llmCred.EnvVar),
			err,
		)
	case stderrors.As(err, &embCred):
		return NewConfigError(
			fmt.Sprintf("No API key configured for %s embeddings", embCred.Provider),
			fmt.Sprintf("%s is not set", embCred.EnvVar),
			fmt.Sprintf("Export %s or unset the embedding provider to use keyword matching", embCred.EnvVar),
			err,
		)
	case stderrors.Is(err, detect.ErrStrategiesExhausted):
		return NewConfigError(
			"No detection strategy could be started",
			err.Error(),
			"Configure an LLM provider or use --strategy heuristic",
			err,
		)
	case stderrors.As(err, &llmHTTP):
		return providerStatus(llmHTTP.Provider, llmHTTP.StatusCode, err)
	case stderrors.As(err, &embHTTP):
		return providerStatus(embHTTP.Provider, embHTTP.StatusCode, err)
	case stderrors.As(err, &invalid):
		return NewInternalError("Detection produced an invalid result", invalid.Error(), reportFix, err)
	case stderrors.Is(err, context.Canceled):
		return newUserError(ExitInternal, "Interrupted", "", "", err)
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.As(err, &netErr):
		return NewNetworkError("Provider request failed", "The request timed out or the connection failed", "Check the provider URL and your network, then retry", err)
	case stderrors.Is(err, fs.ErrPermission):
		return NewPermissionError("Permission denied", err.Error(), "Check file permissions", err)
	case stderrors.Is(err, fs.ErrNotExist):
		return newUserError(ExitNotFound, "File not found", err.Error(), "Check the path and try again", err)
	}
	return NewInternalError("Unexpected error", err.Error(), reportFix, err)
}

const reportFix = "This is a bug. Please report it at github.com/kraklabs/mcpify/issues"

func providerStatus(provider string, status int, err error) *UserError {
	cause := fmt.Sprintf("%s returned HTTP %d", provider, status)
	switch {
	case status == 401 || status == 403:
		return NewConfigError("Provider rejected the credentials", cause, "Check the API key for "+provider, err)
	case status == 429:
		return NewProviderError("Provider rate limit reached", cause, "Wait and retry, or lower the request rate", err)
	case status >= 500:
		return NewNetworkError("Provider is unavailable", cause, "Retry later", err)
	}
	return NewProviderError("Provider request failed", cause, "Check the model name and provider settings", err)
}

var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format renders the error for a terminal. Empty Cause and Fix lines are
// omitted. Colors are disabled by noColor or NO_COLOR.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")
	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}
	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}
	return out.String()
}

// ErrorJSON is the --json form of a UserError.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the error for machine output.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
}

// FatalError prints err to stderr and exits. Errors that are not
// UserErrors are passed through FromDomain first.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}
	ue := FromDomain(err)
	if jsonOutput {
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		_ = enc.Encode(ue.ToJSON())
	} else {
		fmt.Fprint(os.Stderr, ue.Format(false))
	}
	os.Exit(ue.ExitCode)
}
