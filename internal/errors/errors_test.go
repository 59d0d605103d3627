// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/kraklabs/mcpify/pkg/detect"
	"github.com/kraklabs/mcpify/pkg/embedding"
	"github.com/kraklabs/mcpify/pkg/llm"
	"github.com/kraklabs/mcpify/pkg/project"
)

func TestUserError_ErrorAndUnwrap(t *testing.T) {
	inner := fmt.Errorf("file locked")
	withErr := &UserError{Message: "Cannot write config", Err: inner}
	if got := withErr.Error(); got != "Cannot write config: file locked" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(withErr, inner) {
		t.Error("errors.Is should find the wrapped error")
	}

	bare := &UserError{Message: "Invalid input"}
	if got := bare.Error(); got != "Invalid input" {
		t.Errorf("Error() = %q", got)
	}
	if bare.Unwrap() != nil {
		t.Error("Unwrap() should be nil without a wrapped error")
	}
}

func TestExitCodes_Uniqueness(t *testing.T) {
	codes := map[string]int{
		"success": ExitSuccess, "config": ExitConfig, "provider": ExitProvider,
		"network": ExitNetwork, "input": ExitInput, "permission": ExitPermission,
		"not_found": ExitNotFound, "internal": ExitInternal,
	}
	seen := make(map[int]string)
	for name, code := range codes {
		if other, dup := seen[code]; dup {
			t.Errorf("exit code %d used by %s and %s", code, name, other)
		}
		seen[code] = name
	}
}

func TestConstructors(t *testing.T) {
	inner := errors.New("inner")
	tests := []struct {
		name     string
		err      *UserError
		wantCode int
		wantWrap bool
	}{
		{"config", NewConfigError("m", "c", "f", inner), ExitConfig, true},
		{"provider", NewProviderError("m", "c", "f", inner), ExitProvider, true},
		{"network", NewNetworkError("m", "c", "f", inner), ExitNetwork, true},
		{"input", NewInputError("m", "c", "f"), ExitInput, false},
		{"permission", NewPermissionError("m", "c", "f", inner), ExitPermission, true},
		{"not found", NewNotFoundError("m", "c", "f"), ExitNotFound, false},
		{"internal", NewInternalError("m", "c", "f", inner), ExitInternal, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", tt.err.ExitCode, tt.wantCode)
			}
			if tt.err.Message != "m" || tt.err.Cause != "c" || tt.err.Fix != "f" {
				t.Errorf("fields not set: %+v", tt.err)
			}
			if got := errors.Is(tt.err, inner); got != tt.wantWrap {
				t.Errorf("errors.Is(inner) = %v, want %v", got, tt.wantWrap)
			}
		})
	}
}

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantText string
	}{
		{"path not found", &project.PathNotFoundError{Path: "/nope"}, ExitNotFound, "/nope"},
		{"llm credentials", fmt.Errorf("build: %w", &llm.CredentialError{Provider: "openai", EnvVar: "OPENAI_API_KEY"}), ExitConfig, "OPENAI_API_KEY"},
		{"embedding credentials", &embedding.CredentialError{Provider: "nomic", EnvVar: "NOMIC_API_KEY"}, ExitConfig, "NOMIC_API_KEY"},
		{"strategies exhausted", fmt.Errorf("%w: last", detect.ErrStrategiesExhausted), ExitConfig, "detection strategy"},
		{"unauthorized", &llm.StatusError{Provider: "openai", StatusCode: 401}, ExitConfig, "HTTP 401"},
		{"rate limited", &llm.StatusError{Provider: "anthropic", StatusCode: 429}, ExitProvider, "HTTP 429"},
		{"server error", &embedding.StatusError{Provider: "ollama", StatusCode: 502}, ExitNetwork, "HTTP 502"},
		{"bad request", &llm.StatusError{Provider: "openai", StatusCode: 400}, ExitProvider, "HTTP 400"},
		{"deadline", fmt.Errorf("chat: %w", context.DeadlineExceeded), ExitNetwork, "timed out"},
		{"permission", fmt.Errorf("open: %w", fs.ErrPermission), ExitPermission, "permission"},
		{"unknown", errors.New("weird"), ExitInternal, "weird"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ue := FromDomain(tt.err)
			if ue.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", ue.ExitCode, tt.wantCode)
			}
			text := ue.Message + " " + ue.Cause + " " + ue.Fix
			if !strings.Contains(text, tt.wantText) {
				t.Errorf("%q does not mention %q", text, tt.wantText)
			}
		})
	}

	if FromDomain(nil) != nil {
		t.Error("FromDomain(nil) should be nil")
	}
	orig := NewInputError("bad flag", "", "")
	if got := FromDomain(fmt.Errorf("wrapped: %w", orig)); got != orig {
		t.Error("FromDomain should return a wrapped UserError unchanged")
	}
}

func TestUserError_Format(t *testing.T) {
	err := NewConfigError("No API key configured for openai", "OPENAI_API_KEY is not set", "Export OPENAI_API_KEY", nil)
	got := err.Format(true)
	want := "Error: No API key configured for openai\nCause: OPENAI_API_KEY is not set\nFix:   Export OPENAI_API_KEY\n"
	if got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}

	minimal := (&UserError{Message: "Interrupted"}).Format(true)
	if strings.Contains(minimal, "Cause:") || strings.Contains(minimal, "Fix:") {
		t.Errorf("empty sections should be omitted: %q", minimal)
	}
}

func TestUserError_Format_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	got := NewInputError("Bad", "c", "f").Format(false)
	if strings.Contains(got, "\x1b[") {
		t.Errorf("NO_COLOR output contains ANSI codes: %q", got)
	}
}

func TestUserError_ToJSON(t *testing.T) {
	j := NewNotFoundError("Project not found", "missing", "check").ToJSON()
	if j.Error != "Project not found" || j.ExitCode != ExitNotFound || j.Cause != "missing" || j.Fix != "check" {
		t.Errorf("ToJSON() = %+v", j)
	}
}

// TestFatalError re-runs the test binary so os.Exit can be observed.
func TestFatalError(t *testing.T) {
	if os.Getenv("MCPIFY_FATAL_HELPER") == "1" {
		FatalError(NewNotFoundError("Project not found", "", ""), false)
		return
	}
	if os.Getenv("MCPIFY_FATAL_HELPER") == "plain" {
		FatalError(errors.New("boom"), true)
		return
	}

	for mode, want := range map[string]int{"1": ExitNotFound, "plain": ExitInternal} {
		cmd := helperCmd(t, mode)
		err := cmd.Run()
		var exitErr interface{ ExitCode() int }
		if !errors.As(err, &exitErr) {
			t.Fatalf("mode %s: expected exit error, got %v", mode, err)
		}
		if exitErr.ExitCode() != want {
			t.Errorf("mode %s: exit code %d, want %d", mode, exitErr.ExitCode(), want)
		}
	}

	FatalError(nil, false)
}

func helperCmd(t *testing.T, mode string) *exec.Cmd {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=^TestFatalError$")
	cmd.Env = append(os.Environ(), "MCPIFY_FATAL_HELPER="+mode)
	return cmd
}
