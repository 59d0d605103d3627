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

// Package probe checks a generated MCP server by starting it, sending a
// tools/list request over stdin and waiting for the reply on stdout.
package probe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// ToolsListRequest is written to the server's stdin.
	ToolsListRequest = `{"method":"tools/list","id":1}` + "\n"

	// TimeoutMessage is the Result.Error of a server that never answered.
	TimeoutMessage = "server did not respond within timeout"

	// DefaultTimeout applies when Probe is given a non-positive timeout.
	DefaultTimeout = 10 * time.Second

	maxLine     = 4 * 1024 * 1024
	stderrLimit = 2048
)

// Command is the server process to start.
type Command struct {
	Path string
	Args []string
	Dir  string
	// Env is appended to the current environment.
	Env []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Path + " " + strings.Join(c.Args, " "))
}

// Result is the outcome of one probe.
type Result struct {
	OK      bool             `json:"ok"`
	Tools   []map[string]any `json:"tools,omitempty"`
	Error   string           `json:"error,omitempty"`
	Elapsed time.Duration    `json:"elapsed"`
}

// reply is the first meaningful line read from the server.
type reply struct {
	tools  []map[string]any
	errMsg string
}

// Probe starts cmd, asks it for its tools and stops it. A server that
// answers with an error or not at all yields a Result with OK false; the
// returned error is reserved for failures to start the process and for
// cancellation of ctx.
func Probe(ctx context.Context, cmd Command, timeout time.Duration) (*Result, error) {
	return ProbeWithLogger(ctx, cmd, timeout, nil)
}

// ProbeWithLogger is Probe with an explicit logger. A nil logger uses
// slog.Default().
func ProbeWithLogger(ctx context.Context, cmd Command, timeout time.Duration, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if cmd.Path == "" {
		return nil, errors.New("probe: empty command")
	}

	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(runCtx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = append(os.Environ(), cmd.Env...)
	c.WaitDelay = time.Second

	var stderr bytes.Buffer
	c.Stderr = &limitedWriter{buf: &stderr, limit: stderrLimit}
	stdin, err := c.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("probe stdin: %w", err)
	}
	stdout, err := c.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("probe stdout: %w", err)
	}
	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", cmd, err)
	}
	logger.Debug("probe.started", "command", cmd.String(), "pid", c.Process.Pid)

	var got *reply
	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		// Stopping the run context once a reply or EOF arrives kills the
		// server and releases the waiter below.
		defer cancel()
		if _, err := io.WriteString(stdin, ToolsListRequest); err != nil {
			logger.Debug("probe.write.failed", "err", err)
		}
		got = readReply(stdout, logger)
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		return stdin.Close()
	})
	_ = group.Wait()
	waitErr := c.Wait()
	timedOut := errors.Is(runCtx.Err(), context.DeadlineExceeded)

	res := &Result{Elapsed: time.Since(start)}
	switch {
	case got != nil && got.errMsg != "":
		res.Error = got.errMsg
	case got != nil:
		res.OK = true
		res.Tools = got.tools
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case timedOut:
		res.Error = TimeoutMessage
	default:
		res.Error = "server exited without a tools/list reply"
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			res.Error += ": " + msg
		} else if waitErr != nil {
			res.Error += ": " + waitErr.Error()
		}
	}

	logger.Info("probe.done",
		"command", cmd.String(),
		"ok", res.OK,
		"tools", len(res.Tools),
		"elapsed_ms", res.Elapsed.Milliseconds(),
	)
	return res, nil
}

// readReply scans stdout until a JSON line carrying a tools array or an
// error field. Other lines are ignored.
func readReply(r io.Reader, logger *slog.Logger) *reply {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var msg map[string]any
		if err := json.Unmarshal(line, &msg); err != nil {
			continue
		}
		if rep, ok := parseReply(msg); ok {
			return rep
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Debug("probe.read.failed", "err", err)
	}
	return nil
}

func parseReply(msg map[string]any) (*reply, bool) {
	if e, ok := msg["error"]; ok && e != nil {
		return &reply{errMsg: errorMessage(e)}, true
	}
	// Both a bare {"tools": [...]} and a JSON-RPC {"result": {"tools": [...]}}
	// are accepted.
	if result, ok := msg["result"].(map[string]any); ok {
		msg = result
	}
	raw, ok := msg["tools"].([]any)
	if !ok {
		return nil, false
	}
	tools := make([]map[string]any, 0, len(raw))
	for _, t := range raw {
		if m, ok := t.(map[string]any); ok {
			tools = append(tools, m)
		}
	}
	return &reply{tools: tools}, true
}

func errorMessage(e any) string {
	switch v := e.(type) {
	case string:
		return v
	case map[string]any:
		if m, ok := v["message"].(string); ok && m != "" {
			return m
		}
	}
	raw, _ := json.Marshal(e)
	return string(raw)
}

// limitedWriter keeps the first limit bytes and discards the rest.
type limitedWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if room := w.limit - w.buf.Len(); room > 0 {
		if len(p) > room {
			w.buf.Write(p[:room])
		} else {
			w.buf.Write(p)
		}
	}
	return len(p), nil
}
