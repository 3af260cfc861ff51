// Package toolrunner runs external command-line tools synchronously and
// captures their output and exit status.
package toolrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"context-generator-be/internal/pkg/apperror"
	"context-generator-be/internal/pkg/logger"

	"mvdan.cc/sh/v3/syntax"
)

// DefaultTimeout bounds a single invocation when the caller sets none.
const DefaultTimeout = 300 * time.Second

type Invocation struct {
	Name    string
	Args    []string
	Dir     string
	Env     map[string]string
	Timeout time.Duration
}

type Result struct {
	Stdout      string
	Stderr      string
	Combined    string
	ExitCode    int
	Duration    time.Duration
	CommandLine string
}

type Runner interface {
	Run(ctx context.Context, inv Invocation) (*Result, error)
}

type ExecRunner struct {
	logger   logger.ILogger
	lookPath func(string) (string, error)
}

var _ Runner = &ExecRunner{}

func NewExecRunner(log logger.ILogger) *ExecRunner {
	return &ExecRunner{
		logger:   log,
		lookPath: exec.LookPath,
	}
}

// Run resolves the tool on PATH, runs it to completion and maps the outcome:
// missing binary is KindToolMissing, timeout or non-zero exit is KindToolFailed.
// On a non-zero exit the Result is returned alongside the error.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	if inv.Name == "" {
		return nil, apperror.New(apperror.KindInput, "toolrunner", "command is required")
	}

	commandLine := CommandLine(inv.Name, inv.Args...)

	path, err := r.lookPath(inv.Name)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindToolMissing, inv.Name, err,
			fmt.Sprintf("'%s' not found on PATH; install it and make sure it is accessible", inv.Name))
	}

	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, path, inv.Args...)
	if inv.Dir != "" {
		cmd.Dir = inv.Dir
	}
	if len(inv.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range inv.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	var stdout, stderr bytes.Buffer
	combined := &lockedBuffer{}
	cmd.Stdout = io.MultiWriter(&stdout, combined)
	cmd.Stderr = io.MultiWriter(&stderr, combined)

	r.logger.Debug("ToolRunner", "running tool", map[string]interface{}{
		"command": commandLine,
		"dir":     inv.Dir,
	})

	start := time.Now()
	runErr := cmd.Run()

	result := &Result{
		Stdout:      stdout.String(),
		Stderr:      stderr.String(),
		Combined:    combined.String(),
		Duration:    time.Since(start),
		CommandLine: commandLine,
	}

	if runErr == nil {
		r.logger.Info("ToolRunner", "tool finished", map[string]interface{}{
			"command":     commandLine,
			"duration_ms": result.Duration.Milliseconds(),
		})
		return result, nil
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.ExitCode = -1
		return result, apperror.New(apperror.KindToolFailed, inv.Name,
			fmt.Sprintf("timed out after %s", timeout)).WithDetail(strings.TrimSpace(result.Combined))
	}
	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		r.logger.Warn("ToolRunner", "tool exited with non-zero status", map[string]interface{}{
			"command":   commandLine,
			"exit_code": result.ExitCode,
		})
		return result, apperror.New(apperror.KindToolFailed, inv.Name,
			fmt.Sprintf("failed with exit code %d", result.ExitCode)).WithDetail(strings.TrimSpace(result.Combined))
	}

	return result, apperror.Wrap(apperror.KindToolFailed, inv.Name, runErr, "could not run")
}

// CommandLine renders a command the way a user would type it in bash.
func CommandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	for _, word := range append([]string{name}, args...) {
		quoted, err := syntax.Quote(word, syntax.LangBash)
		if err != nil {
			quoted = strconv.Quote(word)
		}
		parts = append(parts, quoted)
	}
	return strings.Join(parts, " ")
}

type ToolStatus struct {
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	Found bool   `json:"found"`
}

func Check(name string) ToolStatus {
	path, err := exec.LookPath(name)
	if err != nil {
		return ToolStatus{Name: name}
	}
	return ToolStatus{Name: name, Path: path, Found: true}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
