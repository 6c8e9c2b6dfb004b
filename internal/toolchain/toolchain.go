// ============================================================================
// skriptc - Skript-zu-C Compiler
// ============================================================================
//
// Package:     toolchain
// Description: Runs the external compiler with a bounded wait
// Author:      Mike Stoffels
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package toolchain

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	skerr "github.com/msto63/skriptc/pkg/core/error"
	"github.com/msto63/skriptc/pkg/core/logging"
)

const (
	// DefaultTailSize is how much compiler stderr is kept for error reports
	DefaultTailSize = 4096
	// waitDelay bounds how long Wait blocks on inherited pipes after a kill
	waitDelay = 2 * time.Second
)

// Invocation is one compiler call
type Invocation struct {
	Compiler string
	Args     []string
	Dir      string
}

// String returns the command line as typed in a shell
func (inv Invocation) String() string {
	return strings.Join(append([]string{inv.Compiler}, inv.Args...), " ")
}

// Result describes a finished compiler process
type Result struct {
	Path       string
	ExitCode   int
	Duration   time.Duration
	StderrTail string
}

// Config holds runner configuration
type Config struct {
	// Timeout bounds the compiler run; zero means no limit
	Timeout time.Duration
	// Stdout and Stderr receive the compiler output unmodified
	Stdout io.Writer
	Stderr io.Writer
	// TailSize is the number of stderr bytes kept for the error
	TailSize int
	Logger   *logging.Logger
}

// Runner invokes external compilers
type Runner struct {
	timeout  time.Duration
	stdout   io.Writer
	stderr   io.Writer
	tailSize int
	logger   *logging.Logger
}

// New creates a runner
func New(cfg Config) *Runner {
	r := &Runner{
		timeout:  cfg.Timeout,
		stdout:   cfg.Stdout,
		stderr:   cfg.Stderr,
		tailSize: cfg.TailSize,
		logger:   cfg.Logger,
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.stderr == nil {
		r.stderr = os.Stderr
	}
	if r.tailSize <= 0 {
		r.tailSize = DefaultTailSize
	}
	if r.logger == nil {
		r.logger = logging.Default()
	}
	r.logger = r.logger.WithName("toolchain")
	return r
}

// Run executes the compiler and waits for it. On timeout or cancellation
// the whole process group is killed. A non-zero exit is returned as a
// COMPILER_FAILED error together with the result.
func (r *Runner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	path, err := exec.LookPath(inv.Compiler)
	if err != nil {
		return nil, skerr.Wrap(err, "compiler not found").
			WithCode(skerr.CodeCompilerNotFound).
			WithSeverity(skerr.SeverityHigh).
			WithOperation("toolchain.Run").
			WithDetail("compiler", inv.Compiler)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tail := newTailBuffer(r.tailSize)
	cmd := exec.CommandContext(ctx, path, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdout = r.stdout
	cmd.Stderr = io.MultiWriter(r.stderr, tail)
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		return killProcessGroup(cmd)
	}

	r.logger.Debug("Invoking compiler", "command", inv.String(), "timeout", r.timeout)

	start := time.Now()
	runErr := cmd.Run()
	res := &Result{
		Path:       path,
		ExitCode:   cmd.ProcessState.ExitCode(),
		Duration:   time.Since(start),
		StderrTail: tail.String(),
	}

	if runErr == nil {
		r.logger.Debug("Compiler finished", "duration", res.Duration)
		return res, nil
	}

	switch ctxErr := ctx.Err(); {
	case errors.Is(ctxErr, context.DeadlineExceeded):
		return res, skerr.Wrap(runErr, "compiler timed out").
			WithCode(skerr.CodeTimeout).
			WithSeverity(skerr.SeverityHigh).
			WithOperation("toolchain.Run").
			WithDetail("compiler", inv.Compiler).
			WithDetail("timeout", r.timeout.String())
	case errors.Is(ctxErr, context.Canceled):
		return res, skerr.Wrap(runErr, "compiler canceled").
			WithCode(skerr.CodeCanceled).
			WithOperation("toolchain.Run").
			WithDetail("compiler", inv.Compiler)
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return res, skerr.Newf("compiler exited with status %d", res.ExitCode).
			WithCode(skerr.CodeCompilerFailed).
			WithSeverity(skerr.SeverityHigh).
			WithOperation("toolchain.Run").
			WithDetail("compiler", inv.Compiler).
			WithDetail("exit_code", res.ExitCode).
			WithDetail("stderr", res.StderrTail)
	}

	return res, skerr.Wrap(runErr, "failed to run compiler").
		WithCode(skerr.CodeCompilerFailed).
		WithSeverity(skerr.SeverityHigh).
		WithOperation("toolchain.Run").
		WithDetail("compiler", inv.Compiler)
}

// tailBuffer keeps the last n bytes written to it
type tailBuffer struct {
	n   int
	buf []byte
}

func newTailBuffer(n int) *tailBuffer {
	return &tailBuffer{n: n}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.n; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
