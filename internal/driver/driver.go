// ============================================================================
// skriptc - Skript-zu-C Compiler
// ============================================================================
//
// Package:     driver
// Description: Build pipeline from script file to native executable
// Author:      Mike Stoffels
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package driver

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/msto63/skriptc/internal/backend"
	"github.com/msto63/skriptc/internal/emitter"
	"github.com/msto63/skriptc/internal/history"
	"github.com/msto63/skriptc/internal/lexer"
	"github.com/msto63/skriptc/internal/source"
	"github.com/msto63/skriptc/internal/toolchain"
	skerr "github.com/msto63/skriptc/pkg/core/error"
	"github.com/msto63/skriptc/pkg/core/logging"
)

// Stage is a step of a build run. Stages run in declaration order and
// none is retried.
type Stage int

const (
	StageReadSource Stage = iota
	StageLex
	StageEmit
	StageWriteIntermediate
	StageInvokeCompiler
	StageCleanup
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageReadSource:
		return "read_source"
	case StageLex:
		return "lex"
	case StageEmit:
		return "emit"
	case StageWriteIntermediate:
		return "write_intermediate"
	case StageInvokeCompiler:
		return "invoke_compiler"
	case StageCleanup:
		return "cleanup"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Compiler runs the external compiler; *toolchain.Runner implements it
type Compiler interface {
	Run(ctx context.Context, inv toolchain.Invocation) (*toolchain.Result, error)
}

// Request describes one run
type Request struct {
	Input   string
	Backend *backend.Backend
	// Output overrides the binary path, which defaults to the module name
	Output string
	// KeepIntermediate leaves the generated source on disk
	KeepIntermediate bool
	// Force compiles even when history says the binary is up to date
	Force bool
}

// Result describes a finished or failed run
type Result struct {
	RunID        string
	Module       string
	Backend      string
	Intermediate string
	Output       string
	Stage        Stage
	Lines        int
	Tokens       int
	Program      *emitter.Program
	Compiler     *toolchain.Result
	Skipped      bool
	CleanupErr   error
	Duration     time.Duration

	sourceHash string
}

// Config holds driver dependencies
type Config struct {
	Compiler Compiler
	// History is optional; without it every build compiles
	History history.Store
	Logger  *logging.Logger
}

// Driver runs the pipeline ReadSource, Lex, Emit, WriteIntermediate,
// InvokeCompiler, Cleanup, Done
type Driver struct {
	compiler Compiler
	history  history.Store
	logger   *logging.Logger
	now      func() time.Time
	newID    func() string
}

// New creates a driver
func New(cfg Config) *Driver {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Driver{
		compiler: cfg.Compiler,
		history:  cfg.History,
		logger:   logger.WithName("driver"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Translate runs ReadSource, Lex and Emit and returns the program without
// writing or compiling anything
func (d *Driver) Translate(ctx context.Context, req Request) (*Result, error) {
	res := &Result{RunID: d.newID()}
	_, err := d.translate(ctx, req, res, d.logger.WithField("run_id", res.RunID))
	return res, err
}

// Build translates and compiles req.Input. Once the intermediate file has
// been written it is removed on every exit path unless KeepIntermediate is
// set; a failed removal is logged and does not fail the build.
func (d *Driver) Build(ctx context.Context, req Request) (res *Result, err error) {
	start := d.now()
	res = &Result{RunID: d.newID()}
	logger := d.logger.WithField("run_id", res.RunID)

	defer func() {
		res.Duration = d.now().Sub(start)
		d.record(ctx, req, res, err, start, logger)
	}()

	src, err := d.translate(ctx, req, res, logger)
	if err != nil {
		return res, err
	}
	res.Output = req.Output
	if res.Output == "" {
		res.Output = res.Module
	}
	res.sourceHash = history.Hash(src.Data, []byte(req.Backend.Fingerprint()))

	if !req.Force && d.upToDate(ctx, res, logger) {
		res.Skipped = true
		res.Stage = StageDone
		logger.Info("Up to date", "module", res.Module, "output", res.Output)
		return res, nil
	}

	res.Stage = StageWriteIntermediate
	res.Intermediate = res.Module + req.Backend.IntermediateExt

	defer func() {
		if err == nil {
			res.Stage = StageCleanup
		}
		if req.KeepIntermediate {
			logger.Debug("Keeping intermediate file", "path", res.Intermediate)
		} else {
			res.CleanupErr = d.removeIntermediate(res.Intermediate, logger)
		}
		if err == nil {
			res.Stage = StageDone
		}
	}()

	if err := os.WriteFile(res.Intermediate, []byte(res.Program.String()), 0644); err != nil {
		return res, d.fail(res, skerr.Wrap(err, "cannot write intermediate file").
			WithCode(skerr.CodeIOError).
			WithOperation("driver.Build").
			WithDetail("path", res.Intermediate))
	}
	logger.Debug("Intermediate file written", "path", res.Intermediate, "lines", len(res.Program.Lines()))

	res.Stage = StageInvokeCompiler
	inv := toolchain.Invocation{
		Compiler: req.Backend.Compiler,
		Args:     req.Backend.CompilerArgs(res.Output, res.Intermediate),
	}
	res.Compiler, err = d.compiler.Run(ctx, inv)
	if err != nil {
		return res, d.fail(res, err)
	}

	logger.Info("Build succeeded", "module", res.Module, "output", res.Output, "backend", req.Backend.Name)
	return res, nil
}

func (d *Driver) translate(ctx context.Context, req Request, res *Result, logger *logging.Logger) (*source.File, error) {
	if req.Backend == nil {
		return nil, skerr.New("no backend selected").
			WithCode(skerr.CodeInvalidInput).
			WithOperation("driver.translate")
	}

	res.Stage = StageReadSource
	res.Backend = req.Backend.Name
	module, err := source.ModuleName(req.Input, req.Backend.SourceExt)
	if err != nil {
		return nil, d.fail(res, err)
	}
	res.Module = module

	src, err := source.Read(req.Input)
	if err != nil {
		return nil, d.fail(res, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, d.fail(res, canceled(err))
	}

	res.Stage = StageLex
	scanner := lexer.New(req.Backend.Table, req.Backend.Terminator)
	lines := make([][]lexer.Token, 0, len(src.Lines))
	for _, line := range src.Lines {
		tokens := scanner.Translate(line)
		res.Tokens += len(tokens)
		lines = append(lines, tokens)
	}
	res.Lines = len(lines)

	res.Stage = StageEmit
	res.Program = emitter.Build(req.Backend.Skeleton, req.Backend.Headers, lines)

	logger.Debug("Translated", "module", module, "lines", res.Lines, "tokens", res.Tokens, "backend", req.Backend.Name)
	return src, nil
}

func (d *Driver) upToDate(ctx context.Context, res *Result, logger *logging.Logger) bool {
	if d.history == nil {
		return false
	}
	last, err := d.history.LastSuccess(ctx, res.Module, res.Backend)
	if err != nil {
		logger.Warn("History lookup failed", "error", err)
		return false
	}
	if last == nil || last.SourceHash != res.sourceHash || last.Output != res.Output {
		return false
	}
	if _, err := os.Stat(res.Output); err != nil {
		return false
	}
	return true
}

func (d *Driver) removeIntermediate(path string, logger *logging.Logger) error {
	err := os.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	cleanupErr := skerr.Wrap(err, "cannot remove intermediate file").
		WithCode(skerr.CodeCleanupFailed).
		WithSeverity(skerr.SeverityLow).
		WithOperation("driver.Build").
		WithDetail("path", path)
	logger.Warn("Cleanup failed", "path", path, "error", err)
	return cleanupErr
}

func (d *Driver) record(ctx context.Context, req Request, res *Result, err error, start time.Time, logger *logging.Logger) {
	if d.history == nil || res.Module == "" {
		return
	}

	b := &history.Build{
		ID:         res.RunID,
		Module:     res.Module,
		Source:     req.Input,
		Backend:    res.Backend,
		SourceHash: res.sourceHash,
		Output:     res.Output,
		Stage:      res.Stage.String(),
		Status:     history.StatusSucceeded,
		Duration:   res.Duration,
		CreatedAt:  start,
	}
	switch {
	case err != nil:
		b.Status = history.StatusFailed
		b.ErrorCode = skerr.GetCode(err).String()
		b.Error = err.Error()
	case res.Skipped:
		b.Status = history.StatusSkipped
	}

	// the run's own context may already be canceled
	recordCtx := context.WithoutCancel(ctx)
	if recErr := d.history.Record(recordCtx, b); recErr != nil {
		logger.Warn("Failed to record build", "error", recErr)
	}
}

// fail adds the stage to err and logs it
func (d *Driver) fail(res *Result, err error) error {
	wrapped := skerr.Wrap(err, "build "+moduleLabel(res)).
		WithDetail("stage", res.Stage.String())
	d.logger.Debug("Stage failed", "stage", res.Stage.String(), "code", skerr.GetCode(err).String())
	return wrapped
}

func canceled(err error) error {
	code := skerr.CodeCanceled
	if errors.Is(err, context.DeadlineExceeded) {
		code = skerr.CodeTimeout
	}
	return skerr.Wrap(err, "run interrupted").WithCode(code)
}

func moduleLabel(res *Result) string {
	if res.Module == "" {
		return "failed"
	}
	return res.Module
}
