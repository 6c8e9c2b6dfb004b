// ============================================================================
// skriptc - Skript-zu-C Compiler
// ============================================================================
//
// Package:     health
// Description: Environment checks reported by the doctor command
// Author:      Mike Stoffels
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package health

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"sync"
	"time"
)

// Status represents the outcome of a check
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
	StatusUnknown   Status = "unknown"
)

// CheckResult represents the result of a single check
type CheckResult struct {
	Name     string
	Status   Status
	Message  string
	Duration time.Duration
	Details  map[string]interface{}
}

// Checker is an interface for environment checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

type namedChecker struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

// NewChecker creates a named checker from a function
func NewChecker(name string, fn func(ctx context.Context) CheckResult) Checker {
	return &namedChecker{name: name, fn: fn}
}

func (c *namedChecker) Name() string                          { return c.name }
func (c *namedChecker) Check(ctx context.Context) CheckResult { return c.fn(ctx) }

// Registry runs a set of checkers
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{checkers: make(map[string]Checker)}
}

// Register adds a checker, replacing one with the same name
func (r *Registry) Register(checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[checker.Name()] = checker
}

// RegisterFunc adds a check function to the registry
func (r *Registry) RegisterFunc(name string, fn func(ctx context.Context) CheckResult) {
	r.Register(NewChecker(name, fn))
}

// Check runs all checks concurrently. Results are sorted by name; the
// overall status is the worst single status.
func (r *Registry) Check(ctx context.Context) *Report {
	r.mu.RLock()
	checkers := make([]Checker, 0, len(r.checkers))
	for _, c := range r.checkers {
		checkers = append(checkers, c)
	}
	r.mu.RUnlock()

	results := make([]CheckResult, len(checkers))
	var wg sync.WaitGroup
	for i, checker := range checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			start := time.Now()
			result := c.Check(ctx)
			result.Duration = time.Since(start)
			if result.Name == "" {
				result.Name = c.Name()
			}
			results[i] = result
		}(i, checker)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	report := &Report{Status: StatusHealthy, Checks: results, Timestamp: time.Now()}
	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			report.Status = StatusUnhealthy
		case StatusDegraded, StatusUnknown:
			if report.Status == StatusHealthy {
				report.Status = StatusDegraded
			}
		}
	}
	return report
}

// Report is the combined result of all checks
type Report struct {
	Status    Status        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks"`
}

// String returns a string representation of the report
func (r *Report) String() string {
	return fmt.Sprintf("Status: %s, Checks: %d", r.Status, len(r.Checks))
}

// Common checks

// CompilerCheck reports whether compiler can be found on PATH. A missing
// required compiler is unhealthy, any other missing compiler degraded.
func CompilerCheck(name, compiler string, required bool) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		result := CheckResult{
			Name:    name,
			Status:  StatusHealthy,
			Details: map[string]interface{}{"compiler": compiler},
		}

		path, err := exec.LookPath(compiler)
		if err != nil {
			result.Status = StatusDegraded
			if required {
				result.Status = StatusUnhealthy
			}
			result.Message = fmt.Sprintf("%s not found on PATH", compiler)
			return result
		}
		result.Details["path"] = path
		result.Message = path
		return result
	})
}

// DirCheck reports whether dir exists and is a directory. A missing
// optional directory is healthy.
func DirCheck(name, dir string, required bool) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		result := CheckResult{
			Name:    name,
			Status:  StatusHealthy,
			Message: dir,
			Details: map[string]interface{}{"dir": dir},
		}

		info, err := os.Stat(dir)
		switch {
		case os.IsNotExist(err) && !required:
			result.Message = dir + " (not present)"
		case err != nil:
			result.Status = StatusUnhealthy
			result.Message = err.Error()
		case !info.IsDir():
			result.Status = StatusUnhealthy
			result.Message = dir + " is not a directory"
		}
		return result
	})
}

// ErrorCheck turns fn's error into a degraded result
func ErrorCheck(name string, fn func(ctx context.Context) (string, error)) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		msg, err := fn(ctx)
		if err != nil {
			return CheckResult{Name: name, Status: StatusDegraded, Message: err.Error()}
		}
		return CheckResult{Name: name, Status: StatusHealthy, Message: msg}
	})
}
