// ============================================================================
// skriptc - Skript-zu-C Compiler
// ============================================================================
//
// Package:     history
// Description: SQLite record of builds for listing and up-to-date checks
// Author:      Mike Stoffels
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	skerr "github.com/msto63/skriptc/pkg/core/error"
)

// Status is the outcome of a build
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Build is one recorded run
type Build struct {
	ID         string
	Module     string
	Source     string
	Backend    string
	SourceHash string
	Output     string
	Stage      string
	Status     Status
	ErrorCode  string
	Error      string
	Duration   time.Duration
	CreatedAt  time.Time
}

// Store persists builds
type Store interface {
	Record(ctx context.Context, b *Build) error
	LastSuccess(ctx context.Context, module, backend string) (*Build, error)
	List(ctx context.Context, limit int) ([]*Build, error)
	Close() error
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the store at path
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, dbError(err, "failed to create history directory", "history.Open")
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, dbError(err, "failed to open history database", "history.Open")
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "failed to initialize history schema", "history.Open")
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		module TEXT NOT NULL,
		source TEXT NOT NULL,
		backend TEXT NOT NULL,
		source_hash TEXT NOT NULL,
		output TEXT NOT NULL DEFAULT '',
		stage TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		error_code TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_builds_module_backend ON builds(module, backend, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_builds_created ON builds(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores a build. ID and CreatedAt must be set.
func (s *SQLiteStore) Record(ctx context.Context, b *Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		return skerr.New("build ID is required").
			WithCode(skerr.CodeInvalidInput).
			WithOperation("history.Record")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO builds (id, module, source, backend, source_hash, output, stage, status, error_code, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Module, b.Source, b.Backend, b.SourceHash, b.Output, b.Stage, string(b.Status),
		b.ErrorCode, b.Error, b.Duration.Milliseconds(), b.CreatedAt.UTC(),
	)
	if err != nil {
		return dbError(err, "failed to record build", "history.Record")
	}
	return nil
}

// LastSuccess returns the newest succeeded build for module and backend,
// or nil if there is none
func (s *SQLiteStore) LastSuccess(ctx context.Context, module, backend string) (*Build, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, selectBuilds+`
		WHERE module = ? AND backend = ? AND status = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		module, backend, string(StatusSucceeded),
	)
	b, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dbError(err, "failed to query last build", "history.LastSuccess")
	}
	return b, nil
}

// List returns the newest builds first
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Build, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, selectBuilds+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, dbError(err, "failed to list builds", "history.List")
	}
	defer rows.Close()

	var builds []*Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, dbError(err, "failed to scan build", "history.List")
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to list builds", "history.List")
	}
	return builds, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const selectBuilds = `
	SELECT id, module, source, backend, source_hash, output, stage, status, error_code, error, duration_ms, created_at
	FROM builds`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBuild(row scanner) (*Build, error) {
	var (
		b          Build
		status     string
		durationMS int64
	)
	err := row.Scan(&b.ID, &b.Module, &b.Source, &b.Backend, &b.SourceHash, &b.Output,
		&b.Stage, &status, &b.ErrorCode, &b.Error, &durationMS, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.Status = Status(status)
	b.Duration = time.Duration(durationMS) * time.Millisecond
	return &b, nil
}

func dbError(err error, msg, op string) error {
	return skerr.Wrap(err, msg).
		WithCode(skerr.CodeDatabaseError).
		WithOperation(op)
}

// Hash returns the fingerprint used for up-to-date checks
func Hash(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
