// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package ledger keeps export credits in a local SQLite database.
//
// Every grant and spend is an entry; the balance is their sum. *Ledger
// implements export.Entitlement.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/countup"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNoCredits is returned by ConsumeCredit when the balance is zero.
var ErrNoCredits = errors.New("ledger: no credits left")

// Kind is the reason for an entry.
type Kind string

const (
	Grant Kind = "grant"
	Spend Kind = "spend"
)

// Entry is one row of the ledger.
type Entry struct {
	ID     string
	At     time.Time
	Kind   Kind
	Amount int64
	Note   string
}

// Ledger wraps SQLite access for credit entries.
type Ledger struct {
	db    *sql.DB
	clock countup.Clock
}

// Open opens or creates the database at path and applies migrations.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection serializes writers; SQLite would report SQLITE_BUSY
	// otherwise.
	db.SetMaxOpenConns(1)
	l := &Ledger{db: db, clock: countup.SystemClock{}}
	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// SetClock replaces the clock used to stamp entries.
func (l *Ledger) SetClock(c countup.Clock) {
	if c != nil {
		l.clock = c
	}
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			at TEXT NOT NULL,
			kind TEXT NOT NULL,
			amount INTEGER NOT NULL,
			note TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_at ON entries(at);`,
	}
	for _, stmt := range stmts {
		if _, err := l.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Balance returns the number of unspent credits.
func (l *Ledger) Balance(ctx context.Context) (int64, error) {
	return balance(ctx, l.db)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func balance(ctx context.Context, q queryer) (int64, error) {
	var n int64
	if err := q.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM entries`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// HasCredits reports whether at least one credit is available.
func (l *Ledger) HasCredits(ctx context.Context) (bool, error) {
	n, err := l.Balance(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ConsumeCredit spends one credit. The balance check and the spend share
// a transaction.
func (l *Ledger) ConsumeCredit(ctx context.Context) (err error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	n, err := balance(ctx, tx)
	if err != nil {
		return err
	}
	if n < 1 {
		return ErrNoCredits
	}
	if err = l.insert(ctx, tx, Spend, -1, "export"); err != nil {
		return err
	}
	return tx.Commit()
}

// Add grants n credits with a free-form note.
func (l *Ledger) Add(ctx context.Context, n int64, note string) error {
	if n <= 0 {
		return fmt.Errorf("ledger: grant must be positive, got %d", n)
	}
	return l.insert(ctx, l.db, Grant, n, note)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (l *Ledger) insert(ctx context.Context, x execer, kind Kind, amount int64, note string) error {
	at := l.clock.Now().UTC()
	_, err := x.ExecContext(ctx,
		`INSERT INTO entries (id, at, kind, amount, note) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), at.Format(time.RFC3339Nano), string(kind), amount, note)
	if err != nil {
		return err
	}
	countup.Logger().Debug("ledger: entry", "kind", kind, "amount", amount)
	return nil
}

// History returns entries newest first. limit <= 0 returns all of them.
func (l *Ledger) History(ctx context.Context, limit int) ([]Entry, error) {
	q := `SELECT id, at, kind, amount, note FROM entries ORDER BY at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			at   string
			kind string
		)
		if err := rows.Scan(&e.ID, &at, &kind, &e.Amount, &e.Note); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("ledger: bad timestamp %q: %w", at, err)
		}
		e.At = t
		e.Kind = Kind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}
