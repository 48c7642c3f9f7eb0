package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("artifact not found")

// Artifact is a stego image produced by an embed.
type Artifact struct {
	ID         int64
	InputPath  string
	OutputPath string
	// Digest is the hex SHA-256 of the plain message.
	Digest       string
	PayloadBytes int
	Algorithm    string
	Sealed       bool
	CreatedAt    time.Time
}

type Ledger struct {
	db *sql.DB
}

// Open opens or creates the SQLite ledger at path.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores a and returns its id. A zero CreatedAt is set to now.
func (l *Ledger) Record(ctx context.Context, a Artifact) (int64, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	result, err := l.db.ExecContext(ctx,
		`INSERT INTO artifacts (input_path, output_path, digest, payload_bytes, algorithm, sealed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.InputPath, a.OutputPath, a.Digest, a.PayloadBytes, a.Algorithm, a.Sealed, a.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert artifact: %w", err)
	}
	return result.LastInsertId()
}

// List returns the newest artifacts first. limit <= 0 returns all of them.
func (l *Ledger) List(ctx context.Context, limit int) ([]Artifact, error) {
	query := `SELECT id, input_path, output_path, digest, payload_bytes, algorithm, sealed, created_at
		FROM artifacts ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []Artifact
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// FindByOutput returns the newest artifact written to path.
func (l *Ledger) FindByOutput(ctx context.Context, path string) (Artifact, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT id, input_path, output_path, digest, payload_bytes, algorithm, sealed, created_at
		FROM artifacts WHERE output_path = ? ORDER BY id DESC LIMIT 1`, path)
	a, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Artifact{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return a, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (Artifact, error) {
	var (
		a       Artifact
		created int64
	)
	err := s.Scan(&a.ID, &a.InputPath, &a.OutputPath, &a.Digest, &a.PayloadBytes, &a.Algorithm, &a.Sealed, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Artifact{}, err
		}
		return Artifact{}, fmt.Errorf("failed to scan artifact: %w", err)
	}
	a.CreatedAt = time.UnixMilli(created)
	return a, nil
}
