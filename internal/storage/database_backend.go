package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DatabaseBackend keeps artifacts as rows so single-database deployments
// need no shared filesystem. Rebind lets the same statements run on
// Postgres in production and SQLite in tests.
type DatabaseBackend struct {
	db *sqlx.DB
}

// EvidenceFileSchema creates the artifact table. Callers run it during
// migration; it is idempotent.
const EvidenceFileSchema = `
CREATE TABLE IF NOT EXISTS evidence_file (
    name         TEXT PRIMARY KEY,
    content_type TEXT NOT NULL,
    content      BYTEA NOT NULL
)`

// EvidenceFileSchemaSQLite is the same table for SQLite test databases,
// which have no BYTEA type.
const EvidenceFileSchemaSQLite = `
CREATE TABLE IF NOT EXISTS evidence_file (
    name         TEXT PRIMARY KEY,
    content_type TEXT NOT NULL,
    content      BLOB NOT NULL
)`

// NewDatabaseBackend wraps an open database.
func NewDatabaseBackend(db *sqlx.DB) *DatabaseBackend {
	return &DatabaseBackend{db: db}
}

// Store upserts the artifact row.
func (d *DatabaseBackend) Store(ctx context.Context, artifact *Artifact) error {
	query := d.db.Rebind(`
		INSERT INTO evidence_file (name, content_type, content) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET content_type = excluded.content_type, content = excluded.content`)
	if _, err := d.db.ExecContext(ctx, query, artifact.Name, artifact.ContentType, artifact.Content); err != nil {
		return fmt.Errorf("storage: store artifact: %w", err)
	}
	return nil
}

// Retrieve reads the artifact row.
func (d *DatabaseBackend) Retrieve(ctx context.Context, name string) (*Artifact, error) {
	row := d.db.QueryRowxContext(ctx, d.db.Rebind(
		`SELECT content_type, content FROM evidence_file WHERE name = ?`), name)

	artifact := &Artifact{Name: name}
	err := row.Scan(&artifact.ContentType, &artifact.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: retrieve artifact: %w", err)
	}
	return artifact, nil
}

// Delete removes the artifact row.
func (d *DatabaseBackend) Delete(ctx context.Context, name string) error {
	if _, err := d.db.ExecContext(ctx, d.db.Rebind(
		`DELETE FROM evidence_file WHERE name = ?`), name); err != nil {
		return fmt.Errorf("storage: delete artifact: %w", err)
	}
	return nil
}

// Exists checks for the artifact row.
func (d *DatabaseBackend) Exists(ctx context.Context, name string) (bool, error) {
	var n int
	err := d.db.QueryRowxContext(ctx, d.db.Rebind(
		`SELECT COUNT(*) FROM evidence_file WHERE name = ?`), name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("storage: exists: %w", err)
	}
	return n > 0, nil
}

// DeletePrefix removes every artifact under the prefix.
func (d *DatabaseBackend) DeletePrefix(ctx context.Context, prefix string) error {
	if _, err := d.db.ExecContext(ctx, d.db.Rebind(
		`DELETE FROM evidence_file WHERE name LIKE ?`), prefix+"/%"); err != nil {
		return fmt.Errorf("storage: delete prefix: %w", err)
	}
	return nil
}

// HealthCheck pings the database.
func (d *DatabaseBackend) HealthCheck(ctx context.Context) error {
	return d.db.PingContext(ctx)
}
