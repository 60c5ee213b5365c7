// Package repository persists submitted domain applications. The wizard
// itself works entirely out of the session; a row only ever appears here
// at the moment an application is finalised.
package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/govuk-domains/domain-request/internal/wizard"
)

// ErrNotFound is returned when no application exists for a reference.
var ErrNotFound = errors.New("repository: application not found")

// SubmittedApplication is one finalised application as stored.
type SubmittedApplication struct {
	Reference   string    `db:"reference" json:"reference"`
	SessionID   string    `db:"session_id" json:"session_id"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
	Answers     []byte    `db:"answers" json:"-"`

	// Application is the decoded answers payload; populated on reads.
	Application *wizard.Application `db:"-" json:"application"`
}

// ApplicationRepository defines the interface for application persistence.
type ApplicationRepository interface {
	// Save stores a finalised application. Saving the same session twice
	// returns the reference already issued rather than a second row.
	Save(ctx context.Context, sessionID string, app *wizard.Application) (string, error)
	GetByReference(ctx context.Context, reference string) (*SubmittedApplication, error)
}

// referenceAlphabet excludes nothing: references are plain uppercase
// alphanumerics behind a fixed GOVUK prefix.
const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewReference returns an application reference like GOVUK4X8SA9.
func NewReference() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("repository: generate reference: %w", err)
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return "GOVUK" + string(buf), nil
}

// ApplicationSchema creates the applications table on PostgreSQL.
const ApplicationSchema = `
CREATE TABLE IF NOT EXISTS applications (
    reference    VARCHAR(16) PRIMARY KEY,
    session_id   VARCHAR(64) NOT NULL UNIQUE,
    submitted_at TIMESTAMPTZ NOT NULL,
    answers      JSONB NOT NULL
)`

// ApplicationSchemaSQLite is the SQLite equivalent used in tests.
const ApplicationSchemaSQLite = `
CREATE TABLE IF NOT EXISTS applications (
    reference    TEXT PRIMARY KEY,
    session_id   TEXT NOT NULL UNIQUE,
    submitted_at TIMESTAMP NOT NULL,
    answers      BLOB NOT NULL
)`

// SQLApplicationRepository is the sqlx-backed implementation.
type SQLApplicationRepository struct {
	db *sqlx.DB
}

// NewSQLApplicationRepository wraps an open database handle.
func NewSQLApplicationRepository(db *sqlx.DB) *SQLApplicationRepository {
	return &SQLApplicationRepository{db: db}
}

// EnsureSchema creates the applications table for the connected driver.
func (r *SQLApplicationRepository) EnsureSchema(ctx context.Context) error {
	schema := ApplicationSchema
	if r.db.DriverName() == "sqlite3" {
		schema = ApplicationSchemaSQLite
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("repository: ensure schema: %w", err)
	}
	return nil
}

func (r *SQLApplicationRepository) Save(ctx context.Context, sessionID string, app *wizard.Application) (string, error) {
	var existing string
	err := r.db.GetContext(ctx, &existing,
		r.db.Rebind(`SELECT reference FROM applications WHERE session_id = ?`), sessionID)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("repository: check existing: %w", err)
	}

	reference, err := NewReference()
	if err != nil {
		return "", err
	}
	answers, err := json.Marshal(app)
	if err != nil {
		return "", fmt.Errorf("repository: encode answers: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		r.db.Rebind(`INSERT INTO applications (reference, session_id, submitted_at, answers) VALUES (?, ?, ?, ?)`),
		reference, sessionID, time.Now().UTC(), answers)
	if err != nil {
		return "", fmt.Errorf("repository: save application: %w", err)
	}
	return reference, nil
}

func (r *SQLApplicationRepository) GetByReference(ctx context.Context, reference string) (*SubmittedApplication, error) {
	var rec SubmittedApplication
	err := r.db.GetContext(ctx, &rec,
		r.db.Rebind(`SELECT reference, session_id, submitted_at, answers FROM applications WHERE reference = ?`), reference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repository: get application: %w", err)
	}
	rec.Application = &wizard.Application{}
	if err := json.Unmarshal(rec.Answers, rec.Application); err != nil {
		return nil, fmt.Errorf("repository: decode answers: %w", err)
	}
	return &rec, nil
}
