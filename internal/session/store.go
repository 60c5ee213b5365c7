// Package session holds the in-progress application state keyed by the
// wizard's first-party cookie. The store, not the browser clock, is the
// source of truth for whether a session is still alive: every tab sharing
// the cookie reads and refreshes the same record.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/govuk-domains/domain-request/internal/wizard"
)

// CookieName is the session cookie set on the first wizard step.
const CookieName = "session_id"

var (
	// ErrNotFound is returned when no record exists for the session ID,
	// either because it never did or because it expired.
	ErrNotFound = errors.New("session: not found")
)

// Record is one session's state. Consumed is set by the submission
// finalizer; a consumed session can render its success view once and
// rejects everything else.
type Record struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	Consumed   bool      `json:"consumed"`
	// Reference is the submitted-application reference, set at
	// confirmation time so the success view can show it.
	Reference string `json:"reference,omitempty"`
	// SuccessShown guards the one-time success view.
	SuccessShown bool               `json:"success_shown"`
	Application  wizard.Application `json:"application"`
}

// New mints a fresh record with a random ID.
func New(now time.Time) *Record {
	return &Record{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		LastActive: now,
	}
}

// Store persists session records. Implementations must treat Put as a full
// replace so a step submission is atomic: a concurrent Get sees either the
// whole update or none of it.
type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	Put(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id string) error
}
