// Package storage persists uploaded evidence artifacts behind a small
// backend interface so deployments can keep files on disk or in the
// database without the upload manager caring which.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned for artifacts that do not exist or were removed.
// Removal must be immediate: once Delete returns, Retrieve fails with this
// error, with no eventual-consistency window.
var ErrNotFound = errors.New("storage: artifact not found")

// Artifact is one stored evidence file.
type Artifact struct {
	Name        string
	ContentType string
	Content     []byte
}

// Backend stores evidence artifacts under caller-chosen names. Names are
// slash-separated (<session>/<uuid><ext>) so a whole session's artifacts
// can be dropped by prefix when the session dies.
type Backend interface {
	Store(ctx context.Context, artifact *Artifact) error
	Retrieve(ctx context.Context, name string) (*Artifact, error)
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)

	// DeletePrefix removes every artifact under the given name prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// HealthCheck verifies the backend is operational.
	HealthCheck(ctx context.Context) error
}

// New builds a backend from its configured type.
func New(backendType, fsBasePath string, db *sqlx.DB) (Backend, error) {
	switch strings.ToUpper(backendType) {
	case "FS", "":
		return NewFilesystemBackend(fsBasePath)
	case "DB":
		if db == nil {
			return nil, fmt.Errorf("storage: DB backend requires a database")
		}
		return NewDatabaseBackend(db), nil
	}
	return nil, fmt.Errorf("storage: unknown backend type %q (must be FS or DB)", backendType)
}
