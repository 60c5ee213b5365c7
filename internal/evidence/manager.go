// Package evidence is the upload manager for the wizard's three evidence
// slots. It validates incoming files, hands the bytes to the storage
// backend under an unguessable name, and keeps each slot holding at most
// one live artifact: replacing or removing an upload makes the previous
// artifact's retrieval URL 404 immediately.
package evidence

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/govuk-domains/domain-request/internal/storage"
	"github.com/govuk-domains/domain-request/internal/wizard"
)

// MaxUploadBytes is the upload ceiling: 2.5 MB.
const MaxUploadBytes = 2_500_000

// imageTypes are the accepted raster formats, as sniffed from content.
var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// ValidationError is a user-facing upload rejection; no partial artifact
// is retained when one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrMissingFile is returned when the form had no file at all.
var ErrMissingFile = &ValidationError{Message: "Choose the file you want to upload."}

// ErrWrongFormat is returned for non-image content.
var ErrWrongFormat = &ValidationError{Message: "Wrong file format. Please upload an image."}

func oversizeError(size int64) *ValidationError {
	mb := func(n int64) float64 { return float64(n) / 1_000_000 }
	return &ValidationError{Message: fmt.Sprintf(
		"Please keep filesize under %.2f MB. Current filesize %.2f MB", mb(MaxUploadBytes), mb(size))}
}

// Manager owns the storage backend on behalf of the step handlers.
type Manager struct {
	backend storage.Backend
}

// NewManager wraps a storage backend.
func NewManager(backend storage.Backend) *Manager {
	return &Manager{backend: backend}
}

// Upload validates and stores a file into the slot, replacing whatever the
// slot held before. Validation order is fixed: presence, size, format.
func (m *Manager) Upload(ctx context.Context, app *wizard.Application, sessionID string, slot wizard.EvidenceSlot, filename string, content []byte) (*wizard.Evidence, error) {
	if filename == "" || len(content) == 0 {
		return nil, ErrMissingFile
	}
	if int64(len(content)) > MaxUploadBytes {
		return nil, oversizeError(int64(len(content)))
	}
	contentType := http.DetectContentType(content)
	if !imageTypes[contentType] {
		return nil, ErrWrongFormat
	}

	stored := fmt.Sprintf("%s/%s%s", sessionID, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
	if err := m.backend.Store(ctx, &storage.Artifact{
		Name:        stored,
		ContentType: contentType,
		Content:     content,
	}); err != nil {
		return nil, fmt.Errorf("evidence: store upload: %w", err)
	}

	// Drop the replaced artifact only after the new one is in place.
	if prev := app.EvidenceFor(slot); prev != nil {
		if err := m.backend.Delete(ctx, prev.StoredName); err != nil {
			return nil, fmt.Errorf("evidence: replace upload: %w", err)
		}
	}

	ev := &wizard.Evidence{
		OriginalFilename: filepath.Base(filename),
		StoredName:       stored,
		Size:             int64(len(content)),
		ContentType:      contentType,
		UploadedAt:       time.Now().UTC(),
	}
	app.SetEvidence(slot, ev)
	return ev, nil
}

// Remove clears the slot and deletes its artifact. The retrieval URL is
// dead as soon as this returns.
func (m *Manager) Remove(ctx context.Context, app *wizard.Application, slot wizard.EvidenceSlot) error {
	ev := app.EvidenceFor(slot)
	if ev == nil {
		return nil
	}
	if err := m.backend.Delete(ctx, ev.StoredName); err != nil {
		return fmt.Errorf("evidence: remove upload: %w", err)
	}
	app.SetEvidence(slot, nil)
	return nil
}

// Retrieve fetches a stored artifact for download.
func (m *Manager) Retrieve(ctx context.Context, storedName string) (*storage.Artifact, error) {
	return m.backend.Retrieve(ctx, storedName)
}

// Purge removes every artifact a dead session left behind.
func (m *Manager) Purge(ctx context.Context, sessionID string) error {
	return m.backend.DeletePrefix(ctx, sessionID)
}
