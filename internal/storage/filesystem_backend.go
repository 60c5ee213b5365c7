package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemBackend keeps artifacts as plain files under a base path. The
// artifact name maps to a relative path; names are validated against
// traversal before they touch the filesystem.
type FilesystemBackend struct {
	basePath string
}

// NewFilesystemBackend creates the base directory if needed.
func NewFilesystemBackend(basePath string) (*FilesystemBackend, error) {
	if basePath == "" {
		return nil, fmt.Errorf("storage: filesystem base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create base path: %w", err)
	}
	return &FilesystemBackend{basePath: basePath}, nil
}

// resolve maps an artifact name onto the base path, rejecting anything
// that would escape it.
func (f *FilesystemBackend) resolve(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("storage: invalid artifact name %q", name)
	}
	return filepath.Join(f.basePath, filepath.FromSlash(name)), nil
}

// Store writes the artifact and a sidecar recording its content type.
func (f *FilesystemBackend) Store(_ context.Context, artifact *Artifact) error {
	path, err := f.resolve(artifact.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storage: create artifact dir: %w", err)
	}
	if err := os.WriteFile(path, artifact.Content, 0o644); err != nil {
		return fmt.Errorf("storage: write artifact: %w", err)
	}
	if err := os.WriteFile(path+".type", []byte(artifact.ContentType), 0o644); err != nil {
		return fmt.Errorf("storage: write artifact type: %w", err)
	}
	return nil
}

// Retrieve reads the artifact back.
func (f *FilesystemBackend) Retrieve(_ context.Context, name string) (*Artifact, error) {
	path, err := f.resolve(name)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read artifact: %w", err)
	}
	contentType, err := os.ReadFile(path + ".type")
	if err != nil {
		contentType = []byte("application/octet-stream")
	}
	return &Artifact{Name: name, ContentType: string(contentType), Content: content}, nil
}

// Delete removes the artifact and its sidecar. Deleting a missing
// artifact is not an error; retrieval after Delete is.
func (f *FilesystemBackend) Delete(_ context.Context, name string) error {
	path, err := f.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete artifact: %w", err)
	}
	_ = os.Remove(path + ".type")
	return nil
}

// Exists checks for the artifact file.
func (f *FilesystemBackend) Exists(_ context.Context, name string) (bool, error) {
	path, err := f.resolve(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeletePrefix removes a whole directory of artifacts, typically a dead
// session's.
func (f *FilesystemBackend) DeletePrefix(_ context.Context, prefix string) error {
	path, err := f.resolve(prefix)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("storage: delete prefix: %w", err)
	}
	return nil
}

// HealthCheck verifies the base path is writable.
func (f *FilesystemBackend) HealthCheck(_ context.Context) error {
	probe := filepath.Join(f.basePath, ".health")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("storage: base path not writable: %w", err)
	}
	return os.Remove(probe)
}
