package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/govuk-domains/domain-request/internal/wizard"
)

// MemoryApplicationRepository is an in-memory ApplicationRepository for
// development and tests.
type MemoryApplicationRepository struct {
	mu    sync.RWMutex
	byRef map[string]*SubmittedApplication
	bySID map[string]string
}

func NewMemoryApplicationRepository() *MemoryApplicationRepository {
	return &MemoryApplicationRepository{
		byRef: make(map[string]*SubmittedApplication),
		bySID: make(map[string]string),
	}
}

func (r *MemoryApplicationRepository) Save(_ context.Context, sessionID string, app *wizard.Application) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ref, ok := r.bySID[sessionID]; ok {
		return ref, nil
	}
	reference, err := NewReference()
	if err != nil {
		return "", err
	}
	answers, err := json.Marshal(app)
	if err != nil {
		return "", err
	}
	r.byRef[reference] = &SubmittedApplication{
		Reference:   reference,
		SessionID:   sessionID,
		SubmittedAt: time.Now().UTC(),
		Answers:     answers,
	}
	r.bySID[sessionID] = reference
	return reference, nil
}

func (r *MemoryApplicationRepository) GetByReference(_ context.Context, reference string) (*SubmittedApplication, error) {
	r.mu.RLock()
	rec, ok := r.byRef[reference]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	out := *rec
	out.Application = &wizard.Application{}
	if err := json.Unmarshal(out.Answers, out.Application); err != nil {
		return nil, err
	}
	return &out, nil
}
