package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/NatiBytes/crispy-vison/pkg/models"

	"github.com/google/uuid"
)

// ErrPreviewNotFound indicates the requested preview is gone or was replaced
var ErrPreviewNotFound = errors.New("preview not found")

// PreviewStore keeps the displayable copy of the most recent upload.
type PreviewStore interface {
	// Save stores the preview and returns a reference the UI can fetch.
	Save(ctx context.Context, buf models.ImageBuffer) (string, error)

	// Open returns the stored preview for the given id.
	Open(ctx context.Context, id string) (models.ImageBuffer, error)
}

// MemoryStore is a single-slot in-memory PreviewStore. Each upload replaces
// the previous preview wholesale, so one slot is all that is ever needed.
type MemoryStore struct {
	mu  sync.RWMutex
	id  string
	buf models.ImageBuffer
}

// NewMemoryStore creates an in-memory preview store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save stores the preview and returns a relative URL served by the API.
func (s *MemoryStore) Save(ctx context.Context, buf models.ImageBuffer) (string, error) {
	id := uuid.NewString()

	s.mu.Lock()
	s.id = id
	s.buf = buf
	s.mu.Unlock()

	return "/preview/" + id, nil
}

// Open returns the stored preview. Ids of replaced previews are not found.
func (s *MemoryStore) Open(ctx context.Context, id string) (models.ImageBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id == "" || id != s.id {
		return models.ImageBuffer{}, ErrPreviewNotFound
	}
	return s.buf, nil
}
