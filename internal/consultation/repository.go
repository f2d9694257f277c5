package consultation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("consultation not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
	Save(ctx context.Context, c *Consultation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// memoryRepo keeps consultations for the life of the process. Values are
// copied on the way in and out so callers never share slices.
type memoryRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Consultation
}

func NewRepository() Repository {
	return &memoryRepo{items: make(map[uuid.UUID]*Consultation)}
}

func (r *memoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.clone(), nil
}

func (r *memoryRepo) Save(ctx context.Context, c *Consultation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = c.clone()
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}
