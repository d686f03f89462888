package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"github.com/dmitrijs2005/totpkeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in process memory. It backs tests and
// the "memory" storage backend.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[string]*models.Account
	byName map[string]string
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[string]*models.Account),
		byName: make(map[string]string),
		now:    time.Now,
	}
}

func (r *MemoryRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[username]
	return ok, nil
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a.Clone(), nil
}

func (r *MemoryRepository) Save(_ context.Context, a *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	out := a.Clone()

	if out.ID == "" {
		if _, taken := r.byName[out.Username]; taken {
			return nil, common.ErrorAlreadyExists
		}
		out.ID = uuid.NewString()
		out.CreatedAt = now
		out.UpdatedAt = now
		r.byID[out.ID] = out
		r.byName[out.Username] = out.ID
		return out.Clone(), nil
	}

	prev, ok := r.byID[out.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if out.Username != prev.Username {
		if _, taken := r.byName[out.Username]; taken {
			return nil, common.ErrorAlreadyExists
		}
		delete(r.byName, prev.Username)
		r.byName[out.Username] = out.ID
	}
	out.CreatedAt = prev.CreatedAt
	out.UpdatedAt = now
	r.byID[out.ID] = out
	return out.Clone(), nil
}
