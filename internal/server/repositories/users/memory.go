package users

import (
	"context"
	"sync"

	"github.com/bpay/bpay/internal/common"
	"github.com/bpay/bpay/internal/server/models"
)

// MemoryRepository keeps records in process memory. Lookup and insert share
// one lock, which makes Create an atomic insert-if-absent.
type MemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*models.User
	order   []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byEmail: make(map[string]*models.User)}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}

	stored := *user
	r.byEmail[user.Email] = &stored
	r.order = append(r.order, user.Email)

	out := stored
	return &out, nil
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.User, 0, len(r.order))
	for _, email := range r.order {
		u := *r.byEmail[email]
		result = append(result, &u)
	}
	return result, nil
}
