// Package memory keeps users in process memory. It backs STORAGE_DRIVER=memory
// and the service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codecraftkids/codecraft-api/internal/domain/entity"
	"github.com/codecraftkids/codecraft-api/internal/domain/repository"
)

type UserRepository struct {
	mu      sync.Mutex
	byID    map[string]*entity.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*entity.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, ok := r.byEmail[email]; ok {
		return repository.ErrEmailTaken
	}
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.Email = email
	u.CreatedAt = now
	u.UpdatedAt = now
	stored := u.Clone()
	*u = *stored.Clone()

	r.byID[u.ID] = stored
	r.byEmail[email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *UserRepository) Mutate(_ context.Context, id string, fn repository.MutateFunc) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Email = strings.ToLower(next.Email)
	if next.Email != cur.Email {
		if owner, taken := r.byEmail[next.Email]; taken && owner != id {
			return nil, repository.ErrEmailTaken
		}
		delete(r.byEmail, cur.Email)
		r.byEmail[next.Email] = id
	}
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	r.byID[id] = next
	return next.Clone(), nil
}

func (r *UserRepository) ListPublic(_ context.Context) ([]*entity.User, error) {
	r.mu.Lock()
	out := make([]*entity.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u.Clone())
	}
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if li, lj := len(out[i].CompletedLevels), len(out[j].CompletedLevels); li != lj {
			return li > lj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
