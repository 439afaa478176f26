package postgres

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecraftkids/codecraft-api/internal/domain/badge"
	"github.com/codecraftkids/codecraft-api/internal/domain/entity"
	"github.com/codecraftkids/codecraft-api/internal/domain/repository"
)

// Runs against a disposable database only: TEST_DATABASE_URL=postgres://...
func newTestRepo(t *testing.T) *UserRepository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, dsn, 4, 1, time.Minute)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../../db/migrations/000001_create_users.up.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `TRUNCATE users`)
	require.NoError(t, err)

	return NewUserRepository(pool)
}

func TestPostgresCreateAndLookup(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := &entity.User{Name: "Ada", Email: "Ada@X.com", PasswordHash: "hash", CurrentBadge: entity.DefaultCurrentBadge}
	require.NoError(t, r.Create(ctx, u))
	assert.NotEmpty(t, u.ID)

	got, err := r.GetByEmail(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Empty(t, got.CompletedLevels)
	assert.Empty(t, got.Badges)

	err = r.Create(ctx, &entity.User{Name: "Ada", Email: "ADA@x.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)

	_, err = r.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = r.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPostgresMutateSerialisesLevelCompletion(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := &entity.User{Name: "Ada", Email: "ada@x.com", PasswordHash: "hash", CurrentBadge: entity.DefaultCurrentBadge}
	require.NoError(t, r.Create(ctx, u))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Mutate(ctx, u.ID, func(u *entity.User) error {
				if !u.HasCompleted(1) {
					u.CompletedLevels = append(u.CompletedLevels, 1)
					badge.TryAward(u, 1, time.Now())
				}
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got.CompletedLevels)
	require.Len(t, got.Badges, 1)
	assert.Equal(t, "Python Beginner", got.Badges[0].Name)
	assert.Equal(t, "🐍", got.CurrentBadge)
}
