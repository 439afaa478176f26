package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codecraftkids/codecraft-api/internal/domain/entity"
	"github.com/codecraftkids/codecraft-api/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, profile_pic, completed_levels, badges, current_badge, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	u.Email = strings.ToLower(u.Email)
	badges, err := encodeBadges(u.Badges)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, profile_pic, completed_levels, badges, current_badge)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.PasswordHash, u.ProfilePicturePath, toInt32s(u.CompletedLevels), badges, u.CurrentBadge)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	return r.getOne(ctx, r.pool, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, r.pool, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

// Mutate locks the row for the duration of fn so concurrent level completions
// for one user are applied one after another.
func (r *UserRepository) Mutate(ctx context.Context, id string, fn repository.MutateFunc) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u, err := r.getOne(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, err
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	u.Email = strings.ToLower(u.Email)
	badges, err := encodeBadges(u.Badges)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, `
		UPDATE users
		SET name = $1, email = $2, profile_pic = $3, completed_levels = $4, badges = $5,
		    current_badge = $6, updated_at = now()
		WHERE id = $7
		RETURNING updated_at
	`, u.Name, u.Email, u.ProfilePicturePath, toInt32s(u.CompletedLevels), badges, u.CurrentBadge, id).Scan(&u.UpdatedAt)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) ListPublic(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY cardinality(completed_levels) DESC, created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *UserRepository) getOne(ctx context.Context, q querier, sql string, arg string) (*entity.User, error) {
	u, err := scanUser(q.QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var levels []int32
	var badges []byte
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.ProfilePicturePath,
		&levels, &badges, &u.CurrentBadge, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.CompletedLevels = make([]int, len(levels))
	for i, l := range levels {
		u.CompletedLevels[i] = int(l)
	}
	u.Badges = []entity.Badge{}
	if len(badges) > 0 {
		if err := json.Unmarshal(badges, &u.Badges); err != nil {
			return nil, fmt.Errorf("decode badges for %s: %w", u.ID, err)
		}
	}
	return u, nil
}

func encodeBadges(b []entity.Badge) ([]byte, error) {
	if b == nil {
		b = []entity.Badge{}
	}
	return json.Marshal(b)
}

func toInt32s(levels []int) []int32 {
	out := make([]int32, len(levels))
	for i, l := range levels {
		out[i] = int32(l)
	}
	return out
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrEmailTaken
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
