package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/codecraftkids/codecraft-api/internal/domain/entity"
	repo "github.com/codecraftkids/codecraft-api/internal/domain/repository"
	"github.com/codecraftkids/codecraft-api/pkg/apperror"
	"github.com/codecraftkids/codecraft-api/pkg/helpers"
	"github.com/codecraftkids/codecraft-api/pkg/validation"
)

// PasswordHasher is satisfied by helpers.PasswordHasher.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// TokenIssuer is satisfied by helpers.JWTManager.
type TokenIssuer interface {
	GenerateToken(userID string) (string, time.Time, error)
}

// AvatarStore persists an uploaded picture and returns the path or URL clients load it from.
// Delete takes a location previously returned by Save.
type AvatarStore interface {
	Save(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, location string) error
}

// EmailPublisher queues email jobs; satisfied by helpers.RabbitPublisher.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Leaderboard ranks users by completed level count.
type Leaderboard interface {
	SetScore(ctx context.Context, userID string, score int) error
	Top(ctx context.Context, n int) ([]RankedUser, error)
	Remove(ctx context.Context, userID string) error
}

// RankedUser is one leaderboard row before names are attached.
type RankedUser struct {
	UserID string
	Score  int
}

// Service owns every write to a User.
type Service struct {
	Repo     repo.UserRepository
	Hasher   PasswordHasher
	Tokens   TokenIssuer
	Logger   *logrus.Logger
	Validate *validator.Validate
	Now      func() time.Time

	// Optional collaborators; nil disables the feature.
	Avatars        AvatarStore
	Board          Leaderboard
	Redis          *redis.Client
	PublicCacheTTL time.Duration
	ES             *elasticsearch.Client
	ESUsersIndex   string
	Mail           EmailPublisher
	AppName        string
	AppURL         string
	MaxUploadBytes int64

	dummyOnce sync.Once
	dummyHash string
}

func NewService(users repo.UserRepository, hasher PasswordHasher, tokens TokenIssuer, logger *logrus.Logger) *Service {
	return &Service{
		Repo:           users,
		Hasher:         hasher,
		Tokens:         tokens,
		Logger:         logger,
		Validate:       validation.New(),
		Now:            time.Now,
		PublicCacheTTL: 30 * time.Second,
		MaxUploadBytes: 5 << 20,
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// validate runs struct validation and converts failures into ValidationFailed.
func (s *Service) validate(v any) error {
	if err := s.Validate.Struct(v); err != nil {
		details := validation.ToDetails(err)
		return apperror.Validation(validation.Summary(details), details)
	}
	return nil
}

// loadErr maps repository lookups onto the public error taxonomy.
func (s *Service) loadErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NotFound(apperror.MsgUserNotFound)
	}
	return apperror.Internal(err)
}

func (s *Service) warn(msg string, err error, fields logrus.Fields) {
	helpers.LogWarn(s.Logger, msg, err, fields)
}

// afterWrite runs the best-effort side effects every user write shares.
func (s *Service) afterWrite(ctx context.Context, u *entity.User) {
	s.invalidatePublicCache(ctx)
	_ = s.indexUser(ctx, u)
}
