package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/codecraftkids/codecraft-api/internal/domain/entity"
	repo "github.com/codecraftkids/codecraft-api/internal/domain/repository"
	"github.com/codecraftkids/codecraft-api/pkg/apperror"
)

type SignupInput struct {
	Name     string `json:"name" validate:"required,username"`
	Email    string `json:"email" validate:"required,basic_email"`
	Password string `json:"password" validate:"required,pwd"`
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckEmail reports whether an account uses email.
func (s *Service) CheckEmail(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, apperror.Validation("Email is required", map[string]string{"email": "is required"})
	}
	_, err := s.Repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repo.ErrNotFound):
		return false, nil
	default:
		return false, apperror.Internal(err)
	}
}

// Signup creates a learner account and signs them in.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperror.EmailAlreadyExists()
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	in.Password = ""

	u := &entity.User{
		Name:            in.Name,
		Email:           in.Email,
		PasswordHash:    hash,
		CompletedLevels: []int{},
		Badges:          []entity.Badge{},
		CurrentBadge:    entity.DefaultCurrentBadge,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, apperror.EmailAlreadyExists()
		}
		return nil, apperror.Internal(err)
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}

	metricSignups.Add(1)
	s.setScore(ctx, u)
	s.afterWrite(ctx, u)
	s.sendWelcome(ctx, u)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("user signed up")
	}
	return res, nil
}

// Login checks credentials. Unknown email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.InvalidCredentials()
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.Internal(err)
		}
		// keep response time close to the wrong-password path
		s.Hasher.Verify(password, s.dummyPasswordHash())
		return nil, apperror.InvalidCredentials()
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		return nil, apperror.InvalidCredentials()
	}
	metricLogins.Add(1)
	return s.issue(u)
}

func (s *Service) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.Tokens.GenerateToken(u.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.Hash("codecraft-dummy-password")
	})
	return s.dummyHash
}
