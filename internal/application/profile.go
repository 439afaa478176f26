package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"github.com/codecraftkids/codecraft-api/internal/domain/badge"
	"github.com/codecraftkids/codecraft-api/internal/domain/entity"
	repo "github.com/codecraftkids/codecraft-api/internal/domain/repository"
	"github.com/codecraftkids/codecraft-api/pkg/apperror"
)

const MsgProfileUpdated = "Profile updated successfully."

// MaxLevel bounds completedLevel so a client cannot grow the level list without limit.
const MaxLevel = 1000

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload is a profile picture received from the client.
type Upload struct {
	Filename string
	Content  []byte
}

// UpdateProfileInput is a partial update; nil fields are left untouched.
type UpdateProfileInput struct {
	Name           *string `validate:"omitnil,username" json:"name"`
	Email          *string `validate:"omitnil,basic_email" json:"email"`
	CompletedLevel *int    `validate:"omitnil,gte=0,lte=1000" json:"completedLevel"`
	ProfilePicture *Upload `validate:"-" json:"-"`
}

// UpdateResult carries the updated user and, when one was earned, the new badge.
type UpdateResult struct {
	User        *entity.User
	Message     string
	BadgeEarned *entity.Badge
}

// ParseLevel coerces a client-supplied level ("3", "3.0") into an integer.
func ParseLevel(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < 0 || f > MaxLevel {
		return 0, apperror.Validation("completedLevel must be a whole number between 0 and "+strconv.Itoa(MaxLevel),
			map[string]string{"completedLevel": "must be a whole number"})
	}
	return int(f), nil
}

// GetProfile returns the stored user.
func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, s.loadErr(err)
	}
	return u, nil
}

// UpdateProfile applies a partial update. Level completion and badge award
// happen inside a single repository Mutate so concurrent calls cannot lose
// a level or award a badge twice.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*UpdateResult, error) {
	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		in.Name = &v
	}
	if in.Email != nil {
		v := normalizeEmail(*in.Email)
		in.Email = &v
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	var picture string
	if in.ProfilePicture != nil {
		ext, err := s.checkImage(in.ProfilePicture)
		if err != nil {
			return nil, err
		}
		if _, err := s.Repo.GetByID(ctx, userID); err != nil {
			return nil, s.loadErr(err)
		}
		if in.Email != nil {
			other, err := s.Repo.GetByEmail(ctx, *in.Email)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return nil, apperror.Internal(err)
			}
			if other != nil && other.ID != userID {
				return nil, apperror.EmailAlreadyExists()
			}
		}
		if picture, err = s.saveAvatar(ctx, userID, in.ProfilePicture, ext); err != nil {
			return nil, apperror.Internal(err)
		}
	}

	var (
		levelAdded bool
		awarded    *entity.Badge
	)
	now := s.now()
	u, err := s.Repo.Mutate(ctx, userID, func(u *entity.User) error {
		levelAdded, awarded = false, nil
		if in.Name != nil {
			u.Name = *in.Name
		}
		if in.Email != nil {
			u.Email = *in.Email
		}
		if picture != "" {
			u.ProfilePicturePath = picture
		}
		if in.CompletedLevel != nil {
			level := *in.CompletedLevel
			if !u.HasCompleted(level) {
				u.CompletedLevels = append(u.CompletedLevels, level)
				levelAdded = true
				awarded = badge.TryAward(u, level, now)
			}
		}
		return nil
	})
	if err != nil {
		if picture != "" {
			s.discardAvatar(ctx, userID, picture)
		}
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, apperror.NotFound(apperror.MsgUserNotFound)
		case errors.Is(err, repo.ErrEmailTaken):
			return nil, apperror.EmailAlreadyExists()
		default:
			return nil, apperror.Internal(err)
		}
	}

	res := &UpdateResult{User: u, Message: MsgProfileUpdated, BadgeEarned: awarded}
	if levelAdded {
		metricLevels.Add(1)
		s.setScore(ctx, u)
	}
	if awarded != nil {
		metricBadges.Add(1)
		res.Message = fmt.Sprintf("🎉 You completed Level %d & earned the %s badge!", awarded.Level, awarded.Name)
		s.sendBadgeEarned(ctx, u, awarded)
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "level": awarded.Level}).Info("badge awarded")
		}
	}
	s.afterWrite(ctx, u)
	return res, nil
}

func (s *Service) checkImage(up *Upload) (string, error) {
	if len(up.Content) == 0 {
		return "", apperror.Validation("profilePic is empty", map[string]string{"profilePic": "is empty"})
	}
	if s.MaxUploadBytes > 0 && int64(len(up.Content)) > s.MaxUploadBytes {
		return "", apperror.Validation("profilePic is too large", map[string]string{"profilePic": "is too large"})
	}
	mt := mimetype.Detect(up.Content)
	for ct, ext := range allowedImageTypes {
		if mt.Is(ct) {
			return ext, nil
		}
	}
	return "", apperror.Validation("profilePic must be a jpeg, png, gif or webp image",
		map[string]string{"profilePic": "unsupported image type"})
}

func (s *Service) saveAvatar(ctx context.Context, userID string, up *Upload, ext string) (string, error) {
	if s.Avatars == nil {
		return "", errors.New("avatar storage is not configured")
	}
	// the stored extension follows the sniffed type, not the client's filename
	name := strings.TrimSuffix(filepath.Base(up.Filename), filepath.Ext(up.Filename)) + ext
	ct := mimetype.Detect(up.Content).String()
	return s.Avatars.Save(ctx, userID, name, ct, bytes.NewReader(up.Content))
}

// discardAvatar removes a picture whose profile write did not land.
func (s *Service) discardAvatar(ctx context.Context, userID, location string) {
	if err := s.Avatars.Delete(context.WithoutCancel(ctx), location); err != nil {
		s.warn("removing orphaned avatar failed", err, logrus.Fields{"user_id": userID, "location": location})
	}
}
