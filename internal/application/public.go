package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/codecraftkids/codecraft-api/internal/domain/entity"
	repo "github.com/codecraftkids/codecraft-api/internal/domain/repository"
	"github.com/codecraftkids/codecraft-api/pkg/helpers"
)

// Writes bump the generation; cached lists live under users:public:v<gen>, so a
// list loaded before a write can never be served after it.
const publicUsersGenKey = "users:public:gen"

// PublicProfile is what other learners may see. Email never appears here.
type PublicProfile struct {
	ID              string         `json:"_id"`
	Name            string         `json:"name"`
	ProfilePic      string         `json:"profilePic"`
	CompletedLevels []int          `json:"completedLevels"`
	Badges          []entity.Badge `json:"badges"`
	CurrentBadge    string         `json:"currentBadge"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

func ToPublicProfile(u *entity.User) PublicProfile {
	c := u.Clone()
	return PublicProfile{
		ID:              c.ID,
		Name:            c.Name,
		ProfilePic:      c.ProfilePicturePath,
		CompletedLevels: c.CompletedLevels,
		Badges:          c.Badges,
		CurrentBadge:    c.CurrentBadge,
		CreatedAt:       c.CreatedAt,
	}
}

// ListPublicUsers returns every learner ordered by progress, served from
// Redis when a fresh copy exists.
func (s *Service) ListPublicUsers(ctx context.Context) ([]PublicProfile, error) {
	var cacheKey string
	if s.Redis != nil {
		gen, err := s.Redis.Get(ctx, publicUsersGenKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			s.warn("public users cache generation read failed", err, nil)
		} else {
			cacheKey = fmt.Sprintf("users:public:v%d", gen)
			var cached []PublicProfile
			found, err := helpers.RedisGetJSON(ctx, s.Redis, cacheKey, &cached)
			if err != nil {
				s.warn("public users cache read failed", err, nil)
			} else if found {
				return cached, nil
			}
		}
	}

	users, err := s.Repo.ListPublic(ctx)
	if err != nil {
		return nil, s.loadErr(err)
	}
	out := make([]PublicProfile, 0, len(users))
	for _, u := range users {
		out = append(out, ToPublicProfile(u))
	}

	if cacheKey != "" && s.PublicCacheTTL > 0 {
		if err := helpers.RedisSetJSON(ctx, s.Redis, cacheKey, out, s.PublicCacheTTL); err != nil {
			s.warn("public users cache write failed", err, nil)
		}
	}
	return out, nil
}

// GetPublicUser returns one learner's public profile.
func (s *Service) GetPublicUser(ctx context.Context, userID string) (*PublicProfile, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, s.loadErr(err)
	}
	p := ToPublicProfile(u)
	return &p, nil
}

// Leaderboard returns the top n learners by completed level count. Without a
// Leaderboard backend it ranks straight from the repository.
func (s *Service) Leaderboard(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	if n <= 0 {
		n = 10
	}
	if s.Board != nil {
		out, err := s.rankFromBoard(ctx, n)
		if err == nil {
			return out, nil
		}
		s.warn("leaderboard read failed, ranking from store", err, nil)
	}

	users, err := s.Repo.ListPublic(ctx)
	if err != nil {
		return nil, s.loadErr(err)
	}
	if len(users) > n {
		users = users[:n]
	}
	out := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		out = append(out, LeaderboardEntry{Rank: i + 1, UserID: u.ID, Name: u.Name, Score: len(u.CompletedLevels)})
	}
	return out, nil
}

// maxBoardRefills bounds how often a board with stale members is re-read.
const maxBoardRefills = 3

// rankFromBoard attaches names to the board's top n. Members whose user is
// gone are removed and the board re-read so the result still fills n rows.
func (s *Service) rankFromBoard(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	var out []LeaderboardEntry
	for i := 0; i < maxBoardRefills; i++ {
		ranked, err := s.Board.Top(ctx, n)
		if err != nil {
			return nil, err
		}
		var stale int
		out, stale, err = s.hydrate(ctx, ranked)
		if err != nil {
			return nil, err
		}
		if stale == 0 || len(ranked) < n {
			break
		}
	}
	return out, nil
}

func (s *Service) hydrate(ctx context.Context, ranked []RankedUser) ([]LeaderboardEntry, int, error) {
	out := make([]LeaderboardEntry, 0, len(ranked))
	stale := 0
	for _, r := range ranked {
		u, err := s.Repo.GetByID(ctx, r.UserID)
		if errors.Is(err, repo.ErrNotFound) {
			stale++
			if err := s.Board.Remove(ctx, r.UserID); err != nil {
				s.warn("removing stale leaderboard member failed", err, logrus.Fields{"user_id": r.UserID})
			}
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		out = append(out, LeaderboardEntry{Rank: len(out) + 1, UserID: u.ID, Name: u.Name, Score: r.Score})
	}
	return out, stale, nil
}

// RebuildLeaderboard reloads every score from the repository.
func (s *Service) RebuildLeaderboard(ctx context.Context) error {
	if s.Board == nil {
		return nil
	}
	users, err := s.Repo.ListPublic(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if err := s.Board.SetScore(ctx, u.ID, len(u.CompletedLevels)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) setScore(ctx context.Context, u *entity.User) {
	if s.Board == nil {
		return
	}
	if err := s.Board.SetScore(ctx, u.ID, len(u.CompletedLevels)); err != nil {
		s.warn("leaderboard update failed", err, logrus.Fields{"user_id": u.ID})
	}
}

func (s *Service) invalidatePublicCache(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Incr(ctx, publicUsersGenKey).Err(); err != nil {
		s.warn("public users cache invalidate failed", err, nil)
	}
}
