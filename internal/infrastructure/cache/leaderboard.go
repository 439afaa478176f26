// Package cache holds Redis-backed read models.
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/codecraftkids/codecraft-api/internal/application"
)

const leaderboardKey = "leaderboard:levels"

// Leaderboard keeps completed level counts in a sorted set.
type Leaderboard struct {
	client *redis.Client
	key    string
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client, key: leaderboardKey}
}

// SetScore overwrites the user's score.
func (l *Leaderboard) SetScore(ctx context.Context, userID string, score int) error {
	err := l.client.ZAdd(ctx, l.key, redis.Z{Score: float64(score), Member: userID}).Err()
	if err != nil {
		return fmt.Errorf("setting score: %w", err)
	}
	return nil
}

// Remove drops a member, e.g. one whose user no longer exists.
func (l *Leaderboard) Remove(ctx context.Context, userID string) error {
	if err := l.client.ZRem(ctx, l.key, userID).Err(); err != nil {
		return fmt.Errorf("removing member: %w", err)
	}
	return nil
}

// Top returns the n highest scores, best first.
func (l *Leaderboard) Top(ctx context.Context, n int) ([]application.RankedUser, error) {
	if n <= 0 {
		return []application.RankedUser{}, nil
	}
	res, err := l.client.ZRevRangeWithScores(ctx, l.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}
	out := make([]application.RankedUser, 0, len(res))
	for _, z := range res {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, application.RankedUser{UserID: id, Score: int(z.Score)})
	}
	return out, nil
}
