package entity

import (
	"slices"
	"time"
)

// DefaultCurrentBadge is shown until the learner earns a first badge.
const DefaultCurrentBadge = "/default-badge.png"

// User is the aggregate root for the learner domain.
// PasswordHash holds a bcrypt hash; the plaintext never reaches this type.
type User struct {
	ID                 string
	Name               string
	Email              string
	PasswordHash       string
	ProfilePicturePath string
	CompletedLevels    []int
	Badges             []Badge
	CurrentBadge       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Badge is embedded in User; Level is unique within one user's list.
type Badge struct {
	Level       int       `json:"level"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earnedAt"`
}

// HasCompleted reports whether level is already in CompletedLevels.
func (u *User) HasCompleted(level int) bool {
	return slices.Contains(u.CompletedLevels, level)
}

// HasBadgeFor reports whether a badge for level was already awarded.
func (u *User) HasBadgeFor(level int) bool {
	return slices.ContainsFunc(u.Badges, func(b Badge) bool { return b.Level == level })
}

// Clone returns a deep copy so stores can hand out values without aliasing.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.CompletedLevels = slices.Clone(u.CompletedLevels)
	c.Badges = slices.Clone(u.Badges)
	if c.CompletedLevels == nil {
		c.CompletedLevels = []int{}
	}
	if c.Badges == nil {
		c.Badges = []Badge{}
	}
	return &c
}
