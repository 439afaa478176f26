package handlers

import (
	"time"

	"github.com/codecraftkids/codecraft-api/internal/domain/entity"
)

// UserView is the owner's view of their account. The password hash never
// leaves the server.
type UserView struct {
	ID              string         `json:"_id"`
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	ProfilePic      string         `json:"profilePic"`
	CompletedLevels []int          `json:"completedLevels"`
	Badges          []entity.Badge `json:"badges"`
	CurrentBadge    string         `json:"currentBadge"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func toUserView(u *entity.User) UserView {
	c := u.Clone()
	return UserView{
		ID:              c.ID,
		Name:            c.Name,
		Email:           c.Email,
		ProfilePic:      c.ProfilePicturePath,
		CompletedLevels: c.CompletedLevels,
		Badges:          c.Badges,
		CurrentBadge:    c.CurrentBadge,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
