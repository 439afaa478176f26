package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codecraftkids/codecraft-api/internal/application"
	"github.com/codecraftkids/codecraft-api/pkg/response"
)

const maxLeaderboardLimit = 100

// UsersHandler serves the community views of other learners.
type UsersHandler struct {
	Svc          *application.Service
	DefaultLimit int
}

func NewUsersHandler(svc *application.Service, defaultLimit int) *UsersHandler {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &UsersHandler{Svc: svc, DefaultLimit: defaultLimit}
}

func (h *UsersHandler) List(c *gin.Context) {
	users, err := h.Svc.ListPublicUsers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, gin.H{"success": true, "users": users, "totalUsers": len(users)})
}

func (h *UsersHandler) Get(c *gin.Context) {
	u, err := h.Svc.GetPublicUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, gin.H{"success": true, "user": u})
}

func (h *UsersHandler) Leaderboard(c *gin.Context) {
	limit := h.DefaultLimit
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		limit = min(n, maxLeaderboardLimit)
	}
	entries, err := h.Svc.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, gin.H{"success": true, "leaderboard": entries})
}

func (h *UsersHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, gin.H{"success": true, "users": hits})
}
