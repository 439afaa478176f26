package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/codecraftkids/codecraft-api/internal/interface/http"
	"github.com/codecraftkids/codecraft-api/internal/interface/middleware"
)

// UsersModule exposes learner listings under /api/users.
// Public: GET /users, /users/leaderboard, /users/:userId
// Protected: GET /users/search
type UsersModule struct {
	Handler *handlers.UsersHandler
	Tokens  middleware.TokenParser
	RDB     *redis.Client
}

func NewUsersModule(h *handlers.UsersHandler, tokens middleware.TokenParser, rdb *redis.Client) *UsersModule {
	return &UsersModule{Handler: h, Tokens: tokens, RDB: rdb}
}

func (m *UsersModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/users")

	public := g.Group("")
	public.Use(middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()))
	{
		public.GET("", m.Handler.List)
		public.GET("/leaderboard", m.Handler.Leaderboard)
		public.GET("/:userId", m.Handler.Get)
	}

	auth := g.Group("")
	auth.Use(middleware.Auth(m.Tokens))
	auth.Use(middleware.RateLimit(m.RDB, 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/search", m.Handler.Search)
	}
}
