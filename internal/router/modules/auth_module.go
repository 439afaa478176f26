package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/codecraftkids/codecraft-api/internal/interface/http"
	"github.com/codecraftkids/codecraft-api/internal/interface/middleware"
)

// AuthModule wires account routes under /api/auth.
// Public: POST check-email, signup, login
// Protected: GET/PUT profile
type AuthModule struct {
	Auth    *handlers.AuthHandler
	Profile *handlers.ProfileHandler
	Tokens  middleware.TokenParser
	RDB     *redis.Client
}

func NewAuthModule(auth *handlers.AuthHandler, profile *handlers.ProfileHandler, tokens middleware.TokenParser, rdb *redis.Client) *AuthModule {
	return &AuthModule{Auth: auth, Profile: profile, Tokens: tokens, RDB: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")

	checkLimiter := middleware.RateLimit(m.RDB, 30, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	signupLimiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	loginLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())

	g.POST("/check-email", checkLimiter, m.Auth.CheckEmail)
	g.POST("/signup", signupLimiter, m.Auth.Signup)
	g.POST("/login", loginLimiter, m.Auth.Login)

	auth := g.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	auth.Use(middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/profile", m.Profile.Get)
		auth.PUT("/profile", m.Profile.Update)
	}
}
