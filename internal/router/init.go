package router

import (
	"github.com/codecraftkids/codecraft-api/internal/application"
	"github.com/codecraftkids/codecraft-api/internal/container"
	"github.com/codecraftkids/codecraft-api/internal/infrastructure/cache"
	handlers "github.com/codecraftkids/codecraft-api/internal/interface/http"
	"github.com/codecraftkids/codecraft-api/internal/router/modules"
)

// BuildService assembles the application service from container singletons.
// Optional collaborators left unset in the container stay disabled.
func BuildService() *application.Service {
	cfg := container.GetConfig()
	svc := application.NewService(
		container.GetUsers(),
		container.GetHasher(),
		container.GetJWT(),
		container.GetLogger(),
	)
	svc.Avatars = container.GetAvatars()
	svc.MaxUploadBytes = cfg.UploadMaxBytes
	svc.AppName = cfg.AppName
	svc.AppURL = cfg.AppURL

	if rdb := container.GetRedis(); rdb != nil {
		svc.Redis = rdb
		svc.PublicCacheTTL = cfg.PublicUsersCacheTTL
		svc.Board = cache.NewLeaderboard(rdb)
	}
	if es := container.GetES(); es != nil {
		svc.ES = es
		svc.ESUsersIndex = cfg.ESUsersIndex
	}
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		svc.Mail = pub
	}
	return svc
}

// InitModules initializes all application modules and registers them with the router registry.
// Call once during startup, after the container is populated.
func InitModules(r *Registry, svc *application.Service) {
	cfg := container.GetConfig()
	rdb := container.GetRedis()
	jwt := container.GetJWT()

	r.Add(modules.NewAuthModule(
		handlers.NewAuthHandler(svc),
		handlers.NewProfileHandler(svc, cfg.UploadMaxBytes),
		jwt,
		rdb,
	))
	r.Add(modules.NewUsersModule(handlers.NewUsersHandler(svc, cfg.LeaderboardSize), jwt, rdb))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb))
	}
}
