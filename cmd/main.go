package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/codecraftkids/codecraft-api/config"
	"github.com/codecraftkids/codecraft-api/internal/container"
	"github.com/codecraftkids/codecraft-api/internal/infrastructure/memory"
	pginfra "github.com/codecraftkids/codecraft-api/internal/infrastructure/postgres"
	"github.com/codecraftkids/codecraft-api/internal/infrastructure/storage"
	"github.com/codecraftkids/codecraft-api/internal/router"
	"github.com/codecraftkids/codecraft-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	if cfg.JWTSecret == "devsecret" && cfg.Env != "development" {
		logger.Warn("JWT_SECRET is the development default; set a real secret")
	}

	ctx := context.Background()

	// Users: Postgres, or process memory for local runs
	if cfg.UsesMemoryStore() {
		logger.Warn("STORAGE_DRIVER=memory: users are lost on restart")
		container.SetUsers(memory.NewUserRepository())
	} else {
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()

		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		container.SetUsers(pginfra.NewUserRepository(pool))
	}

	// Redis is optional: rate limits, the public users cache and the leaderboard switch off without it
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := helpers.PingRedis(ctx, rdb); err != nil {
		helpers.LogWarn(logger, "redis unavailable, continuing without it", err, logrus.Fields{"addr": cfg.RedisAddr})
		_ = rdb.Close()
	} else {
		defer func() { _ = rdb.Close() }()
		container.SetRedis(rdb)
	}

	// Avatars: GCS when a bucket is configured, local disk otherwise
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		container.SetAvatars(storage.NewGCSAvatarStore(gcsClient, cfg.GCSBucket))
	} else {
		local, err := storage.NewLocalAvatarStore(cfg.UploadDir)
		if err != nil {
			log.Fatalf("failed to prepare upload dir: %v", err)
		}
		container.SetAvatars(local)
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			helpers.LogWarn(logger, "elasticsearch client init failed, search disabled", err, nil)
		} else if err := helpers.EnsureUsersIndex(ctx, es, cfg.ESUsersIndex); err != nil {
			helpers.LogWarn(logger, "elasticsearch index setup failed, search disabled", err, logrus.Fields{"index": cfg.ESUsersIndex})
		} else {
			container.SetES(es)
		}
	}

	if cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			helpers.LogWarn(logger, "rabbitmq unavailable, emails disabled", err, nil)
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL))
	container.SetHasher(helpers.NewPasswordHasher(cfg.BcryptCost))

	svc := router.BuildService()
	if err := svc.RebuildLeaderboard(ctx); err != nil {
		helpers.LogWarn(logger, "leaderboard rebuild failed", err, nil)
	}

	r := router.NewEngine(cfg, logger)
	reg := router.NewRegistry(r)
	router.InitModules(reg, svc)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		helpers.LogError(logger, "server forced to shutdown", err, nil)
		return
	}
	logger.Info("server exited properly")
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
