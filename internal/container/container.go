package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/codecraftkids/codecraft-api/config"
	"github.com/codecraftkids/codecraft-api/internal/application"
	"github.com/codecraftkids/codecraft-api/internal/domain/repository"
	"github.com/codecraftkids/codecraft-api/pkg/helpers"
)

// app-level container to share constructed components across packages.
// Router auto-wires modules from these singletons; optional ones may be nil.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	users       repository.UserRepository
	redisClient *redis.Client
	avatars     application.AvatarStore

	jwtManager *helpers.JWTManager
	hasher     *helpers.PasswordHasher

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client
)

func SetConfig(c *config.Config)           { cfg = c }
func GetConfig() *config.Config            { return cfg }
func SetLogger(l *logrus.Logger)           { logger = l }
func GetLogger() *logrus.Logger            { return logger }
func SetUsers(r repository.UserRepository) { users = r }
func GetUsers() repository.UserRepository  { return users }
func SetRedis(r *redis.Client)             { redisClient = r }
func GetRedis() *redis.Client              { return redisClient }
func SetAvatars(a application.AvatarStore) { avatars = a }
func GetAvatars() application.AvatarStore  { return avatars }
func SetHasher(h *helpers.PasswordHasher)  { hasher = h }
func SetJWT(m *helpers.JWTManager)         { jwtManager = m }
func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	return helpers.DefaultJWT()
}

func GetHasher() *helpers.PasswordHasher {
	if hasher != nil {
		return hasher
	}
	return helpers.NewPasswordHasher(0)
}

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
