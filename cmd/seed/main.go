package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/codecraftkids/codecraft-api/config"
	"github.com/codecraftkids/codecraft-api/internal/application"
	pginfra "github.com/codecraftkids/codecraft-api/internal/infrastructure/postgres"
	"github.com/codecraftkids/codecraft-api/pkg/apperror"
	"github.com/codecraftkids/codecraft-api/pkg/helpers"
)

type demoLearner struct {
	name, email string
	levels      []int
}

var demo = []demoLearner{
	{name: "Demo Learner", email: "demo@codecraft.test", levels: []int{1, 2, 3}},
	{name: "Ada Lovelace", email: "ada@codecraft.test", levels: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
	{name: "Alan Turing", email: "alan@codecraft.test", levels: []int{1}},
}

const demoPassword = "password123"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	svc := application.NewService(
		pginfra.NewUserRepository(pool),
		helpers.NewPasswordHasher(cfg.BcryptCost),
		helpers.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		helpers.NewLogger(cfg.AppName+"-seed", cfg.Env),
	)

	for _, d := range demo {
		res, err := svc.Signup(ctx, application.SignupInput{Name: d.name, Email: d.email, Password: demoPassword})
		if apperror.IsKind(err, apperror.KindEmailAlreadyExists) {
			fmt.Printf("skipped existing user %s\n", d.email)
			continue
		}
		if err != nil {
			log.Fatalf("failed to seed %s: %v", d.email, err)
		}
		for _, level := range d.levels {
			l := level
			if _, err := svc.UpdateProfile(ctx, res.User.ID, application.UpdateProfileInput{CompletedLevel: &l}); err != nil {
				log.Fatalf("failed to complete level %d for %s: %v", level, d.email, err)
			}
		}
		fmt.Printf("seeded user: id=%s email=%s levels=%d password=%s\n", res.User.ID, d.email, len(d.levels), demoPassword)
	}
}
