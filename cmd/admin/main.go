// admin 离线运维工具：种子管理员 + 过期刷新令牌清理。
// 管理员不走注册接口，首个 ADMIN 必须从这里进。
package main

import (
	"context"
	"flag"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/takezo-code/kanban-auth/internal/core/config"
	"github.com/takezo-code/kanban-auth/internal/core/database"
	"github.com/takezo-code/kanban-auth/internal/core/logger"
	"github.com/takezo-code/kanban-auth/internal/domain"
	"github.com/takezo-code/kanban-auth/internal/repo"
	"github.com/takezo-code/kanban-auth/pkg/utils"
)

func main() {
	var (
		seedAdmin   = flag.Bool("seed-admin", false, "create an ADMIN user")
		name        = flag.String("name", "", "admin name")
		email       = flag.String("email", "", "admin email")
		password    = flag.String("password", "", "admin password")
		purgeTokens = flag.Bool("purge-tokens", false, "delete expired refresh tokens")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.RefreshToken{}); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch {
	case *seedAdmin:
		if *name == "" || *email == "" || len(*password) < 6 {
			log.Fatal("seed-admin requires -name, -email and a password of 6+ chars")
		}
		users := repo.NewUserRepo(db)
		existing, err := users.FindByEmail(ctx, *email)
		if err != nil {
			log.Fatal("find user", zap.Error(err))
		}
		if existing != nil {
			log.Fatal("email already registered", zap.String("email", *email))
		}
		u := &domain.User{
			ID:           utils.NewID(),
			Name:         *name,
			Email:        *email,
			PasswordHash: utils.HashPassword(*password),
			Role:         domain.RoleAdmin,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatal("create admin", zap.Error(err))
		}
		log.Info("admin created", zap.String("id", u.ID), zap.String("email", u.Email))

	case *purgeTokens:
		tokens := repo.NewTokenRepo(db)
		n, err := tokens.PurgeExpired(ctx, time.Now())
		if err != nil {
			log.Fatal("purge tokens", zap.Error(err))
		}
		log.Info("expired refresh tokens purged", zap.Int64("count", n))

	default:
		flag.Usage()
		os.Exit(2)
	}
}
