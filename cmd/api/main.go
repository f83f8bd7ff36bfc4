package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/clusterboard/dashboard-api/internal/config"
	authhandler "github.com/clusterboard/dashboard-api/internal/handler/auth"
	"github.com/clusterboard/dashboard-api/internal/handler/monitoring"
	"github.com/clusterboard/dashboard-api/internal/middleware"
	"github.com/clusterboard/dashboard-api/internal/model"
	"github.com/clusterboard/dashboard-api/internal/repository"
	"github.com/clusterboard/dashboard-api/internal/repository/memory"
	"github.com/clusterboard/dashboard-api/internal/repository/postgres"
	"github.com/clusterboard/dashboard-api/internal/repository/redis"
	"github.com/clusterboard/dashboard-api/internal/router"
	authservice "github.com/clusterboard/dashboard-api/internal/service/auth"
	"github.com/clusterboard/dashboard-api/pkg/logger"
	"github.com/clusterboard/dashboard-api/pkg/token"
)

const bcryptCost = 12

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zl := logger.Setup(cfg.Log.Level, cfg.Log.Pretty)

	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("auth.jwt_secret must be configured")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := postgres.EnsureSchema(db); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare database schema")
	}

	userRepo := postgres.NewUserRepository(db)
	attemptRepo := postgres.NewAttemptRepository(db)

	var blacklist repository.TokenBlacklist
	if cfg.Redis.URL != "" {
		rb, err := redis.NewBlacklist(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer rb.Close()
		blacklist = rb
	} else {
		blacklist = memory.NewBlacklist(cfg.Auth.TokenTTL())
	}

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL(), blacklist)
	lockout := authservice.NewLockoutPolicy(userRepo, attemptRepo,
		cfg.Auth.AccountLockoutAttempts, zl)
	authSvc := authservice.NewService(userRepo, tokens, lockout, cfg.SSO.Protocol, zl)

	if err := seedAdminUser(context.Background(), userRepo, cfg.Bootstrap); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin user")
	}

	authMiddleware := middleware.NewAuthMiddleware(tokens, cfg.Auth.CookieName)

	authHandler := authhandler.NewHandler(authSvc, authhandler.CookieConfig{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Server.TLSEnabled(),
		MaxAge: cfg.Auth.TokenTTL(),
	})
	monitoringHandler := monitoring.NewHandler(
		cfg.Monitoring.PrometheusAPIHost,
		cfg.Monitoring.AlertmanagerAPIHost,
	)

	r := router.New(authMiddleware, authHandler, monitoringHandler, router.Config{
		RateLimit: rate.Limit(20),
		RateBurst: 40,
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		var err error
		if cfg.Server.TLSEnabled() {
			err = srv.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Bool("tls", cfg.Server.TLSEnabled()).
		Msg("dashboard API listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

// seedAdminUser creates the initial administrator when the credential store
// is empty so a fresh deployment can be logged into at all.
func seedAdminUser(ctx context.Context, users repository.UserRepository,
	bootstrap config.BootstrapConfig) error {

	count, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 || bootstrap.AdminPassword == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(bootstrap.AdminPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &model.User{
		Username:     bootstrap.AdminUsername,
		PasswordHash: string(hash),
		Enabled:      true,
		Permissions: model.PermissionMap{
			"user":    {"read", "create", "update", "delete"},
			"cluster": {"read", "create", "update", "delete"},
			"pool":    {"read", "create", "update", "delete"},
			"monitor": {"read", "create", "update", "delete"},
		},
		PwdUpdateRequired: true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	log.Info().Str("username", admin.Username).Msg("seeded initial admin user")
	return nil
}
