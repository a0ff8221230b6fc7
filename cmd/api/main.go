package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anylearn/anylearn/internal/auth"
	"github.com/anylearn/anylearn/internal/config"
	"github.com/anylearn/anylearn/internal/db"
	apphttp "github.com/anylearn/anylearn/internal/http"
	"github.com/anylearn/anylearn/internal/observability"
	"github.com/anylearn/anylearn/internal/repo/postgres"
	"github.com/anylearn/anylearn/internal/security"
	"github.com/anylearn/anylearn/internal/session"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing

	otelShutdown, err := observability.InitTracer(context.Background(), "anylearn", cfg.OTLPEndpoint)

	if err != nil {
		log.Warn("tracing disabled", "err", err)
		otelShutdown = func(context.Context) error { return nil }
	}

	// postgres

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("could not connect to postgres", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	startupCtx, startupCancel := config.WithTimeout(30 * time.Second)

	err = db.Migrate(startupCtx, pool)

	if err != nil {
		startupCancel()
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	hasher := security.NewHasher(cfg.BcryptCost)

	err = db.EnsureAdminUser(startupCtx, pool, cfg, hasher)

	startupCancel()

	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	// redis-backed sessions

	rdb := session.NewRedisClient(session.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer func() { _ = rdb.Close() }()

	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	sessions := session.NewRedisStore(rdb, session.NewManager(cfg.SessionSecret, sessionTTL))

	// metrics

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// repositories + the credential core

	accounts := postgres.NewAccountsRepo(pool, prom)
	courses := postgres.NewCoursesRepo(pool, prom)
	enrollments := postgres.NewEnrollmentsRepo(pool, prom)
	profiles := postgres.NewProfilesRepo(pool, prom)

	authn := auth.NewAuthenticator(accounts, sessions, hasher, log)

	ping := func() error {
		ctx, cancel := config.WithTimeout(1 * time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			return err
		}

		return rdb.Ping(ctx).Err()
	}

	router := apphttp.NewRouter(apphttp.Deps{
		Log:         log,
		Cfg:         cfg,
		Prom:        prom,
		PromHandler: reg,
		Authn:       authn,
		Accounts:    accounts,
		Sessions:    sessions,
		Courses:     courses,
		Enrollments: enrollments,
		Profiles:    profiles,
		Ping:        ping,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		_ = otelShutdown(ctx)
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
