package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	authsvc "github.com/dropDatabas3/authcore/internal/auth"
	"github.com/dropDatabas3/authcore/internal/cache"
	"github.com/dropDatabas3/authcore/internal/config"
	authctrl "github.com/dropDatabas3/authcore/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/authcore/internal/http/controllers/health"
	usersctrl "github.com/dropDatabas3/authcore/internal/http/controllers/users"
	"github.com/dropDatabas3/authcore/internal/http/router"
	jwtx "github.com/dropDatabas3/authcore/internal/jwt"
	"github.com/dropDatabas3/authcore/internal/metrics"
	"github.com/dropDatabas3/authcore/internal/oauth/google"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/store"
	storemem "github.com/dropDatabas3/authcore/internal/store/memory"
	storepg "github.com/dropDatabas3/authcore/internal/store/pg"
	"github.com/dropDatabas3/authcore/internal/users"
)

const shutdownGrace = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "authcore:", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// Missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "authcore",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.With(logger.Component("main"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ─── Storage ───

	var st store.Store
	switch cfg.Storage.Driver {
	case "postgres":
		pgStore, err := storepg.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return fmt.Errorf("open postgres store: %w", err)
		}
		st = pgStore
	default:
		log.Warn("using in-memory store, data will not survive restarts")
		st = storemem.New()
	}
	defer func() { _ = st.Close() }()

	// ─── Core wiring ───

	var cacheCfg cache.Config
	cacheCfg.Kind = cfg.Cache.Kind
	cacheCfg.DefaultTTL = cfg.Cache.TTL
	cacheCfg.Redis.Addr = cfg.Cache.Redis.Addr
	cacheCfg.Redis.DB = cfg.Cache.Redis.DB
	cacheCfg.Redis.Prefix = cfg.Cache.Redis.Prefix

	directory := users.NewCachedDirectory(users.NewDirectory(st), cache.New(cacheCfg), cfg.Cache.TTL)

	issuer := jwtx.NewIssuer(cfg.JWT.Issuer, []byte(cfg.JWT.Secret), cfg.JWT.AccessTTL)

	auth := authsvc.New(authsvc.Deps{
		Users:      directory,
		Tokens:     st.RefreshTokens(),
		Issuer:     issuer,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})

	var verifier *google.Verifier
	if cfg.Providers.Google.Enabled {
		verifier = google.NewVerifier(cfg.Providers.Google.ClientID)
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	// ─── HTTP ───

	ctrlOpts := authctrl.Options{
		AccessTTL:    cfg.JWT.AccessTTL,
		RefreshTTL:   cfg.JWT.RefreshTTL,
		CookieSecure: cfg.App.Env != "dev",
	}

	handler := router.New(router.Deps{
		Issuer:  issuer,
		Auth:    authctrl.NewControllers(auth, directory, verifier, ctrlOpts),
		Users:   usersctrl.NewController(directory),
		Health:  healthctrl.NewController(st),
		Metrics: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", logger.Addr(cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("bye")
	return nil
}
