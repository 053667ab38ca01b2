package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rc-analytics/internal/analytics"
	"rc-analytics/internal/config"
	"rc-analytics/internal/cors"
	"rc-analytics/internal/dashboard"
	"rc-analytics/internal/httpapi"
	"rc-analytics/internal/ringcentral"
	"rc-analytics/internal/webhooks"
	"rc-analytics/pkg/logger"
	"rc-analytics/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// A missing .env is fine; real deployments set env directly.
	_ = godotenv.Load()

	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	repo, closeStore, err := openStore(rootCtx, cfg, log)
	if err != nil {
		log.Error("webhook store init failed", "driver", cfg.Store.Driver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.Redis.Addr})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
	}

	rc, err := ringcentral.NewClient(rootCtx, ringcentral.Config{
		ServerURL:    cfg.RingCentral.ServerURL,
		ClientID:     cfg.RingCentral.ClientID,
		ClientSecret: cfg.RingCentral.ClientSecret,
		UserJWT:      cfg.RingCentral.UserJWT,
		Timeout:      cfg.RingCentral.HTTPTimeout,
	})
	if err != nil {
		log.Error("ringcentral client init failed", "err", err)
		os.Exit(1)
	}

	opts := analytics.Options{
		TimeZone:             cfg.RingCentral.TimeZone,
		ExtensionConcurrency: cfg.RingCentral.ExtensionConcurrency,
		WalkLimit:            cfg.RingCentral.WalkLimit,
	}
	if rdb != nil {
		opts.Limiter = rdb
		if cfg.Analytics.CacheTTL > 0 {
			opts.Cache = analytics.NewRedisCache(rdb, cfg.Analytics.CacheTTL)
		}
	}
	svc, err := analytics.NewService(rc, opts)
	if err != nil {
		log.Error("analytics init failed", "err", err)
		os.Exit(1)
	}

	origins := cfg.CORS.AllowedOrigins
	if len(origins) == 0 {
		origins = cors.DefaultOrigins
	}
	policy, err := cors.NewPolicy(origins)
	if err != nil {
		log.Error("cors policy invalid", "err", err)
		os.Exit(1)
	}

	tmpl, err := dashboard.ParseTemplates()
	if err != nil {
		log.Error("dashboard templates failed", "err", err)
		os.Exit(1)
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(policy.Middleware())
	r.SetHTMLTemplate(tmpl)

	registerRoutes(r,
		httpapi.Handlers{
			Analytics:         svc,
			Webhooks:          webhooks.NewService(repo),
			Company:           cfg.Report.CompanyName,
			VerificationToken: cfg.RingCentral.WebhookVerificationToken,
			Location:          svc.Location(),
		},
		dashboard.Handler{Source: svc, Company: cfg.Report.CompanyName, Location: svc.Location()},
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Communications walks every extension's message store.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "store", cfg.Store.Driver, "redis", rdb != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
