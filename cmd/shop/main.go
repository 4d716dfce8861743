package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Skotchmaster/coffee_shop/internal/events"
	"github.com/Skotchmaster/coffee_shop/internal/httpserver"
	"github.com/Skotchmaster/coffee_shop/internal/repo"
	"github.com/Skotchmaster/coffee_shop/internal/search"
	"github.com/Skotchmaster/coffee_shop/internal/service"
	"github.com/Skotchmaster/coffee_shop/internal/storage"
	"github.com/Skotchmaster/coffee_shop/pkg/config"
	"github.com/Skotchmaster/coffee_shop/pkg/db"
	"github.com/Skotchmaster/coffee_shop/pkg/logging"
	authmw "github.com/Skotchmaster/coffee_shop/pkg/middleware/auth"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel, logging.Output(cfg.LogFile)).With("service", cfg.ServiceName)
	if err := cfg.Validate(); err != nil {
		logger.Error("config_error", "error", err)
		os.Exit(1)
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gdb, err := db.Open(initCtx, cfg.DatabaseURL, cfg.DatabaseDriver)
	if err != nil {
		logger.Error("db_init_error", "error", err)
		os.Exit(1)
	}
	if err := repo.Migrate(gdb); err != nil {
		logger.Error("db_migrate_error", "error", err)
		os.Exit(1)
	}

	images, err := storage.NewImageStore(cfg.UploadDir, "/static/images")
	if err != nil {
		logger.Error("upload_dir_error", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	prod := events.NewProducer(cfg.KafkaBrokers)

	r := &repo.GormRepo{DB: gdb}
	catalog := &service.CatalogService{Repo: r, Images: images, Events: prod}
	if cfg.ESURL != "" {
		es, err := search.NewClient(initCtx, search.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			logger.Warn("elasticsearch_unavailable", "url", cfg.ESURL, "error", err)
		} else {
			catalog.Index = es
		}
	}

	auth := &service.AuthService{Repo: r, Secret: cfg.SessionSecret, TTL: cfg.SessionTTL, Events: prod}
	seedCtx := logging.IntoContext(initCtx, logger)
	if err := auth.EnsureAdmin(seedCtx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Error("admin_seed_error", "error", err)
		os.Exit(1)
	}

	e, err := httpserver.New(&httpserver.Deps{
		Handlers: &httpserver.Handlers{
			Auth:         auth,
			Cart:         &service.CartService{Repo: r, Events: prod},
			Checkout:     &service.CheckoutService{Repo: r, Events: prod},
			Catalog:      catalog,
			SecureCookie: cfg.CookieSecure,
		},
		Session:      &authmw.Session{Secret: cfg.SessionSecret, SecureCookie: cfg.CookieSecure, IsAdmin: r.UserIsAdmin},
		FlashStore:   httpserver.NewFlashStore(cfg.SessionSecret, cfg.CookieSecure),
		DB:           gdb,
		Logger:       logger,
		StaticDir:    cfg.StaticDir,
		SecureCookie: cfg.CookieSecure,
	})
	if err != nil {
		logger.Error("http_init_error", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("server_start", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting_down")

	ctx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := prod.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	logger.Info("shutdown_complete")
}
