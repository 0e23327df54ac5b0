// Command server starts the ourTube API HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/api"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/auth"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/config"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/observability/logging"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/observability/metrics"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/server"
	"github.com/AjaySisodiyaa/ourTubeApi/internal/storage"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address")
	dataPath := flag.String("data", "", "path to JSON datastore")
	storageDriver := flag.String("storage-driver", "", "datastore driver (json or postgres)")
	postgresDSN := flag.String("postgres-dsn", "", "Postgres connection string")
	tokenSecret := flag.String("token-secret", "", "HMAC secret for bearer tokens")
	tokenTTL := flag.Duration("token-ttl", 0, "bearer token lifetime")
	tlsCert := flag.String("tls-cert", "", "path to TLS certificate file")
	tlsKey := flag.String("tls-key", "", "path to TLS private key file")
	logLevel := flag.String("log-level", "", "log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "log format (json or text)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Init(logging.Config{}).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	applyFlagOverride(&cfg.Addr, *addr)
	applyFlagOverride(&cfg.DataFile, *dataPath)
	applyFlagOverride(&cfg.StorageDriver, *storageDriver)
	applyFlagOverride(&cfg.PostgresDSN, *postgresDSN)
	applyFlagOverride(&cfg.TokenSecret, *tokenSecret)
	applyFlagOverride(&cfg.TLSCertFile, *tlsCert)
	applyFlagOverride(&cfg.TLSKeyFile, *tlsKey)
	applyFlagOverride(&cfg.LogLevel, *logLevel)
	applyFlagOverride(&cfg.LogFormat, *logFormat)
	if *tokenTTL > 0 {
		cfg.TokenTTL = *tokenTTL
	}

	logger := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	auditLogger := logging.WithComponent(logger, "audit")
	recorder := metrics.Default()

	if strings.TrimSpace(cfg.TokenSecret) == "" {
		logger.Error("OURTUBE_TOKEN_SECRET is required")
		os.Exit(1)
	}

	mediaCfg := storage.MediaStorageConfig{
		Endpoint:       cfg.MediaEndpoint,
		PublicEndpoint: cfg.MediaPublicEndpoint,
		Bucket:         cfg.MediaBucket,
		Region:         cfg.MediaRegion,
		AccessKey:      cfg.MediaAccessKey,
		SecretKey:      cfg.MediaSecretKey,
		Prefix:         cfg.MediaPrefix,
		UseSSL:         cfg.MediaUseSSL,
	}

	var store storage.Repository
	switch strings.ToLower(strings.TrimSpace(cfg.StorageDriver)) {
	case "", "json":
		store, err = storage.NewStorage(cfg.DataFile, storage.WithMediaStorage(mediaCfg))
	case "postgres":
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			logger.Error("postgres storage selected without DSN")
			os.Exit(1)
		}
		store, err = storage.NewPostgresRepository(storage.PostgresConfig{
			DSN:             cfg.PostgresDSN,
			ApplicationName: "ourtube-api",
			MediaStorage:    mediaCfg,
		})
	default:
		logger.Error("unsupported storage driver", "driver", cfg.StorageDriver)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("failed to open datastore", "error", err)
		os.Exit(1)
	}

	var tokenOpts []auth.TokenOption
	if cfg.TokenTTL > 0 {
		tokenOpts = append(tokenOpts, auth.WithTokenTTL(cfg.TokenTTL))
	}
	tokens, err := auth.NewTokenManager(cfg.TokenSecret, tokenOpts...)
	if err != nil {
		logger.Error("failed to configure token manager", "error", err)
		os.Exit(1)
	}

	handler := api.NewHandler(store, tokens)

	srv, err := server.New(handler, server.Config{
		Addr: cfg.Addr,
		TLS:  server.TLSConfig{CertFile: cfg.TLSCertFile, KeyFile: cfg.TLSKeyFile},
		RateLimit: server.RateLimitConfig{
			GlobalRPS:     cfg.RateLimitRPS,
			GlobalBurst:   cfg.RateLimitBurst,
			LoginLimit:    cfg.LoginLimit,
			LoginWindow:   cfg.LoginWindow,
			RedisAddr:     cfg.RedisAddr,
			RedisPassword: cfg.RedisPassword,
			RedisTimeout:  cfg.RedisTimeout,
		},
		Logger:      logger,
		AuditLogger: auditLogger,
		Metrics:     recorder,
	})
	if err != nil {
		logger.Error("failed to initialise server", "error", err)
		os.Exit(1)
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("ourTube API listening", "addr", cfg.Addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errs:
		logger.Error("server error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
	}

	if closer, ok := store.(interface{ Close(context.Context) error }); ok {
		if err := closer.Close(ctx); err != nil {
			logger.Warn("failed to close datastore", "error", err)
		}
	}

	logger.Info("server stopped")
}

func applyFlagOverride(target *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*target = trimmed
	}
}
