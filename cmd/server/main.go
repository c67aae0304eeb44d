package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"prefs-service/internal/config"
	apphttp "prefs-service/internal/http"
	"prefs-service/internal/repository"
	redisrepo "prefs-service/internal/repository/redis"
	s3repo "prefs-service/internal/repository/s3"
	"prefs-service/internal/repository/sqlite"
	"prefs-service/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prefsRepo, closeRepo, err := buildRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup repository: %v", err)
	}
	defer closeRepo()

	if err := prefsRepo.Init(ctx); err != nil {
		logger.Fatalf("init preferences repository: %v", err)
	}

	prefsService := service.NewPreferencesService(prefsRepo, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		prefsService,
		cfg.Auth.JWTSecret,
		apphttp.TraceConfig{
			Enabled:      cfg.Logger.Enabled,
			HeaderName:   cfg.Logger.TraceHeaderName,
			ExcludePaths: cfg.Logger.ExcludePaths,
		},
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildRepository(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repository.PreferencesRepository, func(), error) {
	noop := func() {}

	switch strings.ToLower(cfg.Database.Backend) {
	case "", "sqlite":
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("open database: %w", err)
		}
		logger.Infof("using sqlite database %s", cfg.Database.Path)
		return sqlite.NewPreferencesRepository(db), func() { _ = db.Close() }, nil

	case "redis":
		logger.Infof("using redis at %s", cfg.Redis.Addr)
		return redisrepo.NewPreferencesRepository(redisrepo.Options{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}), noop, nil

	case "s3":
		if cfg.Storage.Bucket == "" {
			return nil, noop, fmt.Errorf("storage bucket is required")
		}

		loadOpts := []func(*awscfg.LoadOptions) error{
			awscfg.WithRegion(cfg.Storage.Region),
		}
		if cfg.AWS.Profile != "" {
			loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
		}

		awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, noop, fmt.Errorf("load aws config: %w", err)
		}

		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Storage.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
				o.UsePathStyle = true
			}
		})
		logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
		return s3repo.NewPreferencesRepository(client, cfg.Storage.Bucket, cfg.Storage.KeyPrefix), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}
}
