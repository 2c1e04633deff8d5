// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video-download-service/internal/config"
	"video-download-service/internal/domain/ports/adapter"
	"video-download-service/internal/domain/ports/repository"
	"video-download-service/internal/infra/adapters/ffmpeg"
	"video-download-service/internal/infra/adapters/geo"
	"video-download-service/internal/infra/adapters/ytdlp"
	pg "video-download-service/internal/infra/db/postgres"
	"video-download-service/internal/infra/logging"
	"video-download-service/internal/infra/memstore"
	"video-download-service/internal/infra/metrics"
	red "video-download-service/internal/infra/redis"
	"video-download-service/internal/infra/storage"
	"video-download-service/internal/infra/web"
	"video-download-service/internal/infra/worker"
	"video-download-service/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connection addresses may live in a .env file during development.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found")
	}

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	// ---- Download directory and cookies bootstrap ----
	if err := os.MkdirAll(cfg.Download.Dir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.Download.Dir).Msg("could not create download dir")
	}
	if cfg.Download.Cookies != "" {
		if _, err := os.Stat(cfg.Download.CookiesFile); os.IsNotExist(err) {
			if err := os.WriteFile(cfg.Download.CookiesFile, []byte(cfg.Download.Cookies), 0o600); err != nil {
				logger.Fatal().Err(err).Msg("could not write cookies file")
			}
			logger.Info().Str("path", cfg.Download.CookiesFile).Msg("cookies file written")
		}
	}

	// ---- Status store: Redis when configured, in-memory otherwise ----
	var statusRepo repository.StatusRepository
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		statusRepo = red.NewStatusRepo(redisClient, cfg.Redis.TTL)
		logger.Info().Str("addr", cfg.Redis.URL).Msg("status store: redis")
	} else {
		statusRepo = memstore.NewStatusRepo()
		logger.Info().Msg("status store: in-memory")
	}

	// ---- Audit log sink (optional) ----
	var logRepo repository.DownloadLogRepository
	var geoResolver adapter.GeoResolver
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		logRepo = pg.NewDownloadLogRepo(pool)
		geoResolver = geo.NewClient(cfg.Geo.BaseURL, cfg.Geo.Timeout, logger)
		logger.Info().Msg("audit log sink: postgres")
	} else {
		logger.Info().Msg("audit log sink disabled (no database.url)")
	}

	// ---- Job execution ----
	var spawner usecase.Spawner = usecase.GoSpawner{}
	if cfg.Download.Workers > 0 {
		pool := worker.NewPool(cfg.Download.Workers, logger)
		pool.Start(ctx)
		defer pool.Stop()
		spawner = pool
		logger.Info().Int("workers", cfg.Download.Workers).Msg("bounded worker pool enabled")
	}

	fetcher := ytdlp.NewFetcher(cfg.Download.YtdlpPath, cfg.Download.CookiesFile, cfg.Download.MaxFileSize, logger)
	remuxer := ffmpeg.NewRemuxer(cfg.Download.FfmpegPath, logger)
	sweeper := storage.NewSweeper(cfg.Download.Dir, cfg.Download.RetentionHours, logger)
	auditFile := storage.NewAuditFile("downloads.log")

	downloadUC := usecase.NewDownloadUseCase(
		statusRepo, logRepo, fetcher, remuxer, geoResolver,
		sweeper, spawner, auditFile,
		cfg.Download.Dir, cfg.Download.RemuxDomains, logger,
	)

	// ---- HTTP server ----
	metrics.MustRegister()
	srv := web.NewServer(downloadUC, cfg.Download.Dir, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	cancel()
}
