package main

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"review_system/internal/adapters/observability"
	redisad "review_system/internal/adapters/redis"
	"review_system/internal/adapters/s3"
	"review_system/internal/app"
	"review_system/internal/domain"
	"review_system/internal/shared"
	mysqlrepo "review_system/internal/storage/mysql"
)

// One-shot runner: lists the bucket, processes every new file once and exits.
// Meant for cron-style invocation where the long-running API is not wanted.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("bucket", cfg.Bucket).
		Str("prefix", cfg.Prefix).
		Int("workers", cfg.Workers).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	// cache is optional for the one-shot run: stale entries expire via TTL anyway
	var cache domain.Cache
	rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := rc.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, skipping cache invalidation")
	} else {
		cache = rc
	}

	store, err := s3.New(s3.Config{
		Endpoint:       cfg.S3Endpoint,
		Region:         cfg.S3Region,
		AccessKey:      cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
		ForcePathStyle: cfg.S3ForcePathStyle,
		Bucket:         cfg.Bucket,
		Prefix:         cfg.Prefix,
		Suffix:         cfg.Suffix,
		RPS:            cfg.S3RPS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("s3 store init failed")
	}

	svc := app.NewProcessingService(store, repo, repo, cache, cfg.Workers)

	sum, err := svc.ProcessAllFiles(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("processing run failed")
	}

	log.Info().
		Str("run_id", sum.RunID).
		Int("listed", sum.FilesListed).
		Int("skipped", sum.FilesSkipped).
		Int("succeeded", sum.FilesSucceeded).
		Int("failed", sum.FilesFailed).
		Int("records", sum.RecordsProcessed).
		Dur("duration", sum.Duration).
		Msg("ingestion completed")
}
