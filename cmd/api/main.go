package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "review_system/internal/adapters/http_server"
	"review_system/internal/adapters/observability"
	redisad "review_system/internal/adapters/redis"
	"review_system/internal/adapters/s3"
	"review_system/internal/adapters/scheduler"
	"review_system/internal/app"
	"review_system/internal/domain"
	"review_system/internal/shared"
	mysqlrepo "review_system/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)

	// cache is optional: serve uncached when redis is unreachable
	var cache domain.Cache
	rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rc.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, serving uncached")
	} else {
		cache = rc
	}
	cancel()

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

	proc := app.NewProcessingService(store, repo, repo, cache, cfg.Workers)
	q := app.NewQueryService(repo, repo, cache, cfg.CacheTTL)

	if cfg.ScheduleEnabled {
		sched, err := scheduler.New(proc, cfg.ScheduleCron, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("scheduler init failed")
		}
		sched.Start()
		log.Info().Str("cron", cfg.ScheduleCron).Msg("scheduler started")
	}

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, P: proc})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
