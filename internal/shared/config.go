package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	S3Endpoint       string
	S3Region         string
	S3AccessKey      string
	S3SecretKey      string
	S3ForcePathStyle bool
	S3RPS            int
	Bucket           string
	Prefix           string
	Suffix           string

	Workers         int
	CacheTTL        time.Duration
	ScheduleEnabled bool
	ScheduleCron    string
}

func Load() Config {
	// Load .env file if it exists
	godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	abool := func(k string, def bool) bool {
		if v := os.Getenv(k); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),

		S3Endpoint:       env("S3_ENDPOINT", ""),
		S3Region:         env("S3_REGION", "us-east-1"),
		S3AccessKey:      env("S3_ACCESS_KEY", ""),
		S3SecretKey:      env("S3_SECRET_KEY", ""),
		S3ForcePathStyle: abool("S3_FORCE_PATH_STYLE", false),
		S3RPS:            atoi("S3_RPS", 5),
		Bucket:           env("REVIEWS_BUCKET", ""),
		Prefix:           env("REVIEWS_PREFIX", "daily-reviews/"),
		Suffix:           env("REVIEWS_SUFFIX", ".jl"),

		Workers:         atoi("INGEST_WORKERS", 5),
		CacheTTL:        time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		ScheduleEnabled: abool("SCHEDULE_ENABLED", false),
		ScheduleCron:    env("SCHEDULE_CRON", "0 2 * * *"), // daily at 02:00
	}
	if c.Bucket == "" {
		log.Warn().Msg("REVIEWS_BUCKET is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
