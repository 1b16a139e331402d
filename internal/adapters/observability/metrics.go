package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IngestRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "runs_total", Help: "Ingestion runs."},
		[]string{"result"}, // result: success|failure
	)
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "reviews", Name: "run_duration_seconds",
			Help:    "Full ingestion run duration seconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)
	FilesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "files_processed_total", Help: "Review files processed."},
		[]string{"result"},
	)
	FileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reviews", Name: "file_duration_seconds",
			Help:    "Per-file processing duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)
	RecordsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "reviews", Name: "records_processed_total", Help: "Review lines stored."},
	)
	LinesRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "lines_rejected_total", Help: "Review lines rejected."},
		[]string{"reason"}, // reason: parse|invalid|store
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reviews", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reviews", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviews", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		IngestRuns, RunDuration, FilesProcessed, FileDuration, RecordsProcessed, LinesRejected,
		HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveRun(result string, dur time.Duration) {
	IngestRuns.WithLabelValues(result).Inc()
	RunDuration.Observe(dur.Seconds())
}

func ObserveFile(result string, dur time.Duration) {
	FilesProcessed.WithLabelValues(result).Inc()
	FileDuration.WithLabelValues(result).Observe(dur.Seconds())
}

func AddRecordsProcessed(n int) {
	RecordsProcessed.Add(float64(n))
}

func RejectLine(reason string) {
	LinesRejected.WithLabelValues(reason).Inc()
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}
