package monitor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Config of the metrics and profiling server
type Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Profiling bool   `mapstructure:"profiling"`
}

var (
	// ConfigAPIRequestDuration of the calls made to the configuration API
	ConfigAPIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "config_api_request_duration_seconds",
			Help:    "Duration of configuration API requests.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"route", "method", "status"},
	)

	// RuleOrderCommits counts rule order commits by kind and result
	RuleOrderCommits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rule_order_commits_total",
			Help: "Rule order commits sent to the configuration API.",
		},
		[]string{"kind", "result"},
	)

	// CardPlacements counts dashboard placement operations by operation and result
	CardPlacements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_card_placements_total",
			Help: "Dashboard card placements computed by the grid engine.",
		},
		[]string{"operation", "result"},
	)

	// DashboardSaves counts dashboard saves by result
	DashboardSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_saves_total",
			Help: "Dashboard layouts persisted.",
		},
		[]string{"result"},
	)

	// ActiveSessions currently holding console state
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "console_active_sessions",
		Help: "Console sessions holding drafts.",
	})
)

var server *http.Server

func init() {
	prometheus.MustRegister(ConfigAPIRequestDuration, RuleOrderCommits, CardPlacements, DashboardSaves, ActiveSessions)
}

// Result label for an error
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// LoopProfilingServer serves the metrics (and pprof when enabled) until ShutdownServer is called
func LoopProfilingServer(cfg Config) {
	if !cfg.Enabled {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if cfg.Profiling {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info().Str("worker", "monitor").Str("action", "start").Str("addr", server.Addr).Msg("Monitoring server - started")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Str("worker", "monitor").Msg("Monitoring server stopped unexpectedly")
	}
}

// ShutdownServer godoc
func ShutdownServer() {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Str("worker", "monitor").Str("action", "stop").Msg("Unable to shutdown monitoring server")
	}
}
