package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"gitlab.com/netops-console/vyos_console_api/actions"
	"gitlab.com/netops-console/vyos_console_api/cache/configcache"
	"gitlab.com/netops-console/vyos_console_api/config"
	"gitlab.com/netops-console/vyos_console_api/crons"
	"gitlab.com/netops-console/vyos_console_api/monitor"
	"gitlab.com/netops-console/vyos_console_api/net/redis"
	"gitlab.com/netops-console/vyos_console_api/queries"
	"gitlab.com/netops-console/vyos_console_api/service"
	"gitlab.com/netops-console/vyos_console_api/vyos"
)

// Server interface
type Server interface {
	Listen()
}

type server struct {
	config  config.Config
	actions *actions.Actions
	service *service.Service
	redis   *redis.Client
	ctx     context.Context
	close   context.CancelFunc
	HTTP    *http.Server
}

// NewServer constructor
func NewServer(cfg config.Config) Server {
	ctx, close := context.WithCancel(context.Background())

	repo, err := queries.Open(cfg.DatabaseCluster)
	if err != nil {
		log.Fatal().Str("section", "server").Err(err).Msg("Unable to connect to database")
	}

	var (
		cache       configcache.Cache
		redisClient *redis.Client
	)
	switch cfg.ConfigCache.Storage {
	case "redis":
		redisClient = redis.NewClient(cfg.Redis)
		if err := redisClient.Connect(); err != nil {
			log.Fatal().Str("section", "server").Err(err).Str("addr", cfg.Redis.Addr).Msg("Unable to connect to redis")
		}
		cache = configcache.NewRedis(redisClient)
	default:
		cache = configcache.NewMemory()
	}

	api := vyos.NewClient(cfg.ConfigAPI)
	dataServices := service.NewService(repo, api, cache, cfg.ConfigCache.TTL, cfg.ConfigAPI.Timeout)
	consoleActions, err := actions.NewActions(cfg, dataServices)
	if err != nil {
		log.Fatal().Str("section", "server").Err(err).Msg("Unable to create console actions")
	}

	return &server{
		config:  cfg,
		service: dataServices,
		actions: consoleActions,
		redis:   redisClient,
		ctx:     ctx,
		close:   close,
	}
}

// Listen for console requests until a termination signal is received
func (srv *server) Listen() {
	srv.HTTP = &http.Server{
		Addr:    fmt.Sprintf(":%d", srv.config.Server.API.Port),
		Handler: NewRouter(srv.config, srv.actions),
	}

	go srv.ListenToRequests()
	go monitor.LoopProfilingServer(srv.config.Server.Monitoring)
	crons.Start(srv.config, srv.service)

	srv.stopOnSignal()
}

func (srv *server) stopOnSignal() {
	// listen for termination signals
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc

	log.Info().Str("section", "server").Str("app_event", "terminate").Str("signal", sig.String()).Msg("Shutting down services")
	srv.closeApp(5 * time.Second)
}

func (srv *server) closeApp(timeout time.Duration) {
	// define a timeout in which the graceful shutdown procedure should happen before forcing the shutdown
	timeoutFunc := time.AfterFunc(timeout, func() {
		log.Printf("timeout %d ms has been elapsed, force exit", timeout.Milliseconds())
		os.Exit(0)
	})
	defer timeoutFunc.Stop()

	monitor.ShutdownServer()
	ctx, cancel := context.WithTimeout(srv.ctx, timeout)
	defer cancel()
	if err := srv.HTTP.Shutdown(ctx); err != nil {
		log.Error().Err(err).Str("section", "server").Str("action", "terminate").Msg("Unable to shutdown HTTP server")
	}

	crons.Close()
	srv.close()

	if srv.redis != nil {
		if err := srv.redis.Disconnect(); err != nil {
			log.Error().Err(err).Str("section", "server").Str("action", "terminate").Msg("Unable to close redis connection")
		}
	}
	// make sure database connection is closed on program exit
	queries.Close()

	log.Info().Str("section", "server").Str("app_event", "terminate").Str("state", "complete").Msg("All workers terminated")
}
