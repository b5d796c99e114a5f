package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"gitlab.com/netops-console/vyos_console_api/actions"
	"gitlab.com/netops-console/vyos_console_api/config"
	"gitlab.com/netops-console/vyos_console_api/logger"
)

// NewRouter sets up the routes of the console API
func NewRouter(cfg config.Config, a *actions.Actions) *gin.Engine {
	r := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	if len(cfg.Server.API.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.API.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "X-Requested-With", "Content-Length", "Content-Type", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}

	r.Use(cors.New(corsConfig))
	r.Use(gin.Recovery()) // Recovery middleware recovers from any panics and writes a 500 if there was one.
	r.Use(logger.SetLogger(logger.Config{SkipPath: []string{"/ping"}}))

	r.GET("/ping", actions.Ping)

	dashboards := r.Group("/dashboards/:name", a.ConsoleSession())
	{
		dashboards.GET("", a.GetDashboard)
		dashboards.POST("/cards", a.AddCard)
		dashboards.POST("/cards/:id/drop", a.DropCard)
		dashboards.POST("/cards/:id/resize", a.ResizeCard)
		dashboards.DELETE("/cards/:id", a.RemoveCard)
		dashboards.POST("/save", a.SaveDashboard)
		dashboards.POST("/cancel", a.CancelDashboard)
	}

	rules := r.Group("/rules/:kind/:name", a.ConsoleSession())
	{
		rules.GET("", a.GetRules)
		rules.POST("", a.AddRule)
		rules.POST("/move", a.MoveRule)
		rules.POST("/save", a.SaveRuleOrder)
		rules.POST("/cancel", a.CancelRuleOrder)
		rules.GET("/preview", a.PreviewRuleOrder)
		rules.DELETE("/:number", a.DeleteRule)
	}

	return r
}

func (srv *server) ListenToRequests() {
	log.Info().Str("worker", "http_listen_to_requests").Str("action", "start").Msg("HTTP Listen to requests - started")
	defer log.Info().Str("worker", "http_listen_to_requests").Str("action", "stop").Msg("HTTP Listen to requests - stopped")

	port := srv.config.Server.API.Port
	if err := srv.HTTP.ListenAndServe(); err != nil {
		if err != http.ErrServerClosed {
			log.Error().Err(err).Str("section", "server").Str("action", "ListenToRequests").Msgf("Unable to listen %d port", port)
		}
	}
}
