package crons

import (
	"github.com/rs/zerolog/log"

	"gitlab.com/netops-console/vyos_console_api/config"
	"gitlab.com/netops-console/vyos_console_api/service"
)

// CronExpireDrafts drops the unsaved drafts of idle console sessions
func CronExpireDrafts(srv *service.Service, cfg config.DraftsConfig) {
	if cfg.IdleTTL <= 0 {
		return
	}
	expired := srv.ExpireSessions(cfg.IdleTTL)
	log.Debug().Str("cron", "expire_drafts").Int("expired", expired).Msg("Idle sessions checked")
}

// CronFlushConfigCache drops the cached router configuration
func CronFlushConfigCache(srv *service.Service) {
	if err := srv.FlushConfigCache(); err != nil {
		log.Error().Err(err).Str("cron", "flush_config_cache").Msg("Unable to flush config cache")
	}
}
