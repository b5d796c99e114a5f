package crons

import (
	"github.com/robfig/cron"
	"github.com/rs/zerolog/log"

	"gitlab.com/netops-console/vyos_console_api/config"
	"gitlab.com/netops-console/vyos_console_api/service"
)

var cronService *cron.Cron

// Start Initiate the crons based on the given configuration file
func Start(cfg config.Config, srv *service.Service) {
	cronService = cron.New()
	for id, schedule := range cfg.Crons {
		callback := GetCronByID(id, cfg, srv)
		if err := cronService.AddFunc(schedule, callback); err != nil {
			log.Error().Err(err).Str("section", "crons").Str("cron", id).Str("schedule", schedule).
				Msg("Unable to schedule cron")
		}
	}
	cronService.Start()
}

// GetCronByID get a function to execute based on the id
func GetCronByID(id string, cfg config.Config, srv *service.Service) func() {
	switch id {
	case "expire_drafts":
		return func() {
			CronExpireDrafts(srv, cfg.Drafts)
		}
	case "flush_config_cache":
		return func() {
			CronFlushConfigCache(srv)
		}
	}
	log.Warn().Str("section", "crons").Str("cron", id).Msg("Unknown cron id")
	return (func() {})
}

// Close godoc
func Close() {
	if cronService != nil {
		cronService.Stop()
	}
}
