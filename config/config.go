package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"gitlab.com/netops-console/vyos_console_api/monitor"
	"gitlab.com/netops-console/vyos_console_api/net/redis"
	"gitlab.com/netops-console/vyos_console_api/queries"
	"gitlab.com/netops-console/vyos_console_api/vyos"
)

// Config structure
type Config struct {
	Server          ServerConfig
	DatabaseCluster queries.DatabaseClusterConfig `mapstructure:"database_cluster"`
	Redis           redis.Config                  `mapstructure:"redis"`
	ConfigAPI       vyos.Config                   `mapstructure:"config_api"`
	ConfigCache     ConfigCacheConfig             `mapstructure:"config_cache"`
	Drafts          DraftsConfig                  `mapstructure:"drafts"`
	Crons           Crons                         `mapstructure:"crons"`
}

// ServerConfig structure
type ServerConfig struct {
	Monitoring monitor.Config `mapstructure:"monitoring"`
	API        APIConfig      `mapstructure:"api"`
	Session    SessionConfig  `mapstructure:"session"`
}

// APIConfig structure
type APIConfig struct {
	Port           int
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SessionConfig of the cookie identifying a console session
type SessionConfig struct {
	Name   string `mapstructure:"name"`
	Secret string `mapstructure:"secret"`
	Secure bool   `mapstructure:"secure"`
	MaxAge int    `mapstructure:"max_age"`
}

// ConfigCacheConfig of the fetched configuration cache
type ConfigCacheConfig struct {
	// Storage is either "memory" or "redis"
	Storage string        `mapstructure:"storage"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// DraftsConfig structure
type DraftsConfig struct {
	// IdleTTL after which a session's unsaved drafts are dropped
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

// Crons - mapping of ids to execution frequency
type Crons map[string]string

// LoadConfig Load server configuration from the yaml file
func LoadConfig(viperConf *viper.Viper) Config {
	var config Config

	err := viperConf.Unmarshal(&config)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to decode config into struct")
	}
	return config
}

// OpenConfig godoc
func OpenConfig(file string) {
	if file != "" {
		// Use config file from the flag.
		viper.SetConfigFile(file)
	}

	viper.SetConfigType("yaml")
	viper.SetConfigName(".config")
	viper.AddConfigPath(".")                  // First try to load the config from the current directory
	viper.AddConfigPath("$HOME")              // Then try to load it from the HOME directory
	viper.AddConfigPath("/etc/vyos_console/") // As a last resort try to load it from /etc/
	viper.SetEnvPrefix("CFG")
	viper.AutomaticEnv()
	setDefaultVariables(viper.GetViper())

	err := viper.ReadInConfig() // Find and read the config file
	if err != nil {             // Handle errors reading the config file
		log.Fatal().Err(err).Msg("Unable to read configuration file")
	}
}

func setDefaultVariables(v *viper.Viper) {
	v.SetDefault("server.api.port", 8080)
	v.SetDefault("server.session.name", "vyos_console")
	v.SetDefault("server.session.max_age", 86400)
	v.SetDefault("server.monitoring.enabled", true)
	v.SetDefault("server.monitoring.port", 9090)
	v.SetDefault("config_api.timeout", "10s")
	v.SetDefault("config_api.requests_per_second", 10)
	v.SetDefault("config_api.burst", 5)
	v.SetDefault("config_cache.storage", "memory")
	v.SetDefault("config_cache.ttl", "30s")
	v.SetDefault("drafts.idle_ttl", "2h")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("crons", map[string]string{
		"expire_drafts":      "@every 5m",
		"flush_config_cache": "@every 10m",
	})
}
