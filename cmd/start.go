package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gitlab.com/netops-console/vyos_console_api/cmd/commands"
	"gitlab.com/netops-console/vyos_console_api/config"
	"gitlab.com/netops-console/vyos_console_api/server"
)

var skipMigrations bool

func init() {
	startCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not run database migrations before starting")
	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the console API",
	Long:  `Serve the console API and keep the drafts of console sessions until they are saved or cancelled`,
	Run: func(cmd *cobra.Command, args []string) {
		// load server configuration from server
		log.Debug().Msg("Loading server configuration")
		if viper.ConfigFileUsed() != "" {
			log.Debug().Str("section", "init").Str("path", viper.ConfigFileUsed()).Msg("Configuration file loaded")
		}
		cfg := config.LoadConfig(viper.GetViper())
		if !skipMigrations {
			log.Debug().Msg("Running migrations")
			commands.Migrate(cfg)
		}

		// start a new server
		log.Debug().Str("section", "init").Msg("Starting new server instance")
		srv := server.NewServer(cfg)
		log.Info().Str("section", "init").Msg("Listening for console requests")
		srv.Listen()
	},
}
