package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"toast/api/internal/config"
	"toast/api/internal/log"
)

var (
	version = "dev"
	commit  = "none"
)

var (
	cfg    *config.AppConfig
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "toast-api",
	Short: "Toast task and list API",
	Long: `toast-api serves the Toast HTTP API. Without a subcommand it behaves
like "toast-api serve".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		logger = log.New(cfg.Environment).With().Str("version", version).Logger()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// SetVersion sets the version information
func SetVersion(v, c string) {
	version = v
	commit = c
	rootCmd.Version = v + " (" + c + ")"
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}
