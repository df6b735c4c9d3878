// Package cmd contains the rebang CLI commands.
package cmd

import (
	"github.com/spf13/cobra"

	"rebang/config"
	"rebang/utils/logger"
)

var (
	cfg     *config.Config
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "rebang",
	Short: "Trending list aggregation service",
	Long: `rebang serves categorized trending lists built from collaborator JSON
Feed routes, plus an image proxy and a built-in tech journal feed.

Example usage:
  rebang serve     # run the HTTP server (default)
  rebang menu      # print the effective menu as JSON
  rebang routes    # print every collaborator route the menu references`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle: the hook compares against rootCmd itself.
	rootCmd.PersistentPreRunE = persistentPreRunE
}

func persistentPreRunE(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.NewConfig()
	if err != nil {
		return err
	}
	if cmd != rootCmd && cmd != serveCmd {
		// Keep stdout clean for commands that print JSON.
		logger.InitLogger("error", false)
		return nil
	}
	logger.InitLogger(cfg.Logging.Level, cfg.OTel.Enabled)
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the CLI and the telemetry resource.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
