package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configDir string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "socialfeed",
	Short: "social-feed backend: follows, tweets, likes and feeds",
	Long: `socialfeed runs the HTTP API and its companion tasks.

Commands:
  serve     - start the HTTP API
  migrate   - create or update the database schema
  mailer    - deliver queued activation emails over SMTP
  user      - administrative user operations`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory containing config.yaml (default . and ./config)")
}
