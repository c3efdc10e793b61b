// Package cli implements the shotbox command line client.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"shotbox/internal/config"
	"shotbox/internal/log"
)

// NewRootCmd builds the command tree. Logs go to the command's stderr and
// results to its stdout.
func NewRootCmd(cfg *config.AppConfig) *cobra.Command {
	root := &cobra.Command{
		Use:           "shotbox",
		Short:         "Screenshot upload client",
		Long:          "Command line client that captures a screenshot and files it with the shotbox API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&cfg.Client.Endpoint, "endpoint", "e", cfg.Client.Endpoint,
		"Base URL of the shotbox API")
	root.PersistentFlags().DurationVar(&cfg.Client.Timeout, "timeout", cfg.Client.Timeout,
		"Upload timeout")

	root.AddCommand(newUploadCmd(cfg))
	root.AddCommand(newCategoriesCmd())
	return root
}

func commandLogger(cmd *cobra.Command, cfg *config.AppConfig) zerolog.Logger {
	return log.NewWithWriter(cmd.ErrOrStderr(), cfg.Environment).With().Str("app", "shotbox").Logger()
}
