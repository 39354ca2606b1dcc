package main

import (
	"github.com/spf13/cobra"

	"github.com/Sternrassler/krishi-connect/internal/config"
	"github.com/Sternrassler/krishi-connect/pkg/logging"
)

type rootOptions struct {
	configFile string
	envFile    string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "krishi",
		Short:         "KrishiConnect scheme listings, jobs and weather",
		Long:          "KrishiConnect fetches government scheme listings with retries and cached fallbacks, and serves them together with job postings and weather over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var envFiles []string
			if opts.envFile != "" {
				envFiles = []string{opts.envFile}
			}
			cfg, err := config.Load(config.Options{File: opts.configFile, EnvFiles: envFiles})
			if err != nil {
				return err
			}
			opts.cfg = cfg
			logging.Setup(cfg.LoggingConfig())
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to .env file (skipped when missing)")

	cmd.AddCommand(
		newServeCmd(opts),
		newSchemesCmd(opts),
		newDetailsCmd(opts),
		newBrowseCmd(opts),
		newSyncCmd(opts),
	)
	return cmd
}
