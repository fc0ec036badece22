package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aristath/zappy/internal/config"
	"github.com/aristath/zappy/internal/logging"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "zappy",
		Short:         "Zappy - medical content pipeline",
		Long:          `Zappy drafts, reviews and edits medical blog content through a multi-agent LLM pipeline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "project config file (default .zappy/config.json)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format: text or json")
	pf.StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	root.AddCommand(
		newRunCmd(flags),
		newBatchCmd(flags),
		newHistoryCmd(flags),
		newPublishCmd(flags),
	)
	return root
}

// loadConfig reads the global and project config files, then the environment.
// Flags override both.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	global, project, err := config.DefaultPaths()
	if err != nil {
		return nil, err
	}
	if flags.configPath != "" {
		project = flags.configPath
	}

	cfg, err := config.Load(global, project)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg.ApplyEnv(nil)

	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Logging.Format = flags.logFormat
	}
	if flags.metricsAddr != "" {
		cfg.Metrics.Addr = flags.metricsAddr
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
}
