package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/iwvelando/open-logistics/internal/agent"
	"github.com/iwvelando/open-logistics/internal/config"
	"github.com/iwvelando/open-logistics/internal/forecast"
	"github.com/iwvelando/open-logistics/internal/optimizer"
	"github.com/iwvelando/open-logistics/pkg/constants"
	"github.com/iwvelando/open-logistics/pkg/datetime"
	"github.com/iwvelando/open-logistics/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// CLI override takes precedence
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Fail early if the file cannot be written.
		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		cfg.OutputPaths = []string{loggingConfig.OutputFile}
		cfg.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return cfg.Build()
}

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath   string
	logLevel     string
	outputFormat string
}

// session is the state a subcommand runs against: the loaded configuration,
// the logger and the engines built from it.
type session struct {
	conf       *config.Configuration
	logger     *zap.Logger
	format     string
	labels     *datetime.Labeler
	forecaster *forecast.Forecaster
	optimizer  *optimizer.Optimizer
}

func (f *rootFlags) open(cmd *cobra.Command) (*session, error) {
	conf, err := f.loadConfiguration(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := initializeLogger(conf.Logging, f.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	s := &session{conf: conf, logger: logger, format: conf.Output.Format}
	if f.outputFormat != "" {
		s.format = f.outputFormat
	}
	if s.format == "" {
		s.format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(s.format); err != nil {
		return nil, err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning, zap.String("op", "main.open"))
	}

	if s.labels, err = conf.Labeler(); err != nil {
		return nil, err
	}

	forecastConfig, err := conf.ForecastConfig()
	if err != nil {
		return nil, err
	}
	if s.forecaster, err = forecast.New(logger, forecastConfig); err != nil {
		return nil, err
	}
	optimizerConfig, err := conf.OptimizerConfig()
	if err != nil {
		return nil, err
	}
	if s.optimizer, err = optimizer.New(logger, optimizerConfig, s.forecaster); err != nil {
		return nil, err
	}

	logger.Debug("session ready",
		zap.String("op", "main.open"),
		zap.String("config", f.configPath),
		zap.String("output_format", s.format),
	)
	return s, nil
}

// loadConfiguration reads --config. A missing default file falls back to
// built-in defaults plus environment overrides; an explicitly named file
// must exist.
func (f *rootFlags) loadConfiguration(cmd *cobra.Command) (*config.Configuration, error) {
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(f.configPath); errors.Is(err, fs.ErrNotExist) {
			return config.LoadConfigurationFromReader(nil)
		}
	}
	conf, err := config.LoadConfiguration(f.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", f.configPath, err)
	}
	return conf, nil
}

// newManager builds the agent manager and starts every enabled agent.
func (s *session) newManager() (*agent.Manager, error) {
	engines := agent.Engines{Optimizer: s.optimizer, Forecaster: s.forecaster}
	manager, err := agent.NewManager(s.logger, engines, agent.NewFormatter(s.labels), s.conf.AgentConfigs())
	if err != nil {
		return nil, err
	}
	if _, err := manager.StartEnabled(); err != nil {
		manager.Shutdown()
		return nil, err
	}
	return manager, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "open-logistics",
		Short: "Open Logistics Platform - supply chain optimization and demand forecasting",
		Long: `Open Logistics plans supply allocations against budget and timeline
constraints and forecasts demand from historical series.

Both engines are available from the command line, through a set of
named agents, and over HTTP with the serve command.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", constants.DefaultConfigFile, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flags.outputFormat, "output-format", "", "type of output override: pretty, csv, json")

	rootCmd.AddCommand(newOptimizeCommand(flags))
	rootCmd.AddCommand(newForecastCommand(flags))
	rootCmd.AddCommand(newAgentsCommand(flags))
	rootCmd.AddCommand(newServeCommand(flags))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Open Logistics Platform %s\n", constants.Version)
			return err
		},
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
