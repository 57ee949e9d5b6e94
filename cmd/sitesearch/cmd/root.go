// Package cmd provides the CLI commands for sitesearch.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/sitesearch/internal/config"
	serrors "github.com/Aman-CERP/sitesearch/internal/errors"
	"github.com/Aman-CERP/sitesearch/internal/logging"
	"github.com/Aman-CERP/sitesearch/internal/profiling"
	"github.com/Aman-CERP/sitesearch/pkg/version"
)

// Persistent flags.
var (
	configDir string
	logLevel  string
	logFile   string
	debugMode bool
	noColor   bool

	profileCPU   string
	profileMem   string
	profileTrace string
)

// Per-invocation state set up by PersistentPreRunE.
var (
	loadedConfig   *config.Config
	configErr      error
	logger         = slog.Default()
	loggingCleanup func()
	profile        *profiling.Session
)

// NewRootCmd creates the root command for the sitesearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitesearch",
		Short: "Build the search index runtime for a static site",
		Long: `sitesearch resolves the routes of a rendered static site to the HTML
files that should be indexed, and emits the lunr.client.js module that
registers the lunr-languages extensions the search index needs.

Configuration is read from .sitesearch.yaml (or .yml/.toml) in the project
directory, the user config and SITESEARCH_* environment variables.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			teardown()
		},
	}

	cmd.SetVersionTemplate("sitesearch version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Project directory holding .sitesearch.yaml (default: nearest parent with one)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.sitesearch/logs/")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cmd.PersistentFlags().StringVar(&profileCPU, "profile-cpu", "", "Write a CPU profile to this file")
	cmd.PersistentFlags().StringVar(&profileMem, "profile-mem", "", "Write a heap profile to this file on exit")
	cmd.PersistentFlags().StringVar(&profileTrace, "profile-trace", "", "Write an execution trace to this file")

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newClientCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and prints any error for the terminal.
func Execute() error {
	cmd := NewRootCmd()
	err := cmd.Execute()
	// PersistentPostRun is skipped when a command fails.
	teardown()
	if err != nil {
		_, _ = fmt.Fprint(os.Stderr, serrors.FormatForCLI(err))
	}
	return err
}

// setup loads the configuration and installs the logger. A configuration
// error is kept for the commands that need it, so version and help work in
// a broken project.
func setup(_ *cobra.Command, _ []string) error {
	teardown()

	dir, err := projectDir()
	if err != nil {
		return err
	}
	loadedConfig, configErr = config.Load(dir)

	logCfg := logging.DefaultConfig()
	if loadedConfig != nil {
		logCfg.Level = loadedConfig.Logging.Level
		logCfg.Format = loadedConfig.Logging.Format
		logCfg.FilePath = loadedConfig.Logging.File
		logCfg.MaxSizeMB = loadedConfig.Logging.MaxSizeMB
		logCfg.MaxFiles = loadedConfig.Logging.MaxFiles
	}
	if debugMode {
		debug := logging.DebugConfig()
		logCfg.Level = debug.Level
		if logCfg.FilePath == "" {
			logCfg.FilePath = debug.FilePath
		}
	}
	if logLevel != "" {
		logCfg.Level = logLevel
	}
	if logFile != "" {
		logCfg.FilePath = logFile
	}

	l, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return serrors.IOError("failed to set up logging", err).WithDetail("path", logCfg.FilePath)
	}
	logger = l
	loggingCleanup = cleanup
	slog.SetDefault(l)
	logger.Debug("sitesearch starting",
		slog.String("version", version.Version),
		slog.String("project", dir))

	opts := profiling.Options{CPU: profileCPU, Heap: profileMem, Trace: profileTrace}
	if opts.Enabled() {
		s, err := profiling.Start(opts)
		if err != nil {
			return serrors.IOError("failed to start profiling", err)
		}
		profile = s
		logger.Debug("profiling enabled",
			slog.String("cpu", opts.CPU),
			slog.String("heap", opts.Heap),
			slog.String("trace", opts.Trace))
	}
	return nil
}

func teardown() {
	if profile != nil {
		if err := profile.Stop(); err != nil {
			logger.Warn("failed to write profiles", slog.String("error", err.Error()))
		}
		profile = nil
	}
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
}

// projectDir is --config-dir, or the nearest directory holding a config
// file, or the working directory.
func projectDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", serrors.New(serrors.ErrCodeInvalidPath, "cannot determine working directory", err)
	}
	return config.FindProjectRoot(wd)
}

// requireConfig returns the loaded configuration or the error that
// prevented loading it.
func requireConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	return loadedConfig, nil
}
