package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/grid/internal/logging"
	"github.com/mesh-intelligence/grid/internal/paths"
	"github.com/mesh-intelligence/grid/pkg/grid"
	"github.com/mesh-intelligence/grid/pkg/types"
)

// Exit codes.
const (
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
	flagLogLevel  string
)

// Loaded by PersistentPreRunE for every subcommand.
var (
	appConfig = types.DefaultConfig()
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "grid",
	Short:         "Filter, search, sort and page tabular data",
	Version:       grid.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return systemError(err)
		}
		v, err := loadConfig(configDir)
		if err != nil {
			return systemError(err)
		}
		cfg, err := configFromViper(v)
		if err != nil {
			return err
		}
		if flagLogLevel != "" {
			cfg.LogLevel = flagLogLevel
		}
		l, err := logging.New(cfg.LogLevel, cfg.LogJSON)
		if err != nil {
			return err
		}
		appConfig, logger = cfg, l
		logger.Debug("config loaded", zap.String("config_dir", configDir))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir, or $GRID_CONFIG_DIR)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.grid-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(viewCmd)
}

// resolveDataDir applies --data-dir > config data_dir > GRID_DATA_DIR >
// $(CWD)/.grid-db.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, appConfig.DataDir)
}

// sysError marks failures of the environment rather than of the request.
type sysError struct{ err error }

func (e *sysError) Error() string { return e.err.Error() }
func (e *sysError) Unwrap() error { return e.err }

func systemError(err error) error {
	return &sysError{err: err}
}

func exitCode(err error) int {
	var se *sysError
	if errors.As(err, &se) {
		return exitSysError
	}
	return exitUserError
}
