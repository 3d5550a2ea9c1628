package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/grid/internal/paths"
	"github.com/mesh-intelligence/grid/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyDataDir          = "data_dir"
	cfgKeyPageSize         = "page_size"
	cfgKeyPageSizeOptions  = "page_size_options"
	cfgKeySearchDebounce   = "search_debounce"
	cfgKeySearchMode       = "search_mode"
	cfgKeyCaseSensitive    = "case_sensitive"
	cfgKeyMaxInlineActions = "max_inline_actions"
	cfgKeyInlineExitDelay  = "inline_exit_delay"
	cfgKeyLogLevel         = "log_level"
	cfgKeyLogJSON          = "log_json"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# grid CLI configuration

# Saved-view database location (overridden by --data-dir)
# data_dir:

page_size: 10
page_size_options: [10, 25, 50, 100]

# contains, startsWith or exact
search_mode: contains
case_sensitive: false
search_debounce: 300ms

max_inline_actions: 3
inline_exit_delay: 300ms

# debug, info, warn or error
log_level: warn
log_json: false
`

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file first if needed. A missing file yields the defaults.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	def := types.DefaultConfig()
	v := viper.New()
	v.SetDefault(cfgKeyPageSize, def.PageSize)
	v.SetDefault(cfgKeyPageSizeOptions, def.PageSizeOptions)
	v.SetDefault(cfgKeySearchDebounce, def.SearchDebounce)
	v.SetDefault(cfgKeySearchMode, def.SearchMode)
	v.SetDefault(cfgKeyCaseSensitive, def.CaseSensitive)
	v.SetDefault(cfgKeyMaxInlineActions, def.MaxInlineActions)
	v.SetDefault(cfgKeyInlineExitDelay, def.InlineExitDelay)
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetDefault(cfgKeyLogJSON, false)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile writes defaultConfigYAML unless a config file
// already exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, paths.ConfigFileName)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// configFromViper maps the loaded keys onto a validated types.Config.
func configFromViper(v *viper.Viper) (types.Config, error) {
	cfg := types.Config{
		DataDir:          v.GetString(cfgKeyDataDir),
		PageSize:         v.GetInt(cfgKeyPageSize),
		PageSizeOptions:  v.GetIntSlice(cfgKeyPageSizeOptions),
		SearchDebounce:   v.GetDuration(cfgKeySearchDebounce),
		SearchMode:       v.GetString(cfgKeySearchMode),
		CaseSensitive:    v.GetBool(cfgKeyCaseSensitive),
		MaxInlineActions: v.GetInt(cfgKeyMaxInlineActions),
		InlineExitDelay:  v.GetDuration(cfgKeyInlineExitDelay),
		LogLevel:         strings.ToLower(v.GetString(cfgKeyLogLevel)),
		LogJSON:          v.GetBool(cfgKeyLogJSON),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
