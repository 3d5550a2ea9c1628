package types

import (
	"errors"
	"time"
)

// Config holds table-wide defaults loaded by a host application.
type Config struct {
	DataDir          string        `json:"data_dir" yaml:"data_dir"`
	PageSize         int           `json:"page_size" yaml:"page_size"`
	PageSizeOptions  []int         `json:"page_size_options" yaml:"page_size_options"`
	SearchDebounce   time.Duration `json:"search_debounce" yaml:"search_debounce"`
	SearchMode       string        `json:"search_mode" yaml:"search_mode"`
	CaseSensitive    bool          `json:"case_sensitive" yaml:"case_sensitive"`
	MaxInlineActions int           `json:"max_inline_actions" yaml:"max_inline_actions"`
	InlineExitDelay  time.Duration `json:"inline_exit_delay" yaml:"inline_exit_delay"`
	LogLevel         string        `json:"log_level" yaml:"log_level"`
	LogJSON          bool          `json:"log_json" yaml:"log_json"`
}

// DefaultSearchDebounce is the quiet period before search input is applied.
const DefaultSearchDebounce = 300 * time.Millisecond

// DefaultPageSizeOptions are offered when a configuration names none.
var DefaultPageSizeOptions = []int{10, 25, 50, 100}

// Config validation errors.
var (
	ErrPageSizeInvalid      = errors.New("page size must be positive or PageSizeAll")
	ErrDebounceInvalid      = errors.New("search debounce must not be negative")
	ErrSearchModeUnknown    = errors.New("unknown search mode")
	ErrInlineActionsInvalid = errors.New("max inline actions must not be negative")
	ErrExitDelayInvalid     = errors.New("inline exit delay must not be negative")
	ErrLogLevelUnknown      = errors.New("unknown log level")
)

var knownLogLevels = map[string]bool{
	"":      true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		PageSize:         DefaultPageSize,
		PageSizeOptions:  append([]int(nil), DefaultPageSizeOptions...),
		SearchDebounce:   DefaultSearchDebounce,
		SearchMode:       MatchContains,
		MaxInlineActions: DefaultMaxInlineActions,
		InlineExitDelay:  DefaultInlineExitDelay,
		LogLevel:         "info",
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.PageSize == 0 || (c.PageSize < 0 && c.PageSize != PageSizeAll) {
		return ErrPageSizeInvalid
	}
	for _, s := range c.PageSizeOptions {
		if s == 0 || (s < 0 && s != PageSizeAll) {
			return ErrPageSizeInvalid
		}
	}
	if c.SearchDebounce < 0 {
		return ErrDebounceInvalid
	}
	if c.SearchMode != "" && !IsValidMatchMode(c.SearchMode) {
		return ErrSearchModeUnknown
	}
	if c.MaxInlineActions < 0 {
		return ErrInlineActionsInvalid
	}
	if c.InlineExitDelay < 0 {
		return ErrExitDelayInvalid
	}
	if !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	return nil
}
