package types

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	withDefaults := func(mutate func(*Config)) Config {
		c := DefaultConfig()
		mutate(&c)
		return c
	}

	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "defaults are valid",
			config:  DefaultConfig(),
			wantErr: nil,
		},
		{
			name:    "page size all is valid",
			config:  withDefaults(func(c *Config) { c.PageSize = PageSizeAll }),
			wantErr: nil,
		},
		{
			name:    "zero page size returns ErrPageSizeInvalid",
			config:  withDefaults(func(c *Config) { c.PageSize = 0 }),
			wantErr: ErrPageSizeInvalid,
		},
		{
			name:    "negative page size option returns ErrPageSizeInvalid",
			config:  withDefaults(func(c *Config) { c.PageSizeOptions = []int{10, -5} }),
			wantErr: ErrPageSizeInvalid,
		},
		{
			name:    "negative debounce returns ErrDebounceInvalid",
			config:  withDefaults(func(c *Config) { c.SearchDebounce = -time.Millisecond }),
			wantErr: ErrDebounceInvalid,
		},
		{
			name:    "empty search mode means the default",
			config:  withDefaults(func(c *Config) { c.SearchMode = "" }),
			wantErr: nil,
		},
		{
			name:    "unknown search mode returns ErrSearchModeUnknown",
			config:  withDefaults(func(c *Config) { c.SearchMode = "fuzzy" }),
			wantErr: ErrSearchModeUnknown,
		},
		{
			name:    "negative inline actions returns ErrInlineActionsInvalid",
			config:  withDefaults(func(c *Config) { c.MaxInlineActions = -1 }),
			wantErr: ErrInlineActionsInvalid,
		},
		{
			name:    "negative exit delay returns ErrExitDelayInvalid",
			config:  withDefaults(func(c *Config) { c.InlineExitDelay = -time.Second }),
			wantErr: ErrExitDelayInvalid,
		},
		{
			name:    "unknown log level returns ErrLogLevelUnknown",
			config:  withDefaults(func(c *Config) { c.LogLevel = "verbose" }),
			wantErr: ErrLogLevelUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigCopiesOptions(t *testing.T) {
	c := DefaultConfig()
	c.PageSizeOptions[0] = 7
	if DefaultPageSizeOptions[0] == 7 {
		t.Fatal("DefaultConfig shares its page size options with the package default")
	}
}
