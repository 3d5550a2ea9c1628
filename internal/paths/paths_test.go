package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform swaps the platform lookups for the duration of a test.
func fakePlatform(t *testing.T, goos string) {
	t.Helper()
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })
	platformDir.goos = goos
	platformDir.homeDir = func() (string, error) { return "/home/op", nil }
	platformDir.userConfigDir = func() (string, error) { return "/Users/op/Library/Application Support", nil }
}

func TestDefaultDirs(t *testing.T) {
	tests := []struct {
		name       string
		goos       string
		xdgConfig  string
		xdgData    string
		wantConfig string
		wantData   string
	}{
		{
			name:       "linux with XDG variables",
			goos:       "linux",
			xdgConfig:  "/tmp/xdg-config",
			xdgData:    "/tmp/xdg-data",
			wantConfig: "/tmp/xdg-config/grid",
			wantData:   "/tmp/xdg-data/grid",
		},
		{
			name:       "linux falls back to home",
			goos:       "linux",
			wantConfig: "/home/op/.config/grid",
			wantData:   "/home/op/.local/share/grid",
		},
		{
			name:       "darwin uses user config dir for both",
			goos:       "darwin",
			xdgConfig:  "/ignored",
			wantConfig: "/Users/op/Library/Application Support/grid",
			wantData:   "/Users/op/Library/Application Support/grid",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakePlatform(t, tt.goos)
			t.Setenv("XDG_CONFIG_HOME", tt.xdgConfig)
			t.Setenv("XDG_DATA_HOME", tt.xdgData)

			got, err := DefaultConfigDir()
			require.NoError(t, err)
			assert.Equal(t, tt.wantConfig, got)

			got, err = DefaultDataDir()
			require.NoError(t, err)
			assert.Equal(t, tt.wantData, got)
		})
	}
}

func TestDefaultConfigDirLookupFailure(t *testing.T) {
	fakePlatform(t, "linux")
	t.Setenv("XDG_CONFIG_HOME", "")
	boom := errors.New("no home")
	platformDir.homeDir = func() (string, error) { return "", boom }

	_, err := DefaultConfigDir()
	assert.ErrorIs(t, err, boom)
}

func TestResolveConfigDir(t *testing.T) {
	fakePlatform(t, "linux")
	t.Setenv("XDG_CONFIG_HOME", "")

	tests := []struct {
		name   string
		flag   string
		envVal string
		want   string
	}{
		{name: "flag wins over env", flag: "/explicit/config", envVal: "/env/config", want: "/explicit/config"},
		{name: "env wins when flag empty", envVal: "/env/config", want: "/env/config"},
		{name: "platform default when both empty", want: "/home/op/.config/grid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.envVal)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name       string
		flag       string
		configured string
		envVal     string
		want       string
	}{
		{name: "flag wins over all", flag: "/flag/data", configured: "/config/data", envVal: "/env/data", want: "/flag/data"},
		{name: "config wins over env", configured: "/config/data", envVal: "/env/data", want: "/config/data"},
		{name: "env wins when flag and config empty", envVal: "/env/data", want: "/env/data"},
		{name: "working directory default", want: filepath.Join(cwd, DefaultDataDirName)},
		{name: "relative flag becomes absolute", flag: "rel/data", want: filepath.Join(cwd, "rel", "data")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.envVal)
			got, err := ResolveDataDir(tt.flag, tt.configured)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
