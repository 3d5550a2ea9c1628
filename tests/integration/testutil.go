// Package integration drives the grid binary end to end.
package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

var (
	buildOnce sync.Once
	gridBin   string
	buildErr  error
)

// BuildError wraps a build error with the compiler output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot walks up from the working directory to the go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// buildGrid compiles cmd/grid into binDir once per test binary.
func buildGrid(binDir string) (string, error) {
	buildOnce.Do(func() {
		root, err := FindProjectRoot()
		if err != nil {
			buildErr = err
			return
		}
		gridBin = filepath.Join(binDir, "grid")
		cmd := exec.Command("go", "build", "-o", gridBin, "./cmd/grid")
		cmd.Dir = root
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &BuildError{Err: err, Output: string(out)}
		}
	})
	return gridBin, buildErr
}

// TestEnv is an isolated config and data directory pair.
type TestEnv struct {
	t         *testing.T
	Dir       string
	ConfigDir string
	DataDir   string
}

// baseConfig is written to every environment's config.yaml.
const baseConfig = "page_size: 5\nlog_level: error\n"

// NewTestEnv creates a fresh environment with a small config.yaml.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if buildErr != nil {
		t.Fatalf("failed to build grid: %v", buildErr)
	}
	dir := t.TempDir()
	env := &TestEnv{
		t:         t,
		Dir:       dir,
		ConfigDir: filepath.Join(dir, "config"),
		DataDir:   filepath.Join(dir, "data"),
	}
	if err := os.MkdirAll(env.ConfigDir, 0o755); err != nil {
		t.Fatalf("create config dir: %v", err)
	}
	env.WriteConfig(baseConfig)
	return env
}

// WriteConfig replaces config.yaml.
func (e *TestEnv) WriteConfig(content string) {
	e.t.Helper()
	if err := os.WriteFile(filepath.Join(e.ConfigDir, "config.yaml"), []byte(content), 0o644); err != nil {
		e.t.Fatalf("write config: %v", err)
	}
}

// WriteFile writes content under the environment directory and returns its
// path.
func (e *TestEnv) WriteFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.Dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// CmdResult holds one grid invocation's output.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes grid with the environment's directories prepended.
func (e *TestEnv) Run(args ...string) CmdResult {
	e.t.Helper()
	all := append([]string{"--config-dir", e.ConfigDir, "--data-dir", e.DataDir}, args...)
	return runWithEnv(e.t, e, nil, all...)
}

// runWithEnv executes grid with args as given and extra environment
// variables appended.
func runWithEnv(t *testing.T, e *TestEnv, extra []string, args ...string) CmdResult {
	t.Helper()
	cmd := exec.Command(gridBin, args...)
	cmd.Dir = e.Dir
	cmd.Env = append(os.Environ(), extra...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	code := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("failed to run grid: %v", err)
		}
		code = exitErr.ExitCode()
	}
	return CmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

// MustRun executes grid and fails the test on a non-zero exit.
func (e *TestEnv) MustRun(args ...string) CmdResult {
	e.t.Helper()
	res := e.Run(args...)
	if res.ExitCode != 0 {
		e.t.Fatalf("grid %v exited %d:\nstdout: %s\nstderr: %s", args, res.ExitCode, res.Stdout, res.Stderr)
	}
	return res
}

// ParseJSON decodes command output into T.
func ParseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var out T
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", s, err)
	}
	return out
}

// fleetEpoch anchors the created timestamps of the fleet fixture.
var fleetEpoch = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// FleetRow returns machine i of the fixture. Even machines are web servers
// in us-east, odd ones database hosts in eu-west.
func FleetRow(i int) map[string]any {
	row := map[string]any{
		"id":      fmt.Sprintf("m%02d", i),
		"cpu":     i % 4,
		"created": fleetEpoch.AddDate(0, 0, -i).Format(time.RFC3339),
	}
	if i%2 == 0 {
		row["name"] = fmt.Sprintf("web-%02d", i)
		row["region"] = "us-east"
		row["tags"] = []string{"web"}
	} else {
		row["name"] = fmt.Sprintf("db-%02d", i)
		row["region"] = "eu-west"
		row["tags"] = []string{"db", "backup"}
	}
	return row
}

// WriteFleet writes n fixture machines as JSONL.
func (e *TestEnv) WriteFleet(n int) string {
	e.t.Helper()
	var b strings.Builder
	for i := range n {
		line, err := json.Marshal(FleetRow(i))
		if err != nil {
			e.t.Fatalf("marshal row: %v", err)
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return e.WriteFile("fleet.jsonl", b.String())
}

// FleetTOML is the table definition matching the fleet fixture.
const FleetTOML = `
row_id = "id"

[[columns]]
id = "id"
sortable = true

[[columns]]
id = "name"
header = "Name"
sortable = true

[[columns]]
id = "region"
facetable = true
filter_kind = "set"

[[columns]]
id = "tags"
facetable = true
sortable = true
sort_type = "arrayLength"

[[columns]]
id = "cpu"
sortable = true
sort_type = "numeric"
searchable = false

[[columns]]
id = "created"
sortable = true
sort_type = "date"
filter_kind = "range"
searchable = false
`

// WriteFleetDef writes FleetTOML and returns its path.
func (e *TestEnv) WriteFleetDef() string {
	e.t.Helper()
	return e.WriteFile("fleet.toml", FleetTOML)
}
