package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/wren/exec"
	"github.com/simonhull/wren/logger"
)

// writeConfig writes content to wren.yml in dir
func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default().LoadingPatternRate, cfg.LoadingPatternRate)
	assert.Equal(t, exec.PatternAuto, cfg.Pattern)
	assert.Equal(t, logger.LevelInfo, cfg.Level())
	assert.Equal(t, time.Second, cfg.Rate())
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.Commands)
	assert.Empty(t, cfg.Source)
}

func TestLoad_FromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
loading_pattern_rate: 250ms
pattern: dots
log_level: warn
commands:
  - name: build
    description: Build everything
    args: [go, build, ./...]
    stderr: stdout
    env: [CGO_ENABLED=0]
  - name: quiet
    args: [make, lint]
    stdout: discard
`)
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Rate())
	assert.Equal(t, exec.PatternDots, cfg.Pattern)
	assert.Equal(t, logger.LevelWarn, cfg.Level())
	require.Len(t, cfg.Commands, 2)
	assert.Equal(t, "build", cfg.Commands[0].Name)
	assert.Equal(t, []string{"go", "build", "./..."}, cfg.Commands[0].Args)
	assert.Equal(t, []string{"CGO_ENABLED=0"}, cfg.Commands[0].Env)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "log_level: info\npattern: dots\n")

	t.Setenv("WREN_LOG_LEVEL", "debug")
	t.Setenv("WREN_DEBUG", "true")
	t.Setenv("WREN_LOADING_PATTERN_RATE", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, logger.LevelDebug, cfg.Level())
	assert.True(t, cfg.Debug)
	assert.Equal(t, 2*time.Second, cfg.Rate())
	assert.Equal(t, exec.PatternDots, cfg.Pattern)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "pattern: [unclosed\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"bad rate", func(c *Config) { c.LoadingPatternRate = "soon" }, "loading_pattern_rate"},
		{"zero rate", func(c *Config) { c.LoadingPatternRate = "0s" }, "must be positive"},
		{"bad pattern", func(c *Config) { c.Pattern = "fireworks" }, "invalid pattern"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"command without name", func(c *Config) {
			c.Commands = []Command{{Args: []string{"true"}}}
		}, "commands[0]: name is required"},
		{"command without args", func(c *Config) {
			c.Commands = []Command{{Name: "empty"}}
		}, "commands[0] (empty): args"},
		{"duplicate command", func(c *Config) {
			c.Commands = []Command{
				{Name: "a", Args: []string{"true"}},
				{Name: "a", Args: []string{"false"}},
			}
		}, "duplicate name"},
		{"bad redirect", func(c *Config) {
			c.Commands = []Command{{Name: "a", Args: []string{"true"}, Stderr: "file"}}
		}, "stderr"},
		{"stdout to itself", func(c *Config) {
			c.Commands = []Command{{Name: "a", Args: []string{"true"}, Stdout: "stdout"}}
		}, "stdout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCommand_Spec(t *testing.T) {
	cmd := Command{
		Name:   "test",
		Args:   []string{"go", "test"},
		Stdout: "pipe",
		Stderr: "devnull",
		Dir:    "/tmp",
		Env:    []string{"A=1"},
	}

	spec, err := cmd.Spec()
	require.NoError(t, err)
	assert.Equal(t, exec.ProcessSpec{
		Args:   []string{"go", "test"},
		Stdout: exec.RedirectPipe,
		Stderr: exec.RedirectDiscard,
		Dir:    "/tmp",
		Env:    []string{"A=1"},
	}, spec)

	spec.Args[0] = "changed"
	assert.Equal(t, "go", cmd.Args[0], "spec must not alias the config")
}

func TestRegistry(t *testing.T) {
	cfg := Default()
	cfg.Commands = []Command{
		{Name: "vet", Args: []string{"go", "vet"}},
		{Name: "build", Description: "Build it", Args: []string{"go", "build"}},
	}

	registry, err := cfg.Registry()
	require.NoError(t, err)
	assert.Equal(t, []string{"build", "vet"}, registry.List())

	build, ok := registry.Get("build")
	require.True(t, ok)
	assert.Equal(t, "Build it", build.Description())

	vet, ok := registry.Get("vet")
	require.True(t, ok)
	assert.Equal(t, "go vet", vet.Description())
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	cfg := Default()
	cfg.Pattern = exec.PatternSpinner
	cfg.Commands = []Command{{Name: "hello", Args: []string{"echo", "hello"}}}

	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pattern: spinner")
	assert.Contains(t, string(data), "name: hello")
	assert.NotContains(t, string(data), "metrics_file", "empty optional fields are omitted")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, loaded.Source)
	loaded.Source = ""
	assert.Equal(t, cfg, loaded)
}
