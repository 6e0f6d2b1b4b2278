// Package config loads wren.yml.
//
// Values are read with viper: defaults first, then the config file, then
// WREN_* environment variables (WREN_LOG_LEVEL=debug, WREN_PATTERN=none).
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/wren/exec"
	"github.com/simonhull/wren/logger"
)

// FileName is the config file wren looks for in the working directory
const FileName = "wren.yml"

// Config represents wren.yml
type Config struct {
	LoadingPatternRate string    `yaml:"loading_pattern_rate" mapstructure:"loading_pattern_rate"`
	Pattern            string    `yaml:"pattern" mapstructure:"pattern"`
	LogLevel           string    `yaml:"log_level" mapstructure:"log_level"`
	Debug              bool      `yaml:"debug" mapstructure:"debug"`
	MetricsFile        string    `yaml:"metrics_file,omitempty" mapstructure:"metrics_file"`
	Commands           []Command `yaml:"commands" mapstructure:"commands"`

	// Source is the file the values came from, empty for defaults only
	Source string `yaml:"-" mapstructure:"-"`
}

// Command is a named process declared under "commands:"
type Command struct {
	Name        string   `yaml:"name" mapstructure:"name"`
	Description string   `yaml:"description,omitempty" mapstructure:"description"`
	Args        []string `yaml:"args" mapstructure:"args"`
	Stdout      string   `yaml:"stdout,omitempty" mapstructure:"stdout"`
	Stderr      string   `yaml:"stderr,omitempty" mapstructure:"stderr"`
	Dir         string   `yaml:"dir,omitempty" mapstructure:"dir"`
	Env         []string `yaml:"env,omitempty" mapstructure:"env"`
}

// Default returns a config with sensible defaults
func Default() *Config {
	return &Config{
		LoadingPatternRate: exec.DefaultRate.String(),
		Pattern:            exec.PatternAuto,
		LogLevel:           "info",
	}
}

// Load reads configuration. An empty path searches the working directory
// for wren.yml; a missing file there is not an error and yields defaults.
// An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("loading_pattern_rate", def.LoadingPatternRate)
	v.SetDefault("pattern", def.Pattern)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("debug", def.Debug)
	v.SetDefault("metrics_file", def.MetricsFile)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("wren")
		v.AddConfigPath(".")
	}
	v.SetConfigType("yaml")

	// Enable environment variable overrides
	v.SetEnvPrefix("WREN")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Source = v.ConfigFileUsed()
	return &cfg, nil
}

// Save writes configuration to a YAML file
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports the first invalid field
func (c *Config) Validate() error {
	rate, err := time.ParseDuration(c.LoadingPatternRate)
	if err != nil {
		return fmt.Errorf("invalid loading_pattern_rate: %w", err)
	}
	if rate <= 0 {
		return fmt.Errorf("invalid loading_pattern_rate: must be positive, got %s", rate)
	}

	if _, err := exec.PatternByName(c.Pattern, io.Discard); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}

	seen := make(map[string]bool, len(c.Commands))
	for i, cmd := range c.Commands {
		if cmd.Name == "" {
			return fmt.Errorf("invalid commands[%d]: name is required", i)
		}
		if seen[cmd.Name] {
			return fmt.Errorf("invalid commands[%d]: duplicate name %q", i, cmd.Name)
		}
		seen[cmd.Name] = true

		if _, err := cmd.Spec(); err != nil {
			return fmt.Errorf("invalid commands[%d] (%s): %w", i, cmd.Name, err)
		}
	}

	return nil
}

// Rate returns loading_pattern_rate, or exec.DefaultRate if it does not parse
func (c *Config) Rate() time.Duration {
	rate, err := time.ParseDuration(c.LoadingPatternRate)
	if err != nil || rate <= 0 {
		return exec.DefaultRate
	}
	return rate
}

// Level returns log_level, or LevelInfo if it does not parse
func (c *Config) Level() logger.Level {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return logger.LevelInfo
	}
	return level
}

// Spec converts the command into a ProcessSpec
func (c Command) Spec() (exec.ProcessSpec, error) {
	if len(c.Args) == 0 || c.Args[0] == "" {
		return exec.ProcessSpec{}, fmt.Errorf("args: at least the executable is required")
	}

	stdout, err := exec.ParseRedirect(c.Stdout)
	if err != nil {
		return exec.ProcessSpec{}, fmt.Errorf("stdout: %w", err)
	}
	if stdout == exec.RedirectStdout {
		return exec.ProcessSpec{}, fmt.Errorf("stdout: cannot be redirected to itself")
	}

	stderr, err := exec.ParseRedirect(c.Stderr)
	if err != nil {
		return exec.ProcessSpec{}, fmt.Errorf("stderr: %w", err)
	}

	return exec.ProcessSpec{
		Args:   append([]string(nil), c.Args...),
		Stdout: stdout,
		Stderr: stderr,
		Dir:    c.Dir,
		Env:    append([]string(nil), c.Env...),
	}, nil
}

// Registry builds a command registry holding every configured command
func (c *Config) Registry() (*exec.CommandRegistry, error) {
	registry := exec.NewCommandRegistry()
	for _, cmd := range c.Commands {
		spec, err := cmd.Spec()
		if err != nil {
			return nil, fmt.Errorf("command %s: %w", cmd.Name, err)
		}
		if err := registry.Register(exec.SpecCommand{
			CommandName: cmd.Name,
			Summary:     cmd.Description,
			Spec:        spec,
		}); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
