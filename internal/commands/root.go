package commands

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/simonhull/wren"
	"github.com/simonhull/wren/config"
	"github.com/simonhull/wren/exec"
	"github.com/simonhull/wren/input"
	"github.com/simonhull/wren/logger"
	"github.com/simonhull/wren/metrics"
	"github.com/simonhull/wren/output"
)

// app is the state shared by every subcommand of one root command
type app struct {
	verbose     bool
	configPath  string
	metricsFile string

	cfg       *config.Config
	collector *metrics.Collector
}

// RootCmd creates and returns the root command for the wren CLI
func RootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "wren",
		Short: "Run tools behind a loading pattern",
		Long: `wren runs external commands, buffers their output and shows a loading
pattern while they work. Failures report the command's stderr and exit with
the command's exit code.

Commands can be run ad hoc with 'wren run' or declared in wren.yml and run
by name with 'wren exec'.`,
		Version:       wren.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(a.verbose)
			logger.SetDefault(logger.NewLogger(logger.LevelInfo, cmd.ErrOrStderr()))
		},
	}

	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output for debugging")
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default ./wren.yml)")
	cmd.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after each run")

	cmd.AddCommand(newRunCommand(a))
	cmd.AddCommand(newExecCommand(a))
	cmd.AddCommand(newListCommand(a))
	cmd.AddCommand(newInitCommand(a))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// ExitCode maps an error returned by the root command to a process exit
// code. A failed child's own exit code is passed through.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var lpe *exec.LoadingPatternError
	if errors.As(err, &lpe) && lpe.ExitCode > 0 {
		return lpe.ExitCode
	}
	return 1
}

// config loads wren.yml once per root command
func (a *app) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	logger.Default().SetLevel(cfg.Level())

	if cfg.Source != "" {
		output.Verbose("Loaded configuration from " + cfg.Source)
	} else {
		output.Verbose("No wren.yml found, using defaults")
	}
	logger.Debug("configuration loaded",
		logger.F("file", cfg.Source),
		logger.F("commands", len(cfg.Commands)),
	)
	for _, c := range cfg.Commands {
		if c.Dir == "" {
			continue
		}
		if info, err := os.Stat(c.Dir); err != nil || !info.IsDir() {
			logger.Warn("command directory does not exist",
				logger.F("command", c.Name),
				logger.F("dir", c.Dir),
			)
		}
	}

	a.cfg = cfg
	return cfg, nil
}

// invocation is everything needed to call Invoke from a subcommand
type invocation struct {
	invoker *exec.Invoker
	pattern exec.LoadingPattern
	writer  *output.StreamWriter
	debug   bool
}

// newInvocation builds an invoker from config, letting non-zero flag
// values win. Diagnostics go to errOut; stdout is left to the caller.
func (a *app) newInvocation(errOut io.Writer, rateFlag, patternFlag string, debugFlag bool) (*invocation, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}

	rate := cfg.Rate()
	if rateFlag != "" {
		override := *cfg
		override.LoadingPatternRate = rateFlag
		if err := override.Validate(); err != nil {
			return nil, err
		}
		rate = override.Rate()
	}

	writer := output.NewStreamWriter(errOut)
	patternName := cfg.Pattern
	if patternFlag != "" {
		patternName = patternFlag
	}
	pattern, err := exec.PatternByName(patternName, writer.Writer())
	if err != nil {
		return nil, err
	}

	debug := debugFlag || cfg.Debug
	if debug {
		logger.Default().SetLevel(logger.LevelDebug)
	}

	// The invoker logs through the default logger set up by the root command
	opts := &exec.Options{Rate: rate}
	if a.metricsPath() != "" {
		a.collector = metrics.NewCollector()
		opts.Observer = a.collector
	}

	return &invocation{
		invoker: exec.NewInvoker(opts),
		pattern: pattern,
		writer:  writer,
		debug:   debug,
	}, nil
}

func (a *app) metricsPath() string {
	if a.metricsFile != "" {
		return a.metricsFile
	}
	if a.cfg != nil {
		return a.cfg.MetricsFile
	}
	return ""
}

// flushMetrics writes collected metrics when a metrics file is configured
func (a *app) flushMetrics() {
	path := a.metricsPath()
	if a.collector == nil || path == "" {
		return
	}
	if err := a.collector.WriteTextfile(path); err != nil {
		logger.Error("writing metrics failed", logger.F("error", err))
		return
	}
	output.Verbose("Wrote metrics to " + path)
}

func (a *app) prompter(cmd *cobra.Command) *input.Prompter {
	return input.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
}
