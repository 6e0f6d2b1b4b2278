package exec

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/simonhull/wren/output"
)

// StreamWriter is the sink loading patterns and the error path write to.
// *output.StreamWriter is the standard implementation.
type StreamWriter interface {
	WriteStr(text string) error
	Flush() error
}

// LoadingPattern is invoked on every tick while a child process is alive.
// Patterns that do not need the writer simply ignore it. A returned error
// stops ticking for the rest of the invocation.
type LoadingPattern func(sw StreamWriter) error

// newStreamWriter builds the writer used when callers pass nil.
// Tests replace it to observe construction.
var newStreamWriter = func() StreamWriter {
	return output.NewStreamWriter(os.Stderr)
}

// DefaultLoadingPattern writes a single "." and flushes.
// When sw is nil a writer over standard error is created for the call.
func DefaultLoadingPattern(sw StreamWriter) error {
	if sw == nil {
		sw = newStreamWriter()
	}
	if err := sw.WriteStr("."); err != nil {
		return err
	}
	return sw.Flush()
}

// NoLoadingPattern never writes anything
func NoLoadingPattern(StreamWriter) error {
	return nil
}

var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

// SpinnerPattern returns a pattern that redraws a spinner frame in place on
// every tick. Each returned pattern keeps its own frame counter.
func SpinnerPattern(s spinner.Spinner) LoadingPattern {
	if len(s.Frames) == 0 {
		s = spinner.Dot
	}
	var frame atomic.Uint64
	return func(sw StreamWriter) error {
		if sw == nil {
			sw = newStreamWriter()
		}
		i := frame.Add(1) - 1
		text := s.Frames[i%uint64(len(s.Frames))]
		if err := sw.WriteStr("\r" + spinnerStyle.Render(text)); err != nil {
			return err
		}
		return sw.Flush()
	}
}

// Pattern names accepted by PatternByName
const (
	PatternAuto    = "auto"
	PatternDots    = "dots"
	PatternSpinner = "spinner"
	PatternNone    = "none"
)

// PatternByName resolves a configured pattern name. "auto" picks the
// spinner when sink is a terminal and dots otherwise.
func PatternByName(name string, sink io.Writer) (LoadingPattern, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PatternAuto:
		if output.IsTerminal(sink) {
			return SpinnerPattern(spinner.Dot), nil
		}
		return DefaultLoadingPattern, nil
	case PatternDots:
		return DefaultLoadingPattern, nil
	case PatternSpinner:
		return SpinnerPattern(spinner.Dot), nil
	case PatternNone:
		return NoLoadingPattern, nil
	default:
		return nil, fmt.Errorf("unknown loading pattern %q (expected auto, dots, spinner or none)", name)
	}
}
