package exec

import (
	"fmt"
	"strings"
)

// Redirect selects where a child stream goes
type Redirect int

const (
	// RedirectDefault lets the Invoker pick: a pipe for stdout, and
	// DefaultStderr for stderr.
	RedirectDefault Redirect = iota
	// RedirectPipe captures the stream.
	RedirectPipe
	// RedirectDiscard sends the stream to the null device.
	RedirectDiscard
	// RedirectStdout merges stderr into stdout. Only valid for stderr.
	RedirectStdout
)

// String returns the name used in configuration files
func (r Redirect) String() string {
	switch r {
	case RedirectDefault:
		return "default"
	case RedirectPipe:
		return "pipe"
	case RedirectDiscard:
		return "discard"
	case RedirectStdout:
		return "stdout"
	default:
		return fmt.Sprintf("Redirect(%d)", int(r))
	}
}

// ParseRedirect converts a configuration value into a Redirect.
// An empty string is RedirectDefault.
func ParseRedirect(s string) (Redirect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return RedirectDefault, nil
	case "pipe":
		return RedirectPipe, nil
	case "discard", "devnull":
		return RedirectDiscard, nil
	case "stdout":
		return RedirectStdout, nil
	default:
		return RedirectDefault, fmt.Errorf("unknown redirect %q (expected default, pipe, discard or stdout)", s)
	}
}

// DefaultStderr is the stderr redirect used when a ProcessSpec leaves it
// unset. Windows merges stderr into stdout so a single reader drains both
// and a full stderr pipe cannot stall the child.
func DefaultStderr(goos string) Redirect {
	if goos == "windows" {
		return RedirectStdout
	}
	return RedirectPipe
}

// ProcessSpec describes one child process. The Invoker never modifies it.
type ProcessSpec struct {
	Args   []string // argv; Args[0] is resolved via PATH
	Stdout Redirect
	Stderr Redirect
	Dir    string   // working directory, empty for the current one
	Env    []string // extra KEY=VALUE pairs appended to the parent environment
}

// resolved returns the redirects the Invoker will actually launch with
func (s ProcessSpec) resolved(goos string) (stdout, stderr Redirect) {
	stdout = s.Stdout
	if stdout == RedirectDefault {
		stdout = RedirectPipe
	}
	stderr = s.Stderr
	if stderr == RedirectDefault {
		stderr = DefaultStderr(goos)
	}
	return stdout, stderr
}

// validate reports problems that would make the launch fail
func (s ProcessSpec) validate() error {
	if len(s.Args) == 0 || s.Args[0] == "" {
		return fmt.Errorf("empty argument vector")
	}
	if s.Stdout == RedirectStdout {
		return fmt.Errorf("stdout cannot be redirected to itself")
	}
	return nil
}

// String returns the command line for log output
func (s ProcessSpec) String() string {
	return strings.Join(s.Args, " ")
}

// lineSeparator is the separator captured lines are joined with
func lineSeparator(goos string) string {
	if goos == "windows" {
		return "\r\n"
	}
	return "\n"
}
