package exec

import (
	"errors"
	"fmt"
	"os/exec"
)

// LoadingPatternError is returned by Invoke when the child could not be
// started or exited with a non-zero code.
type LoadingPatternError struct {
	Message  string // human readable, embeds the captured stderr text
	ExitCode int    // -1 when the process never started or died from a signal
	Stderr   string // normalized stderr text, empty if unavailable
	Err      error  // underlying launch or wait error, if any
}

func (e *LoadingPatternError) Error() string {
	return e.Message
}

func (e *LoadingPatternError) Unwrap() error {
	return e.Err
}

// launchError builds the error for a process that never started
func launchError(spec ProcessSpec, err error) *LoadingPatternError {
	msg := fmt.Sprintf("Subprocess execution failed: %s: %v", spec, err)
	if errors.Is(err, exec.ErrNotFound) {
		msg += fmt.Sprintf("\nCommand '%s' not found. Please install it and try again", spec.Args[0])
	}
	return &LoadingPatternError{
		Message:  msg,
		ExitCode: -1,
		Err:      err,
	}
}

// exitError builds the error for a process that ran and failed.
// diagnostic is the best text we have about the failure; it may be empty.
func exitError(code int, stderr, diagnostic string, err error) *LoadingPatternError {
	msg := diagnostic
	if msg == "" {
		msg = fmt.Sprintf("process exited with code %d", code)
	}
	return &LoadingPatternError{
		Message:  fmt.Sprintf("Subprocess execution failed (exit %d): %s", code, msg),
		ExitCode: code,
		Stderr:   stderr,
		Err:      err,
	}
}
