package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/wren/exec"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, OutcomeSuccess},
		{"non-zero exit", &exec.LoadingPatternError{ExitCode: 2}, OutcomeExitError},
		{"never started", &exec.LoadingPatternError{ExitCode: -1}, OutcomeAborted},
		{"wrapped exit", fmt.Errorf("build: %w", &exec.LoadingPatternError{ExitCode: 1}), OutcomeExitError},
		{"decode failure", fmt.Errorf("reading output: %w", exec.ErrInvalidUTF8), OutcomeReadError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestCollector_RecordsInvocations(t *testing.T) {
	c := NewCollector()
	build := exec.ProcessSpec{Args: []string{"/usr/local/go/bin/go", "build"}}
	lint := exec.ProcessSpec{Args: []string{"golangci-lint", "run"}}

	c.Started("1", build)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.inFlight))
	c.Finished("1", build, 0, 2*time.Second, nil)

	c.Started("2", build)
	c.Finished("2", build, 1, time.Second, &exec.LoadingPatternError{ExitCode: 1})

	c.Started("3", lint)
	c.Finished("3", lint, -1, 0, &exec.LoadingPatternError{ExitCode: -1})

	assert.Equal(t, 0.0, testutil.ToFloat64(c.inFlight))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.started.WithLabelValues("go")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.started.WithLabelValues("golangci-lint")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.finished.WithLabelValues("go", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.finished.WithLabelValues("go", OutcomeExitError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.finished.WithLabelValues("golangci-lint", OutcomeAborted)))
	assert.Equal(t, 2, testutil.CollectAndCount(c.duration))
}

func TestCollector_UnknownCommand(t *testing.T) {
	c := NewCollector()
	c.Started("1", exec.ProcessSpec{})
	c.Finished("1", exec.ProcessSpec{}, -1, 0, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.finished.WithLabelValues("unknown", OutcomeReadError)))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector()
	spec := exec.ProcessSpec{Args: []string{"make"}}
	c.Started("1", spec)
	c.Finished("1", spec, 0, 10*time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "wren.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `wren_invocations_finished_total{command="make",outcome="success"} 1`)
	assert.True(t, strings.Contains(text, "wren_invocation_duration_seconds_bucket"))
}

func TestCollector_WriteTextfileBadPath(t *testing.T) {
	c := NewCollector()
	err := c.WriteTextfile(filepath.Join(t.TempDir(), "missing", "wren.prom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing metrics")
}
