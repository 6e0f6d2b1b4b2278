package output

import (
	"bytes"
	"strings"
	"testing"
)

// captureOutput captures messages written during f
func captureOutput(f func()) string {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer SetOutput(prev)

	f()
	return buf.String()
}

func TestMessages(t *testing.T) {
	tests := []struct {
		name   string
		print  func(string)
		marker string
	}{
		{"success", Success, "✔"},
		{"error", Error, "✖"},
		{"info", Info, ""},
		{"step", Step, "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := captureOutput(func() { tt.print("go vet finished") })

			if !strings.Contains(got, "go vet finished") {
				t.Errorf("output %q does not contain the message", got)
			}
			if !strings.Contains(got, tt.marker) {
				t.Errorf("output %q does not contain marker %q", got, tt.marker)
			}
			if !strings.HasSuffix(got, "\n") {
				t.Errorf("output %q is not newline terminated", got)
			}
		})
	}
}

func TestVerbose(t *testing.T) {
	if got := captureOutput(func() { Verbose("loaded wren.yml") }); got != "" {
		t.Errorf("verbose output should be empty when disabled, got %q", got)
	}

	SetVerbose(true)
	defer SetVerbose(false)

	if got := captureOutput(func() { Verbose("loaded wren.yml") }); !strings.Contains(got, "loaded wren.yml") {
		t.Errorf("verbose output should contain the message when enabled, got %q", got)
	}
}

func TestSetOutput_ReturnsPrevious(t *testing.T) {
	var first, second bytes.Buffer

	orig := SetOutput(&first)
	defer SetOutput(orig)

	if prev := SetOutput(&second); prev != &first {
		t.Error("SetOutput should return the writer it replaced")
	}

	Info("to second")
	if first.Len() != 0 || !strings.Contains(second.String(), "to second") {
		t.Error("messages should go to the most recent writer")
	}
}
