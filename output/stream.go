package output

import (
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// StreamWriter writes text to exactly one sink with explicit flush control.
// It keeps no buffer of its own; writes from concurrent goroutines are
// serialized so a loading pattern tick never interleaves with other output.
type StreamWriter struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewStreamWriter wraps writer
func NewStreamWriter(writer io.Writer) *StreamWriter {
	return &StreamWriter{writer: writer}
}

// Writer returns the wrapped sink
func (s *StreamWriter) Writer() io.Writer {
	return s.writer
}

// WriteStr writes text as-is, without adding a newline
func (s *StreamWriter) WriteStr(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := io.WriteString(s.writer, text)
	return err
}

// Flush forces buffered data out when the sink buffers (e.g. *bufio.Writer).
// Unbuffered sinks such as *os.File need nothing and Flush is a no-op.
func (s *StreamWriter) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.writer.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// IsTerminal reports whether w is a file attached to a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
