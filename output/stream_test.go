package output

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("sink closed") }

func TestStreamWriter_WriteStr(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStreamWriter(&buf)

	require.NoError(t, sw.WriteStr("."))
	require.NoError(t, sw.WriteStr(".."))

	assert.Equal(t, "...", buf.String(), "no newline should be added")
	assert.Equal(t, &buf, sw.Writer())
}

func TestStreamWriter_FlushBufferedSink(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	sw := NewStreamWriter(bw)

	require.NoError(t, sw.WriteStr("hello"))
	assert.Empty(t, buf.String(), "bufio should hold the data until flushed")

	require.NoError(t, sw.Flush())
	assert.Equal(t, "hello", buf.String())
}

func TestStreamWriter_FlushUnbufferedSink(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStreamWriter(&buf)
	assert.NoError(t, sw.Flush())
}

func TestStreamWriter_PropagatesSinkErrors(t *testing.T) {
	sw := NewStreamWriter(failingWriter{})
	err := sw.WriteStr(".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink closed")
}

func TestStreamWriter_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStreamWriter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sw.WriteStr("ab")
		}()
	}
	wg.Wait()

	assert.Equal(t, strings.Repeat("ab", 50), buf.String())
}

func TestIsTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf), "buffers are never terminals")

	f, err := os.CreateTemp(t.TempDir(), "sink")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsTerminal(f), "regular files are not terminals")
}
