package exec

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/simonhull/wren/logger"
)

// DefaultRate is the interval between loading pattern ticks
const DefaultRate = time.Second

// DefaultWaitDelay is how long output pipes may stay open after the child
// exits, typically held by a grandchild, before they are closed
const DefaultWaitDelay = 500 * time.Millisecond

// Observer is notified around every invocation
type Observer interface {
	Started(runID string, spec ProcessSpec)
	Finished(runID string, spec ProcessSpec, exitCode int, elapsed time.Duration, err error)
}

// Options configures an Invoker
type Options struct {
	Rate      time.Duration       // loading_pattern_rate; DefaultRate when zero
	WaitDelay time.Duration       // DefaultWaitDelay when zero
	Logger    logger.Logger       // defaults to logger.Default()
	Level     func() logger.Level // effective level query; defaults to Logger.Level
	Observer  Observer            // optional
}

// Invoker runs child processes behind a loading pattern
type Invoker struct {
	rate      time.Duration
	waitDelay time.Duration
	log       logger.Logger
	level     func() logger.Level
	observer  Observer
	goos      string

	// For mocking in tests
	commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd
	start       func(cmd *exec.Cmd) error
}

// NewInvoker creates an invoker with sensible defaults
func NewInvoker(opts *Options) *Invoker {
	if opts == nil {
		opts = &Options{}
	}

	rate := opts.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	waitDelay := opts.WaitDelay
	if waitDelay <= 0 {
		waitDelay = DefaultWaitDelay
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	level := opts.Level
	if level == nil {
		level = log.Level
	}

	return &Invoker{
		rate:        rate,
		waitDelay:   waitDelay,
		log:         log.WithFields(logger.F("component", "invoker")),
		level:       level,
		observer:    opts.Observer,
		goos:        runtime.GOOS,
		commandFunc: exec.CommandContext,
		start:       (*exec.Cmd).Start,
	}
}

// Rate returns the interval between loading pattern ticks
func (inv *Invoker) Rate() time.Duration {
	return inv.rate
}

// Invoke runs spec and returns its captured stdout.
//
// The mode is decided once: when isDebug is set or the effective log level
// is debug, stdout lines are relayed through the logger as they arrive and
// pattern is never called. Otherwise pattern is called with sw right away
// and then every Rate until the process exits. A nil pattern means DefaultLoadingPattern and a nil sw
// means a writer over standard error.
//
// Launch failures and non-zero exits are returned as *LoadingPatternError.
// After a non-zero exit a line separator is written to sw and flushed so
// the indicator line is terminated; launch failures leave sw untouched.
// When stdout is not captured the returned text is empty.
//
// Once the child exits, or ctx is done and the child is killed, output
// pipes still held open by its descendants are closed after WaitDelay.
func (inv *Invoker) Invoke(ctx context.Context, spec ProcessSpec, pattern LoadingPattern, sw StreamWriter, isDebug bool) (string, error) {
	if pattern == nil {
		pattern = DefaultLoadingPattern
	}
	if sw == nil {
		sw = newStreamWriter()
	}
	passThrough := isDebug || inv.level() == logger.LevelDebug

	runID := uuid.NewString()
	log := inv.log.WithFields(logger.F("run_id", runID))

	if inv.observer != nil {
		inv.observer.Started(runID, spec)
	}
	began := time.Now()

	text, exitCode, err := inv.run(ctx, spec, pattern, sw, passThrough, log)

	elapsed := time.Since(began)
	log.Debug("invocation finished",
		logger.F("exit_code", exitCode),
		logger.F("elapsed", elapsed.Round(time.Millisecond)),
	)
	if inv.observer != nil {
		inv.observer.Finished(runID, spec, exitCode, elapsed, err)
	}
	return text, err
}

func (inv *Invoker) run(ctx context.Context, spec ProcessSpec, pattern LoadingPattern, sw StreamWriter, passThrough bool, log logger.Logger) (string, int, error) {
	if err := spec.validate(); err != nil {
		return "", -1, launchError(spec, err)
	}

	stdoutMode, stderrMode := spec.resolved(inv.goos)
	log.Debug("launching process",
		logger.F("args", spec.String()),
		logger.F("stdout", stdoutMode),
		logger.F("stderr", stderrMode),
		logger.F("pass_through", passThrough),
	)

	//nolint:gosec // G204: running caller supplied argv is the point
	cmd := inv.commandFunc(ctx, spec.Args[0], spec.Args[1:]...)
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	if len(spec.Env) > 0 {
		cmd.Env = append(cmd.Environ(), spec.Env...)
	}

	var p pipes
	defer p.closeAll()

	var stdout, stderr *os.File
	if stdoutMode == RedirectPipe {
		r, w, err := p.open()
		if err != nil {
			return "", -1, launchError(spec, fmt.Errorf("stdout pipe: %w", err))
		}
		stdout, cmd.Stdout = r, w
	}
	switch stderrMode {
	case RedirectPipe:
		r, w, err := p.open()
		if err != nil {
			return "", -1, launchError(spec, fmt.Errorf("stderr pipe: %w", err))
		}
		stderr, cmd.Stderr = r, w
	case RedirectStdout:
		cmd.Stderr = cmd.Stdout
	}

	if err := inv.start(cmd); err != nil {
		log.Debug("process failed to start", logger.F("error", err))
		return "", -1, launchError(spec, err)
	}
	// The child holds its own copies now; EOF on our read ends follows the
	// exit of every process sharing them.
	p.closeWriters()

	stopTicking := func() {}
	if !passThrough {
		stopTicking = tick(inv.rate, pattern, sw, log)
	}
	defer stopTicking()

	sep := lineSeparator(inv.goos)
	var (
		lines      []string
		decodeErr  error
		stderrText bytes.Buffer
	)
	var g errgroup.Group
	if stdout != nil {
		g.Go(func() error {
			var err error
			lines, decodeErr, err = drainLines(stdout, passThrough, log)
			return err
		})
	}
	if stderr != nil {
		g.Go(func() error {
			_, err := io.Copy(&stderrText, stderr)
			if errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		})
	}
	drained := make(chan error, 1)
	go func() { drained <- g.Wait() }()

	// CommandContext kills the direct child when ctx is done, so Wait
	// returns even if a grandchild still holds our pipes.
	waitErr := cmd.Wait()
	stopTicking()

	var drainErr error
	timer := time.NewTimer(inv.waitDelay)
	defer timer.Stop()
	select {
	case drainErr = <-drained:
	case <-timer.C:
		log.Debug("output still open after exit, closing pipes", logger.F("wait_delay", inv.waitDelay))
		p.closeReaders()
		drainErr = <-drained
	}

	captured := strings.Join(lines, sep)

	if waitErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		ctxErr := ctx.Err()
		if ctxErr != nil {
			waitErr = fmt.Errorf("%w: %w", ctxErr, waitErr)
		}

		errText := normalizeStderr(stderrText.Bytes())
		diagnostic := errText
		if stderrMode == RedirectStdout {
			diagnostic = captured
		}
		if diagnostic == "" && ctxErr != nil {
			diagnostic = fmt.Sprintf("process stopped: %v", ctxErr)
		}

		if err := sw.WriteStr(sep); err != nil {
			log.Debug("terminating loading pattern line failed", logger.F("error", err))
		}
		if err := sw.Flush(); err != nil {
			log.Debug("flushing stream writer failed", logger.F("error", err))
		}

		log.Debug("process exited with error",
			logger.F("exit_code", exitCode),
			logger.F("error", waitErr),
		)
		return "", exitCode, exitError(exitCode, errText, diagnostic, waitErr)
	}

	if decodeErr != nil {
		return "", 0, fmt.Errorf("reading output of %s: %w", spec, decodeErr)
	}
	if drainErr != nil {
		return "", 0, fmt.Errorf("reading output of %s: %w", spec, drainErr)
	}
	return captured, 0, nil
}

// drainLines reads r to EOF, normalizing each line. Lines that fail to
// decode are dropped and the first decoding error is reported separately
// so the child is never left blocked on a full pipe.
func drainLines(r io.Reader, passThrough bool, log logger.Logger) (lines []string, decodeErr, err error) {
	br := bufio.NewReader(r)
	for {
		chunk, readErr := br.ReadBytes('\n')
		if len(chunk) > 0 {
			text, nerr := Normalize(chunk, false)
			switch {
			case nerr != nil:
				if decodeErr == nil {
					decodeErr = nerr
				}
			default:
				if passThrough {
					log.Debug(text)
				}
				lines = append(lines, text)
			}
		}
		if readErr == io.EOF {
			return lines, decodeErr, nil
		}
		if errors.Is(readErr, os.ErrClosed) {
			// closed after the child exited; keep what was read
			return lines, decodeErr, nil
		}
		if readErr != nil {
			return lines, decodeErr, readErr
		}
	}
}

// normalizeStderr turns captured stderr into diagnostic text. Stderr is
// only used for messages, so invalid bytes are replaced instead of failing.
func normalizeStderr(b []byte) string {
	text, err := Normalize(b, false)
	if err != nil {
		text, _ = Normalize(strings.ToValidUTF8(string(b), "�"), false)
	}
	return text
}

// tick calls pattern once right away and then every rate until the
// returned stop function is called. stop waits for an in-flight tick, so
// nothing is written to sw once it returns. A failing pattern ends ticking
// early.
func tick(rate time.Duration, pattern LoadingPattern, sw StreamWriter, log logger.Logger) (stop func()) {
	if err := pattern(sw); err != nil {
		log.Debug("loading pattern stopped", logger.F("error", err))
		return func() {}
	}

	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(rate)
		defer ticker.Stop()

		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
			}
			select {
			case <-quit:
				return
			default:
			}
			if err := pattern(sw); err != nil {
				log.Debug("loading pattern stopped", logger.F("error", err))
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			<-done
		})
	}
}

// pipes tracks every descriptor opened for a launch so all of them are
// released on every exit path, including a failed start.
type pipes struct {
	readers []*os.File
	writers []*os.File
}

func (p *pipes) open() (r, w *os.File, err error) {
	r, w, err = os.Pipe()
	if err != nil {
		return nil, nil, err
	}
	p.readers = append(p.readers, r)
	p.writers = append(p.writers, w)
	return r, w, nil
}

func (p *pipes) closeWriters() {
	for _, w := range p.writers {
		_ = w.Close()
	}
	p.writers = nil
}

// closeReaders unblocks drains still reading; they see os.ErrClosed
func (p *pipes) closeReaders() {
	for _, r := range p.readers {
		_ = r.Close()
	}
	p.readers = nil
}

func (p *pipes) closeAll() {
	p.closeWriters()
	p.closeReaders()
}
