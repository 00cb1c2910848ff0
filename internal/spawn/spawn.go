// Package spawn owns the lifecycle of one external agent process per query:
// launch, incremental stdout framing, stderr capture, and cooperative
// termination of the whole process group.
package spawn

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Default sizing for stdout framing and stderr diagnostics. Agent CLIs emit
// one JSON record per line; records can be large when a tool result is
// inlined.
const (
	maxRecordSize  = 4 * 1024 * 1024
	stderrTailSize = 50
)

// Config describes one process launch. There is no implicit timeout: callers
// that want one attach a deadline to the context. GraceTimeout only bounds
// the window between the termination signal and the forced kill.
type Config struct {
	// Command is the executable name or path.
	Command string

	// Args are the command arguments.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env contains additional environment variables, merged over the
	// process environment.
	Env map[string]string

	// Stdin, when non-nil, is written to the process and then closed.
	// Nil attaches /dev/null so interactive CLIs don't hang on a read.
	Stdin []byte

	// GraceTimeout is how long to wait after the termination signal before
	// force-killing. Zero means kill immediately.
	GraceTimeout time.Duration
}

// Process is one running external process. It is exclusively owned by its
// creator for the lifetime of one query and must be released with Close on
// every exit path.
type Process struct {
	cmd   *exec.Cmd
	cfg   Config
	pid   int
	start time.Time

	records     chan []byte
	released    chan struct{}
	readers     sync.WaitGroup
	readersDone chan struct{}

	termOnce sync.Once
	waitOnce sync.Once
	waitErr  error

	mu          sync.Mutex
	stderrLines []string
}

// Start launches the process with stdout/stderr captured and begins framing
// stdout into records. A spawn failure for a missing binary satisfies
// errors.Is(err, exec.ErrNotFound).
func Start(ctx context.Context, cfg Config) (*Process, error) {
	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Dir = cfg.Dir
	cmd.Env = mergedEnv(cfg.Env)
	setProcAttr(cmd)

	if cfg.Stdin != nil {
		cmd.Stdin = strings.NewReader(string(cfg.Stdin))
	} else if devNull, err := os.Open(os.DevNull); err == nil {
		cmd.Stdin = devNull
		defer devNull.Close()
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		// A bare name missing from PATH already carries exec.ErrNotFound
		// from the lookup; a path-qualified command that doesn't exist
		// fails Start with a plain ENOENT. Fold the latter into the same
		// not-found error so callers classify both as a missing binary.
		if errors.Is(err, fs.ErrNotExist) && !errors.Is(err, exec.ErrNotFound) {
			err = fmt.Errorf("%v: %w", err, exec.ErrNotFound)
		}
		return nil, fmt.Errorf("starting %s: %w", cfg.Command, err)
	}

	p := &Process{
		cmd:         cmd,
		cfg:         cfg,
		pid:         cmd.Process.Pid,
		start:       time.Now(),
		records:     make(chan []byte, 16),
		released:    make(chan struct{}),
		readersDone: make(chan struct{}),
	}

	log.Debug().
		Str("component", "spawn").
		Str("command", cfg.Command).
		Int("pid", p.pid).
		Msg("process started")

	p.readers.Add(2)
	go p.readStdout(stdout)
	go p.readStderr(stderr)
	go func() {
		p.readers.Wait()
		close(p.readersDone)
	}()

	// Cancellation watchdog: terminate the process group when the context
	// ends before the process is released.
	go func() {
		select {
		case <-ctx.Done():
			p.terminate()
		case <-p.released:
		}
	}()

	return p, nil
}

// Records returns the channel of stdout records. It is closed when stdout
// closes or the process is released.
func (p *Process) Records() <-chan []byte {
	return p.records
}

// Stderr returns the captured stderr tail for diagnostics.
func (p *Process) Stderr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.Join(p.stderrLines, "\n")
}

// Wait blocks until the process exits and both output pipes are drained,
// then returns the exit error. Safe to call multiple times.
func (p *Process) Wait() error {
	p.waitOnce.Do(func() {
		p.readers.Wait()
		err := p.cmd.Wait()
		if err != nil {
			p.waitErr = fmt.Errorf("%s exited: %w", p.cfg.Command, err)
		}
		log.Debug().
			Str("component", "spawn").
			Int("pid", p.pid).
			Int("exit_code", p.cmd.ProcessState.ExitCode()).
			Dur("duration", time.Since(p.start)).
			Msg("process exited")
	})
	return p.waitErr
}

// ExitCode returns the process exit code, or -1 before exit.
func (p *Process) ExitCode() int {
	if p.cmd.ProcessState == nil {
		return -1
	}
	return p.cmd.ProcessState.ExitCode()
}

// Close releases the process: terminates it if still running, reaps it, and
// unblocks the record reader. Idempotent; callers defer it on every path so
// abandoned streams never leak a process or a file descriptor.
func (p *Process) Close() error {
	p.terminate()
	return p.Wait()
}

// terminate signals the process group, waits GraceTimeout for a voluntary
// exit (observed as the output pipes closing), then force-kills. Safe to
// call concurrently and on an already-exited process.
func (p *Process) terminate() {
	p.termOnce.Do(func() {
		close(p.released)

		select {
		case <-p.readersDone:
			// Pipes already closed; the process has exited on its own.
			return
		default:
		}

		signalGroup(p.cmd)
		if p.cfg.GraceTimeout > 0 {
			select {
			case <-p.readersDone:
				return
			case <-time.After(p.cfg.GraceTimeout):
			}
		}
		killGroup(p.cmd)
	})
}

func (p *Process) readStdout(r io.Reader) {
	defer p.readers.Done()
	defer close(p.records)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		select {
		case p.records <- line:
		case <-p.released:
			// Consumer abandoned the stream; drain the pipe so the
			// process can exit and be reaped.
			for scanner.Scan() {
			}
			return
		}
	}
}

func (p *Process) readStderr(r io.Reader) {
	defer p.readers.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	for scanner.Scan() {
		p.mu.Lock()
		p.stderrLines = append(p.stderrLines, scanner.Text())
		if len(p.stderrLines) > stderrTailSize {
			p.stderrLines = p.stderrLines[1:]
		}
		p.mu.Unlock()
	}
}

// mergedEnv merges overrides on top of the process environment.
func mergedEnv(overrides map[string]string) []string {
	env := os.Environ()
	for k, v := range overrides {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}
