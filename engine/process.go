package engine

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/contract-repl/codec"
	"github.com/wippyai/contract-repl/errors"
)

// DefaultExitGrace is how long Terminate waits for the engine to exit after
// its stdin is closed before killing it.
const DefaultExitGrace = 500 * time.Millisecond

// State is the lifecycle state of a Process.
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Config holds configuration for starting an engine.
type Config struct {
	// Path is the engine executable. Required.
	Path string

	// Env replaces the subprocess environment when non-nil.
	Env []string

	// Stderr receives the engine's diagnostic output. nil discards it.
	Stderr io.Writer

	// ResponseTimeout bounds each ReadLine. 0 waits indefinitely.
	ResponseTimeout time.Duration

	// ExitGrace is the time allowed for a voluntary exit during Terminate.
	// 0 means DefaultExitGrace; a negative value kills immediately.
	ExitGrace time.Duration
}

type lineResult struct {
	err  error
	line string
}

// Process is a running engine subprocess. It is owned by a single
// goroutine; only Terminate may be called concurrently.
type Process struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *io.PipeReader
	w       *bufio.Writer
	lines   chan lineResult
	done    chan struct{}
	exited  chan struct{}
	waitErr error
	termErr error
	cfg     Config
	once    sync.Once
	state   atomic.Int32
	sent    atomic.Int64
}

// Start spawns the engine with bytecode as its sole argument. The engine is
// executed directly from an argument vector, never through a shell.
func Start(ctx context.Context, bytecode string, cfg *Config) (*Process, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, errors.InvalidInput(errors.PhaseProcess, "engine path is required")
	}
	if bytecode == "" {
		return nil, errors.InvalidInput(errors.PhaseProcess, "bytecode is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := &Process{
		lines:  make(chan lineResult, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		cfg:    *cfg,
	}
	p.state.Store(int32(StateStarting))

	// The process lifetime is bounded by Terminate, not by ctx.
	cmd := exec.Command(cfg.Path, bytecode)
	cmd.Env = cfg.Env
	cmd.WaitDelay = time.Second
	if cfg.Stderr != nil {
		cmd.Stderr = cfg.Stderr
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Process(errors.KindSpawn, "open stdin pipe", err)
	}
	pr, pw := io.Pipe()
	cmd.Stdout = pw

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		_ = pr.Close()
		return nil, errors.New(errors.PhaseProcess, errors.KindSpawn).
			Path(cfg.Path).
			Detail("start engine").
			Cause(err).
			Build()
	}

	p.cmd = cmd
	p.stdin = stdin
	p.stdout = pr
	p.w = bufio.NewWriter(stdin)
	p.state.Store(int32(StateRunning))

	go p.wait(pw)
	go p.readLines(pr)

	Logger().Debug("engine started",
		zap.String("path", cfg.Path),
		zap.Int("pid", cmd.Process.Pid),
		zap.Int("bytecode_len", len(bytecode)))
	return p, nil
}

func (p *Process) wait(pw *io.PipeWriter) {
	p.waitErr = p.cmd.Wait()
	_ = pw.Close()
	close(p.exited)
}

func (p *Process) readLines(r io.Reader) {
	defer close(p.lines)

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" && (err == nil || err == io.EOF) {
			if !p.deliver(lineResult{line: strings.TrimRight(line, "\r\n")}) {
				return
			}
		}
		if err != nil {
			p.deliver(lineResult{err: err})
			return
		}
	}
}

// deliver hands a result to ReadLine. After Terminate the remaining output
// is drained so the subprocess never blocks on a full pipe.
func (p *Process) deliver(res lineResult) bool {
	select {
	case p.lines <- res:
		return true
	case <-p.done:
		_, _ = io.Copy(io.Discard, p.stdout)
		return false
	}
}

// State returns the current lifecycle state.
func (p *Process) State() State {
	return State(p.state.Load())
}

// Pid returns the operating system process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Sent returns the number of commands written to the engine.
func (p *Process) Sent() int64 {
	return p.sent.Load()
}

// Send serializes cmd and writes it as one newline-terminated line, then
// flushes the pipe.
func (p *Process) Send(cmd codec.Command) error {
	line, err := codec.Encode(cmd)
	if err != nil {
		return err
	}
	return p.writeLine(line)
}

func (p *Process) writeLine(line []byte) error {
	if p.State() != StateRunning {
		return errors.Process(errors.KindNotRunning, "engine is "+p.State().String(), nil)
	}

	if _, err := p.w.Write(line); err != nil {
		return p.writeErr(err)
	}
	if err := p.w.WriteByte('\n'); err != nil {
		return p.writeErr(err)
	}
	if err := p.w.Flush(); err != nil {
		return p.writeErr(err)
	}
	p.sent.Add(1)
	return nil
}

func (p *Process) writeErr(err error) error {
	select {
	case <-p.exited:
		return errors.Process(errors.KindExited, "engine exited", p.exitCause(err))
	default:
		return errors.Process(errors.KindIO, "write command", err)
	}
}

// ReadLine blocks until the engine writes one line, the response timeout
// expires or ctx is done. The trailing newline is removed.
func (p *Process) ReadLine(ctx context.Context) (string, error) {
	if p.State() != StateRunning {
		return "", errors.Process(errors.KindNotRunning, "engine is "+p.State().String(), nil)
	}

	var timeout <-chan time.Time
	if p.cfg.ResponseTimeout > 0 {
		timer := time.NewTimer(p.cfg.ResponseTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case res, ok := <-p.lines:
		if !ok {
			return "", errors.Process(errors.KindExited, "engine closed its output", p.exitCause(nil))
		}
		if res.err == io.EOF {
			return "", errors.Process(errors.KindExited, "engine closed its output", p.exitCause(nil))
		}
		if res.err != nil {
			return "", errors.Process(errors.KindIO, "read response", res.err)
		}
		return res.line, nil
	case <-timeout:
		return "", errors.New(errors.PhaseProcess, errors.KindTimeout).
			Value(p.cfg.ResponseTimeout).
			Detail("no response from engine within %s", p.cfg.ResponseTimeout).
			Build()
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// exitCause reports why the engine went away, waiting briefly for the exit
// status to become available.
func (p *Process) exitCause(fallback error) error {
	select {
	case <-p.exited:
	case <-time.After(100 * time.Millisecond):
		return fallback
	}
	if p.waitErr != nil {
		return p.waitErr
	}
	if fallback != nil {
		return fallback
	}
	return stderrors.New("exit status 0")
}

// Terminate stops the engine. It is safe to call more than once; only the
// first call has an effect and later calls return its result.
func (p *Process) Terminate() error {
	p.once.Do(func() {
		p.state.Store(int32(StateTerminated))
		close(p.done)
		_ = p.stdin.Close()

		grace := p.cfg.ExitGrace
		if grace == 0 {
			grace = DefaultExitGrace
		}

		killed := false
		if grace > 0 {
			timer := time.NewTimer(grace)
			select {
			case <-p.exited:
			case <-timer.C:
			}
			timer.Stop()
		}

		select {
		case <-p.exited:
		default:
			if err := p.cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
				p.termErr = errors.Process(errors.KindIO, "kill engine", err)
			}
			killed = true
		}

		_ = p.stdout.Close()
		<-p.exited

		Logger().Debug("engine terminated",
			zap.Int("pid", p.cmd.Process.Pid),
			zap.Bool("killed", killed),
			zap.Int64("commands", p.sent.Load()))
	})
	return p.termErr
}
