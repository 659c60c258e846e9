package repl

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/contract-repl/abi"
	"github.com/wippyai/contract-repl/codec"
	"github.com/wippyai/contract-repl/errors"
)

// DefaultPrompt is printed before each input line on interactive terminals.
const DefaultPrompt = "cmd> "

var (
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// Engine is the request/response collaborator driven by the loop.
type Engine interface {
	Send(cmd codec.Command) error
	ReadLine(ctx context.Context) (string, error)
	Terminate() error
}

// State is the loop's position in its command cycle.
type State int

const (
	StateIdle State = iota
	StateAwaitingInput
	StateDispatching
	StateAwaitingResponse
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingInput:
		return "awaiting_input"
	case StateDispatching:
		return "dispatching"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateShutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// IsExitKeyword reports whether input ends the session. Matching is exact
// and case-sensitive.
func IsExitKeyword(input string) bool {
	return input == "exit" || input == "quit"
}

// Config holds the loop's operator-facing streams.
type Config struct {
	// In supplies operator input, one command per line.
	In io.Reader

	// Out receives engine responses and diagnostics.
	Out io.Writer

	// Prompt is printed before each read; empty disables it.
	Prompt string
}

// Loop dispatches operator commands to an engine.
type Loop struct {
	engine   Engine
	registry *abi.Registry
	in       io.Reader
	out      io.Writer
	prompt   string
	state    atomic.Int32
	closed   atomic.Bool
}

// New creates a loop that owns eng for its lifetime.
func New(eng Engine, registry *abi.Registry, cfg *Config) *Loop {
	l := &Loop{
		engine:   eng,
		registry: registry,
		in:       strings.NewReader(""),
		out:      io.Discard,
	}
	if cfg != nil {
		if cfg.In != nil {
			l.in = cfg.In
		}
		if cfg.Out != nil {
			l.out = cfg.Out
		}
		l.prompt = cfg.Prompt
	}
	return l
}

// State returns the current loop state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) setState(s State) {
	l.state.Store(int32(s))
}

type inputLine struct {
	err  error
	text string
}

// readInput scans operator input on its own goroutine so that a blocked
// read never prevents cancellation.
func (l *Loop) readInput(stop <-chan struct{}) <-chan inputLine {
	lines := make(chan inputLine)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(l.in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- inputLine{text: scanner.Text()}:
			case <-stop:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case lines <- inputLine{err: err}:
			case <-stop:
			}
		}
	}()
	return lines
}

// Run reads and dispatches commands until the operator exits, input ends,
// ctx is cancelled or the engine fails. The engine is terminated before Run
// returns. Graceful endings return nil.
func (l *Loop) Run(ctx context.Context) (err error) {
	stop := make(chan struct{})
	defer func() {
		close(stop)
		if terr := l.engine.Terminate(); terr != nil && err == nil {
			err = terr
		}
		l.closed.Store(true)
		l.setState(StateShutdown)
	}()

	lines := l.readInput(stop)
	for {
		l.setState(StateAwaitingInput)
		if l.prompt != "" {
			fmt.Fprint(l.out, l.prompt)
		}

		var line string
		select {
		case <-ctx.Done():
			l.shutdown("interrupted")
			return nil
		case in, ok := <-lines:
			if !ok {
				l.shutdown("end of input")
				return nil
			}
			if in.err != nil {
				l.shutdown("input error")
				return errors.Wrap(errors.PhaseUsage, errors.KindIO, in.err, "read operator input")
			}
			line = in.text
		}

		exit, err := l.Execute(ctx, line)
		switch {
		case err == nil:
		case errors.IsRecoverable(err):
			fmt.Fprintln(l.out, errorStyle.Render(recoverableMessage(err)))
			continue
		case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
			l.shutdown("interrupted")
			return nil
		default:
			Logger().Error("session failed", zap.Error(err))
			return err
		}
		if exit {
			Logger().Info("session ended", zap.String("reason", "exit command"))
			return nil
		}
	}
}

func recoverableMessage(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Detail != "" {
		return e.Detail
	}
	return err.Error()
}

// shutdown sends a best-effort exit command on graceful endings.
func (l *Loop) shutdown(reason string) {
	if err := l.engine.Send(codec.Exit{}); err != nil {
		Logger().Debug("exit command not delivered", zap.Error(err))
	}
	Logger().Info("session ended", zap.String("reason", reason))
}

// Close ends a session driven through Call rather than Run: it sends a
// best-effort exit command and terminates the engine. It may be called
// while a Call is waiting for its response; the pending Call then fails.
func (l *Loop) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	l.shutdown("closed")
	l.setState(StateShutdown)
	return l.engine.Terminate()
}

// Execute handles one input line. It reports exit=true when the line was
// an exit keyword and the session should end.
func (l *Loop) Execute(ctx context.Context, line string) (exit bool, err error) {
	l.setState(StateDispatching)
	defer l.setState(StateIdle)

	input := strings.TrimSpace(line)
	switch {
	case input == "":
		return false, nil
	case IsExitKeyword(input):
		if err := l.engine.Send(codec.Exit{}); err != nil {
			Logger().Debug("exit command not delivered", zap.Error(err))
		}
		return true, nil
	case strings.HasPrefix(input, ":"):
		return false, l.meta(input)
	}

	tokens := strings.Fields(input)
	resp, err := l.Call(ctx, tokens[0], tokens[1:])
	if err != nil {
		return false, err
	}
	fmt.Fprintln(l.out, resp)
	return false, nil
}

// Call resolves token against the registry, sends one call command and
// waits for its response line. Nothing is sent when resolution fails.
func (l *Loop) Call(ctx context.Context, token string, args []string) (string, error) {
	sig, types, err := l.registry.Resolve(token)
	if err != nil {
		return "", err
	}
	call, err := codec.NewCall(sig, args, types)
	if err != nil {
		return "", err
	}

	if err := l.engine.Send(call); err != nil {
		return "", err
	}

	l.setState(StateAwaitingResponse)
	resp, err := l.engine.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	Logger().Debug("call completed", zap.String("signature", sig), zap.Int("args", len(args)))
	return resp, nil
}

func (l *Loop) meta(input string) error {
	switch strings.Fields(input)[0] {
	case ":list", ":functions":
		l.printFunctions()
	case ":help":
		l.printHelp()
	default:
		return errors.New(errors.PhaseSignature, errors.KindUnknownSignature).
			Value(input).
			Detail("unknown command %s, try :help", input).
			Build()
	}
	return nil
}

func (l *Loop) printFunctions() {
	funcs := l.registry.Functions()
	if len(funcs) == 0 {
		fmt.Fprintln(l.out, helpStyle.Render("no callable functions"))
		return
	}
	for _, fn := range funcs {
		sig := fn.Signature()
		line := "  " + funcStyle.Render(sig) + "  " + abi.SelectorHex(sig)
		if fn.StateMutability != "" {
			line += "  " + fn.StateMutability
		}
		if outs := fn.OutputTypes(); len(outs) > 0 {
			line += " -> (" + strings.Join(outs, ",") + ")"
		}
		fmt.Fprintln(l.out, line)
	}
}

func (l *Loop) printHelp() {
	fmt.Fprintln(l.out, helpStyle.Render(strings.Join([]string{
		"<signature> [args...]  call a function, e.g. setNumber(uint256) 42",
		":list                  show callable functions",
		":help                  show this help",
		"exit | quit            end the session",
	}, "\n")))
}
