package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseUsage     Phase = "usage"     // CLI input
	PhaseConfig    Phase = "config"    // config file loading
	PhaseCompile   Phase = "compile"   // external compiler
	PhaseArtifact  Phase = "artifact"  // bytecode selection
	PhaseABI       Phase = "abi"       // ABI parsing and indexing
	PhaseSignature Phase = "signature" // per-command resolution
	PhaseCodec     Phase = "codec"     // command serialization
	PhaseProcess   Phase = "process"   // engine subprocess
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidInput     Kind = "invalid_input"
	KindInvalidData      Kind = "invalid_data"
	KindNotFound         Kind = "not_found"
	KindAmbiguous        Kind = "ambiguous"
	KindToolFailed       Kind = "tool_failed"
	KindMissingOutput    Kind = "missing_output"
	KindUnknownSignature Kind = "unknown_signature"
	KindArity            Kind = "arity"
	KindDuplicate        Kind = "duplicate"
	KindSpawn            Kind = "spawn"
	KindExited           Kind = "exited"
	KindTimeout          Kind = "timeout"
	KindIO               Kind = "io"
	KindNotRunning       Kind = "not_running"
)

// Error is the structured error type used throughout contract-repl
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "/"))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the file or field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Usage creates a CLI usage error
func Usage(detail string, args ...any) *Error {
	return New(PhaseUsage, KindInvalidInput).Detail(detail, args...).Build()
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
		Value:  name,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Compile creates a compiler failure carrying the tool's exit status
func Compile(status int, stderr string, cause error) *Error {
	detail := fmt.Sprintf("compiler exited with status %d", status)
	if s := strings.TrimSpace(stderr); s != "" {
		detail += ":\n" + s
	}
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindToolFailed,
		Detail: detail,
		Value:  status,
		Cause:  cause,
	}
}

// UnknownSignature creates the recoverable error for a signature missing from the index
func UnknownSignature(sig string) *Error {
	return &Error{
		Phase:  PhaseSignature,
		Kind:   KindUnknownSignature,
		Detail: "function signature is incorrect",
		Value:  sig,
	}
}

// Arity creates the recoverable error for an argument count mismatch
func Arity(sig string, want, got int) *Error {
	return &Error{
		Phase:  PhaseSignature,
		Kind:   KindArity,
		Detail: fmt.Sprintf("%s expects %d argument(s), got %d", sig, want, got),
		Value:  got,
	}
}

// Process creates a fatal engine subprocess error
func Process(kind Kind, detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseProcess,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// AmbiguousArtifactError is returned when more than one artifact could be
// selected and no contract name was given.
type AmbiguousArtifactError struct {
	Candidates []string
}

// NewAmbiguousArtifactError creates an error listing every candidate name
func NewAmbiguousArtifactError(candidates []string) *AmbiguousArtifactError {
	names := append([]string(nil), candidates...)
	sort.Strings(names)
	return &AmbiguousArtifactError{Candidates: names}
}

func (e *AmbiguousArtifactError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: found %d contracts:\n", PhaseArtifact, KindAmbiguous, len(e.Candidates))
	for _, c := range e.Candidates {
		b.WriteString("  - ")
		b.WriteString(c)
		b.WriteByte('\n')
	}
	b.WriteString("select one with --contract <name>")
	return b.String()
}

// Is reports whether target matches this error type
func (e *AmbiguousArtifactError) Is(target error) bool {
	switch t := target.(type) {
	case *AmbiguousArtifactError:
		return true
	case *Error:
		return t.Phase == PhaseArtifact && t.Kind == KindAmbiguous
	}
	return false
}

// ExitCode maps err to a process exit status. Compiler failures propagate
// the compiler's own status; every other failure exits with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) && e.Phase == PhaseCompile && e.Kind == KindToolFailed {
		if status, ok := e.Value.(int); ok && status > 0 {
			return status
		}
	}
	return 1
}

// IsRecoverable reports whether err is scoped to a single REPL command.
func IsRecoverable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Phase == PhaseSignature
}
