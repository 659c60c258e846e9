package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseArtifact,
				Kind:   KindNotFound,
				Path:   []string{"build", "Counter.bin"},
				Detail: "no such contract",
			},
			contains: []string{"[artifact]", "not_found", "build/Counter.bin", "no such contract"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseProcess,
				Kind:  KindExited,
			},
			contains: []string{"[process]", "exited"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseProcess,
				Kind:   KindIO,
				Detail: "write command",
				Cause:  errors.New("broken pipe"),
			},
			contains: []string{"[process]", "io", "write command", "caused by", "broken pipe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseCompile,
		Kind:  KindToolFailed,
		Cause: cause,
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause in the chain")
	}
}

func TestError_Is(t *testing.T) {
	err := UnknownSignature("frobnicate")

	if !errors.Is(err, &Error{Phase: PhaseSignature, Kind: KindUnknownSignature}) {
		t.Error("Is should match same phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseProcess, Kind: KindUnknownSignature}) {
		t.Error("Is should not match different phase")
	}
	if errors.Is(err, &Error{Phase: PhaseSignature, Kind: KindArity}) {
		t.Error("Is should not match different kind")
	}

	wrapped := fmt.Errorf("dispatch: %w", err)
	if !errors.Is(wrapped, &Error{Phase: PhaseSignature, Kind: KindUnknownSignature}) {
		t.Error("errors.Is should see through fmt wrapping")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseArtifact, KindInvalidData).
		Path("out", "Empty.bin").
		Value("Empty").
		Cause(cause).
		Detail("contract %s has no bytecode", "Empty").
		Build()

	if err.Phase != PhaseArtifact {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseArtifact)
	}
	if err.Kind != KindInvalidData {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidData)
	}
	if len(err.Path) != 2 || err.Path[1] != "Empty.bin" {
		t.Errorf("Path = %v, want [out Empty.bin]", err.Path)
	}
	if err.Value != "Empty" {
		t.Errorf("Value = %v, want Empty", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "contract Empty has no bytecode" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Usage", func(t *testing.T) {
		err := Usage("Could not locate directory: ./%s", "missing")
		if err.Phase != PhaseUsage || err.Kind != KindInvalidInput {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if err.Detail != "Could not locate directory: ./missing" {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("Compile", func(t *testing.T) {
		err := Compile(2, "  Error: ParserError  \n", nil)
		if err.Value != 2 {
			t.Errorf("Value = %v, want 2", err.Value)
		}
		if !strings.Contains(err.Detail, "Error: ParserError") {
			t.Errorf("Detail = %q, should carry stderr", err.Detail)
		}
	})

	t.Run("Arity", func(t *testing.T) {
		err := Arity("setNumber(uint256)", 1, 2)
		if err.Kind != KindArity {
			t.Errorf("Kind = %v, want %v", err.Kind, KindArity)
		}
		if !strings.Contains(err.Detail, "expects 1") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseArtifact, "contract", "Token")
		if err.Value != "Token" || !strings.Contains(err.Detail, `"Token"`) {
			t.Errorf("got %+v", err)
		}
	})
}

func TestAmbiguousArtifactError(t *testing.T) {
	err := NewAmbiguousArtifactError([]string{"Token", "Counter"})

	if err.Candidates[0] != "Counter" || err.Candidates[1] != "Token" {
		t.Errorf("candidates not sorted: %v", err.Candidates)
	}

	msg := err.Error()
	for _, s := range []string{"Counter", "Token", "--contract", "2 contracts"} {
		if !strings.Contains(msg, s) {
			t.Errorf("message %q does not contain %q", msg, s)
		}
	}

	if !errors.Is(err, &Error{Phase: PhaseArtifact, Kind: KindAmbiguous}) {
		t.Error("errors.Is should match artifact/ambiguous")
	}
	if !errors.Is(err, &AmbiguousArtifactError{}) {
		t.Error("errors.Is should match AmbiguousArtifactError")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"compile status", Compile(3, "", nil), 3},
		{"wrapped compile status", fmt.Errorf("setup: %w", Compile(7, "", nil)), 7},
		{"compiler missing", NotFound(PhaseCompile, "compiler", "solc"), 1},
		{"ambiguous", NewAmbiguousArtifactError([]string{"A", "B"}), 1},
		{"usage", Usage("missing --file"), 1},
		{"plain", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsRecoverable(t *testing.T) {
	if !IsRecoverable(UnknownSignature("x")) {
		t.Error("unknown signature should be recoverable")
	}
	if !IsRecoverable(Arity("f()", 0, 1)) {
		t.Error("arity mismatch should be recoverable")
	}
	if IsRecoverable(Process(KindExited, "engine exited", nil)) {
		t.Error("process errors are fatal")
	}
}
