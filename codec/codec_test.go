package codec

import (
	"errors"
	"reflect"
	"testing"

	rerrors "github.com/wippyai/contract-repl/errors"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{
			name: "call",
			cmd:  Call{Signature: "setNumber(uint256)", Args: []string{"42"}, Types: []string{"uint256"}},
			want: `{"type":"call","signature":"setNumber(uint256)","args":["42"],"types":["uint256"]}`,
		},
		{
			name: "call without arguments",
			cmd:  Call{Signature: "increment()"},
			want: `{"type":"call","signature":"increment()","args":[],"types":[]}`,
		},
		{
			name: "call pointer",
			cmd:  &Call{Signature: "transfer(address,uint256)", Args: []string{"0xabc", "1"}, Types: []string{"address", "uint256"}},
			want: `{"type":"call","signature":"transfer(address,uint256)","args":["0xabc","1"],"types":["address","uint256"]}`,
		},
		{
			name: "exit",
			cmd:  Exit{},
			want: `{"type":"exit"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.cmd)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Encode() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEncode_EscapesArguments(t *testing.T) {
	got, err := Encode(Call{Signature: "greet(string)", Args: []string{"a\"b\nc"}, Types: []string{"string"}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, b := range got {
		if b == '\n' {
			t.Fatalf("encoded command spans lines: %q", got)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	orig := Call{Signature: "setNumber(uint256)", Args: []string{"42"}, Types: []string{"uint256"}}

	line, err := Encode(orig)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(line)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, orig) {
		t.Errorf("round trip = %#v, want %#v", got, orig)
	}

	line, _ = Encode(Exit{})
	if got, err := Decode(line); err != nil || got.Type() != TypeExit {
		t.Errorf("exit round trip = %v, %v", got, err)
	}
}

func TestDecode_Invalid(t *testing.T) {
	for _, line := range []string{"", "not json", `{"type":"deploy"}`} {
		if _, err := Decode([]byte(line)); err == nil {
			t.Errorf("Decode(%q) should fail", line)
		}
	}
}

func TestNewCall(t *testing.T) {
	call, err := NewCall("increment()", nil, nil)
	if err != nil {
		t.Fatalf("NewCall: %v", err)
	}
	if call.Args == nil || call.Types == nil {
		t.Error("NewCall should normalize nil slices")
	}

	_, err = NewCall("setNumber(uint256)", []string{"1", "2"}, []string{"uint256"})
	if !errors.Is(err, &rerrors.Error{Phase: rerrors.PhaseSignature, Kind: rerrors.KindArity}) {
		t.Errorf("expected arity error, got %v", err)
	}
	if !rerrors.IsRecoverable(err) {
		t.Error("arity error should be recoverable")
	}
}
