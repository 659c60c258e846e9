// Package codec builds and serializes the line-delimited JSON commands
// understood by the execution engine.
//
// Every command is a single JSON object on one line:
//
//	{"type":"call","signature":"setNumber(uint256)","args":["42"],"types":["uint256"]}
//	{"type":"exit"}
package codec

import (
	"bytes"
	"encoding/json"

	"github.com/wippyai/contract-repl/errors"
)

// Type is the discriminator of a command.
type Type string

const (
	TypeCall Type = "call"
	TypeExit Type = "exit"
)

// Command is either a Call or an Exit.
type Command interface {
	Type() Type
	command()
}

// Call invokes a contract function. Args and Types always have equal length.
type Call struct {
	Signature string
	Args      []string
	Types     []string
}

// Exit asks the engine to stop reading commands.
type Exit struct{}

func (Call) Type() Type { return TypeCall }
func (Exit) Type() Type { return TypeExit }

func (Call) command() {}
func (Exit) command() {}

// NewCall builds a call command, rejecting a mismatch between the number of
// arguments and the number of parameter types.
func NewCall(sig string, args, types []string) (Call, error) {
	if len(args) != len(types) {
		return Call{}, errors.Arity(sig, len(types), len(args))
	}
	return Call{
		Signature: sig,
		Args:      nonNil(args),
		Types:     nonNil(types),
	}, nil
}

type callWire struct {
	Type      Type     `json:"type"`
	Signature string   `json:"signature"`
	Args      []string `json:"args"`
	Types     []string `json:"types"`
}

type exitWire struct {
	Type Type `json:"type"`
}

// Encode serializes cmd to a single JSON line without the trailing newline.
func Encode(cmd Command) ([]byte, error) {
	var v any
	switch c := cmd.(type) {
	case Call:
		v = callWire{Type: TypeCall, Signature: c.Signature, Args: nonNil(c.Args), Types: nonNil(c.Types)}
	case *Call:
		v = callWire{Type: TypeCall, Signature: c.Signature, Args: nonNil(c.Args), Types: nonNil(c.Types)}
	case Exit, *Exit:
		v = exitWire{Type: TypeExit}
	default:
		return nil, errors.InvalidInput(errors.PhaseCodec, "unknown command")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseCodec, errors.KindInvalidData, err, "encode command")
	}
	return data, nil
}

// Decode parses one command line as an engine would.
func Decode(line []byte) (Command, error) {
	line = bytes.TrimSpace(line)

	var head struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(line, &head); err != nil {
		return nil, errors.Wrap(errors.PhaseCodec, errors.KindInvalidData, err, "decode command")
	}

	switch head.Type {
	case TypeExit:
		return Exit{}, nil
	case TypeCall:
		var w callWire
		if err := json.Unmarshal(line, &w); err != nil {
			return nil, errors.Wrap(errors.PhaseCodec, errors.KindInvalidData, err, "decode call")
		}
		return Call{Signature: w.Signature, Args: nonNil(w.Args), Types: nonNil(w.Types)}, nil
	default:
		return nil, errors.New(errors.PhaseCodec, errors.KindInvalidData).
			Value(head.Type).
			Detail("unknown command type %q", head.Type).
			Build()
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
