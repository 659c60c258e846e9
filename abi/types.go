package abi

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Entry kinds found in a Solidity ABI.
const (
	KindFunction    = "function"
	KindConstructor = "constructor"
	KindEvent       = "event"
	KindError       = "error"
	KindFallback    = "fallback"
	KindReceive     = "receive"
)

// Param is a single input or output of an ABI entry.
// Type is kept verbatim, including array and tuple notation.
type Param struct {
	Name         string  `json:"name,omitempty"`
	Type         string  `json:"type"`
	InternalType string  `json:"internalType,omitempty"`
	Components   []Param `json:"components,omitempty"`
}

// Entry is one element of a contract's ABI array.
type Entry struct {
	Type            string  `json:"type"`
	Name            string  `json:"name,omitempty"`
	Inputs          []Param `json:"inputs,omitempty"`
	Outputs         []Param `json:"outputs,omitempty"`
	StateMutability string  `json:"stateMutability,omitempty"`
}

// IsFunction reports whether the entry participates in signature resolution.
func (e Entry) IsFunction() bool {
	return e.Type == KindFunction
}

// Function is an indexed, callable ABI function.
type Function struct {
	Contract        string
	Name            string
	Inputs          []Param
	Outputs         []Param
	StateMutability string
}

func newFunction(contract string, e Entry) *Function {
	return &Function{
		Contract:        contract,
		Name:            e.Name,
		Inputs:          e.Inputs,
		Outputs:         e.Outputs,
		StateMutability: e.StateMutability,
	}
}

// Signature returns the canonical signature, e.g. "transfer(address,uint256)".
func (f *Function) Signature() string {
	return Signature(f.Name, f.InputTypes())
}

// InputTypes returns the input type strings in declaration order.
func (f *Function) InputTypes() []string {
	return paramTypes(f.Inputs)
}

// OutputTypes returns the output type strings in declaration order.
func (f *Function) OutputTypes() []string {
	return paramTypes(f.Outputs)
}

// Selector returns the first four bytes of the Keccak-256 hash of the signature.
func (f *Function) Selector() [4]byte {
	return Selector(f.Signature())
}

// Signature joins name and types into a canonical signature.
func Signature(name string, types []string) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	b.WriteString(strings.Join(types, ","))
	b.WriteByte(')')
	return b.String()
}

// Selector computes the 4-byte function selector of a canonical signature.
func Selector(sig string) [4]byte {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(sig))
	var sel [4]byte
	copy(sel[:], hasher.Sum(nil))
	return sel
}

// SelectorHex returns the selector of sig as 0x-prefixed hex.
func SelectorHex(sig string) string {
	sel := Selector(sig)
	return "0x" + hex.EncodeToString(sel[:])
}

func paramTypes(params []Param) []string {
	types := make([]string, len(params))
	for i, p := range params {
		types[i] = p.Type
	}
	return types
}
