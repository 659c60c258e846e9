package abi

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/contract-repl/errors"
)

// SignatureIndex maps a canonical signature to its ordered input types.
// It is built once and read-only afterwards.
type SignatureIndex map[string][]string

// Registry holds the signature index together with the functions it was
// derived from, in declaration order.
type Registry struct {
	index  SignatureIndex
	funcs  []*Function
	bySig  map[string]*Function
	byName map[string][]*Function
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		index:  make(SignatureIndex),
		bySig:  make(map[string]*Function),
		byName: make(map[string][]*Function),
	}
}

// BuildIndex indexes the function entries of a single ABI array.
func BuildIndex(entries []Entry) (*Registry, error) {
	reg := NewRegistry()
	if err := reg.addContract("", entries); err != nil {
		return nil, err
	}
	return reg, nil
}

// addContract indexes one contract's entries. A signature repeated within
// the same contract is rejected. A signature already contributed by another
// contract keeps its first definition; the type list is identical because
// it is part of the key.
func (r *Registry) addContract(contract string, entries []Entry) error {
	seen := make(map[string]struct{})
	for _, e := range entries {
		if !e.IsFunction() {
			continue
		}
		if e.Name == "" {
			return errors.InvalidData(errors.PhaseABI, []string{contract}, "function entry without a name")
		}

		fn := newFunction(contract, e)
		sig := fn.Signature()

		if _, dup := seen[sig]; dup {
			return errors.New(errors.PhaseABI, errors.KindDuplicate).
				Path(contract).
				Value(sig).
				Detail("signature %s declared more than once", sig).
				Build()
		}
		seen[sig] = struct{}{}

		if prev, ok := r.bySig[sig]; ok {
			Logger().Warn("signature exported by several contracts, keeping first",
				zap.String("signature", sig),
				zap.String("kept", prev.Contract),
				zap.String("skipped", contract))
			continue
		}

		r.index[sig] = fn.InputTypes()
		r.bySig[sig] = fn
		r.funcs = append(r.funcs, fn)
		r.byName[fn.Name] = append(r.byName[fn.Name], fn)
	}

	Logger().Debug("indexed contract ABI",
		zap.String("contract", contract),
		zap.Int("functions", len(seen)))
	return nil
}

// Lookup returns the input types for sig.
func (r *Registry) Lookup(sig string) ([]string, bool) {
	types, ok := r.index[sig]
	return types, ok
}

// Resolve maps operator input to an indexed signature. A canonical
// signature matches exactly; a bare function name matches when it is not
// overloaded.
func (r *Registry) Resolve(token string) (string, []string, error) {
	if types, ok := r.index[token]; ok {
		return token, types, nil
	}
	if strings.ContainsRune(token, '(') {
		return "", nil, errors.UnknownSignature(token)
	}

	switch fns := r.byName[token]; len(fns) {
	case 0:
		return "", nil, errors.UnknownSignature(token)
	case 1:
		sig := fns[0].Signature()
		return sig, r.index[sig], nil
	default:
		sigs := make([]string, len(fns))
		for i, fn := range fns {
			sigs[i] = fn.Signature()
		}
		return "", nil, errors.New(errors.PhaseSignature, errors.KindAmbiguous).
			Value(token).
			Detail("%s is overloaded, use one of: %s", token, strings.Join(sigs, ", ")).
			Build()
	}
}

// Function returns the indexed function for sig, or nil.
func (r *Registry) Function(sig string) *Function {
	return r.bySig[sig]
}

// Functions returns every indexed function in declaration order.
func (r *Registry) Functions() []*Function {
	return r.funcs
}

// Index returns the signature index.
func (r *Registry) Index() SignatureIndex {
	return r.index
}

// Len returns the number of indexed signatures.
func (r *Registry) Len() int {
	return len(r.index)
}
