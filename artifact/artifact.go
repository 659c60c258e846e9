// Package artifact selects the single compiled contract whose bytecode is
// handed to the engine.
package artifact

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wippyai/contract-repl/errors"
)

const binaryExt = ".bin"

// Artifact is one compiled contract.
type Artifact struct {
	Name     string
	Path     string
	Bytecode string
}

// Name returns the contract name of a bytecode file path.
func Name(path string) string {
	return strings.TrimSuffix(filepath.Base(path), binaryExt)
}

// Choose picks a contract among candidates:
//
//   - an explicit name must be one of the candidates
//   - without a name, a single candidate is selected
//   - without a name, several candidates are ambiguous
//   - no candidates is always an error
func Choose(candidates []string, name string) (string, error) {
	if name != "" {
		for _, c := range candidates {
			if c == name {
				return c, nil
			}
		}
		return "", errors.New(errors.PhaseArtifact, errors.KindNotFound).
			Path(name + binaryExt).
			Value(name).
			Detail("contract %q was not produced by the compiler", name).
			Build()
	}

	switch len(candidates) {
	case 0:
		return "", errors.New(errors.PhaseArtifact, errors.KindNotFound).
			Detail("compiler produced no contract bytecode").
			Build()
	case 1:
		return candidates[0], nil
	default:
		return "", errors.NewAmbiguousArtifactError(candidates)
	}
}

// Select chooses among bytecode files and reads the chosen one.
func Select(binaries []string, name string) (*Artifact, error) {
	byName := make(map[string]string, len(binaries))
	candidates := make([]string, 0, len(binaries))
	for _, b := range binaries {
		n := Name(b)
		byName[n] = b
		candidates = append(candidates, n)
	}
	sort.Strings(candidates)

	chosen, err := Choose(candidates, name)
	if err != nil {
		return nil, err
	}
	return Read(byName[chosen])
}

// Read loads a bytecode file, trimming surrounding whitespace.
func Read(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.PhaseArtifact, errors.KindNotFound).
			Path(path).
			Detail("read bytecode").
			Cause(err).
			Build()
	}

	a := &Artifact{
		Name:     Name(path),
		Path:     path,
		Bytecode: strings.TrimSpace(string(data)),
	}
	if a.Bytecode == "" {
		return nil, errors.New(errors.PhaseArtifact, errors.KindInvalidData).
			Path(path).
			Value(a.Name).
			Detail("contract %s has no bytecode (abstract contract or interface?)", a.Name).
			Build()
	}
	return a, nil
}
