// Package compiler invokes the external Solidity compiler and collects the
// bytecode files and combined ABI document it emits.
package compiler

import (
	"bytes"
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/contract-repl/errors"
)

// CombinedJSONFile is the name of the combined ABI document written by solc.
const CombinedJSONFile = "combined.json"

// BinaryExt is the extension of per-contract bytecode files.
const BinaryExt = ".bin"

// Compiler describes how to run solc.
type Compiler struct {
	// Path is the compiler executable; "solc" when empty.
	Path string

	// Optimize enables the optimizer.
	Optimize bool

	// ExtraArgs are passed before the source path.
	ExtraArgs []string
}

// Output lists what a successful compilation produced.
type Output struct {
	Dir          string
	CombinedJSON string
	Binaries     []string
}

// Args returns the argument vector for compiling source into outDir.
func (c *Compiler) Args(source, outDir string) []string {
	args := []string{"--bin"}
	if c.Optimize {
		args = append(args, "--optimize")
	}
	args = append(args, "--overwrite", "--combined-json", "abi", "-o", outDir)
	args = append(args, c.ExtraArgs...)
	return append(args, source)
}

func (c *Compiler) path() string {
	if c.Path == "" {
		return "solc"
	}
	return c.Path
}

// Compile resets outDir, runs the compiler and verifies that the combined
// ABI document exists.
func (c *Compiler) Compile(ctx context.Context, source, outDir string) (*Output, error) {
	if _, err := os.Stat(source); err != nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNotFound).
			Path(source).
			Detail("source file not found").
			Cause(err).
			Build()
	}

	if err := checkOutDir(source, outDir); err != nil {
		return nil, err
	}
	if err := os.RemoveAll(outDir); err != nil {
		return nil, errors.Wrap(errors.PhaseCompile, errors.KindIO, err, "clear "+outDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.PhaseCompile, errors.KindIO, err, "create "+outDir)
	}

	args := c.Args(source, outDir)
	cmd := exec.CommandContext(ctx, c.path(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	Logger().Debug("running compiler",
		zap.String("path", c.path()),
		zap.Strings("args", args))

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		switch {
		case stderrors.As(err, &exitErr):
			return nil, errors.Compile(exitErr.ExitCode(), stderr.String(), err)
		case stderrors.Is(err, exec.ErrNotFound), stderrors.Is(err, fs.ErrNotExist):
			return nil, errors.New(errors.PhaseCompile, errors.KindNotFound).
				Path(c.path()).
				Detail("compiler executable not found").
				Cause(err).
				Build()
		default:
			return nil, errors.Wrap(errors.PhaseCompile, errors.KindToolFailed, err, "run compiler")
		}
	}

	return Collect(outDir)
}

// checkOutDir rejects an output directory whose reset would remove the
// source or the working directory.
func checkOutDir(source, outDir string) error {
	if strings.TrimSpace(outDir) == "" {
		return errors.InvalidInput(errors.PhaseCompile, "output directory is empty")
	}
	out, err := canonicalPath(outDir)
	if err != nil {
		return errors.Wrap(errors.PhaseCompile, errors.KindInvalidInput, err, "resolve "+outDir)
	}

	protected := [][2]string{{"source directory", filepath.Dir(source)}}
	if wd, err := os.Getwd(); err == nil {
		protected = append(protected, [2]string{"working directory", wd})
	}
	for _, p := range protected {
		dir, err := canonicalPath(p[1])
		if err != nil {
			continue
		}
		if isWithin(out, dir) {
			return errors.New(errors.PhaseCompile, errors.KindInvalidInput).
				Path(outDir).
				Value(dir).
				Detail("output directory must not contain the %s %s", p[0], dir).
				Build()
		}
	}
	return nil
}

// canonicalPath returns an absolute path with symlinks resolved when the
// path exists.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// isWithin reports whether path equals root or lies below it.
func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Collect lists the artifacts found in dir. The combined ABI document is
// required; bytecode files may be absent (abstract contracts only).
func Collect(dir string) (*Output, error) {
	combined := filepath.Join(dir, CombinedJSONFile)
	if _, err := os.Stat(combined); err != nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindMissingOutput).
			Path(dir, CombinedJSONFile).
			Detail("compiler produced no combined ABI JSON").
			Cause(err).
			Build()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseCompile, errors.KindIO, err, "list "+dir)
	}

	out := &Output{Dir: dir, CombinedJSON: combined}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), BinaryExt) {
			continue
		}
		out.Binaries = append(out.Binaries, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out.Binaries)

	Logger().Debug("compiler output",
		zap.String("dir", dir),
		zap.Int("binaries", len(out.Binaries)))
	return out, nil
}
