package engine

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/contract-repl/errors"
)

// Build runs argv in dir to produce the engine executable, e.g.
// ["cargo", "build", "--release"]. An empty argv is a no-op.
func Build(ctx context.Context, argv []string, dir string) error {
	if len(argv) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	Logger().Debug("building engine", zap.Strings("argv", argv), zap.String("dir", dir))

	if err := cmd.Run(); err != nil {
		return errors.New(errors.PhaseProcess, errors.KindToolFailed).
			Path(argv[0]).
			Detail("build engine: %s", strings.TrimSpace(out.String())).
			Cause(err).
			Build()
	}
	return nil
}
