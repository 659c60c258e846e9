package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/contract-repl/abi"
	"github.com/wippyai/contract-repl/artifact"
	"github.com/wippyai/contract-repl/compiler"
	"github.com/wippyai/contract-repl/config"
	"github.com/wippyai/contract-repl/engine"
	"github.com/wippyai/contract-repl/errors"
	"github.com/wippyai/contract-repl/repl"
)

// session is everything resolved before the engine starts.
type session struct {
	cfg      *config.Config
	source   string
	artifact *artifact.Artifact
	registry *abi.Registry
}

func run(cmd *cobra.Command, opts *options) error {
	if opts.file == "" {
		return errors.Usage("Please provide a file to use (--file)")
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	if info, err := os.Stat(cfg.TargetFolder); err != nil || !info.IsDir() {
		return errors.Usage("Could not locate directory: ./%s", cfg.TargetFolder)
	}

	log, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := setup(ctx, cfg, opts)
	if err != nil {
		return err
	}
	log.Info("contract ready",
		zap.String("source", s.source),
		zap.String("contract", s.artifact.Name),
		zap.Int("functions", s.registry.Len()))

	if opts.list {
		printFunctions(cmd.OutOrStdout(), s)
		return nil
	}

	if err := engine.Build(ctx, cfg.Engine.Build, cfg.Engine.BuildDir); err != nil {
		return err
	}
	proc, err := engine.Start(ctx, s.artifact.Bytecode, &engine.Config{
		Path:            cfg.Engine.Path,
		Stderr:          cmd.ErrOrStderr(),
		ResponseTimeout: cfg.Engine.ResponseTimeout,
		ExitGrace:       cfg.Engine.ExitGrace,
	})
	if err != nil {
		return err
	}
	log.Info("engine started",
		zap.String("engine", cfg.Engine.Path),
		zap.Int("pid", proc.Pid()))

	if opts.tui {
		return runInteractive(ctx, s, proc)
	}

	in := cmd.InOrStdin()
	loop := repl.New(proc, s.registry, &repl.Config{
		In:     in,
		Out:    cmd.OutOrStdout(),
		Prompt: promptFor(in, cfg.Prompt),
	})
	return loop.Run(ctx)
}

func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	path, optional := opts.configPath, false
	if path == "" {
		path, optional = config.DefaultFile, true
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("target-folder") || cfg.TargetFolder == "" {
		cfg.TargetFolder = opts.targetFolder
	}
	if f.Changed("solc") {
		cfg.Solc.Path = opts.solc
	}
	if f.Changed("engine") {
		cfg.Engine.Path = opts.engine
	}
	if f.Changed("out-dir") {
		cfg.OutDir = opts.outDir
	}
	if f.Changed("timeout") {
		cfg.Engine.ResponseTimeout = opts.timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup compiles the source, selects the artifact and indexes its ABI.
// Nothing here starts a subprocess that outlives it.
func setup(ctx context.Context, cfg *config.Config, opts *options) (*session, error) {
	source := filepath.Join(cfg.TargetFolder, opts.file)

	c := &compiler.Compiler{
		Path:      cfg.Solc.Path,
		Optimize:  cfg.Solc.Optimize,
		ExtraArgs: cfg.Solc.ExtraArgs,
	}
	out, err := c.Compile(ctx, source, cfg.OutDir)
	if err != nil {
		return nil, err
	}

	art, err := artifact.Select(out.Binaries, opts.contract)
	if err != nil {
		return nil, err
	}

	combined, err := abi.LoadCombined(out.CombinedJSON)
	if err != nil {
		return nil, err
	}
	reg, err := combined.Registry(art.Name)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:      cfg,
		source:   source,
		artifact: art,
		registry: reg,
	}, nil
}

// promptFor disables the prompt when input is not an interactive terminal.
func promptFor(in io.Reader, prompt string) string {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return ""
	}
	return prompt
}

func printFunctions(w io.Writer, s *session) {
	fmt.Fprintf(w, "Contract: %s (%s)\n", s.artifact.Name, s.source)
	fmt.Fprintf(w, "Bytecode: %d bytes\n", len(s.artifact.Bytecode)/2)
	fmt.Fprintf(w, "\nFunctions:\n")
	for _, fn := range s.registry.Functions() {
		sig := fn.Signature()
		result := ""
		if outs := fn.OutputTypes(); len(outs) > 0 {
			result = " -> (" + strings.Join(outs, ",") + ")"
		}
		fmt.Fprintf(w, "  %s %s%s\n", abi.SelectorHex(sig), sig, result)
	}
}
