package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wippyai/contract-repl/config"
	"github.com/wippyai/contract-repl/errors"
)

type options struct {
	file         string
	contract     string
	targetFolder string
	solc         string
	engine       string
	outDir       string
	configPath   string
	timeout      time.Duration
	list         bool
	tui          bool
	verbose      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(errors.ExitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "contract-repl --file <Contract.sol> [--contract <Name>]",
		Short: "Compile a Solidity contract and call it through an execution engine",
		Long: `contract-repl compiles a Solidity source with solc, starts the execution
engine with the selected contract's bytecode and reads commands of the form

  <signature|name> [args...]

sending one call per line to the engine and printing its response.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "Solidity file to compile (required)")
	f.StringVarP(&opts.contract, "contract", "c", "", "Contract to run when the file declares several")
	f.StringVarP(&opts.targetFolder, "target-folder", "t", "test_files", "Folder to look for the file")
	f.StringVar(&opts.solc, "solc", "", "Path to the solc compiler")
	f.StringVar(&opts.engine, "engine", "", "Path to the execution engine")
	f.StringVar(&opts.outDir, "out-dir", "", "Directory for compiler output (cleared on every run)")
	f.StringVar(&opts.configPath, "config", "", "Config file (default "+config.DefaultFile+" if present)")
	f.DurationVar(&opts.timeout, "timeout", 0, "Maximum wait for each engine response (0 waits forever)")
	f.BoolVar(&opts.list, "list", false, "List callable functions and exit")
	f.BoolVarP(&opts.tui, "interactive", "i", false, "Interactive mode with TUI")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")

	return cmd
}
