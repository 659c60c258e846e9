// Package contractrepl turns a Solidity source file into an interactive
// call session against an external execution engine.
//
// A session compiles the source, selects one contract, indexes its ABI into
// canonical signatures, starts the engine with the contract's bytecode and
// forwards operator commands to it one line at a time.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	contractrepl/         Root package (documentation only)
//	├── compiler/         solc invocation and output collection
//	├── artifact/         selection of a single compiled contract
//	├── abi/              combined-JSON parsing and the signature index
//	├── codec/            call/exit commands and their JSON line encoding
//	├── engine/           engine subprocess lifecycle and line pipes
//	├── repl/             operator command loop
//	├── config/           YAML configuration
//	├── errors/           structured error types
//	└── cmd/contract-repl Command-line entry point and TUI
//
// # Quick Start
//
//	contract-repl --file Counter.sol
//	cmd> setNumber 42
//	cmd> number()
//	cmd> exit
//
// # Wire Protocol
//
// Commands are JSON objects, one per line:
//
//	{"type":"call","signature":"setNumber(uint256)","args":["42"],"types":["uint256"]}
//	{"type":"exit"}
//
// The engine answers every call with exactly one line, which is printed
// unmodified. Argument literals are passed through as strings; encoding them
// is the engine's job.
//
// # Thread Safety
//
// A session is single-threaded: at most one command is in flight and the
// engine process is owned by the loop that drives it.
package contractrepl
