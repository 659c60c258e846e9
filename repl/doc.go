// Package repl implements the operator command loop.
//
// Each input line is either an exit keyword, a meta command or a call:
//
//	cmd> setNumber(uint256) 42
//	cmd> number
//	cmd> :list
//	cmd> exit
//
// The first token of a call is a canonical signature, or a function name
// that is not overloaded, and must be present in the ABI registry. The
// remaining tokens are passed to the engine verbatim.
// Unknown signatures and argument count mismatches are reported and the
// loop continues without contacting the engine.
//
// The loop owns the engine: it terminates it exactly once when Run returns,
// whether the operator typed exit, input ended, the context was cancelled
// or the engine failed.
package repl
