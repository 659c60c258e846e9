// Package errors provides structured error types for contract-repl.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries a detail message, the offending value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseArtifact, errors.KindNotFound).
//		Path("build", "Counter.bin").
//		Detail("contract %q was not emitted by the compiler", "Counter").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownSignature("frobnicate")
//	err := errors.Compile(status, stderr, cause)
//
// Setup failures (usage, compile, artifact, abi, config) abort the session
// before an engine exists. Signature errors are recoverable and scoped to a
// single REPL command. Process errors end the session.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
