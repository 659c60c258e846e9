// Package engine manages the external execution engine subprocess.
//
// The engine is an opaque program started with the contract bytecode as its
// only argument. It reads one JSON command per line on stdin and answers
// every call command with exactly one line on stdout:
//
//	p, err := engine.Start(ctx, bytecode, &engine.Config{Path: "./mini-evm"})
//	if err != nil {
//	    return err
//	}
//	defer p.Terminate()
//
//	if err := p.Send(call); err != nil {
//	    return err
//	}
//	line, err := p.ReadLine(ctx)
//
// # Lifecycle
//
// A Process moves from Starting to Running when the subprocess has been
// spawned, and from Running to Terminated the first time Terminate is
// called. Terminate closes stdin, gives the engine Config.ExitGrace to exit
// on its own, then kills it. Later calls return the first result.
//
// # Ordering
//
// The protocol is strictly request/response. Callers must read the response
// to a call before sending the next command; the Process does not pair
// requests with responses itself.
package engine
