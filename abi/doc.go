// Package abi indexes a compiler's combined-JSON ABI output into canonical
// function signatures.
//
// A canonical signature is the function name followed by the parenthesized,
// comma-joined list of its input types, exactly as they appear in the ABI:
//
//	setNumber(uint256)
//	transfer(address,uint256)
//	submit((uint256,address)[],bytes32)
//
// Only entries of type "function" are indexed. Constructors, events,
// errors, fallback and receive entries are skipped. A contract without
// functions produces an empty, valid index.
package abi
