// Package errors provides structured, coded errors for the Eghact engine.
//
// Every error has a unique code (e.g., "E020") that maps to a category,
// a short message, a detailed explanation and a documentation URL.
//
// # Error Categories
//
//   - component: lifecycle misuse (double mount, hook order, unknown context)
//   - bridge: accelerated backend load or call failures
//   - protocol: malformed length-prefixed encodings
//   - config: invalid configuration files
//   - cli: invalid CLI input files
//
// Programming errors (hooks outside render, unregistered contexts) are raised
// by panicking with an *EghactError; recoverable conditions are returned or
// logged.
//
// # Usage
//
//	err := errors.New(errors.CodeUnknownContext).
//	    WithSubject("theme").
//	    WithSuggestion("Create the context with component.CreateContext before using it")
//
//	fmt.Println(err.Format())
package errors
