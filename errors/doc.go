// Package errors provides structured error types for the host-call bridge.
//
// The codec itself never fails: malformed text is repaired with U+FFFD.
// Everything in this package describes failures around it, when a call
// cannot be delivered, marshalled or served.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the operation name, a detail message,
// the offending value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseHost, errors.KindInvalidPayload).
//		Op("decoder-decode").
//		Detail("need %d header bytes, got %d", 5, len(payload)).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownOp(op)
//	err := errors.PayloadTooLarge(op, len(payload), limit)
//
// All errors implement the standard error interface and support errors.Is/As.
// Is matches on Phase and Kind, so a bridge caller can test for a category
// without caring about the detail:
//
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseBridge, Kind: errors.KindTransport}) { ... }
package errors
