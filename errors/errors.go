package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseBridge  Phase = "bridge"  // request marshalling and dispatch
	PhaseHost    Phase = "host"    // host operation handlers
	PhaseSandbox Phase = "sandbox" // guest instantiation and memory
	PhaseConfig  Phase = "config"  // configuration loading
	PhaseLoad    Phase = "load"    // module compilation
)

// Kind categorizes the error
type Kind string

const (
	KindUnknownOp       Kind = "unknown_op"
	KindPayloadTooLarge Kind = "payload_too_large"
	KindInvalidPayload  Kind = "invalid_payload"
	KindHostUnavailable Kind = "host_unavailable"
	KindTransport       Kind = "transport"
	KindNotFound        Kind = "not_found"
	KindLimitExceeded   Kind = "limit_exceeded"
	KindHandler         Kind = "handler"
	KindInvalidInput    Kind = "invalid_input"
	KindRegistration    Kind = "registration"
	KindNotInitialized  Kind = "not_initialized"
	KindInstantiation   Kind = "instantiation"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindAllocation      Kind = "allocation"
)

// Error is the structured error type used across the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the bridge operation the error belongs to
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// KindOf returns the Kind of err if it is or wraps an *Error.
func KindOf(err error) (Kind, bool) {
	if e, ok := As(err); ok {
		return e.Kind, true
	}
	return "", false
}

// Convenience constructors for common error patterns

// UnknownOp creates an error for an operation no host registered
func UnknownOp(op string) *Error {
	return &Error{
		Phase:  PhaseBridge,
		Kind:   KindUnknownOp,
		Op:     op,
		Detail: fmt.Sprintf("operation %q not registered", op),
	}
}

// PayloadTooLarge creates an error for a request above the bridge limit
func PayloadTooLarge(op string, size, limit int) *Error {
	return &Error{
		Phase:  PhaseBridge,
		Kind:   KindPayloadTooLarge,
		Op:     op,
		Detail: fmt.Sprintf("payload of %d bytes exceeds limit of %d", size, limit),
		Value:  size,
	}
}

// InvalidPayload creates an argument marshalling error
func InvalidPayload(phase Phase, op, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidPayload,
		Op:     op,
		Detail: detail,
	}
}

// HostUnavailable creates an error for a host that can no longer serve calls
func HostUnavailable(op, what string) *Error {
	return &Error{
		Phase:  PhaseBridge,
		Kind:   KindHostUnavailable,
		Op:     op,
		Detail: fmt.Sprintf("%s closed", what),
	}
}

// Transport wraps a failure to deliver a call across the bridge
func Transport(op string, cause error) *Error {
	return &Error{
		Phase:  PhaseBridge,
		Kind:   KindTransport,
		Op:     op,
		Detail: "call not delivered",
		Cause:  cause,
	}
}

// HandleNotFound creates an error for an unknown or released handle
func HandleNotFound(op string, handle uint32) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindNotFound,
		Op:     op,
		Detail: fmt.Sprintf("handle %d not found", handle),
		Value:  handle,
	}
}

// LimitExceeded creates an error for an exhausted host-side limit
func LimitExceeded(op, what string, limit int) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindLimitExceeded,
		Op:     op,
		Detail: fmt.Sprintf("%s limit of %d reached", what, limit),
		Value:  limit,
	}
}

// Handler wraps a plain error returned by a host handler
func Handler(op string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindHandler,
		Op:     op,
		Detail: "handler failed",
		Cause:  cause,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, offset, length, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("range [%d, %d) out of bounds (size %d)", offset, uint64(offset)+uint64(length), size),
		Value:  offset,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to make room for %d bytes", size),
	}
}

// NotInitialized creates a not-initialized error for missing modules or hosts
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Registration creates a registration error
func Registration(op string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindRegistration,
		Op:     op,
		Detail: fmt.Sprintf("register %s", op),
		Cause:  cause,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseSandbox,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidPayload,
		Detail: detail,
		Cause:  cause,
	}
}
