package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseBridge,
				Kind:   KindPayloadTooLarge,
				Op:     "encode",
				Detail: "payload of 10 bytes exceeds limit of 4",
			},
			contains: []string{"[bridge]", "payload_too_large", "in encode", "exceeds limit"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseHost,
				Kind:  KindNotFound,
			},
			contains: []string{"[host]", "not_found"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseSandbox,
				Kind:   KindAllocation,
				Detail: "memory full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[sandbox]", "allocation", "memory full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Transport("decode", cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause")
	}
}

func TestError_Is(t *testing.T) {
	err := UnknownOp("frobnicate")

	if !err.Is(&Error{Phase: PhaseBridge, Kind: KindUnknownOp}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseHost, Kind: KindUnknownOp}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseBridge, Kind: KindTransport}) {
		t.Error("Is should not match different kind")
	}

	wrapped := fmt.Errorf("call: %w", err)
	if !errors.Is(wrapped, &Error{Phase: PhaseBridge, Kind: KindUnknownOp}) {
		t.Error("errors.Is should match through wrapping")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseHost, KindInvalidPayload).
		Op("decoder-decode").
		Value(3).
		Cause(cause).
		Detail("need %d bytes, got %d", 5, 3).
		Build()

	if err.Phase != PhaseHost {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseHost)
	}
	if err.Kind != KindInvalidPayload {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidPayload)
	}
	if err.Op != "decoder-decode" {
		t.Errorf("Op = %q", err.Op)
	}
	if err.Value != 3 {
		t.Errorf("Value = %v, want 3", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "need 5 bytes, got 3" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(fmt.Errorf("outer: %w", HandleNotFound("decoder-close", 7)))
	if !ok || kind != KindNotFound {
		t.Errorf("KindOf = (%v, %v), want (%v, true)", kind, ok, KindNotFound)
	}

	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf should not find a kind in a plain error")
	}
	if _, ok := KindOf(nil); ok {
		t.Error("KindOf(nil) should report false")
	}
}

func TestAs(t *testing.T) {
	inner := LimitExceeded("decoder-open", "open decoders", 4)
	e, ok := As(fmt.Errorf("a: %w", fmt.Errorf("b: %w", inner)))
	if !ok || e != inner {
		t.Fatalf("As = (%v, %v), want inner error", e, ok)
	}
	if _, ok := As(errors.New("plain")); ok {
		t.Error("As should not find an *Error in a plain error")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		phase Phase
		kind  Kind
	}{
		{"UnknownOp", UnknownOp("x"), PhaseBridge, KindUnknownOp},
		{"PayloadTooLarge", PayloadTooLarge("encode", 10, 4), PhaseBridge, KindPayloadTooLarge},
		{"InvalidPayload", InvalidPayload(PhaseHost, "encode", "odd length"), PhaseHost, KindInvalidPayload},
		{"HostUnavailable", HostUnavailable("decode", "codec host"), PhaseBridge, KindHostUnavailable},
		{"Transport", Transport("decode", errors.New("trap")), PhaseBridge, KindTransport},
		{"HandleNotFound", HandleNotFound("decoder-close", 9), PhaseHost, KindNotFound},
		{"LimitExceeded", LimitExceeded("decoder-open", "open decoders", 2), PhaseHost, KindLimitExceeded},
		{"Handler", Handler("encode", errors.New("boom")), PhaseHost, KindHandler},
		{"OutOfBounds", OutOfBounds(PhaseSandbox, 10, 5, 12), PhaseSandbox, KindOutOfBounds},
		{"AllocationFailed", AllocationFailed(PhaseSandbox, 1024), PhaseSandbox, KindAllocation},
		{"NotInitialized", NotInitialized(PhaseSandbox, "guest"), PhaseSandbox, KindNotInitialized},
		{"InvalidInput", InvalidInput(PhaseConfig, "bad"), PhaseConfig, KindInvalidInput},
		{"Registration", Registration("encode", errors.New("dup")), PhaseHost, KindRegistration},
		{"Instantiation", Instantiation(errors.New("link")), PhaseSandbox, KindInstantiation},
		{"Load", Load("compile guest", errors.New("bad magic")), PhaseLoad, KindInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("Phase = %v, want %v", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}

	if d := OutOfBounds(PhaseSandbox, 10, 5, 12).Detail; !strings.Contains(d, "[10, 15)") {
		t.Errorf("OutOfBounds detail = %q", d)
	}
	if d := PayloadTooLarge("encode", 10, 4).Detail; !strings.Contains(d, "10") || !strings.Contains(d, "4") {
		t.Errorf("PayloadTooLarge detail = %q", d)
	}
}
