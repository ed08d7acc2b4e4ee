package textcodec

import "context"

// Bridge delivers a tagged operation and its argument payload to a
// privileged host implementation and returns the result payload. An error
// means the call itself failed (host unavailable, argument too large,
// unknown operation); the codec behind it never fails.
type Bridge interface {
	Invoke(ctx context.Context, op string, payload []byte) ([]byte, error)
}

// BridgeFunc adapts a plain function to Bridge.
type BridgeFunc func(ctx context.Context, op string, payload []byte) ([]byte, error)

// Invoke calls f.
func (f BridgeFunc) Invoke(ctx context.Context, op string, payload []byte) ([]byte, error) {
	return f(ctx, op, payload)
}

// Operation identifiers understood by the codec host.
const (
	OpEncode        = "encode"
	OpDecode        = "decode"
	OpDecoderOpen   = "decoder-open"
	OpDecoderDecode = "decoder-decode"
	OpDecoderClose  = "decoder-close"
)
