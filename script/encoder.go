package script

import (
	"context"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/codec"
)

// Encoding is the only encoding supported by TextEncoder and TextDecoder.
const Encoding = "utf-8"

// TextEncoder converts script strings to UTF-8 through the host.
type TextEncoder struct {
	bridge textcodec.Bridge
}

func NewTextEncoder(b textcodec.Bridge) *TextEncoder {
	return &TextEncoder{bridge: b}
}

// Encoding returns "utf-8".
func (e *TextEncoder) Encoding() string {
	return Encoding
}

// Encode returns the UTF-8 encoding of units. Unpaired surrogates become
// U+FFFD.
func (e *TextEncoder) Encode(ctx context.Context, units []uint16) ([]byte, error) {
	return e.bridge.Invoke(ctx, textcodec.OpEncode, codec.AppendUnits(nil, units))
}

// EncodeString is Encode for a Go string.
func (e *TextEncoder) EncodeString(ctx context.Context, s string) ([]byte, error) {
	return e.Encode(ctx, codec.FromString(s))
}
