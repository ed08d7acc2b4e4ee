// Package script provides TextEncoder and TextDecoder as sandboxed scripts
// see them.
//
// Script strings are UTF-16 code units. Neither type converts anything
// itself: every conversion is one call over a textcodec.Bridge, which may
// be an in-process hostcall.Registry or a sandbox.Guest. Bridge errors are
// returned unchanged.
//
//	enc := script.NewTextEncoder(bridge)
//	b, err := enc.EncodeString(ctx, "€")            // E2 82 AC
//
//	dec := script.NewTextDecoder(bridge)
//	defer dec.Close(ctx)
//	u1, _ := dec.Decode(ctx, b[:2], script.DecodeOptions{Stream: true}) // nothing yet
//	u2, _ := dec.Decode(ctx, b[2:], script.DecodeOptions{})             // 0x20AC
package script
