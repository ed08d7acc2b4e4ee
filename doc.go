// Package textcodec provides a UTF-16 <-> UTF-8 text codec and the host-call
// bridge that exposes it to sandboxed scripts.
//
// Scripts running inside a sandbox hold text as UTF-16 code units. They
// cannot convert it themselves; they ask the host through a single
// synchronous call, `(operation, payload) -> result | error`, modelled here
// by the Bridge interface.
//
// # Architecture Overview
//
//	textcodec/           Root package with the Bridge contract and op names
//	├── codec/           Encoder and streaming Decoder (the codec core)
//	├── errors/          Structured bridge errors
//	├── hostcall/        Operation registry, CBOR envelope, metrics, logger
//	├── hostcodec/       Host implementation of encode/decode and streams
//	├── resource/        Handle table for host-side decoder streams
//	├── sandbox/         wazero guest that calls the host across the boundary
//	├── script/          TextEncoder / TextDecoder as seen by scripts
//	├── config/          TOML configuration
//	└── cmd/textcodec/   Command line tool
//
// # Quick Start
//
// Use the codec directly:
//
//	b := codec.Encode([]uint16{0xD83D, 0xDE00}) // F0 9F 98 80
//
//	var dec codec.Decoder
//	out := dec.Decode(b[:2], false)
//	out = append(out, dec.Decode(b[2:], true)...)
//
// Or through a bridge, the way a script sees it:
//
//	reg := hostcall.NewRegistry()
//	host := hostcodec.New()
//	defer host.Close()
//	if err := reg.RegisterHost(host); err != nil {
//	    log.Fatal(err)
//	}
//
//	enc := script.NewTextEncoder(reg)
//	data, err := enc.EncodeString(ctx, "héllo")
//
// # Error Model
//
// Malformed text is never an error. Unpaired surrogates encode as EF BF BD
// and every ill-formed UTF-8 subpart decodes as U+FFFD. Errors only come
// from the bridge, and callers receive them unchanged.
//
// # Thread Safety
//
// codec.Encoder, hostcall.Registry and hostcodec.Host are safe for
// concurrent use. A codec.Decoder or script.TextDecoder belongs to one
// stream and must not be used concurrently.
package textcodec
