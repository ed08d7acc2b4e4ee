// Package sandbox carries bridge calls across a real WebAssembly boundary.
//
// A Sandbox owns a wazero runtime with one host module, "blueboat", that
// exports
//
//	host_invoke(req_ptr i32, req_len i32) -> i64
//
// A guest places a CBOR request envelope in its linear memory and calls
// host_invoke. The host decodes it, serves it on the bridge given to New,
// writes the CBOR response envelope 8-byte aligned after the request and
// returns ptr<<32 | len. A zero result means the call was not delivered.
//
// Guests are instances of a small trampoline module built in Go, so no
// toolchain is needed to produce them. Guest implements textcodec.Bridge,
// which lets anything that talks to a bridge (script.TextEncoder, the CLI)
// run unchanged on either side of the boundary:
//
//	sb, err := sandbox.New(ctx, registry, sandbox.Config{MemoryLimitPages: 256})
//	if err != nil {
//	    return err
//	}
//	defer sb.Close(ctx)
//
//	guest, err := sb.NewGuest(ctx, "")
//	out, err := guest.Invoke(ctx, "encode", units)
//
// Errors produced by the host keep their kind across the boundary:
// a guest sees the same errors.Kind the registry returned.
package sandbox
