// Package hostcodec is the privileged side of the text codec bridge.
//
// A Host serves five operations:
//
//	encode          UTF-16LE units -> UTF-8 bytes
//	decode          UTF-8 bytes -> UTF-16LE units, end of stream implied
//	decoder-open    () -> u32 handle of a new streaming decoder
//	decoder-decode  u32 handle, flag byte, chunk -> UTF-16LE units
//	decoder-close   u32 handle -> ()
//
// The flag byte of decoder-decode has bit 0 set on the last chunk of a
// stream; the other bits must be zero. A flushed decoder stays open and
// starts a fresh stream on its next chunk.
//
// Register a Host with a hostcall.Registry to expose it:
//
//	host := hostcodec.New(hostcodec.WithMaxDecoders(64))
//	defer host.Close()
//	reg.RegisterHost(host)
package hostcodec
