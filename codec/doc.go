// Package codec converts between UTF-16 code units and UTF-8 bytes.
//
// The Encoder turns a UTF-16 code-unit sequence into UTF-8. Surrogate
// pairs are reassembled into one 4-byte sequence; any unpaired surrogate
// becomes the replacement character U+FFFD (EF BF BD).
//
// The Decoder turns UTF-8 bytes into UTF-16 code units. It is a small
// state machine that can be fed arbitrary chunks:
//
//	var dec codec.Decoder
//	out := dec.Decode(chunk1, false) // may hold up to 3 pending bytes
//	out = append(out, dec.Decode(chunk2, true)...)
//
// Malformed input (invalid lead bytes, overlong forms, encoded surrogates,
// values above U+10FFFF, truncated sequences) is replaced with U+FFFD,
// one replacement per maximal ill-formed subpart. Neither direction ever
// returns an error.
//
// # Thread Safety
//
// Encoder is a zero-size value and is safe for concurrent use. A Decoder
// carries per-stream state and must not be used from two goroutines at
// once; callers serialize access per instance.
package codec
