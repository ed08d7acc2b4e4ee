package codec

// decoderState is the part of a decoder that survives between chunks.
// needed == 0 means the decoder is idle.
type decoderState struct {
	pending [maxPending]byte
	cp      rune
	seen    uint8
	needed  uint8
	lower   byte
	upper   byte
}

func (s *decoderState) begin(b byte, lead leadByte) {
	s.pending[0] = b
	s.cp = rune(b & lead.mask)
	s.seen = 1
	s.needed = lead.needed
	s.lower = lead.lower
	s.upper = lead.upper
}

// accept consumes one in-range continuation byte. Only the first
// continuation byte has a narrowed range.
func (s *decoderState) accept(b byte) {
	if s.needed > 1 {
		s.pending[s.seen] = b
	}
	s.cp = s.cp<<6 | rune(b&0x3F)
	s.seen++
	s.needed--
	s.lower = contLower
	s.upper = contUpper
}

// Decoder converts a UTF-8 byte stream into UTF-16 code units. The zero
// value is ready to use. A Decoder can be fed one logical stream in any
// number of chunks; pass endOfStream on the last one.
type Decoder struct {
	state decoderState
}

// NewDecoder returns an idle decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes chunk and returns the code units it completes. Bytes of
// a sequence left open at the end of chunk are kept until the next call
// unless endOfStream is set, in which case they become one U+FFFD.
func (d *Decoder) Decode(chunk []byte, endOfStream bool) []uint16 {
	return d.AppendDecode(make([]uint16, 0, len(chunk)+1), chunk, endOfStream)
}

// AppendDecode is like Decode but appends to dst.
func (d *Decoder) AppendDecode(dst []uint16, chunk []byte, endOfStream bool) []uint16 {
	s := &d.state
	for i := 0; i < len(chunk); {
		b := chunk[i]

		if s.needed == 0 {
			i++
			if b < 0x80 {
				dst = append(dst, uint16(b))
				continue
			}
			lead, ok := lookupLead(b)
			if !ok {
				dst = append(dst, ReplacementChar)
				continue
			}
			s.begin(b, lead)
			continue
		}

		if b < s.lower || b > s.upper {
			// Ill-formed prefix. b is not consumed and is read again as a
			// fresh byte on the next iteration.
			dst = append(dst, ReplacementChar)
			*s = decoderState{}
			continue
		}

		i++
		s.accept(b)
		if s.needed == 0 {
			dst = appendUTF16(dst, s.cp)
			*s = decoderState{}
		}
	}

	if endOfStream {
		if s.needed > 0 {
			dst = append(dst, ReplacementChar)
		}
		*s = decoderState{}
	}
	return dst
}

// Pending returns a copy of the bytes of the sequence currently left
// open. It is empty when the decoder is idle and never longer than 3.
func (d *Decoder) Pending() []byte {
	if d.state.needed == 0 {
		return nil
	}
	out := make([]byte, d.state.seen)
	copy(out, d.state.pending[:d.state.seen])
	return out
}

// Reset discards any open sequence without emitting a replacement.
func (d *Decoder) Reset() {
	d.state = decoderState{}
}

// Decode decodes a complete byte sequence in one call.
func Decode(b []byte) []uint16 {
	var d Decoder
	return d.Decode(b, true)
}

// DecodeToString decodes a complete byte sequence into a Go string.
func DecodeToString(b []byte) string {
	return ToString(Decode(b))
}
