package codec

// Encoder converts UTF-16 code units to UTF-8. It holds no state.
type Encoder struct{}

// Encode returns the UTF-8 encoding of units.
func (e Encoder) Encode(units []uint16) []byte {
	return e.AppendEncode(make([]byte, 0, e.EncodedLen(units)), units)
}

// AppendEncode appends the UTF-8 encoding of units to dst.
func (Encoder) AppendEncode(dst []byte, units []uint16) []byte {
	var buf [4]byte
	for i := 0; i < len(units); {
		r, width := nextScalar(units, i)
		i += width
		if r < 0x80 {
			dst = append(dst, byte(r))
			continue
		}
		n := putUTF8(buf[:], r)
		dst = append(dst, buf[:n]...)
	}
	return dst
}

// EncodeInto encodes as many whole scalar values from units as fit into
// dst. It returns the number of code units consumed and bytes written.
// A surrogate pair is either consumed whole or not at all.
func (Encoder) EncodeInto(dst []byte, units []uint16) (read, written int) {
	for read < len(units) {
		r, width := nextScalar(units, read)
		n := utf8Len(r)
		if written+n > len(dst) {
			break
		}
		putUTF8(dst[written:], r)
		read += width
		written += n
	}
	return read, written
}

// EncodedLen reports the exact number of bytes Encode produces for units.
func (Encoder) EncodedLen(units []uint16) int {
	total := 0
	for i := 0; i < len(units); {
		r, width := nextScalar(units, i)
		i += width
		total += utf8Len(r)
	}
	return total
}

// nextScalar reads the scalar value starting at units[i] and the number of
// units it spans. Unpaired surrogates yield ReplacementChar with width 1.
func nextScalar(units []uint16, i int) (rune, int) {
	u := units[i]
	if !isSurrogate(u) {
		return rune(u), 1
	}
	if isHighSurrogate(u) && i+1 < len(units) && isLowSurrogate(units[i+1]) {
		return combineSurrogates(u, units[i+1]), 2
	}
	return ReplacementChar, 1
}

// Encode returns the UTF-8 encoding of units.
func Encode(units []uint16) []byte {
	return Encoder{}.Encode(units)
}

// EncodeString encodes a Go string. s is first read as UTF-8, so invalid
// bytes in s come out as EF BF BD.
func EncodeString(s string) []byte {
	return Encode(FromString(s))
}
