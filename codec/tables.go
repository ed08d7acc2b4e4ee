package codec

// ReplacementChar is substituted for every malformed input unit or sequence.
const ReplacementChar = 0xFFFD

const (
	surrogateMin     = 0xD800
	highSurrogateMax = 0xDBFF
	lowSurrogateMin  = 0xDC00
	surrogateMax     = 0xDFFF
	surrogateSelf    = 0x10000

	maxBMP = 0xFFFF

	contLower byte = 0x80
	contUpper byte = 0xBF

	// maxPending is the longest prefix of a 4-byte sequence that can be
	// left unresolved at the end of a chunk.
	maxPending = 3
)

// leadByte describes a valid multi-byte lead byte: how many continuation
// bytes follow, the legal range of the first one, and the payload mask
// applied to the lead itself.
type leadByte struct {
	needed uint8
	lower  byte
	upper  byte
	mask   byte
}

// lookupLead classifies a non-ASCII byte seen in the idle state.
// ok is false for bytes that can never start a sequence (80-C1, F5-FF).
func lookupLead(b byte) (leadByte, bool) {
	switch {
	case b >= 0xC2 && b <= 0xDF:
		return leadByte{needed: 1, lower: contLower, upper: contUpper, mask: 0x1F}, true
	case b == 0xE0:
		return leadByte{needed: 2, lower: 0xA0, upper: contUpper, mask: 0x0F}, true
	case b == 0xED:
		return leadByte{needed: 2, lower: contLower, upper: 0x9F, mask: 0x0F}, true
	case b >= 0xE1 && b <= 0xEF:
		return leadByte{needed: 2, lower: contLower, upper: contUpper, mask: 0x0F}, true
	case b == 0xF0:
		return leadByte{needed: 3, lower: 0x90, upper: contUpper, mask: 0x07}, true
	case b >= 0xF1 && b <= 0xF3:
		return leadByte{needed: 3, lower: contLower, upper: contUpper, mask: 0x07}, true
	case b == 0xF4:
		return leadByte{needed: 3, lower: contLower, upper: 0x8F, mask: 0x07}, true
	}
	return leadByte{}, false
}

func isSurrogate(u uint16) bool {
	return u >= surrogateMin && u <= surrogateMax
}

func isHighSurrogate(u uint16) bool {
	return u >= surrogateMin && u <= highSurrogateMax
}

func isLowSurrogate(u uint16) bool {
	return u >= lowSurrogateMin && u <= surrogateMax
}

// combineSurrogates joins a high/low pair into a supplementary scalar value.
func combineSurrogates(hi, lo uint16) rune {
	return (rune(hi)-surrogateMin)<<10 | (rune(lo) - lowSurrogateMin) + surrogateSelf
}

// utf8Len returns the encoded length of a scalar value.
func utf8Len(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r <= maxBMP:
		return 3
	default:
		return 4
	}
}

// putUTF8 writes r into p, which must have room for utf8Len(r) bytes.
func putUTF8(p []byte, r rune) int {
	switch {
	case r < 0x80:
		p[0] = byte(r)
		return 1
	case r < 0x800:
		p[0] = 0xC0 | byte(r>>6)
		p[1] = 0x80 | byte(r)&0x3F
		return 2
	case r <= maxBMP:
		p[0] = 0xE0 | byte(r>>12)
		p[1] = 0x80 | byte(r>>6)&0x3F
		p[2] = 0x80 | byte(r)&0x3F
		return 3
	default:
		p[0] = 0xF0 | byte(r>>18)
		p[1] = 0x80 | byte(r>>12)&0x3F
		p[2] = 0x80 | byte(r>>6)&0x3F
		p[3] = 0x80 | byte(r)&0x3F
		return 4
	}
}

// appendUTF16 appends r as one unit, or as a surrogate pair above the BMP.
func appendUTF16(dst []uint16, r rune) []uint16 {
	if r <= maxBMP {
		return append(dst, uint16(r))
	}
	r -= surrogateSelf
	return append(dst, uint16(surrogateMin+(r>>10)), uint16(lowSurrogateMin+(r&0x3FF)))
}
