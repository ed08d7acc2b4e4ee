package codec

import (
	"encoding/binary"
	"unicode/utf16"
)

// FromString converts a Go string to UTF-16 code units. Invalid UTF-8 in
// s is read as U+FFFD.
func FromString(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// ToString converts UTF-16 code units to a Go string. Unpaired surrogates
// become U+FFFD.
func ToString(units []uint16) string {
	return string(utf16.Decode(units))
}

// AppendUnits appends units to dst as little-endian UTF-16. Unpaired
// surrogates are kept as-is.
func AppendUnits(dst []byte, units []uint16) []byte {
	for _, u := range units {
		dst = binary.LittleEndian.AppendUint16(dst, u)
	}
	return dst
}

// Units reads little-endian UTF-16 from b. ok is false when b has an odd
// length.
func Units(b []byte) (units []uint16, ok bool) {
	if len(b)%2 != 0 {
		return nil, false
	}
	units = make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return units, true
}
