package codec

import (
	"slices"
	"testing"
	"unicode/utf8"
)

func FuzzDecode(f *testing.F) {
	f.Add([]byte{0xE2, 0x82, 0xAC})
	f.Add([]byte{0xC0, 0x80})
	f.Add([]byte{0xED, 0xA0, 0x80})
	f.Add([]byte{0xF4, 0x90, 0x80, 0x80})
	f.Add([]byte{0xF0, 0x9F, 0x98})
	f.Add([]byte("hello"))

	f.Fuzz(func(t *testing.T, data []byte) {
		got := Decode(data)
		if hasUnpairedSurrogate(got) {
			t.Fatalf("unpaired surrogate in %X", got)
		}
		if len(got) > 2*len(data) {
			t.Fatalf("%d units from %d bytes", len(got), len(data))
		}
		if !utf8.Valid(Encode(got)) {
			t.Fatalf("re-encoding %X is not valid UTF-8", got)
		}
	})
}

func FuzzChunking(f *testing.F) {
	f.Add([]byte{0xE2, 0x82, 0xAC, 0xF0, 0x9F, 0x98, 0x80}, uint8(2), uint8(5))
	f.Add([]byte{0xE2, 0x82, 'A'}, uint8(1), uint8(2))
	f.Add([]byte{0xF0, 0xC3, 0xA9}, uint8(1), uint8(1))

	f.Fuzz(func(t *testing.T, data []byte, a, b uint8) {
		i := int(a) % (len(data) + 1)
		j := i + int(b)%(len(data)-i+1)

		want := Decode(data)
		got := decodeChunks(data[:i], data[i:j], data[j:])
		if !slices.Equal(want, got) {
			t.Fatalf("split %d,%d of % X: got %X, want %X", i, j, data, got, want)
		}
	})
}

func FuzzEncode(f *testing.F) {
	f.Add([]byte{0x00, 0xD8})
	f.Add([]byte{0x3D, 0xD8, 0x00, 0xDE})
	f.Add([]byte{0xAC, 0x20, 0x41, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		units, ok := Units(data[:len(data)&^1])
		if !ok {
			t.Fatal("even-length prefix rejected")
		}

		encoded := Encode(units)
		if !utf8.Valid(encoded) {
			t.Fatalf("Encode(%X) = % X is not valid UTF-8", units, encoded)
		}

		decoded := Decode(encoded)
		if hasUnpairedSurrogate(decoded) {
			t.Fatalf("round trip of %X left unpaired surrogates: %X", units, decoded)
		}
		if !hasUnpairedSurrogate(units) && !slices.Equal(units, decoded) {
			t.Fatalf("round trip of %X gave %X", units, decoded)
		}
	})
}
