package codec

import (
	"errors"
	"io"
)

// DefaultChunkSize is the read size DecodeReader uses when none is given.
const DefaultChunkSize = 32 * 1024

// DecodeReader decodes everything r yields, reading at most chunkSize
// bytes at a time through a single Decoder. emit receives the code units
// completed by each read; the slice is reused, so emit must copy what it
// keeps. Read errors other than io.EOF are returned as-is.
func DecodeReader(r io.Reader, chunkSize int, emit func([]uint16) error) error {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var (
		dec Decoder
		buf = make([]byte, chunkSize)
		out = make([]uint16, 0, chunkSize+1)
	)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			out = dec.AppendDecode(out[:0], buf[:n], false)
			if len(out) > 0 {
				if emitErr := emit(out); emitErr != nil {
					return emitErr
				}
			}
		}

		if errors.Is(err, io.EOF) {
			out = dec.AppendDecode(out[:0], nil, true)
			if len(out) > 0 {
				return emit(out)
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}
