package script

import (
	"context"
	"encoding/binary"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/codec"
	"github.com/wippyai/textcodec/errors"
)

// DecodeOptions mirrors the options bag of TextDecoder.decode.
type DecodeOptions struct {
	// Stream reports that more data follows. Incomplete sequences at the
	// end of data are held by the host until the next call.
	Stream bool
}

// TextDecoder converts UTF-8 to script strings through the host.
//
// A streaming decode holds a decoder handle on the host from the first
// Stream call until the next non-streaming call. A TextDecoder must not be
// used concurrently.
type TextDecoder struct {
	bridge textcodec.Bridge
	handle uint32
	open   bool
}

func NewTextDecoder(b textcodec.Bridge) *TextDecoder {
	return &TextDecoder{bridge: b}
}

// Encoding returns "utf-8".
func (d *TextDecoder) Encoding() string {
	return Encoding
}

// Decode returns the UTF-16 code units of data. Ill-formed input decodes
// to U+FFFD. Without Stream, data ends the text and any bytes held from
// earlier streaming calls are flushed.
func (d *TextDecoder) Decode(ctx context.Context, data []byte, opts DecodeOptions) ([]uint16, error) {
	if opts.Stream {
		if !d.open {
			if err := d.openStream(ctx); err != nil {
				return nil, err
			}
		}
		return d.decodeChunk(ctx, data, false)
	}

	if d.open {
		units, err := d.decodeChunk(ctx, data, true)
		if err != nil {
			return nil, err
		}
		if err := d.Close(ctx); err != nil {
			return nil, err
		}
		return units, nil
	}

	out, err := d.bridge.Invoke(ctx, textcodec.OpDecode, data)
	if err != nil {
		return nil, err
	}
	return unitsOf(textcodec.OpDecode, out)
}

// DecodeString is Decode returning a Go string.
func (d *TextDecoder) DecodeString(ctx context.Context, data []byte, opts DecodeOptions) (string, error) {
	units, err := d.Decode(ctx, data, opts)
	if err != nil {
		return "", err
	}
	return codec.ToString(units), nil
}

// Close releases the host decoder of an unfinished stream. Bytes still
// pending are discarded.
func (d *TextDecoder) Close(ctx context.Context) error {
	if !d.open {
		return nil
	}
	d.open = false
	_, err := d.bridge.Invoke(ctx, textcodec.OpDecoderClose, binary.LittleEndian.AppendUint32(nil, d.handle))
	return err
}

func (d *TextDecoder) openStream(ctx context.Context) error {
	const op = textcodec.OpDecoderOpen

	out, err := d.bridge.Invoke(ctx, op, nil)
	if err != nil {
		return err
	}
	if len(out) != 4 {
		return errors.InvalidPayload(errors.PhaseBridge, op, "handle must be 4 bytes")
	}
	d.handle = binary.LittleEndian.Uint32(out)
	d.open = true
	return nil
}

func (d *TextDecoder) decodeChunk(ctx context.Context, data []byte, endOfStream bool) ([]uint16, error) {
	const op = textcodec.OpDecoderDecode

	payload := make([]byte, 0, 5+len(data))
	payload = binary.LittleEndian.AppendUint32(payload, d.handle)
	if endOfStream {
		payload = append(payload, 1)
	} else {
		payload = append(payload, 0)
	}
	payload = append(payload, data...)

	out, err := d.bridge.Invoke(ctx, op, payload)
	if err != nil {
		return nil, err
	}
	return unitsOf(op, out)
}

func unitsOf(op string, payload []byte) ([]uint16, error) {
	units, ok := codec.Units(payload)
	if !ok {
		return nil, errors.InvalidPayload(errors.PhaseBridge, op, "UTF-16 result has odd length")
	}
	return units, nil
}
