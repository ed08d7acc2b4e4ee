package hostcodec

import (
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/codec"
	"github.com/wippyai/textcodec/errors"
	"github.com/wippyai/textcodec/hostcall"
	"github.com/wippyai/textcodec/resource"
)

// DefaultMaxDecoders bounds the streaming decoders one host keeps open.
const DefaultMaxDecoders = 1024

const (
	handleSize = 4
	flagEOS    = 1 << 0
)

type stream struct {
	mu  sync.Mutex
	dec codec.Decoder
}

// Host implements the codec operations on top of package codec.
type Host struct {
	streams     *resource.Table[*stream]
	logger      *zap.Logger
	metrics     *hostcall.Metrics
	maxDecoders int
	closed      atomic.Bool
}

var _ hostcall.Host = (*Host)(nil)

// Option configures a Host.
type Option func(*Host)

// WithMaxDecoders caps the number of open streaming decoders.
func WithMaxDecoders(n int) Option {
	return func(h *Host) {
		h.maxDecoders = n
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(h *Host) {
		h.logger = l
	}
}

// WithMetrics reports open decoders on m's gauge.
func WithMetrics(m *hostcall.Metrics) Option {
	return func(h *Host) {
		h.metrics = m
	}
}

func New(opts ...Option) *Host {
	h := &Host{maxDecoders: DefaultMaxDecoders}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = hostcall.Logger().Named("hostcodec")
	}

	h.streams = resource.NewTable[*stream](h.maxDecoders)
	h.streams.Subscribe(resource.ObserverFunc(h.onStreamEvent))
	return h
}

// Operations implements hostcall.Host.
func (h *Host) Operations() map[string]hostcall.Handler {
	return map[string]hostcall.Handler{
		textcodec.OpEncode:        h.Encode,
		textcodec.OpDecode:        h.Decode,
		textcodec.OpDecoderOpen:   h.DecoderOpen,
		textcodec.OpDecoderDecode: h.DecoderDecode,
		textcodec.OpDecoderClose:  h.DecoderClose,
	}
}

// Encode converts UTF-16LE code units to UTF-8.
func (h *Host) Encode(_ context.Context, payload []byte) ([]byte, error) {
	if err := h.available(textcodec.OpEncode); err != nil {
		return nil, err
	}
	units, ok := codec.Units(payload)
	if !ok {
		return nil, oddLength(textcodec.OpEncode, len(payload))
	}
	return codec.Encode(units), nil
}

// Decode converts a complete UTF-8 byte sequence to UTF-16LE code units.
func (h *Host) Decode(_ context.Context, payload []byte) ([]byte, error) {
	if err := h.available(textcodec.OpDecode); err != nil {
		return nil, err
	}
	return codec.AppendUnits(nil, codec.Decode(payload)), nil
}

// DecoderOpen starts a streaming decoder and returns its handle.
func (h *Host) DecoderOpen(_ context.Context, payload []byte) ([]byte, error) {
	const op = textcodec.OpDecoderOpen

	if err := h.available(op); err != nil {
		return nil, err
	}
	if len(payload) != 0 {
		return nil, errors.New(errors.PhaseHost, errors.KindInvalidPayload).
			Op(op).Detail("expected empty payload, got %d bytes", len(payload)).Build()
	}

	handle, err := h.streams.Insert(&stream{})
	if err != nil {
		if kind, _ := errors.KindOf(err); kind == errors.KindLimitExceeded {
			return nil, errors.LimitExceeded(op, "open decoders", h.maxDecoders)
		}
		return nil, errors.HostUnavailable(op, "codec host")
	}

	h.logger.Debug("decoder opened", zap.Uint32("handle", uint32(handle)))
	return binary.LittleEndian.AppendUint32(nil, uint32(handle)), nil
}

// DecoderDecode feeds one chunk to the decoder named by the payload header.
func (h *Host) DecoderDecode(_ context.Context, payload []byte) ([]byte, error) {
	const op = textcodec.OpDecoderDecode

	if err := h.available(op); err != nil {
		return nil, err
	}
	if len(payload) < handleSize+1 {
		return nil, errors.New(errors.PhaseHost, errors.KindInvalidPayload).
			Op(op).Detail("need %d header bytes, got %d", handleSize+1, len(payload)).Build()
	}

	handle := binary.LittleEndian.Uint32(payload)
	flags := payload[handleSize]
	if flags&^flagEOS != 0 {
		return nil, errors.New(errors.PhaseHost, errors.KindInvalidPayload).
			Op(op).Value(flags).Detail("unknown flag bits %#02x", flags).Build()
	}

	s, ok := h.streams.Get(resource.Handle(handle))
	if !ok {
		return nil, errors.HandleNotFound(op, handle)
	}

	s.mu.Lock()
	units := s.dec.Decode(payload[handleSize+1:], flags&flagEOS != 0)
	s.mu.Unlock()

	return codec.AppendUnits(nil, units), nil
}

// DecoderClose releases a streaming decoder. Pending bytes are discarded.
func (h *Host) DecoderClose(_ context.Context, payload []byte) ([]byte, error) {
	const op = textcodec.OpDecoderClose

	if err := h.available(op); err != nil {
		return nil, err
	}
	if len(payload) != handleSize {
		return nil, errors.New(errors.PhaseHost, errors.KindInvalidPayload).
			Op(op).Detail("expected %d byte handle, got %d bytes", handleSize, len(payload)).Build()
	}

	handle := binary.LittleEndian.Uint32(payload)
	if _, ok := h.streams.Remove(resource.Handle(handle)); !ok {
		return nil, errors.HandleNotFound(op, handle)
	}

	h.logger.Debug("decoder closed", zap.Uint32("handle", handle))
	return nil, nil
}

// OpenDecoders returns the number of live streaming decoders.
func (h *Host) OpenDecoders() int {
	return h.streams.Len()
}

// Close releases every streaming decoder. Later calls fail with
// KindHostUnavailable.
func (h *Host) Close() error {
	if h.closed.Swap(true) {
		return nil
	}
	n := h.streams.Len()
	if err := h.streams.Close(); err != nil {
		return err
	}
	h.logger.Debug("codec host closed", zap.Int("released_decoders", n))
	return nil
}

func (h *Host) available(op string) error {
	if h.closed.Load() {
		return errors.HostUnavailable(op, "codec host")
	}
	return nil
}

func (h *Host) onStreamEvent(e resource.Event) {
	if h.metrics == nil {
		return
	}
	switch e.Type {
	case resource.EventCreated:
		h.metrics.DecoderOpened()
	case resource.EventDropped:
		h.metrics.DecoderClosed()
	}
}

func oddLength(op string, n int) error {
	return errors.New(errors.PhaseHost, errors.KindInvalidPayload).
		Op(op).Value(n).Detail("UTF-16 payload has odd length %d", n).Build()
}
