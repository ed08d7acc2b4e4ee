package hostcall

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/errors"
)

// DefaultMaxPayload is the request size limit used when none is configured.
const DefaultMaxPayload = 16 << 20

// Handler serves one bridge operation.
type Handler func(ctx context.Context, payload []byte) ([]byte, error)

// Host lists its operations explicitly, bypassing method reflection.
type Host interface {
	Operations() map[string]Handler
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxPayload sets the largest request payload accepted. Zero or a
// negative n disables the check.
func WithMaxPayload(n int) Option {
	return func(r *Registry) {
		r.maxPayload = n
	}
}

// WithMetrics records every call in m.
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// Registry routes bridge calls to registered handlers.
// It is safe for concurrent use.
type Registry struct {
	handlers   *xsync.Map[string, Handler]
	metrics    *Metrics
	maxPayload int
	closed     atomic.Bool
}

var _ textcodec.Bridge = (*Registry)(nil)

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		handlers:   xsync.NewMap[string, Handler](),
		maxPayload: DefaultMaxPayload,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register installs h under op, replacing any previous handler.
func (r *Registry) Register(op string, h Handler) error {
	if op == "" {
		return errors.InvalidInput(errors.PhaseHost, "operation name cannot be empty")
	}
	if h == nil {
		return errors.Registration(op, fmt.Errorf("nil handler"))
	}
	r.handlers.Store(op, h)
	return nil
}

// RegisterHost registers every operation of h. Values implementing Host
// contribute their Operations map; anything else contributes its exported
// methods with the Handler signature, named in kebab-case.
func (r *Registry) RegisterHost(h any) error {
	ops := hostOperations(h)
	if len(ops) == 0 {
		return errors.Registration(fmt.Sprintf("%T", h), fmt.Errorf("no handler methods"))
	}
	for op, fn := range ops {
		if err := r.Register(op, fn); err != nil {
			return err
		}
	}
	return nil
}

// Unregister removes op. It reports whether op was registered.
func (r *Registry) Unregister(op string) bool {
	_, ok := r.handlers.LoadAndDelete(op)
	return ok
}

// Ops returns the registered operation names in sorted order.
func (r *Registry) Ops() []string {
	ops := make([]string, 0, r.handlers.Size())
	r.handlers.Range(func(op string, _ Handler) bool {
		ops = append(ops, op)
		return true
	})
	slices.Sort(ops)
	return ops
}

// Invoke implements textcodec.Bridge.
func (r *Registry) Invoke(ctx context.Context, op string, payload []byte) ([]byte, error) {
	start := time.Now()
	out, err := r.invoke(ctx, op, payload)
	elapsed := time.Since(start)

	if r.metrics != nil {
		r.metrics.observe(op, len(payload), len(out), elapsed, err)
	}

	if err != nil {
		Logger().Warn("bridge call failed",
			zap.String("op", op),
			zap.Int("payload_bytes", len(payload)),
			zap.Error(err))
		return nil, err
	}

	Logger().Debug("bridge call",
		zap.String("op", op),
		zap.Int("payload_bytes", len(payload)),
		zap.Int("result_bytes", len(out)),
		zap.Duration("elapsed", elapsed))
	return out, nil
}

func (r *Registry) invoke(ctx context.Context, op string, payload []byte) ([]byte, error) {
	if r.closed.Load() {
		return nil, errors.HostUnavailable(op, "registry")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Transport(op, err)
	}

	h, ok := r.handlers.Load(op)
	if !ok {
		return nil, errors.UnknownOp(op)
	}
	if r.maxPayload > 0 && len(payload) > r.maxPayload {
		return nil, errors.PayloadTooLarge(op, len(payload), r.maxPayload)
	}

	out, err := h(ctx, payload)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Handler(op, err)
	}
	return out, nil
}

// Close makes every later call fail with KindHostUnavailable.
func (r *Registry) Close() error {
	r.closed.Store(true)
	return nil
}

func hostOperations(h any) map[string]Handler {
	if h == nil {
		return nil
	}
	if host, ok := h.(Host); ok {
		return host.Operations()
	}

	rv := reflect.ValueOf(h)
	rt := rv.Type()
	ops := make(map[string]Handler)

	for i := 0; i < rt.NumMethod(); i++ {
		method := rt.Method(i)
		if !method.IsExported() {
			continue
		}
		fn, ok := rv.Method(i).Interface().(func(context.Context, []byte) ([]byte, error))
		if !ok {
			continue
		}
		ops[toKebabCase(method.Name)] = fn
	}
	return ops
}

// toKebabCase converts PascalCase to kebab-case.
// Acronyms stay together: DecodeUTF8Chunk -> decode-utf8-chunk.
func toKebabCase(s string) string {
	runes := []rune(s)
	var b strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if !unicode.IsUpper(r) {
			b.WriteRune(r)
			continue
		}

		end := i + 1
		for end < len(runes) && (unicode.IsUpper(runes[end]) || unicode.IsDigit(runes[end])) {
			end++
		}
		// Last uppercase before lowercase starts the next word
		if end > i+1 && end < len(runes) && unicode.IsLower(runes[end]) {
			end--
		}

		if i > 0 {
			b.WriteByte('-')
		}
		for j := i; j < end; j++ {
			b.WriteRune(unicode.ToLower(runes[j]))
		}
		i = end - 1
	}
	return b.String()
}
