package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/errors"
	"github.com/wippyai/textcodec/hostcall"
)

const (
	pageSize = 65536

	// DefaultModuleName prefixes guests created without an explicit name.
	DefaultModuleName = "script"
)

// Config holds configuration for sandbox creation
type Config struct {
	// MemoryLimitPages caps each guest's memory in 64KiB pages.
	// 0 means the wazero default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB
	MemoryLimitPages uint32

	// ModuleName is the name prefix for guests created by NewGuest("").
	ModuleName string
}

// Sandbox runs guests that reach the host only through host_invoke.
type Sandbox struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	bridge   textcodec.Bridge
	logger   *zap.Logger
	name     string
	seq      atomic.Uint64
	mu       sync.Mutex
	closed   bool
}

// New creates a wazero runtime whose host_invoke import serves calls on b.
func New(ctx context.Context, b textcodec.Bridge, cfg Config) (*Sandbox, error) {
	if b == nil {
		return nil, errors.NotInitialized(errors.PhaseSandbox, "bridge")
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	s := &Sandbox{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		bridge:  b,
		logger:  hostcall.Logger().Named("sandbox"),
		name:    cfg.ModuleName,
	}
	if s.name == "" {
		s.name = DefaultModuleName
	}

	_, err := s.runtime.NewHostModuleBuilder(HostModule).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(s.hostInvoke),
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
			[]api.ValueType{api.ValueTypeI64}).
		Export(HostInvoke).
		Instantiate(ctx)
	if err != nil {
		_ = s.runtime.Close(ctx)
		return nil, errors.Instantiation(err)
	}

	s.compiled, err = s.runtime.CompileModule(ctx, guestModule())
	if err != nil {
		_ = s.runtime.Close(ctx)
		return nil, errors.Load("compile guest module", err)
	}

	return s, nil
}

// NewGuest instantiates a guest module. An empty name picks a unique one.
func (s *Sandbox) NewGuest(ctx context.Context, name string) (*Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.NotInitialized(errors.PhaseSandbox, "sandbox")
	}
	if name == "" {
		name = fmt.Sprintf("%s-%d", s.name, s.seq.Add(1))
	}

	mod, err := s.runtime.InstantiateModule(ctx, s.compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	invoke := mod.ExportedFunction(ExportInvoke)
	if invoke == nil || mod.Memory() == nil {
		_ = mod.Close(ctx)
		return nil, errors.NotInitialized(errors.PhaseSandbox, "guest exports")
	}

	s.logger.Debug("guest instantiated", zap.String("module", name))
	return &Guest{name: name, mod: mod, invoke: invoke}, nil
}

// Close tears down the runtime and every guest in it.
func (s *Sandbox) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.runtime.Close(ctx)
}

// hostInvoke implements host_invoke(req_ptr, req_len) -> i64.
// The response is written 8-byte aligned after the request and returned as
// ptr<<32 | len. Zero means the call could not be delivered.
func (s *Sandbox) hostInvoke(ctx context.Context, mod api.Module, stack []uint64) {
	ptr := api.DecodeU32(stack[0])
	n := api.DecodeU32(stack[1])
	stack[0] = 0

	mem := mod.Memory()
	if mem == nil {
		s.logger.Warn("host_invoke from module without memory", zap.String("module", mod.Name()))
		return
	}

	view, ok := mem.Read(ptr, n)
	if !ok {
		s.logger.Warn("host_invoke request out of bounds",
			zap.String("module", mod.Name()),
			zap.Error(errors.OutOfBounds(errors.PhaseSandbox, ptr, n, mem.Size())))
		return
	}
	// The view is invalidated if memory grows below.
	req := bytes.Clone(view)

	resp := hostcall.Serve(ctx, s.bridge, req)
	if resp == nil {
		return
	}

	out := align8(uint64(ptr) + uint64(n))
	end := out + uint64(len(resp))
	if end > math.MaxUint32 {
		s.logger.Warn("host_invoke response beyond 4GiB", zap.Uint64("end", end))
		return
	}
	if size := uint64(mem.Size()); end > size {
		pages := (end - size + pageSize - 1) / pageSize
		if _, ok := mem.Grow(uint32(pages)); !ok {
			s.logger.Warn("host_invoke cannot grow memory",
				zap.String("module", mod.Name()),
				zap.Error(errors.AllocationFailed(errors.PhaseSandbox, uint32(len(resp)))))
			return
		}
	}
	if !mem.Write(uint32(out), resp) {
		return
	}

	stack[0] = out<<32 | uint64(len(resp))
}

func align8(v uint64) uint64 {
	return (v + 7) &^ 7
}
