package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/errors"
	"github.com/wippyai/textcodec/hostcall"
)

// Guest is one instantiated trampoline module. Its Invoke crosses the
// sandbox boundary the way a script does: the request is written into
// guest memory, the guest calls host_invoke, and the response is read back
// out of guest memory.
//
// A module instance cannot be entered concurrently, so calls are
// serialized.
type Guest struct {
	mod    api.Module
	invoke api.Function
	name   string
	mu     sync.Mutex
}

var _ textcodec.Bridge = (*Guest)(nil)

// Name returns the module name.
func (g *Guest) Name() string {
	return g.name
}

// Invoke implements textcodec.Bridge.
func (g *Guest) Invoke(ctx context.Context, op string, payload []byte) ([]byte, error) {
	req, err := hostcall.EncodeRequest(op, payload)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.mod == nil {
		return nil, errors.HostUnavailable(op, "guest")
	}

	mem := g.mod.Memory()
	if err := ensureCapacity(mem, uint64(len(req))); err != nil {
		return nil, errors.Transport(op, err)
	}
	if !mem.Write(0, req) {
		return nil, errors.Transport(op, errors.OutOfBounds(errors.PhaseSandbox, 0, uint32(len(req)), mem.Size()))
	}

	results, err := g.invoke.Call(ctx, 0, uint64(len(req)))
	if err != nil {
		return nil, errors.Transport(op, err)
	}
	if len(results) != 1 || results[0] == 0 {
		return nil, errors.Transport(op, fmt.Errorf("host_invoke returned no response"))
	}

	ptr, n := uint32(results[0]>>32), uint32(results[0])
	view, ok := mem.Read(ptr, n)
	if !ok {
		return nil, errors.Transport(op, errors.OutOfBounds(errors.PhaseSandbox, ptr, n, mem.Size()))
	}

	resp, err := hostcall.DecodeResponse(bytes.Clone(view))
	if err != nil {
		return nil, errors.Transport(op, err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Close releases the module instance. Later calls fail with
// KindHostUnavailable.
func (g *Guest) Close(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.mod == nil {
		return nil
	}
	err := g.mod.Close(ctx)
	g.mod, g.invoke = nil, nil
	return err
}

func ensureCapacity(mem api.Memory, need uint64) error {
	size := uint64(mem.Size())
	if need <= size {
		return nil
	}
	pages := (need - size + pageSize - 1) / pageSize
	if pages > uint64(^uint32(0)) {
		return errors.AllocationFailed(errors.PhaseSandbox, uint32(need))
	}
	if _, ok := mem.Grow(uint32(pages)); !ok {
		return errors.AllocationFailed(errors.PhaseSandbox, uint32(need))
	}
	return nil
}
