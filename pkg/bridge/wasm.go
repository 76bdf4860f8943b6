package bridge

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.opentelemetry.io/otel/attribute"

	"github.com/eghact/eghact/internal/errors"
	"github.com/eghact/eghact/internal/telemetry"
	"github.com/eghact/eghact/pkg/protocol"
	"github.com/eghact/eghact/pkg/vdom"
)

// Guest exports.
const (
	exportMemory = "memory"
	exportAlloc  = "alloc"
	exportFree   = "free"
)

var requiredExports = []string{exportAlloc, exportFree, OpDiff, OpCompile, OpOrder}

// guest runs one exported operation on an encoded input.
type guest interface {
	call(ctx context.Context, export string, input []byte) ([]byte, error)
	close(ctx context.Context) error
}

// Wasm implements Backend on an accelerated WebAssembly module. Calls that
// fail are served by an embedded Software backend.
type Wasm struct {
	*counters
	guest    guest
	software *Software
}

// NewWasm compiles and instantiates code. The module must export the
// functions listed in the package documentation.
func NewWasm(ctx context.Context, code []byte, opts ...Option) (*Wasm, error) {
	g, err := loadGuest(ctx, code)
	if err != nil {
		return nil, err
	}
	return newWasm(g, opts...), nil
}

func newWasm(g guest, opts ...Option) *Wasm {
	return &Wasm{
		counters: newCounters("wasm", newOptions(opts)),
		guest:    g,
		software: NewSoftware(opts...),
	}
}

// DiffTrees diffs in the guest. Create, Replace and Props patches come back
// as references into next.
func (w *Wasm) DiffTrees(ctx context.Context, prev, next *vdom.VNode) []vdom.Patch {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, w.tracer, "bridge.diff", attribute.String("backend", w.name))

	patches, err := w.diff(ctx, prev, next)
	telemetry.EndSpan(span, err)
	if err != nil {
		w.callFailed(OpDiff, err)
		return w.software.DiffTrees(ctx, prev, next)
	}
	w.observe(OpDiff, start)
	return patches
}

func (w *Wasm) diff(ctx context.Context, prev, next *vdom.VNode) ([]vdom.Patch, error) {
	e := protocol.NewEncoder()
	e.WriteFrame(protocol.MarshalTree(prev))
	e.WriteFrame(protocol.MarshalTree(next))

	out, err := w.guest.call(ctx, OpDiff, e.Bytes())
	if err != nil {
		return nil, err
	}
	frame, err := protocol.NewDecoder(out).ReadFrame()
	if err != nil {
		return nil, decodeError(err)
	}
	d := protocol.NewDecoder(frame)
	patches, err := protocol.DecodePatchesFor(d, next)
	if err != nil {
		return nil, decodeError(err)
	}
	if !d.EOF() {
		return nil, decodeError(protocol.ErrTrailingBytes)
	}
	return patches, nil
}

// CompileTemplateFragment compiles in the guest. Parse errors reported by
// the software path are returned as is; guest failures fall back.
func (w *Wasm) CompileTemplateFragment(ctx context.Context, markup string) (*vdom.VNode, error) {
	start := time.Now()
	e := protocol.NewEncoder()
	e.WriteString(markup)

	out, err := w.guest.call(ctx, OpCompile, e.Bytes())
	if err == nil {
		var tree *vdom.VNode
		if tree, err = protocol.UnmarshalTree(out); err == nil {
			w.observe(OpCompile, start)
			return tree, nil
		}
		err = decodeError(err)
	}
	w.callFailed(OpCompile, err)
	return w.software.CompileTemplateFragment(ctx, markup)
}

// ComputeEffectOrdering orders in the guest.
func (w *Wasm) ComputeEffectOrdering(ctx context.Context, ids []uint64) []uint64 {
	start := time.Now()
	e := protocol.NewEncoder()
	e.WriteUvarint(uint64(len(ids)))
	for _, id := range ids {
		e.WriteUvarint(id)
	}

	out, err := w.guest.call(ctx, OpOrder, e.Bytes())
	if err == nil {
		var ordered []uint64
		if ordered, err = decodeIDs(out); err == nil {
			w.observe(OpOrder, start)
			return ordered
		}
		err = decodeError(err)
	}
	w.callFailed(OpOrder, err)
	return w.software.ComputeEffectOrdering(ctx, ids)
}

// Close closes the guest module and its runtime.
func (w *Wasm) Close(ctx context.Context) error {
	return w.guest.close(ctx)
}

func (w *Wasm) callFailed(op string, err error) {
	ee := errors.New(errors.CodeBridgeCallFailed).WithSubject(op).Wrap(err)
	w.logger.Warn("accelerated call failed, using software path",
		"code", ee.Code,
		"op", op,
		"error", err,
	)
	w.fallback(op)
}

func decodeError(err error) error {
	return errors.New(errors.CodeProtocolDecode).Wrap(err)
}

func decodeIDs(b []byte) ([]uint64, error) {
	d := protocol.NewDecoder(b)
	n, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	ids := make([]uint64, n)
	for i := range ids {
		if ids[i], err = d.ReadUvarint(); err != nil {
			return nil, err
		}
	}
	if !d.EOF() {
		return nil, protocol.ErrTrailingBytes
	}
	return ids, nil
}

// wazeroGuest is a guest instantiated in its own wazero runtime. Module
// instances are not safe for concurrent calls, so calls are serialized.
type wazeroGuest struct {
	runtime wazero.Runtime
	module  api.Module
	fns     map[string]api.Function

	mu sync.Mutex
}

func loadGuest(ctx context.Context, code []byte) (*wazeroGuest, error) {
	r := wazero.NewRuntime(ctx)

	// Modules built for WASI import its functions even when unused.
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("instantiate wasi: %w", err)
	}

	compiled, err := r.CompileModule(ctx, code)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("compile module: %w", err)
	}
	if _, ok := compiled.ExportedMemories()[exportMemory]; !ok {
		r.Close(ctx)
		return nil, fmt.Errorf("module does not export %q", exportMemory)
	}
	exported := compiled.ExportedFunctions()
	for _, name := range requiredExports {
		if _, ok := exported[name]; !ok {
			r.Close(ctx)
			return nil, fmt.Errorf("module does not export %q", name)
		}
	}

	cfg := wazero.NewModuleConfig().
		WithName("eghact-bridge").
		WithStartFunctions("_initialize")
	mod, err := r.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("instantiate module: %w", err)
	}

	g := &wazeroGuest{
		runtime: r,
		module:  mod,
		fns:     make(map[string]api.Function, len(requiredExports)),
	}
	for _, name := range requiredExports {
		g.fns[name] = mod.ExportedFunction(name)
	}
	return g, nil
}

func (g *wazeroGuest) call(ctx context.Context, export string, input []byte) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	mem := g.module.Memory()
	size := uint32(len(input))
	res, err := g.fns[exportAlloc].Call(ctx, uint64(size))
	if err != nil {
		return nil, fmt.Errorf("alloc %d bytes: %w", size, err)
	}
	ptr := uint32(res[0])
	defer g.free(ctx, ptr, size)

	if !mem.Write(ptr, input) {
		return nil, fmt.Errorf("write of %d bytes at 0x%x is out of range", size, ptr)
	}

	res, err = g.fns[export].Call(ctx, uint64(ptr), uint64(size))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", export, err)
	}
	outPtr, outLen := uint32(res[0]>>32), uint32(res[0])
	if outPtr == 0 {
		return nil, fmt.Errorf("%s reported failure", export)
	}
	defer g.free(ctx, outPtr, outLen)

	if outLen > protocol.MaxFrameSize {
		return nil, fmt.Errorf("%s: %w", export, protocol.ErrAllocationTooLarge)
	}
	view, ok := mem.Read(outPtr, outLen)
	if !ok {
		return nil, fmt.Errorf("read of %d bytes at 0x%x is out of range", outLen, outPtr)
	}
	return bytes.Clone(view), nil
}

func (g *wazeroGuest) free(ctx context.Context, ptr, size uint32) {
	_, _ = g.fns[exportFree].Call(ctx, uint64(ptr), uint64(size))
}

func (g *wazeroGuest) close(ctx context.Context) error {
	return g.runtime.Close(ctx)
}
