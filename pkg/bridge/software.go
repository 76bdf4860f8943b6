package bridge

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/eghact/eghact/internal/telemetry"
	"github.com/eghact/eghact/pkg/vdom"
)

// Software implements Backend in Go.
type Software struct {
	*counters
}

// NewSoftware creates the software backend.
func NewSoftware(opts ...Option) *Software {
	return &Software{counters: newCounters("software", newOptions(opts))}
}

// DiffTrees runs vdom.Diff.
func (s *Software) DiffTrees(ctx context.Context, prev, next *vdom.VNode) []vdom.Patch {
	start := time.Now()
	_, span := telemetry.StartSpan(ctx, s.tracer, "bridge.diff", attribute.String("backend", s.name))
	patches := vdom.Diff(prev, next)
	span.SetAttributes(attribute.Int("patches", vdom.CountPatches(patches)))
	telemetry.EndSpan(span, nil)
	s.observe(OpDiff, start)
	return patches
}

// CompileTemplateFragment parses markup as the body of an HTML document and
// returns its content as a static tree. See compileFragment.
func (s *Software) CompileTemplateFragment(_ context.Context, markup string) (*vdom.VNode, error) {
	start := time.Now()
	defer s.observe(OpCompile, start)
	return compileFragment(markup)
}

// ComputeEffectOrdering keeps the first occurrence of each id.
func (s *Software) ComputeEffectOrdering(_ context.Context, ids []uint64) []uint64 {
	start := time.Now()
	defer s.observe(OpOrder, start)
	return dedupe(ids)
}

// Close is a no-op.
func (s *Software) Close(context.Context) error { return nil }

func dedupe(ids []uint64) []uint64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
