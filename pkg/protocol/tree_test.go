package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eerrors "github.com/eghact/eghact/internal/errors"
	"github.com/eghact/eghact/pkg/vdom"
)

func TestTreeRoundTrip(t *testing.T) {
	tree := vdom.H("div", vdom.Props{"class": "card", "hidden": true, "key": "k1", "tabindex": 2},
		vdom.H("h1", nil, "Title"),
		vdom.Fragment("a", vdom.H("br", nil)),
		vdom.H("p", vdom.Props{"style": map[string]string{"color": "red"}}, "body"),
	)

	got, err := UnmarshalTree(MarshalTree(tree))
	require.NoError(t, err)

	assert.True(t, vdom.Equal(tree, got), "decoded tree should diff empty against the original")
	assert.Equal(t, "k1", got.Key)
	assert.Equal(t, 2, got.Props["tabindex"])
	assert.Equal(t, tree.Count(), got.Count())
}

func TestTreeNil(t *testing.T) {
	got, err := UnmarshalTree(MarshalTree(nil))
	require.NoError(t, err)
	assert.Nil(t, got)
}

type namedDef string

func (n namedDef) ComponentName() string { return string(n) }

func TestTreeComponentLosesDefinition(t *testing.T) {
	node := vdom.Comp(namedDef("Counter"), vdom.Props{"start": 3})
	got, err := UnmarshalTree(MarshalTree(node))
	require.NoError(t, err)

	assert.Equal(t, vdom.KindComponent, got.Kind)
	assert.Equal(t, "Counter", got.Tag)
	assert.Nil(t, got.Comp)
	assert.Equal(t, 3, got.Props["start"])
}

func TestTreeEventHandlersBecomeFuncRefs(t *testing.T) {
	handler := func() {}
	a := MarshalTree(vdom.H("button", vdom.Props{"onclick": handler}))
	b := MarshalTree(vdom.H("button", vdom.Props{"onclick": handler}))
	assert.Equal(t, a, b, "same handler should encode identically")

	got, err := UnmarshalTree(a)
	require.NoError(t, err)
	_, ok := got.Props["onclick"].(FuncRef)
	assert.True(t, ok)
}

func TestUnmarshalTreeErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"unknown kind", []byte{0x09}},
		{"truncated", MarshalTree(vdom.H("div", nil, "x"))[:5]},
		{"trailing bytes", append(MarshalTree(vdom.Text("x")), 0x00)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalTree(tt.buf)
			require.Error(t, err)
			assert.True(t, eerrors.HasCode(err, eerrors.CodeProtocolDecode))
		})
	}
}

func TestDecodeTreeDepthLimit(t *testing.T) {
	e := NewEncoder()
	for i := 0; i <= MaxTreeDepth+1; i++ {
		e.WriteByte(byte(vdom.KindElement))
		e.WriteString("div")
		e.WriteString("")
		e.WriteString("")
		e.WriteUvarint(0)
		e.WriteUvarint(1)
	}
	e.WriteByte(nilMarker)

	_, err := DecodeTree(NewDecoder(e.Bytes()))
	assert.True(t, errors.Is(err, ErrMaxDepthExceeded), "err = %v", err)
}
