package protocol

import (
	"fmt"

	"github.com/eghact/eghact/internal/errors"
	"github.com/eghact/eghact/pkg/vdom"
)

// nilMarker stands for an absent node.
const nilMarker = 0xFF

// EncodeTree appends a tree. Props are written in key order.
func EncodeTree(e *Encoder, node *vdom.VNode) {
	if node == nil {
		e.WriteByte(nilMarker)
		return
	}

	e.WriteByte(byte(node.Kind))
	e.WriteString(node.Tag)
	e.WriteString(node.Key)
	e.WriteString(node.Text)

	keys := node.Props.SortedKeys()
	e.WriteUvarint(uint64(len(keys)))
	for _, k := range keys {
		e.WriteString(k)
		EncodeValue(e, node.Props[k])
	}

	e.WriteUvarint(uint64(len(node.Children)))
	for _, child := range node.Children {
		EncodeTree(e, child)
	}
}

// DecodeTree reads a tree. Component nodes decode without their definition
// (Comp is nil) and function props decode as FuncRef.
func DecodeTree(d *Decoder) (*vdom.VNode, error) {
	return decodeTree(d, 0)
}

func decodeTree(d *Decoder, depth int) (*vdom.VNode, error) {
	if err := checkDepth(depth, MaxTreeDepth); err != nil {
		return nil, err
	}

	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if kind == nilMarker {
		return nil, nil
	}
	if vdom.Kind(kind) > vdom.KindFragment {
		return nil, fmt.Errorf("%w: node kind 0x%02x", ErrUnknownTag, kind)
	}

	node := &vdom.VNode{Kind: vdom.Kind(kind)}
	if node.Tag, err = d.ReadString(); err != nil {
		return nil, err
	}
	if node.Key, err = d.ReadString(); err != nil {
		return nil, err
	}
	if node.Text, err = d.ReadString(); err != nil {
		return nil, err
	}

	propCount, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if propCount > 0 || node.Kind == vdom.KindElement || node.Kind == vdom.KindComponent {
		node.Props = make(vdom.Props, propCount)
	}
	for i := 0; i < propCount; i++ {
		k, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		v, err := DecodeValue(d)
		if err != nil {
			return nil, err
		}
		node.Props[k] = v
	}

	childCount, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if childCount > 0 {
		node.Children = make([]*vdom.VNode, 0, childCount)
	}
	for i := 0; i < childCount; i++ {
		child, err := decodeTree(d, depth+1)
		if err != nil {
			return nil, err
		}
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node, nil
}

// MarshalTree encodes a tree into a new buffer.
func MarshalTree(node *vdom.VNode) []byte {
	e := NewEncoder()
	EncodeTree(e, node)
	return e.Bytes()
}

// UnmarshalTree decodes a buffer holding exactly one tree.
func UnmarshalTree(b []byte) (*vdom.VNode, error) {
	d := NewDecoder(b)
	node, err := DecodeTree(d)
	if err == nil && !d.EOF() {
		err = ErrTrailingBytes
	}
	if err != nil {
		return nil, errors.New(errors.CodeProtocolDecode).WithSubject("tree").Wrap(err)
	}
	return node, nil
}
