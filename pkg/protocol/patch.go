package protocol

import (
	"fmt"

	"github.com/eghact/eghact/internal/errors"
	"github.com/eghact/eghact/pkg/vdom"
)

// Node modes for Create and Replace payloads.
const (
	nodeInline byte = 0x00
	nodeRef    byte = 0x01
)

// EncodePatches appends a patch list with inline nodes and values.
func EncodePatches(e *Encoder, patches []vdom.Patch) {
	encodePatches(e, patches, false)
}

// EncodePatchRefs appends a patch list in reference form: Create and
// Replace nodes and Props values are written as markers pointing into the
// new tree. The result must be decoded with DecodePatchesFor.
func EncodePatchRefs(e *Encoder, patches []vdom.Patch) {
	encodePatches(e, patches, true)
}

func encodePatches(e *Encoder, patches []vdom.Patch, refs bool) {
	e.WriteUvarint(uint64(len(patches)))
	for _, p := range patches {
		e.WriteByte(byte(p.Kind))
		switch p.Kind {
		case vdom.PatchCreate, vdom.PatchReplace:
			if refs {
				e.WriteByte(nodeRef)
			} else {
				e.WriteByte(nodeInline)
				EncodeTree(e, p.Node)
			}
		case vdom.PatchText:
			e.WriteString(p.Text)
		case vdom.PatchProps:
			e.WriteUvarint(uint64(len(p.Props)))
			for _, c := range p.Props {
				e.WriteString(c.Key)
				switch {
				case c.Removed():
					e.WriteByte(tagNil)
				case refs:
					e.WriteByte(tagRef)
				default:
					EncodeValue(e, c.Value)
				}
			}
		case vdom.PatchChildren:
			e.WriteUvarint(uint64(len(p.Children)))
			for _, c := range p.Children {
				e.WriteUvarint(uint64(c.Index))
				encodePatches(e, c.Patches, refs)
			}
		}
	}
}

// DecodePatches reads a patch list with inline nodes and values.
func DecodePatches(d *Decoder) ([]vdom.Patch, error) {
	return decodePatches(d, nil, false, 0)
}

// DecodePatchesFor reads a patch list produced by diffing against next,
// resolving reference markers to the nodes and prop values of next.
func DecodePatchesFor(d *Decoder, next *vdom.VNode) ([]vdom.Patch, error) {
	return decodePatches(d, next, true, 0)
}

func decodePatches(d *Decoder, next *vdom.VNode, resolve bool, depth int) ([]vdom.Patch, error) {
	if err := checkDepth(depth, MaxPatchDepth); err != nil {
		return nil, err
	}

	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	patches := make([]vdom.Patch, 0, count)
	for i := 0; i < count; i++ {
		kind, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		p := vdom.Patch{Kind: vdom.PatchKind(kind)}

		switch p.Kind {
		case vdom.PatchRemove:
		case vdom.PatchCreate, vdom.PatchReplace:
			mode, err := d.ReadByte()
			if err != nil {
				return nil, err
			}
			switch {
			case mode == nodeInline:
				if p.Node, err = DecodeTree(d); err != nil {
					return nil, err
				}
			case mode == nodeRef && resolve:
				p.Node = next
			default:
				return nil, fmt.Errorf("%w: node mode 0x%02x", ErrUnknownTag, mode)
			}
		case vdom.PatchText:
			if p.Text, err = d.ReadString(); err != nil {
				return nil, err
			}
		case vdom.PatchProps:
			if p.Props, err = decodePropChanges(d, next, resolve); err != nil {
				return nil, err
			}
		case vdom.PatchChildren:
			if p.Children, err = decodeChildPatches(d, next, resolve, depth); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: patch kind 0x%02x", ErrUnknownTag, kind)
		}
		patches = append(patches, p)
	}
	return patches, nil
}

func decodePropChanges(d *Decoder, next *vdom.VNode, resolve bool) ([]vdom.PropChange, error) {
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	changes := make([]vdom.PropChange, 0, count)
	for i := 0; i < count; i++ {
		key, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		v, ref, err := decodeValue(d)
		if err != nil {
			return nil, err
		}
		if ref {
			if !resolve || next == nil {
				return nil, fmt.Errorf("%w: unresolved prop reference %q", ErrUnknownTag, key)
			}
			v = next.Props[key]
		}
		changes = append(changes, vdom.PropChange{Key: key, Value: v})
	}
	return changes, nil
}

func decodeChildPatches(d *Decoder, next *vdom.VNode, resolve bool, depth int) ([]vdom.ChildPatch, error) {
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	children := make([]vdom.ChildPatch, 0, count)
	for i := 0; i < count; i++ {
		idx, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		if idx > MaxCollectionCount {
			return nil, ErrCollectionTooLarge
		}

		var child *vdom.VNode
		if next != nil && int(idx) < len(next.Children) {
			child = next.Children[idx]
		}
		nested, err := decodePatches(d, child, resolve, depth+1)
		if err != nil {
			return nil, err
		}
		children = append(children, vdom.ChildPatch{Index: int(idx), Patches: nested})
	}
	return children, nil
}

// MarshalPatches encodes a patch list into a new buffer.
func MarshalPatches(patches []vdom.Patch) []byte {
	e := NewEncoder()
	EncodePatches(e, patches)
	return e.Bytes()
}

// UnmarshalPatches decodes a buffer holding exactly one inline patch list.
func UnmarshalPatches(b []byte) ([]vdom.Patch, error) {
	d := NewDecoder(b)
	patches, err := DecodePatches(d)
	if err == nil && !d.EOF() {
		err = ErrTrailingBytes
	}
	if err != nil {
		return nil, errors.New(errors.CodeProtocolDecode).WithSubject("patches").Wrap(err)
	}
	return patches, nil
}
