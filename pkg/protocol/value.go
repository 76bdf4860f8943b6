package protocol

import (
	"fmt"
	"sort"

	"github.com/eghact/eghact/pkg/vdom"
)

// Value tags.
const (
	tagNil    byte = 0x00
	tagString byte = 0x01
	tagBool   byte = 0x02
	tagInt    byte = 0x03
	tagFloat  byte = 0x04
	tagMap    byte = 0x05
	tagFunc   byte = 0x06
	tagOpaque byte = 0x07
	tagRef    byte = 0x08
)

// FuncRef stands in for a function value after decoding. Code is the
// function's identity as reported by vdom.FuncIdentity.
type FuncRef struct {
	Code uint64
}

// Opaque stands in for a value with no dedicated encoding. Text is its
// fmt.Sprint rendering.
type Opaque struct {
	Text string
}

// EncodeValue appends a tagged prop value.
//
// Maps with string keys are written with their values rendered as text,
// which covers style maps. Values with no dedicated encoding are written as
// Opaque text.
func EncodeValue(e *Encoder, v any) {
	switch val := v.(type) {
	case nil:
		e.WriteByte(tagNil)
	case string:
		e.WriteByte(tagString)
		e.WriteString(val)
	case bool:
		e.WriteByte(tagBool)
		e.WriteBool(val)
	case int:
		e.WriteByte(tagInt)
		e.WriteSvarint(int64(val))
	case int64:
		e.WriteByte(tagInt)
		e.WriteSvarint(val)
	case int32:
		e.WriteByte(tagInt)
		e.WriteSvarint(int64(val))
	case float64:
		e.WriteByte(tagFloat)
		e.WriteFloat64(val)
	case float32:
		e.WriteByte(tagFloat)
		e.WriteFloat64(float64(val))
	case map[string]string:
		writeStringMap(e, val)
	case map[string]any:
		m := make(map[string]string, len(val))
		for k, x := range val {
			m[k] = fmt.Sprint(x)
		}
		writeStringMap(e, m)
	case FuncRef:
		e.WriteByte(tagFunc)
		e.WriteUvarint(val.Code)
	case Opaque:
		e.WriteByte(tagOpaque)
		e.WriteString(val.Text)
	default:
		if id, ok := vdom.FuncIdentity(v); ok {
			e.WriteByte(tagFunc)
			e.WriteUvarint(uint64(id))
			return
		}
		e.WriteByte(tagOpaque)
		e.WriteString(fmt.Sprint(v))
	}
}

func writeStringMap(e *Encoder, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e.WriteByte(tagMap)
	e.WriteUvarint(uint64(len(keys)))
	for _, k := range keys {
		e.WriteString(k)
		e.WriteString(m[k])
	}
}

// DecodeValue reads a tagged prop value. Integers decode as int, floats as
// float64, maps as map[string]string and functions as FuncRef.
func DecodeValue(d *Decoder) (any, error) {
	v, ref, err := decodeValue(d)
	if err != nil {
		return nil, err
	}
	if ref {
		return nil, ErrUnknownTag
	}
	return v, nil
}

// decodeValue reads a value, reporting whether it was a reference marker.
func decodeValue(d *Decoder) (any, bool, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return nil, false, err
	}
	switch tag {
	case tagNil:
		return nil, false, nil
	case tagString:
		s, err := d.ReadString()
		return s, false, err
	case tagBool:
		b, err := d.ReadBool()
		return b, false, err
	case tagInt:
		n, err := d.ReadSvarint()
		return int(n), false, err
	case tagFloat:
		f, err := d.ReadFloat64()
		return f, false, err
	case tagMap:
		count, err := d.ReadCollectionCount()
		if err != nil {
			return nil, false, err
		}
		m := make(map[string]string, count)
		for i := 0; i < count; i++ {
			k, err := d.ReadString()
			if err != nil {
				return nil, false, err
			}
			v, err := d.ReadString()
			if err != nil {
				return nil, false, err
			}
			m[k] = v
		}
		return m, false, nil
	case tagFunc:
		code, err := d.ReadUvarint()
		return FuncRef{Code: code}, false, err
	case tagOpaque:
		s, err := d.ReadString()
		return Opaque{Text: s}, false, err
	case tagRef:
		return nil, true, nil
	default:
		return nil, false, fmt.Errorf("%w: value tag 0x%02x", ErrUnknownTag, tag)
	}
}
