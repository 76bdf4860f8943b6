package protocol

import (
	"errors"
	"io"
	"math"
	"testing"
)

func TestEncoderDecoder(t *testing.T) {
	e := NewEncoder()

	e.WriteByte(0x42)
	e.WriteUvarint(12345)
	e.WriteSvarint(-9876)
	e.WriteString("hello world")
	e.WriteLenBytes([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	e.WriteBool(true)
	e.WriteBool(false)
	e.WriteFloat64(2.718281828459045)
	e.WriteFrame([]byte("frame"))

	d := NewDecoder(e.Bytes())

	b, err := d.ReadByte()
	if err != nil || b != 0x42 {
		t.Errorf("ReadByte() = %x, %v; want 0x42, nil", b, err)
	}

	uv, err := d.ReadUvarint()
	if err != nil || uv != 12345 {
		t.Errorf("ReadUvarint() = %d, %v; want 12345, nil", uv, err)
	}

	sv, err := d.ReadSvarint()
	if err != nil || sv != -9876 {
		t.Errorf("ReadSvarint() = %d, %v; want -9876, nil", sv, err)
	}

	s, err := d.ReadString()
	if err != nil || s != "hello world" {
		t.Errorf("ReadString() = %q, %v; want \"hello world\", nil", s, err)
	}

	lb, err := d.ReadLenBytes()
	if err != nil || string(lb) != "\xDE\xAD\xBE\xEF" {
		t.Errorf("ReadLenBytes() = %x, %v", lb, err)
	}

	if v, err := d.ReadBool(); err != nil || !v {
		t.Errorf("ReadBool() = %v, %v; want true, nil", v, err)
	}
	if v, err := d.ReadBool(); err != nil || v {
		t.Errorf("ReadBool() = %v, %v; want false, nil", v, err)
	}

	f, err := d.ReadFloat64()
	if err != nil || f != 2.718281828459045 {
		t.Errorf("ReadFloat64() = %v, %v", f, err)
	}

	frame, err := d.ReadFrame()
	if err != nil || string(frame) != "frame" {
		t.Errorf("ReadFrame() = %q, %v", frame, err)
	}

	if !d.EOF() {
		t.Errorf("expected EOF, %d bytes remain", d.Remaining())
	}
}

func TestSvarintEdges(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 63, -64, math.MaxInt64, math.MinInt64} {
		e := NewEncoder()
		e.WriteSvarint(v)
		got, err := NewDecoder(e.Bytes()).ReadSvarint()
		if err != nil || got != v {
			t.Errorf("svarint %d round trip = %d, %v", v, got, err)
		}
	}
}

func TestEncoderReset(t *testing.T) {
	e := NewEncoder()
	e.WriteString("abc")
	e.Reset()
	if e.Len() != 0 {
		t.Errorf("Len() = %d after Reset", e.Len())
	}
}

func TestDecoderErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		read func(d *Decoder) error
		want error
	}{
		{"empty byte", nil, func(d *Decoder) error { _, err := d.ReadByte(); return err }, io.ErrUnexpectedEOF},
		{"truncated varint", []byte{0x80}, func(d *Decoder) error { _, err := d.ReadUvarint(); return err }, io.ErrUnexpectedEOF},
		{"varint overflow", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01},
			func(d *Decoder) error { _, err := d.ReadUvarint(); return err }, ErrVarintOverflow},
		{"string past end", []byte{0x05, 'a'}, func(d *Decoder) error { _, err := d.ReadString(); return err }, io.ErrUnexpectedEOF},
		{"short float", []byte{1, 2, 3}, func(d *Decoder) error { _, err := d.ReadFloat64(); return err }, io.ErrUnexpectedEOF},
		{"short frame header", []byte{1, 0}, func(d *Decoder) error { _, err := d.ReadFrame(); return err }, io.ErrUnexpectedEOF},
		{"frame past end", []byte{9, 0, 0, 0, 'x'}, func(d *Decoder) error { _, err := d.ReadFrame(); return err }, io.ErrUnexpectedEOF},
		{"huge collection", []byte{0xFF, 0xFF, 0xFF, 0x7F}, func(d *Decoder) error { _, err := d.ReadCollectionCount(); return err }, ErrCollectionTooLarge},
		{"collection past end", []byte{0x05}, func(d *Decoder) error { _, err := d.ReadCollectionCount(); return err }, io.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.read(NewDecoder(tt.buf)); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValueRoundTrip(t *testing.T) {
	handler := func() {}

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"string", "x", "x"},
		{"bool", true, true},
		{"int", 42, 42},
		{"int64", int64(-7), -7},
		{"float", 1.5, 1.5},
		{"string map", map[string]string{"color": "red"}, map[string]string{"color": "red"}},
		{"any map", map[string]any{"width": 10}, map[string]string{"width": "10"}},
		{"opaque", []int{1, 2}, Opaque{Text: "[1 2]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEncoder()
			EncodeValue(e, tt.in)
			got, err := DecodeValue(NewDecoder(e.Bytes()))
			if err != nil {
				t.Fatalf("DecodeValue: %v", err)
			}
			if !valuesEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}

	e := NewEncoder()
	EncodeValue(e, handler)
	EncodeValue(e, handler)
	d := NewDecoder(e.Bytes())
	a, _ := DecodeValue(d)
	b, _ := DecodeValue(d)
	if _, ok := a.(FuncRef); !ok || a != b {
		t.Errorf("functions decode to stable FuncRef, got %#v and %#v", a, b)
	}
}

func TestDecodeValueUnknownTag(t *testing.T) {
	if _, err := DecodeValue(NewDecoder([]byte{0x7E})); !errors.Is(err, ErrUnknownTag) {
		t.Errorf("err = %v, want ErrUnknownTag", err)
	}
}

func valuesEqual(a, b any) bool {
	am, aok := a.(map[string]string)
	bm, bok := b.(map[string]string)
	if aok || bok {
		if !aok || !bok || len(am) != len(bm) {
			return false
		}
		for k, v := range am {
			if bm[k] != v {
				return false
			}
		}
		return true
	}
	return a == b
}
