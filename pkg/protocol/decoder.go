package protocol

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// Allocation limits to prevent huge allocations from malformed length
// prefixes.
const (
	// DefaultMaxAllocation is the maximum size of a single string or byte
	// slice (4MB).
	DefaultMaxAllocation = 4 * 1024 * 1024

	// MaxFrameSize is the maximum frame payload (16MB).
	MaxFrameSize = 16 * 1024 * 1024

	// MaxCollectionCount is the maximum number of items in a collection.
	MaxCollectionCount = 100_000
)

// Common decoding errors.
var (
	ErrVarintOverflow     = errors.New("protocol: varint overflow")
	ErrAllocationTooLarge = errors.New("protocol: allocation size exceeds limit")
	ErrCollectionTooLarge = errors.New("protocol: collection count exceeds limit")
	ErrUnknownTag         = errors.New("protocol: unknown tag")
	ErrTrailingBytes      = errors.New("protocol: trailing bytes after payload")
)

// Decoder is a binary decoder that reads from a byte buffer.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder creates a new decoder from the given byte slice.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// EOF returns true if all bytes have been read.
func (d *Decoder) EOF() bool {
	return d.pos >= len(d.buf)
}

// ReadByte reads a single byte.
func (d *Decoder) ReadByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

// ReadUvarint reads an unsigned varint.
func (d *Decoder) ReadUvarint() (uint64, error) {
	var v uint64
	var shift uint

	for {
		if d.pos >= len(d.buf) {
			return 0, io.ErrUnexpectedEOF
		}
		b := d.buf[d.pos]
		d.pos++
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, ErrVarintOverflow
		}
	}
}

// ReadSvarint reads a signed varint using ZigZag decoding.
func (d *Decoder) ReadSvarint() (int64, error) {
	uv, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	v := int64(uv >> 1)
	if uv&1 != 0 {
		v = ^v
	}
	return v, nil
}

// ReadString reads a length-prefixed UTF-8 string.
func (d *Decoder) ReadString() (string, error) {
	b, err := d.readLen()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadLenBytes reads length-prefixed bytes. The result is a copy.
func (d *Decoder) ReadLenBytes() ([]byte, error) {
	b, err := d.readLen()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (d *Decoder) readLen() ([]byte, error) {
	length, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if length > uint64(d.Remaining()) {
		return nil, io.ErrUnexpectedEOF
	}
	if length > DefaultMaxAllocation {
		return nil, ErrAllocationTooLarge
	}
	n := int(length)
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// ReadBool reads a boolean. Any non-zero byte is true.
func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0x00, nil
}

// ReadFloat64 reads a little-endian IEEE 754 float64.
func (d *Decoder) ReadFloat64() (float64, error) {
	if d.pos+8 > len(d.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint64(d.buf[d.pos:])
	d.pos += 8
	return math.Float64frombits(v), nil
}

// ReadFrame reads a little-endian uint32 length-prefixed frame. The
// returned slice references the decoder's buffer.
func (d *Decoder) ReadFrame() ([]byte, error) {
	if d.pos+4 > len(d.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	n := binary.LittleEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	if n > MaxFrameSize {
		return nil, ErrAllocationTooLarge
	}
	if int(n) > d.Remaining() {
		return nil, io.ErrUnexpectedEOF
	}
	b := d.buf[d.pos : d.pos+int(n)]
	d.pos += int(n)
	return b, nil
}

// ReadCollectionCount reads a varint count and validates it against limits.
// Every item takes at least one byte, so counts above the remaining length
// are rejected.
func (d *Decoder) ReadCollectionCount() (int, error) {
	count, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if count > MaxCollectionCount {
		return 0, ErrCollectionTooLarge
	}
	if count > uint64(d.Remaining()) {
		return 0, io.ErrUnexpectedEOF
	}
	return int(count), nil
}
