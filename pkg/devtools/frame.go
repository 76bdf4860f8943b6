package devtools

import (
	"github.com/eghact/eghact/internal/errors"
	"github.com/eghact/eghact/pkg/protocol"
	"github.com/eghact/eghact/pkg/vdom"
)

// Frame is one decoded patch feed message.
type Frame struct {
	Instance  uint64
	Component string
	Patches   []vdom.Patch
}

// EncodeFrame encodes a patch feed message.
func EncodeFrame(instance uint64, component string, patches []vdom.Patch) []byte {
	e := protocol.NewEncoder()
	e.WriteUvarint(instance)
	e.WriteString(component)
	protocol.EncodePatches(e, patches)
	return e.Bytes()
}

// DecodeFrame decodes a patch feed message.
func DecodeFrame(b []byte) (Frame, error) {
	var f Frame
	d := protocol.NewDecoder(b)

	var err error
	if f.Instance, err = d.ReadUvarint(); err != nil {
		return f, decodeErr(err)
	}
	if f.Component, err = d.ReadString(); err != nil {
		return f, decodeErr(err)
	}
	if f.Patches, err = protocol.DecodePatches(d); err != nil {
		return f, decodeErr(err)
	}
	if !d.EOF() {
		return f, decodeErr(protocol.ErrTrailingBytes)
	}
	return f, nil
}

func decodeErr(err error) error {
	return errors.New(errors.CodeProtocolDecode).WithSubject("feed frame").Wrap(err)
}
