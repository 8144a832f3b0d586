package s2c

import (
	"reflect"

	"github.com/outofforest/proton"
	"github.com/outofforest/proton/helpers"
	"github.com/outofforest/quicchat/wire"
	"github.com/pkg/errors"
)

const (
	id3 uint64 = iota + 1
	id2
	id1
	id0
)

var _ proton.Marshaller = Marshaller{}

// NewMarshaller creates marshaller.
func NewMarshaller() Marshaller {
	return Marshaller{}
}

// Marshaller marshals and unmarshals messages.
type Marshaller struct {
}

// Messages returns list of the message types supported by marshaller.
func (m Marshaller) Messages() []any {
	return []any{
		wire.Hello{},
		wire.Messages{},
		wire.MessagesLen{},
		wire.OK{},
	}
}

// ID returns ID of message type.
func (m Marshaller) ID(msg any) (uint64, error) {
	switch msg.(type) {
	case *wire.Hello:
		return id3, nil
	case *wire.Messages:
		return id2, nil
	case *wire.MessagesLen:
		return id1, nil
	case *wire.OK:
		return id0, nil
	default:
		return 0, errors.Errorf("unknown message type %T", msg)
	}
}

// Size computes the size of marshalled message.
func (m Marshaller) Size(msg any) (uint64, error) {
	switch msg2 := msg.(type) {
	case *wire.Hello:
		return size3(msg2), nil
	case *wire.Messages:
		return size2(msg2), nil
	case *wire.MessagesLen:
		return size1(msg2), nil
	case *wire.OK:
		return size0(msg2), nil
	default:
		return 0, errors.Errorf("unknown message type %T", msg)
	}
}

// Marshal marshals message.
func (m Marshaller) Marshal(msg any, buf []byte) (retID, retSize uint64, retErr error) {
	defer helpers.RecoverMarshal(&retErr)

	switch msg2 := msg.(type) {
	case *wire.Hello:
		return id3, marshal3(msg2, buf), nil
	case *wire.Messages:
		return id2, marshal2(msg2, buf), nil
	case *wire.MessagesLen:
		return id1, marshal1(msg2, buf), nil
	case *wire.OK:
		return id0, marshal0(msg2, buf), nil
	default:
		return 0, 0, errors.Errorf("unknown message type %T", msg)
	}
}

// Unmarshal unmarshals message.
func (m Marshaller) Unmarshal(id uint64, buf []byte) (retMsg any, retSize uint64, retErr error) {
	defer helpers.RecoverUnmarshal(&retErr)

	switch id {
	case id3:
		msg := &wire.Hello{}
		return msg, unmarshal3(msg, buf), nil
	case id2:
		msg := &wire.Messages{}
		return msg, unmarshal2(msg, buf), nil
	case id1:
		msg := &wire.MessagesLen{}
		return msg, unmarshal1(msg, buf), nil
	case id0:
		msg := &wire.OK{}
		return msg, unmarshal0(msg, buf), nil
	default:
		return nil, 0, errors.Errorf("unknown ID %d", id)
	}
}

// MakePatch creates a patch.
func (m Marshaller) MakePatch(msgDst, msgSrc any, buf []byte) (retID, retSize uint64, retErr error) {
	defer helpers.RecoverMakePatch(&retErr)

	switch msg2 := msgDst.(type) {
	case *wire.Hello:
		return id3, makePatch3(msg2, msgSrc.(*wire.Hello), buf), nil
	case *wire.Messages:
		return id2, makePatch2(msg2, msgSrc.(*wire.Messages), buf), nil
	case *wire.MessagesLen:
		return id1, makePatch1(msg2, msgSrc.(*wire.MessagesLen), buf), nil
	case *wire.OK:
		return id0, makePatch0(msg2, msgSrc.(*wire.OK), buf), nil
	default:
		return 0, 0, errors.Errorf("unknown message type %T", msgDst)
	}
}

// ApplyPatch applies patch.
func (m Marshaller) ApplyPatch(msg any, buf []byte) (retSize uint64, retErr error) {
	defer helpers.RecoverUnmarshal(&retErr)

	switch msg2 := msg.(type) {
	case *wire.Hello:
		return applyPatch3(msg2, buf), nil
	case *wire.Messages:
		return applyPatch2(msg2, buf), nil
	case *wire.MessagesLen:
		return applyPatch1(msg2, buf), nil
	case *wire.OK:
		return applyPatch0(msg2, buf), nil
	default:
		return 0, errors.Errorf("unknown message type %T", msg)
	}
}

func size0(m *wire.OK) uint64 {
	var n uint64
	return n
}

func marshal0(m *wire.OK, b []byte) uint64 {
	var o uint64

	return o
}

func unmarshal0(m *wire.OK, b []byte) uint64 {
	var o uint64

	return o
}

func makePatch0(m, mSrc *wire.OK, b []byte) uint64 {
	var o uint64

	return o
}

func applyPatch0(m *wire.OK, b []byte) uint64 {
	var o uint64

	return o
}

func size1(m *wire.MessagesLen) uint64 {
	var n uint64 = 1
	{
		// Length

		helpers.UInt64Size(m.Length, &n)
	}
	return n
}

func marshal1(m *wire.MessagesLen, b []byte) uint64 {
	var o uint64
	{
		// Length

		helpers.UInt64Marshal(m.Length, b, &o)
	}

	return o
}

func unmarshal1(m *wire.MessagesLen, b []byte) uint64 {
	var o uint64
	{
		// Length

		helpers.UInt64Unmarshal(&m.Length, b, &o)
	}

	return o
}

func makePatch1(m, mSrc *wire.MessagesLen, b []byte) uint64 {
	var o uint64 = 1
	{
		// Length

		if reflect.DeepEqual(m.Length, mSrc.Length) {
			b[0] &= 0xFE
		} else {
			b[0] |= 0x01
			helpers.UInt64Marshal(m.Length, b, &o)
		}
	}

	return o
}

func applyPatch1(m *wire.MessagesLen, b []byte) uint64 {
	var o uint64 = 1
	{
		// Length

		if b[0]&0x01 != 0 {
			helpers.UInt64Unmarshal(&m.Length, b, &o)
		}
	}

	return o
}

func size2(m *wire.Messages) uint64 {
	var n uint64 = 1
	{
		// Messages

		l := uint64(len(m.Messages))
		helpers.UInt64Size(l, &n)
		n += l
		for _, sv1 := range m.Messages {
			{
				l := uint64(len(sv1))
				helpers.UInt64Size(l, &n)
				n += l
			}
		}
	}
	return n
}

func marshal2(m *wire.Messages, b []byte) uint64 {
	var o uint64
	{
		// Messages

		helpers.UInt64Marshal(uint64(len(m.Messages)), b, &o)
		for _, sv1 := range m.Messages {
			{
				l := uint64(len(sv1))
				helpers.UInt64Marshal(l, b, &o)
				copy(b[o:o+l], sv1)
				o += l
			}
		}
	}

	return o
}

func unmarshal2(m *wire.Messages, b []byte) uint64 {
	var o uint64
	{
		// Messages

		var l uint64
		helpers.UInt64Unmarshal(&l, b, &o)
		if l > 0 {
			m.Messages = make([]string, l)
			for i1 := range l {
				{
					var l uint64
					helpers.UInt64Unmarshal(&l, b, &o)
					if l > 0 {
						m.Messages[i1] = string(b[o : o+l])
						o += l
					}
				}
			}
		}
	}

	return o
}

func makePatch2(m, mSrc *wire.Messages, b []byte) uint64 {
	var o uint64 = 1
	{
		// Messages

		if reflect.DeepEqual(m.Messages, mSrc.Messages) {
			b[0] &= 0xFE
		} else {
			b[0] |= 0x01
			helpers.UInt64Marshal(uint64(len(m.Messages)), b, &o)
			for _, sv1 := range m.Messages {
				{
					l := uint64(len(sv1))
					helpers.UInt64Marshal(l, b, &o)
					copy(b[o:o+l], sv1)
					o += l
				}
			}
		}
	}

	return o
}

func applyPatch2(m *wire.Messages, b []byte) uint64 {
	var o uint64 = 1
	{
		// Messages

		if b[0]&0x01 != 0 {
			var l uint64
			helpers.UInt64Unmarshal(&l, b, &o)
			if l > 0 {
				m.Messages = make([]string, l)
				for i1 := range l {
					{
						var l uint64
						helpers.UInt64Unmarshal(&l, b, &o)
						if l > 0 {
							m.Messages[i1] = string(b[o : o+l])
							o += l
						}
					}
				}
			}
		}
	}

	return o
}

func size3(m *wire.Hello) uint64 {
	var n uint64
	return n
}

func marshal3(m *wire.Hello, b []byte) uint64 {
	var o uint64

	return o
}

func unmarshal3(m *wire.Hello, b []byte) uint64 {
	var o uint64

	return o
}

func makePatch3(m, mSrc *wire.Hello, b []byte) uint64 {
	var o uint64

	return o
}

func applyPatch3(m *wire.Hello, b []byte) uint64 {
	var o uint64

	return o
}
