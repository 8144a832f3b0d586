package c2s

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
		wire.GetAll{},
		wire.GetLen{},
		wire.Post{},
		wire.Clear{},
	}
}

// ID returns ID of message type.
func (m Marshaller) ID(msg any) (uint64, error) {
	switch msg.(type) {
	case *wire.GetAll:
		return id3, nil
	case *wire.GetLen:
		return id2, nil
	case *wire.Post:
		return id1, nil
	case *wire.Clear:
		return id0, nil
	default:
		return 0, errors.Errorf("unknown message type %T", msg)
	}
}

// Size computes the size of marshalled message.
func (m Marshaller) Size(msg any) (uint64, error) {
	switch msg2 := msg.(type) {
	case *wire.GetAll:
		return size3(msg2), nil
	case *wire.GetLen:
		return size2(msg2), nil
	case *wire.Post:
		return size1(msg2), nil
	case *wire.Clear:
		return size0(msg2), nil
	default:
		return 0, errors.Errorf("unknown message type %T", msg)
	}
}

// Marshal marshals message.
func (m Marshaller) Marshal(msg any, buf []byte) (retID, retSize uint64, retErr error) {
	defer helpers.RecoverMarshal(&retErr)

	switch msg2 := msg.(type) {
	case *wire.GetAll:
		return id3, marshal3(msg2, buf), nil
	case *wire.GetLen:
		return id2, marshal2(msg2, buf), nil
	case *wire.Post:
		return id1, marshal1(msg2, buf), nil
	case *wire.Clear:
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
		msg := &wire.GetAll{}
		return msg, unmarshal3(msg, buf), nil
	case id2:
		msg := &wire.GetLen{}
		return msg, unmarshal2(msg, buf), nil
	case id1:
		msg := &wire.Post{}
		return msg, unmarshal1(msg, buf), nil
	case id0:
		msg := &wire.Clear{}
		return msg, unmarshal0(msg, buf), nil
	default:
		return nil, 0, errors.Errorf("unknown ID %d", id)
	}
}

// MakePatch creates a patch.
func (m Marshaller) MakePatch(msgDst, msgSrc any, buf []byte) (retID, retSize uint64, retErr error) {
	defer helpers.RecoverMakePatch(&retErr)

	switch msg2 := msgDst.(type) {
	case *wire.GetAll:
		return id3, makePatch3(msg2, msgSrc.(*wire.GetAll), buf), nil
	case *wire.GetLen:
		return id2, makePatch2(msg2, msgSrc.(*wire.GetLen), buf), nil
	case *wire.Post:
		return id1, makePatch1(msg2, msgSrc.(*wire.Post), buf), nil
	case *wire.Clear:
		return id0, makePatch0(msg2, msgSrc.(*wire.Clear), buf), nil
	default:
		return 0, 0, errors.Errorf("unknown message type %T", msgDst)
	}
}

// ApplyPatch applies patch.
func (m Marshaller) ApplyPatch(msg any, buf []byte) (retSize uint64, retErr error) {
	defer helpers.RecoverUnmarshal(&retErr)

	switch msg2 := msg.(type) {
	case *wire.GetAll:
		return applyPatch3(msg2, buf), nil
	case *wire.GetLen:
		return applyPatch2(msg2, buf), nil
	case *wire.Post:
		return applyPatch1(msg2, buf), nil
	case *wire.Clear:
		return applyPatch0(msg2, buf), nil
	default:
		return 0, errors.Errorf("unknown message type %T", msg)
	}
}

func size0(m *wire.Clear) uint64 {
	var n uint64
	return n
}

func marshal0(m *wire.Clear, b []byte) uint64 {
	var o uint64

	return o
}

func unmarshal0(m *wire.Clear, b []byte) uint64 {
	var o uint64

	return o
}

func makePatch0(m, mSrc *wire.Clear, b []byte) uint64 {
	var o uint64

	return o
}

func applyPatch0(m *wire.Clear, b []byte) uint64 {
	var o uint64

	return o
}

func size1(m *wire.Post) uint64 {
	var n uint64 = 1
	{
		// Content

		{
			l := uint64(len(m.Content))
			helpers.UInt64Size(l, &n)
			n += l
		}
	}
	return n
}

func marshal1(m *wire.Post, b []byte) uint64 {
	var o uint64
	{
		// Content

		{
			l := uint64(len(m.Content))
			helpers.UInt64Marshal(l, b, &o)
			copy(b[o:o+l], m.Content)
			o += l
		}
	}

	return o
}

func unmarshal1(m *wire.Post, b []byte) uint64 {
	var o uint64
	{
		// Content

		{
			var l uint64
			helpers.UInt64Unmarshal(&l, b, &o)
			if l > 0 {
				m.Content = string(b[o : o+l])
				o += l
			}
		}
	}

	return o
}

func makePatch1(m, mSrc *wire.Post, b []byte) uint64 {
	var o uint64 = 1
	{
		// Content

		if reflect.DeepEqual(m.Content, mSrc.Content) {
			b[0] &= 0xFE
		} else {
			b[0] |= 0x01
			{
				l := uint64(len(m.Content))
				helpers.UInt64Marshal(l, b, &o)
				copy(b[o:o+l], m.Content)
				o += l
			}
		}
	}

	return o
}

func applyPatch1(m *wire.Post, b []byte) uint64 {
	var o uint64 = 1
	{
		// Content

		if b[0]&0x01 != 0 {
			{
				var l uint64
				helpers.UInt64Unmarshal(&l, b, &o)
				if l > 0 {
					m.Content = string(b[o : o+l])
					o += l
				}
			}
		}
	}

	return o
}

func size2(m *wire.GetLen) uint64 {
	var n uint64
	return n
}

func marshal2(m *wire.GetLen, b []byte) uint64 {
	var o uint64

	return o
}

func unmarshal2(m *wire.GetLen, b []byte) uint64 {
	var o uint64

	return o
}

func makePatch2(m, mSrc *wire.GetLen, b []byte) uint64 {
	var o uint64

	return o
}

func applyPatch2(m *wire.GetLen, b []byte) uint64 {
	var o uint64

	return o
}

func size3(m *wire.GetAll) uint64 {
	var n uint64
	return n
}

func marshal3(m *wire.GetAll, b []byte) uint64 {
	var o uint64

	return o
}

func unmarshal3(m *wire.GetAll, b []byte) uint64 {
	var o uint64

	return o
}

func makePatch3(m, mSrc *wire.GetAll, b []byte) uint64 {
	var o uint64

	return o
}

func applyPatch3(m *wire.GetAll, b []byte) uint64 {
	var o uint64

	return o
}
