package codec

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"

	"github.com/outofforest/proton"
	"github.com/outofforest/quicchat/types"
	"github.com/outofforest/varuint64"
)

const checksumSize = 8

// Overhead is the maximum number of bytes added by the codec to the marshalled message.
const Overhead = varuint64.MaxSize + checksumSize

// New creates new codec. Zero maxMessageSize means no limit.
func New(m proton.Marshaller, maxMessageSize uint64) *Codec {
	return &Codec{
		m:              m,
		maxMessageSize: maxMessageSize,
	}
}

// Codec converts messages to and from their binary form.
// Binary form is: message ID (varuint64), payload, xxh3 checksum of both.
type Codec struct {
	m              proton.Marshaller
	maxMessageSize uint64
}

// Encode encodes message.
func (c *Codec) Encode(msg any) ([]byte, error) {
	id, err := c.m.ID(msg)
	if err != nil {
		return nil, errors.Wrapf(types.ErrMalformedMessage, "encoding failed: %s", err)
	}
	size, err := c.m.Size(msg)
	if err != nil {
		return nil, errors.Wrapf(types.ErrMalformedMessage, "encoding failed: %s", err)
	}

	n := varuint64.Size(id)
	totalSize := n + size + checksumSize
	if c.maxMessageSize > 0 && totalSize > c.maxMessageSize {
		return nil, errors.Wrapf(types.ErrMessageTooLarge, "message of %d bytes exceeds the limit of %d bytes",
			totalSize, c.maxMessageSize)
	}

	buf := make([]byte, totalSize)
	varuint64.Put(buf, id)
	if _, _, err := c.m.Marshal(msg, buf[n:]); err != nil {
		return nil, errors.Wrapf(types.ErrMalformedMessage, "encoding failed: %s", err)
	}

	binary.LittleEndian.PutUint64(buf[n+size:], xxh3.Hash(buf[:n+size]))
	return buf, nil
}

// Decode decodes message.
func (c *Codec) Decode(buf []byte) (any, error) {
	if c.maxMessageSize > 0 && uint64(len(buf)) > c.maxMessageSize {
		return nil, errors.Wrapf(types.ErrMessageTooLarge, "message of %d bytes exceeds the limit of %d bytes",
			len(buf), c.maxMessageSize)
	}
	if len(buf) <= checksumSize {
		return nil, errors.Wrapf(types.ErrMalformedMessage, "message of %d bytes is too short", len(buf))
	}

	data := buf[:len(buf)-checksumSize : len(buf)-checksumSize]
	if xxh3.Hash(data) != binary.LittleEndian.Uint64(buf[len(data):]) {
		return nil, errors.Wrap(types.ErrMalformedMessage, "checksum mismatch")
	}
	if !varuint64.Contains(data) {
		return nil, errors.Wrap(types.ErrMalformedMessage, "invalid message ID")
	}

	id, n := varuint64.Parse(data)
	msg, size, err := c.m.Unmarshal(id, data[n:])
	if err != nil {
		return nil, errors.Wrapf(types.ErrMalformedMessage, "decoding failed: %s", err)
	}
	if n+size != uint64(len(data)) {
		return nil, errors.Wrapf(types.ErrMalformedMessage, "%d unexpected trailing bytes", uint64(len(data))-n-size)
	}

	return msg, nil
}
