package session

import (
	"context"
	"io"
	"net"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/outofforest/proton"
	"github.com/outofforest/quicchat/codec"
	"github.com/outofforest/quicchat/types"
	"github.com/outofforest/resonance"
)

// Stream is the bidirectional byte stream carrying the exchange.
type Stream interface {
	io.ReadWriteCloser
	SetDeadline(t time.Time) error
}

// NewConn creates connection sending and receiving framed messages over the stream.
func NewConn(stream Stream, maxMessageSize uint64, sendM, receiveM proton.Marshaller) *Conn {
	stream = &deferredErrStream{Stream: stream}
	return &Conn{
		stream: stream,
		c: resonance.NewConnection(stream, resonance.Config{
			MaxMessageSize: maxMessageSize,
		}),
		sendCodec:    codec.New(sendM, maxMessageSize),
		receiveCodec: codec.New(receiveM, maxMessageSize),
	}
}

// Conn sends and receives messages. Each message is sent in a separate length-prefixed frame.
type Conn struct {
	stream       Stream
	c            *resonance.Connection
	sendCodec    *codec.Codec
	receiveCodec *codec.Codec
	closed       bool
}

// Send sends message.
func (c *Conn) Send(msg any) error {
	buf, err := c.sendCodec.Encode(msg)
	if err != nil {
		return err
	}
	return c.c.SendBytes(buf)
}

// Receive receives message.
func (c *Conn) Receive() (any, error) {
	buf, err := c.c.ReceiveBytes()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return c.receiveCodec.Decode(buf)
}

// SetDeadline sets the deadline for all the future sends and receives. Zero time means no deadline.
func (c *Conn) SetDeadline(deadline time.Time) error {
	return errors.WithStack(c.stream.SetDeadline(deadline))
}

// Close closes the sending side of the stream. Subsequent calls are no-op.
func (c *Conn) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.c.Close()
}

// Classify converts error to one of the error kinds. Timeouts are reported as timeoutErr.
// Original error is kept in the chain.
func Classify(err, timeoutErr error) error {
	switch {
	case errors.Is(err, types.ErrTransport),
		errors.Is(err, types.ErrMalformedMessage),
		errors.Is(err, types.ErrMessageTooLarge),
		errors.Is(err, types.ErrProtocolViolation),
		errors.Is(err, types.ErrTimeout):
		return err
	case timeoutErr != nil && isTimeout(err):
		return errors.WithStack(kindError{kind: timeoutErr, cause: err})
	default:
		return errors.WithStack(kindError{kind: types.ErrTransport, cause: err})
	}
}

type kindError struct {
	kind  error
	cause error
}

func (e kindError) Error() string {
	return e.cause.Error() + ": " + e.kind.Error()
}

func (e kindError) Is(target error) bool {
	return errors.Is(e.kind, target)
}

func (e kindError) Unwrap() error {
	return e.cause
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// deferredErrStream returns bytes read together with an error first and the error on the next read.
// QUIC stream returns the last bytes together with io.EOF, framing layer drops data read with an error.
type deferredErrStream struct {
	Stream

	err error
}

func (s *deferredErrStream) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}

	n, err := s.Stream.Read(p)
	if n > 0 && err != nil {
		s.err = err
		return n, nil
	}
	return n, err
}
