package session

import (
	"time"

	"github.com/pkg/errors"

	"github.com/outofforest/quicchat/types"
	"github.com/outofforest/quicchat/wire"
	"github.com/outofforest/quicchat/wire/c2s"
	"github.com/outofforest/quicchat/wire/s2c"
)

// NewClient creates client side of the exchange running over the stream.
func NewClient(stream Stream, maxMessageSize uint64) *Client {
	return &Client{
		conn:  NewConn(stream, maxMessageSize, c2s.NewMarshaller(), s2c.NewMarshaller()),
		state: ClientAwaitingHello,
	}
}

// Client awaits hello, sends one request and receives one reply.
type Client struct {
	conn  *Conn
	state ClientState
}

// State returns current state.
func (c *Client) State() ClientState {
	return c.state
}

// SetDeadline sets the deadline for the rest of the exchange.
func (c *Client) SetDeadline(deadline time.Time) error {
	return c.conn.SetDeadline(deadline)
}

// AwaitHello waits for hello sent by the server.
func (c *Client) AwaitHello() error {
	if err := c.expect(ClientAwaitingHello); err != nil {
		return err
	}

	msg, err := c.conn.Receive()
	if err != nil {
		return c.fail(err, types.ErrHandshakeTimeout)
	}
	if _, ok := msg.(*wire.Hello); !ok {
		return c.fail(errors.Wrapf(types.ErrProtocolViolation, "expected hello, got: %T", msg), nil)
	}

	c.state = ClientAwaitingRequest
	return nil
}

// Request sends request and returns the reply matching it.
func (c *Client) Request(req wire.Request) (wire.Reply, error) {
	if err := c.expect(ClientAwaitingRequest); err != nil {
		return nil, err
	}
	if err := c.conn.Send(req); err != nil {
		return nil, c.fail(err, types.ErrRequestTimeout)
	}
	c.state = ClientAwaitingReply

	msg, err := c.conn.Receive()
	if err != nil {
		return nil, c.fail(err, types.ErrRequestTimeout)
	}

	reply, ok := msg.(wire.Reply)
	if !ok || !Matches(req, reply) {
		return nil, c.fail(errors.Wrapf(types.ErrProtocolViolation, "unexpected reply %T to request %T", msg, req),
			nil)
	}

	c.state = ClientClosed
	return reply, nil
}

// Close closes the sending side of the stream.
func (c *Client) Close() {
	c.state = ClientClosed
	c.conn.Close()
}

func (c *Client) expect(state ClientState) error {
	if c.state != state {
		return c.fail(errors.Wrapf(types.ErrProtocolViolation, "operation requires state %s, current state: %s",
			state, c.state), nil)
	}
	return nil
}

func (c *Client) fail(err, timeoutErr error) error {
	c.state = ClientClosed
	return Classify(err, timeoutErr)
}
