package session

import (
	"time"

	"github.com/pkg/errors"

	"github.com/outofforest/quicchat/types"
	"github.com/outofforest/quicchat/wire"
	"github.com/outofforest/quicchat/wire/c2s"
	"github.com/outofforest/quicchat/wire/s2c"
)

// NewServer creates server side of the exchange running over the stream.
func NewServer(stream Stream, maxMessageSize uint64) *Server {
	return &Server{
		conn:  NewConn(stream, maxMessageSize, s2c.NewMarshaller(), c2s.NewMarshaller()),
		state: ServerCreated,
	}
}

// Server sends hello, receives one request and sends one reply.
type Server struct {
	conn    *Conn
	state   ServerState
	request wire.Request
}

// State returns current state.
func (s *Server) State() ServerState {
	return s.state
}

// SetDeadline sets the deadline for the rest of the exchange.
func (s *Server) SetDeadline(deadline time.Time) error {
	return s.conn.SetDeadline(deadline)
}

// Hello sends hello to the client.
func (s *Server) Hello() error {
	if err := s.expect(ServerCreated); err != nil {
		return err
	}
	if err := s.conn.Send(&wire.Hello{}); err != nil {
		return s.fail(err, types.ErrHandshakeTimeout)
	}

	s.state = ServerHelloSent
	return nil
}

// ReceiveRequest receives request from the client.
func (s *Server) ReceiveRequest() (wire.Request, error) {
	if err := s.expect(ServerHelloSent); err != nil {
		return nil, err
	}
	s.state = ServerAwaitingRequest

	msg, err := s.conn.Receive()
	if err != nil {
		return nil, s.fail(err, types.ErrRequestTimeout)
	}

	req, ok := msg.(wire.Request)
	if !ok {
		return nil, s.fail(errors.Wrapf(types.ErrProtocolViolation, "expected request, got: %T", msg), nil)
	}

	s.request = req
	s.state = ServerRequestReceived
	return req, nil
}

// Reply sends reply to the received request.
func (s *Server) Reply(reply wire.Reply) error {
	if err := s.expect(ServerRequestReceived); err != nil {
		return err
	}
	if !Matches(s.request, reply) {
		return s.fail(errors.Wrapf(types.ErrProtocolViolation, "reply %T does not match request %T", reply, s.request),
			nil)
	}
	if err := s.conn.Send(reply); err != nil {
		return s.fail(err, types.ErrRequestTimeout)
	}

	s.state = ServerReplySent
	return nil
}

// Close closes the sending side of the stream.
func (s *Server) Close() {
	s.state = ServerClosed
	s.conn.Close()
}

func (s *Server) expect(state ServerState) error {
	if s.state != state {
		return s.fail(errors.Wrapf(types.ErrProtocolViolation, "operation requires state %s, current state: %s",
			state, s.state), nil)
	}
	return nil
}

func (s *Server) fail(err, timeoutErr error) error {
	s.state = ServerClosed
	return Classify(err, timeoutErr)
}
