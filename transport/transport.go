package transport

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"
)

// Protocol is the name of the application protocol negotiated during TLS handshake.
const Protocol = "quicchat/1"

// Application error codes sent when connection is closed.
const (
	CodeOK        quic.ApplicationErrorCode = 0
	CodeBusy      quic.ApplicationErrorCode = 1
	CodeStoreFull quic.ApplicationErrorCode = 2
)

// Listen starts listening for incoming connections.
// Clients are not allowed to open streams, stream is always opened by the server.
func Listen(address string, tlsConfig *tls.Config) (*Listener, error) {
	l, err := quic.ListenAddr(address, withProtocol(tlsConfig), &quic.Config{
		MaxIncomingStreams:    -1,
		MaxIncomingUniStreams: -1,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Listener{l: l}, nil
}

// Dial connects to the server.
func Dial(ctx context.Context, address string, tlsConfig *tls.Config) (*Conn, error) {
	c, err := quic.DialAddr(ctx, address, withProtocol(tlsConfig), &quic.Config{
		MaxIncomingStreams:    1,
		MaxIncomingUniStreams: -1,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Conn{c: c}, nil
}

// IsRefused reports whether error has been caused by the server refusing the connection.
func IsRefused(err error) bool {
	return isClosedByPeer(err, CodeBusy)
}

// IsStoreFull reports whether error has been caused by the server rejecting the message because store is full.
func IsStoreFull(err error) bool {
	return isClosedByPeer(err, CodeStoreFull)
}

func isClosedByPeer(err error, code quic.ApplicationErrorCode) bool {
	var appErr *quic.ApplicationError
	return errors.As(err, &appErr) && appErr.Remote && appErr.ErrorCode == code
}

// Listener accepts connections.
type Listener struct {
	l *quic.Listener
}

// Accept waits for the next connection.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	c, err := l.l.Accept(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Conn{c: c}, nil
}

// Addr returns the address listener listens on.
func (l *Listener) Addr() net.Addr {
	return l.l.Addr()
}

// Close stops listening.
func (l *Listener) Close() error {
	return errors.WithStack(l.l.Close())
}

// Conn is the connection between client and server.
type Conn struct {
	c *quic.Conn
}

// OpenStream opens the bidirectional stream. Peer is notified about it when first bytes are sent.
func (c *Conn) OpenStream(ctx context.Context) (*quic.Stream, error) {
	s, err := c.c.OpenStreamSync(ctx)
	return s, errors.WithStack(err)
}

// AcceptStream waits for the stream opened by the peer.
func (c *Conn) AcceptStream(ctx context.Context) (*quic.Stream, error) {
	s, err := c.c.AcceptStream(ctx)
	return s, errors.WithStack(err)
}

// Done returns channel closed when connection is closed.
func (c *Conn) Done() <-chan struct{} {
	return c.c.Context().Done()
}

// RemoteAddr returns address of the peer.
func (c *Conn) RemoteAddr() net.Addr {
	return c.c.RemoteAddr()
}

// Close closes the connection.
func (c *Conn) Close() error {
	return errors.WithStack(c.c.CloseWithError(CodeOK, ""))
}

// Refuse closes the connection informing the peer that server is busy.
func (c *Conn) Refuse() error {
	return errors.WithStack(c.c.CloseWithError(CodeBusy, "server busy"))
}

// Reject closes the connection informing the peer that message has not been stored because store is full.
func (c *Conn) Reject() error {
	return errors.WithStack(c.c.CloseWithError(CodeStoreFull, "store full"))
}

func withProtocol(tlsConfig *tls.Config) *tls.Config {
	tlsConfig = tlsConfig.Clone()
	tlsConfig.NextProtos = []string{Protocol}
	tlsConfig.MinVersion = tls.VersionTLS13
	return tlsConfig
}
