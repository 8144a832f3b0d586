package client

import (
	"context"
	"crypto/tls"

	"github.com/pkg/errors"

	"github.com/outofforest/quicchat/session"
	"github.com/outofforest/quicchat/transport"
	"github.com/outofforest/quicchat/types"
	"github.com/outofforest/quicchat/wire"
)

// New creates new quicchat client.
func New(config types.ClientConfig, tlsConfig *tls.Config) *Client {
	return &Client{
		config:    config,
		tlsConfig: tlsConfig,
	}
}

// Client sends requests to the server. Each request is sent over new connection.
type Client struct {
	config    types.ClientConfig
	tlsConfig *tls.Config
}

// Post stores message on the server.
func (c *Client) Post(ctx context.Context, content string) error {
	_, err := c.Do(ctx, &wire.Post{Content: content})
	return err
}

// GetAll returns all the messages stored on the server.
func (c *Client) GetAll(ctx context.Context) ([]string, error) {
	reply, err := c.Do(ctx, &wire.GetAll{})
	if err != nil {
		return nil, err
	}
	return reply.(*wire.Messages).Messages, nil
}

// GetLen returns the number of messages stored on the server.
func (c *Client) GetLen(ctx context.Context) (uint64, error) {
	reply, err := c.Do(ctx, &wire.GetLen{})
	if err != nil {
		return 0, err
	}
	return reply.(*wire.MessagesLen).Length, nil
}

// Clear removes all the messages stored on the server.
func (c *Client) Clear(ctx context.Context) error {
	_, err := c.Do(ctx, &wire.Clear{})
	return err
}

// Do connects to the server, sends request and returns the reply matching it.
func (c *Client) Do(ctx context.Context, req wire.Request) (wire.Reply, error) {
	if c.config.ExchangeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ExchangeTimeout)
		defer cancel()
	}

	conn, err := transport.Dial(ctx, c.config.ServerAddress, c.tlsConfig)
	if err != nil {
		return nil, classify(err)
	}
	defer conn.Close()

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		return nil, classify(err)
	}

	sess := session.NewClient(stream, c.config.MaxMessageSize)
	defer sess.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := sess.SetDeadline(deadline); err != nil {
			return nil, classify(err)
		}
	}

	if err := sess.AwaitHello(); err != nil {
		return nil, classify(err)
	}
	reply, err := sess.Request(req)
	if err != nil {
		return nil, classify(err)
	}
	return reply, nil
}

func classify(err error) error {
	switch {
	case transport.IsRefused(err):
		return errors.Wrap(types.ErrTransport, "connection refused by server")
	case transport.IsStoreFull(err):
		return errors.Wrap(types.ErrStoreFull, "message rejected by server")
	default:
		return session.Classify(err, types.ErrHandshakeTimeout)
	}
}
