package server

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/logger"
	"github.com/outofforest/parallel"
	"github.com/outofforest/quicchat/codec"
	"github.com/outofforest/quicchat/session"
	"github.com/outofforest/quicchat/store"
	"github.com/outofforest/quicchat/transport"
	"github.com/outofforest/quicchat/types"
	"github.com/outofforest/varuint64"
)

// StoreCapacity returns the capacity of the store guaranteeing that all the stored messages fit into one reply.
// Reply carries the number of messages and the messages, each with its length.
// maxMessageSize must not be lower than types.MinMessageSize.
func StoreCapacity(maxMessageSize uint64) uint64 {
	return maxMessageSize - codec.Overhead - varuint64.MaxSize
}

// New creates new server.
func New(config types.ServerConfig, listener *transport.Listener, s *store.Store) *Server {
	return &Server{
		config:   config,
		listener: listener,
		store:    s,
	}
}

// Server accepts connections and handles one request on each of them.
type Server struct {
	config   types.ServerConfig
	listener *transport.Listener
	store    *store.Store
}

// Run runs the server until context is canceled. Listener is closed on exit.
func (s *Server) Run(ctx context.Context) error {
	err := parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("listener", parallel.Fail, func(ctx context.Context) error {
			var slots chan struct{}
			if s.config.MaxConnections > 0 {
				slots = make(chan struct{}, s.config.MaxConnections)
			}

			for {
				conn, err := s.listener.Accept(ctx)
				if ctx.Err() != nil {
					if err == nil {
						_ = conn.Close()
					}
					return errors.WithStack(ctx.Err())
				}
				if err != nil {
					return err
				}

				log := logger.Get(ctx).With(zap.Stringer("connID", uuid.New()),
					zap.Stringer("remoteAddr", conn.RemoteAddr()))

				if slots != nil {
					select {
					case slots <- struct{}{}:
					default:
						log.Warn("Connection refused, limit reached", zap.Int("limit", s.config.MaxConnections))
						_ = conn.Refuse()
						continue
					}
				}

				spawn("connection", parallel.Continue, func(ctx context.Context) error {
					if slots != nil {
						defer func() {
							<-slots
						}()
					}

					ctx = logger.WithLogger(ctx, log)
					if err := s.handleConnection(ctx, conn); err != nil && ctx.Err() == nil {
						log.Error("Connection failed", zap.Error(err))
					}
					return nil
				})
			}
		})
		spawn("watchdog", parallel.Fail, func(ctx context.Context) error {
			defer s.listener.Close()

			<-ctx.Done()
			return errors.WithStack(ctx.Err())
		})

		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logger.Get(ctx).Error("Listener failed", zap.Error(err))
	}
	return err
}

func (s *Server) handleConnection(ctx context.Context, conn *transport.Conn) error {
	defer conn.Close()

	if s.config.ExchangeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ExchangeTimeout)
		defer cancel()
	}

	stream, err := conn.OpenStream(ctx)
	if err != nil {
		return session.Classify(err, types.ErrHandshakeTimeout)
	}

	sess := session.NewServer(stream, s.config.MaxMessageSize)
	defer sess.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := sess.SetDeadline(deadline); err != nil {
			return session.Classify(err, types.ErrHandshakeTimeout)
		}
	}

	if err := sess.Hello(); err != nil {
		return err
	}
	req, err := sess.ReceiveRequest()
	if err != nil {
		return err
	}

	logger.Get(ctx).Debug("Request received", zap.String("request", fmt.Sprintf("%T", req)))

	reply, err := apply(s.store, req)
	if errors.Is(err, types.ErrStoreFull) {
		logger.Get(ctx).Warn("Message rejected", zap.Error(err))
		return conn.Reject()
	}
	if err != nil {
		return err
	}

	if err := sess.Reply(reply); err != nil {
		return err
	}

	// Connection is closed by the client once the reply is received.
	select {
	case <-ctx.Done():
	case <-conn.Done():
	}
	return nil
}
