package quicchat

import (
	"context"
	"crypto/tls"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/logger"
	"github.com/outofforest/quicchat/server"
	"github.com/outofforest/quicchat/store"
	"github.com/outofforest/quicchat/transport"
	"github.com/outofforest/quicchat/types"
)

// Run runs quicchat server.
func Run(ctx context.Context, config types.ServerConfig) error {
	if config.MaxMessageSize < types.MinMessageSize {
		return errors.Errorf("max message size must be at least %d bytes, %d given",
			types.MinMessageSize, config.MaxMessageSize)
	}

	tlsConfig, err := serverTLSConfig(ctx, config)
	if err != nil {
		return err
	}

	l, err := transport.Listen(config.ListenAddress, tlsConfig)
	if err != nil {
		return err
	}

	logger.Get(ctx).Info("Server started", zap.Stringer("address", l.Addr()))

	return server.New(config, l, store.New(server.StoreCapacity(config.MaxMessageSize))).Run(ctx)
}

func serverTLSConfig(ctx context.Context, config types.ServerConfig) (*tls.Config, error) {
	if config.CertFile != "" || config.KeyFile != "" {
		return transport.ServerTLSConfig(config.CertFile, config.KeyFile)
	}

	cert, certPEM, err := transport.SelfSigned(types.DefaultServerName, "127.0.0.1", "::1")
	if err != nil {
		return nil, err
	}

	log := logger.Get(ctx)
	log.Warn("No certificate provided, self-signed one is used")

	if config.SelfSignedCertFile != "" {
		if err := os.WriteFile(config.SelfSignedCertFile, certPEM, 0o600); err != nil {
			return nil, errors.WithStack(err)
		}
		log.Info("Self-signed certificate stored", zap.String("file", config.SelfSignedCertFile))
	}

	return transport.NewServerTLSConfig(cert), nil
}
