package quicchat

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/parallel"
	"github.com/outofforest/qa"
	"github.com/outofforest/quicchat/client"
	"github.com/outofforest/quicchat/transport"
	"github.com/outofforest/quicchat/types"
)

func freeAddress(t *testing.T) string {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	return conn.LocalAddr().String()
}

func TestRunWithSelfSignedCertificate(t *testing.T) {
	requireT := require.New(t)
	ctx := qa.NewContext(t)
	group := qa.NewGroup(ctx, t)

	caFile := filepath.Join(t.TempDir(), "ca.pem")

	config := types.DefaultServerConfig
	config.ListenAddress = freeAddress(t)
	config.SelfSignedCertFile = caFile

	group.Spawn("server", parallel.Fail, func(ctx context.Context) error {
		return Run(ctx, config)
	})

	requireT.Eventually(func() bool {
		_, err := os.Stat(caFile)
		return err == nil
	}, 10*time.Second, 10*time.Millisecond)

	clientConfig := types.DefaultClientConfig
	clientConfig.ServerAddress = config.ListenAddress
	clientConfig.Trust.CAFile = caFile

	tlsConfig, err := transport.ClientTLSConfig(clientConfig.Trust)
	requireT.NoError(err)
	c := client.New(clientConfig, tlsConfig)

	requireT.Eventually(func() bool {
		return c.Post(ctx, "hello") == nil
	}, 10*time.Second, 50*time.Millisecond)

	messages, err := c.GetAll(ctx)
	requireT.NoError(err)
	requireT.Equal([]string{"hello"}, messages)
}

func TestRunFailsOnMissingCertificate(t *testing.T) {
	config := types.DefaultServerConfig
	config.ListenAddress = freeAddress(t)
	config.CertFile = filepath.Join(t.TempDir(), "missing.pem")
	config.KeyFile = config.CertFile

	require.Error(t, Run(qa.NewContext(t), config))
}

func TestRunFailsOnTooSmallMessageSize(t *testing.T) {
	config := types.DefaultServerConfig
	config.ListenAddress = freeAddress(t)
	config.MaxMessageSize = types.MinMessageSize - 1

	require.Error(t, Run(qa.NewContext(t), config))
}
