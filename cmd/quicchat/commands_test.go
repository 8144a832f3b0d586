package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/parallel"
	"github.com/outofforest/qa"
	"github.com/outofforest/quicchat/server"
	"github.com/outofforest/quicchat/store"
	"github.com/outofforest/quicchat/transport"
	"github.com/outofforest/quicchat/types"
)

func startServer(t *testing.T, group *parallel.Group) (string, string) {
	requireT := require.New(t)

	cert, certPEM, err := transport.SelfSigned("localhost", "127.0.0.1")
	requireT.NoError(err)

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	requireT.NoError(os.WriteFile(caFile, certPEM, 0o600))

	l, err := transport.Listen("127.0.0.1:0", transport.NewServerTLSConfig(cert))
	requireT.NoError(err)

	group.Spawn("server", parallel.Fail, server.New(types.DefaultServerConfig, l,
		store.New(server.StoreCapacity(types.DefaultServerConfig.MaxMessageSize))).Run)

	return l.Addr().String(), caFile
}

func execute(ctx context.Context, args ...string) (string, error) {
	out := &bytes.Buffer{}

	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	err := cmd.ExecuteContext(ctx)

	return out.String(), err
}

func TestCommands(t *testing.T) {
	requireT := require.New(t)
	ctx := qa.NewContext(t)
	group := qa.NewGroup(ctx, t)

	address, caFile := startServer(t, group)
	flags := []string{"--server", address, "--ca", caFile}

	out, err := execute(ctx, append([]string{"post", "hello"}, flags...)...)
	requireT.NoError(err)
	requireT.Equal("OK\n", out)

	out, err = execute(ctx, append([]string{"post", "world"}, flags...)...)
	requireT.NoError(err)
	requireT.Equal("OK\n", out)

	out, err = execute(ctx, append([]string{"get"}, flags...)...)
	requireT.NoError(err)
	requireT.Equal("hello\nworld\n", out)

	out, err = execute(ctx, append([]string{"get-len"}, flags...)...)
	requireT.NoError(err)
	requireT.Equal("2\n", out)

	out, err = execute(ctx, append([]string{"clear"}, flags...)...)
	requireT.NoError(err)
	requireT.Equal("OK\n", out)

	out, err = execute(ctx, append([]string{"get-all"}, flags...)...)
	requireT.NoError(err)
	requireT.Empty(out)
}

func TestInsecure(t *testing.T) {
	requireT := require.New(t)
	ctx := qa.NewContext(t)
	group := qa.NewGroup(ctx, t)

	address, _ := startServer(t, group)

	_, err := execute(ctx, "get-len", "--server", address, "--timeout", "2s")
	requireT.ErrorIs(err, types.ErrTransport)

	out, err := execute(ctx, "get-len", "--server", address, "--insecure")
	requireT.NoError(err)
	requireT.Equal("0\n", out)
}

func TestPostRequiresMessage(t *testing.T) {
	_, err := execute(qa.NewContext(t), "post")
	require.Error(t, err)
}

func TestServerFlags(t *testing.T) {
	requireT := require.New(t)

	cmd := newServerCommand()
	requireT.NoError(cmd.ParseFlags([]string{
		"--listen", "0.0.0.0:6000",
		"--max-message-size", "1024",
		"--exchange-timeout", "3s",
		"--max-connections", "7",
	}))

	flags := cmd.Flags()
	listen, err := flags.GetString("listen")
	requireT.NoError(err)
	requireT.Equal("0.0.0.0:6000", listen)

	maxMessageSize, err := flags.GetUint64("max-message-size")
	requireT.NoError(err)
	requireT.EqualValues(1024, maxMessageSize)

	maxConnections, err := flags.GetInt("max-connections")
	requireT.NoError(err)
	requireT.Equal(7, maxConnections)
}
