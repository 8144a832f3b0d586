package transport

import (
	"context"
	"crypto/tls"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/parallel"
	"github.com/outofforest/qa"
	"github.com/outofforest/quicchat/types"
)

func newServer(t *testing.T) (*Listener, string) {
	requireT := require.New(t)

	cert, certPEM, err := SelfSigned("localhost", "127.0.0.1")
	requireT.NoError(err)

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	requireT.NoError(os.WriteFile(caFile, certPEM, 0o600))

	l, err := Listen("127.0.0.1:0", NewServerTLSConfig(cert))
	requireT.NoError(err)
	t.Cleanup(func() {
		_ = l.Close()
	})

	return l, caFile
}

func clientTLS(t *testing.T, trust types.TrustConfig) *tls.Config {
	config, err := ClientTLSConfig(trust)
	require.NoError(t, err)
	return config
}

func TestServerOpensStream(t *testing.T) {
	requireT := require.New(t)
	ctx := qa.NewContext(t)
	group := qa.NewGroup(ctx, t)

	l, caFile := newServer(t)

	group.Spawn("server", parallel.Exit, func(ctx context.Context) error {
		conn, err := l.Accept(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		s, err := conn.OpenStream(ctx)
		if err != nil {
			return err
		}
		if _, err := s.Write([]byte("ping")); err != nil {
			return errors.WithStack(err)
		}
		if err := s.Close(); err != nil {
			return errors.WithStack(err)
		}

		select {
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		case <-conn.Done():
			return nil
		}
	})

	conn, err := Dial(ctx, l.Addr().String(), clientTLS(t, types.TrustConfig{
		ServerName: "localhost",
		CAFile:     caFile,
	}))
	requireT.NoError(err)

	s, err := conn.AcceptStream(ctx)
	requireT.NoError(err)

	data, err := io.ReadAll(s)
	requireT.NoError(err)
	requireT.Equal("ping", string(data))

	requireT.NoError(conn.Close())
	requireT.NoError(group.Wait())
}

func TestServerCertificateIsVerified(t *testing.T) {
	ctx := qa.NewContext(t)
	l, caFile := newServer(t)

	tests := []struct {
		name  string
		trust types.TrustConfig
		valid bool
	}{
		{name: "system roots", trust: types.TrustConfig{ServerName: "localhost"}},
		{name: "wrong name", trust: types.TrustConfig{ServerName: "example.com", CAFile: caFile}},
		{name: "ca", trust: types.TrustConfig{ServerName: "localhost", CAFile: caFile}, valid: true},
		{name: "insecure", trust: types.TrustConfig{ServerName: "example.com", InsecureSkipVerify: true}, valid: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			requireT := require.New(t)

			dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			conn, err := Dial(dialCtx, l.Addr().String(), clientTLS(t, test.trust))
			if !test.valid {
				requireT.Error(err)
				return
			}

			requireT.NoError(err)
			requireT.NoError(conn.Close())
		})
	}
}

func TestRefuse(t *testing.T) {
	requireT := require.New(t)
	ctx := qa.NewContext(t)
	group := qa.NewGroup(ctx, t)

	l, caFile := newServer(t)

	group.Spawn("server", parallel.Exit, func(ctx context.Context) error {
		conn, err := l.Accept(ctx)
		if err != nil {
			return err
		}
		return conn.Refuse()
	})

	conn, err := Dial(ctx, l.Addr().String(), clientTLS(t, types.TrustConfig{
		ServerName: "localhost",
		CAFile:     caFile,
	}))
	requireT.NoError(err)

	_, err = conn.AcceptStream(ctx)
	requireT.Error(err)
	requireT.True(IsRefused(err))
	requireT.False(IsStoreFull(err))

	requireT.NoError(group.Wait())
}

func TestReject(t *testing.T) {
	requireT := require.New(t)
	ctx := qa.NewContext(t)
	group := qa.NewGroup(ctx, t)

	l, caFile := newServer(t)

	group.Spawn("server", parallel.Exit, func(ctx context.Context) error {
		conn, err := l.Accept(ctx)
		if err != nil {
			return err
		}
		return conn.Reject()
	})

	conn, err := Dial(ctx, l.Addr().String(), clientTLS(t, types.TrustConfig{
		ServerName: "localhost",
		CAFile:     caFile,
	}))
	requireT.NoError(err)

	_, err = conn.AcceptStream(ctx)
	requireT.Error(err)
	requireT.True(IsStoreFull(err))
	requireT.False(IsRefused(err))

	requireT.NoError(group.Wait())
}

func TestClientCannotOpenStream(t *testing.T) {
	requireT := require.New(t)
	ctx := qa.NewContext(t)
	group := qa.NewGroup(ctx, t)

	l, caFile := newServer(t)

	group.Spawn("server", parallel.Continue, func(ctx context.Context) error {
		conn, err := l.Accept(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		<-ctx.Done()
		return errors.WithStack(ctx.Err())
	})

	conn, err := Dial(ctx, l.Addr().String(), clientTLS(t, types.TrustConfig{
		ServerName: "localhost",
		CAFile:     caFile,
	}))
	requireT.NoError(err)
	defer conn.Close()

	openCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()

	_, err = conn.OpenStream(openCtx)
	requireT.ErrorIs(err, context.DeadlineExceeded)
}

func TestClientTLSConfigErrors(t *testing.T) {
	requireT := require.New(t)

	_, err := ClientTLSConfig(types.TrustConfig{CAFile: filepath.Join(t.TempDir(), "missing.pem")})
	requireT.Error(err)

	garbage := filepath.Join(t.TempDir(), "garbage.pem")
	requireT.NoError(os.WriteFile(garbage, []byte("garbage"), 0o600))

	_, err = ClientTLSConfig(types.TrustConfig{CAFile: garbage})
	requireT.Error(err)

	config, err := ClientTLSConfig(types.TrustConfig{ServerName: "localhost"})
	requireT.NoError(err)
	requireT.False(config.InsecureSkipVerify)
	requireT.Nil(config.RootCAs)
	requireT.Equal([]string{Protocol}, config.NextProtos)
}

func TestSelfSignedRequiresHosts(t *testing.T) {
	_, _, err := SelfSigned()
	require.Error(t, err)
}
