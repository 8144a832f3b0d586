package types

import (
	"time"
)

const (
	// DefaultAddress is the address server listens on by default.
	DefaultAddress = "127.0.0.1:5000"

	// DefaultServerName is the name client expects in the server certificate.
	DefaultServerName = "localhost"

	// MinMessageSize is the lowest accepted value of the max message size.
	MinMessageSize = 1024
)

var (
	// DefaultServerConfig is the default config of the server.
	DefaultServerConfig = ServerConfig{
		ListenAddress:   DefaultAddress,
		MaxMessageSize:  64 * 1024,
		ExchangeTimeout: 10 * time.Second,
		MaxConnections:  1024,
	}

	// DefaultClientConfig is the default config of the client.
	DefaultClientConfig = ClientConfig{
		ServerAddress:   DefaultAddress,
		MaxMessageSize:  64 * 1024,
		ExchangeTimeout: 10 * time.Second,
		Trust: TrustConfig{
			ServerName: DefaultServerName,
		},
	}
)

// ServerConfig is the config of quicchat server.
type ServerConfig struct {
	ListenAddress string

	// CertFile and KeyFile point to PEM files. If both are empty, self-signed certificate is generated.
	CertFile string
	KeyFile  string

	// SelfSignedCertFile is the file generated self-signed certificate is written to, so clients may trust it.
	SelfSignedCertFile string

	// MaxMessageSize limits the size of each message. It also bounds the total size of stored messages,
	// so all of them always fit into one reply.
	MaxMessageSize uint64

	// ExchangeTimeout limits the time of the whole exchange. Zero disables the deadline.
	ExchangeTimeout time.Duration

	// MaxConnections limits the number of connections handled concurrently. Zero means no limit.
	MaxConnections int
}

// ClientConfig is the config of quicchat client.
type ClientConfig struct {
	ServerAddress   string
	MaxMessageSize  uint64
	ExchangeTimeout time.Duration
	Trust           TrustConfig
}

// TrustConfig defines how server certificate is verified.
type TrustConfig struct {
	// ServerName is verified against the certificate.
	ServerName string

	// CAFile is the PEM file with trusted certificates. If empty, system roots are used.
	CAFile string

	// InsecureSkipVerify turns certificate verification off.
	InsecureSkipVerify bool
}
