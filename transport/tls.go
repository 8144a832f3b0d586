package transport

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/outofforest/quicchat/types"
)

const certValidity = 365 * 24 * time.Hour

// ServerTLSConfig creates server TLS config using certificate and key stored in PEM files.
func ServerTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return NewServerTLSConfig(cert), nil
}

// NewServerTLSConfig creates server TLS config using the certificate.
func NewServerTLSConfig(cert tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{Protocol},
		MinVersion:   tls.VersionTLS13,
	}
}

// ClientTLSConfig creates client TLS config verifying server certificate according to the trust policy.
func ClientTLSConfig(trust types.TrustConfig) (*tls.Config, error) {
	config := &tls.Config{
		ServerName:         trust.ServerName,
		InsecureSkipVerify: trust.InsecureSkipVerify, //nolint:gosec
		NextProtos:         []string{Protocol},
		MinVersion:         tls.VersionTLS13,
	}

	if trust.CAFile != "" {
		caPEM, err := os.ReadFile(trust.CAFile)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		config.RootCAs = x509.NewCertPool()
		if !config.RootCAs.AppendCertsFromPEM(caPEM) {
			return nil, errors.Errorf("no certificates found in %s", trust.CAFile)
		}
	}

	return config, nil
}

// SelfSigned generates self-signed certificate valid for hosts.
// Certificate is returned also in PEM format so it might be used by clients as trusted one.
func SelfSigned(hosts ...string) (tls.Certificate, []byte, error) {
	if len(hosts) == 0 {
		return tls.Certificate{}, nil, errors.New("no hosts provided")
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, nil, errors.WithStack(err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, nil, errors.WithStack(err)
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: hosts[0]},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(certValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, nil, errors.WithStack(err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return tls.Certificate{}, nil, errors.WithStack(err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	cert, err := tls.X509KeyPair(certPEM, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}))
	if err != nil {
		return tls.Certificate{}, nil, errors.WithStack(err)
	}

	return cert, certPEM, nil
}
