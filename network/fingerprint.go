package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// fingerprintTransport speaks HTTP/2 over a Chrome-like TLS handshake and falls
// back to HTTP/1.1 when the server does not negotiate h2. Plain http goes through
// a regular transport.
type fingerprintTransport struct {
	h2    *http2.Transport
	h1    *http.Transport
	plain *http.Transport
}

func newFingerprintTransport(timeout time.Duration) *fingerprintTransport {
	dialer := &net.Dialer{Timeout: timeout}

	return &fingerprintTransport{
		h2: &http2.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialTLS(ctx, dialer, network, addr, []string{"h2", "http/1.1"})
			},
		},
		h1: &http.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialTLS(ctx, dialer, network, addr, []string{"http/1.1"})
			},
			IdleConnTimeout: 30 * time.Second,
		},
		plain: newTransport(),
	}
}

func (t *fingerprintTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return t.plain.RoundTrip(req)
	}

	resp, err := t.h2.RoundTrip(req)
	if err == nil {
		return resp, nil
	}

	// bodies are consumed by the first attempt
	if req.Body != nil && req.Body != http.NoBody {
		return nil, err
	}

	return t.h1.RoundTrip(req.Clone(req.Context()))
}

func dialTLS(ctx context.Context, dialer *net.Dialer, network, addr string, protos []string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	config := &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
		NextProtos: protos,
	}

	spec := utls.HelloChrome_120
	if len(protos) == 1 {
		// a preset would advertise h2 regardless of NextProtos
		spec = utls.HelloCustom
	}

	tlsConn := utls.UClient(conn, config, spec)
	if spec == utls.HelloCustom {
		preset, err := utls.UTLSIdToSpec(utls.HelloChrome_120)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		restrictALPN(&preset, protos)
		if err := tlsConn.ApplyPreset(&preset); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("apply tls preset: %w", err)
		}
	}

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}

func restrictALPN(spec *utls.ClientHelloSpec, protos []string) {
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			alpn.AlpnProtocols = protos
		}
	}
}
