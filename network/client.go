// Package network builds the HTTP client used for manifest requests.
package network

import (
	"net/http"
	"sync"
	"time"

	"github.com/hlsplay/hlsplay/key"
	"github.com/spf13/viper"
)

var (
	client     *http.Client
	clientOnce sync.Once
)

// Client returns the shared client, built from configuration on first use.
func Client() *http.Client {
	clientOnce.Do(func() {
		client = New(
			time.Duration(viper.GetInt(key.NetworkTimeout))*time.Second,
			viper.GetBool(key.NetworkFingerprint),
		)
	})

	return client
}

// New creates a client. With fingerprint set, TLS handshakes present a browser
// Client Hello for CDNs that reject Go's default one.
func New(timeout time.Duration, fingerprint bool) *http.Client {
	var transport http.RoundTripper = newTransport()
	if fingerprint {
		transport = newFingerprintTransport(timeout)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 16
	t.MaxIdleConnsPerHost = 4
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = time.Second
	return t
}
