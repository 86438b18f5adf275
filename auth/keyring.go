// Package auth stores per-host bearer tokens in the system keyring and turns
// them into request headers for protected streams.
package auth

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/hlsplay/hlsplay/constant"
	"github.com/hlsplay/hlsplay/log"
	"github.com/zalando/go-keyring"
)

// ErrNoHost is returned for an input that names no host.
var ErrNoHost = errors.New("no host given")

var (
	mu     sync.Mutex
	tokens = make(map[string]string)
)

// Host normalizes a bare host or a URL into the keyring account name.
func Host(hostOrURL string) (string, error) {
	s := strings.TrimSpace(hostOrURL)
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", err
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", ErrNoHost
	}

	return host, nil
}

// SetToken persists the token for host.
func SetToken(host, token string) error {
	host, err := Host(host)
	if err != nil {
		return err
	}

	if err := keyring.Set(constant.App, host, token); err != nil {
		return err
	}

	mu.Lock()
	tokens[host] = token
	mu.Unlock()
	return nil
}

// GetToken returns the token for host, keyring.ErrNotFound when there is none.
func GetToken(host string) (string, error) {
	host, err := Host(host)
	if err != nil {
		return "", err
	}

	mu.Lock()
	defer mu.Unlock()

	if token, ok := tokens[host]; ok {
		if token == "" {
			return "", keyring.ErrNotFound
		}
		return token, nil
	}

	token, err := keyring.Get(constant.App, host)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		tokens[host] = ""
		return "", err
	case err != nil:
		return "", err
	}

	tokens[host] = token
	return token, nil
}

// DeleteToken removes the token for host.
func DeleteToken(host string) error {
	host, err := Host(host)
	if err != nil {
		return err
	}

	mu.Lock()
	delete(tokens, host)
	mu.Unlock()

	return keyring.Delete(constant.App, host)
}

// Headers returns the Authorization header for rawURL's host, or nil.
func Headers(rawURL string) map[string]string {
	token, err := GetToken(rawURL)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) && !errors.Is(err, ErrNoHost) {
			log.Warnf("keyring lookup for %s: %v", rawURL, err)
		}
		return nil
	}

	return map[string]string{"Authorization": "Bearer " + token}
}
