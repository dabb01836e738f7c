package common

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

// NewHTTPClient builds an *http.Client that routes through the configured
// proxy. With the proxy disabled it returns a plain client with the given
// timeout, so callers never branch on proxy state themselves.
func NewHTTPClient(cfg ProxyConfig, timeout time.Duration) (*http.Client, error) {
	if !cfg.Enabled {
		return &http.Client{Timeout: timeout}, nil
	}

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	transport := &http.Transport{}

	switch cfg.Type {
	case "http":
		u, err := url.Parse("http://" + addr)
		if err != nil {
			return nil, fmt.Errorf("parse proxy address: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	default: // socks5, socks4 treated as socks5
		dialer, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("socks5 dialer: %w", err)
		}
		transport.DialContext = func(ctx context.Context, network, address string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, address)
			}
			return dialer.Dial(network, address)
		}
	}

	return &http.Client{Timeout: timeout, Transport: transport}, nil
}
