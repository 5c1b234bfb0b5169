package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/layeredge-farmer/internal/domain"
	xproxy "golang.org/x/net/proxy"
)

// NewHTTPClient builds the one persistent HTTP client a worker owns for its
// whole lifetime, with every request routed through the given proxy. The
// transport keeps its own connection pool so the session loop reuses
// connections instead of redialing every poll.
func NewHTTPClient(path domain.NetworkPath, timeout time.Duration) (*http.Client, error) {
	endpoint, err := ParseEndpoint(string(path))
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}

	switch endpoint.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(endpoint)
	case "socks5", "socks5h":
		dialer, err := socksDialer(endpoint)
		if err != nil {
			return nil, err
		}
		transport.DialContext = dialer
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}

// ParseEndpoint normalizes one proxy-list entry. Scheme-less entries default
// to http, matching what the dashboard's users feed the original tooling.
func ParseEndpoint(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New("proxy endpoint is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}

	endpoint, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse proxy endpoint %q: %w", raw, err)
	}
	if endpoint.Host == "" {
		return nil, fmt.Errorf("proxy endpoint %q has no host", raw)
	}

	switch endpoint.Scheme {
	case "http", "https", "socks5", "socks5h":
		return endpoint, nil
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", endpoint.Scheme)
	}
}

func socksDialer(endpoint *url.URL) (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	var auth *xproxy.Auth
	if endpoint.User != nil {
		password, _ := endpoint.User.Password()
		auth = &xproxy.Auth{
			User:     endpoint.User.Username(),
			Password: password,
		}
	}

	dialer, err := xproxy.SOCKS5("tcp", endpoint.Host, auth, xproxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("build socks5 dialer for %q: %w", endpoint.Host, err)
	}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if contextDialer, ok := dialer.(xproxy.ContextDialer); ok {
			return contextDialer.DialContext(ctx, network, addr)
		}
		return dialer.Dial(network, addr)
	}, nil
}
