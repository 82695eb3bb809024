package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

// ProxyConfig describes the optional SOCKS5 proxy in front of the bridge.
type ProxyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// SessionProvider opens fresh account sessions against the bridge. Sessions
// are deliberately per-operation: nothing is shared or pooled, and each
// operation that acquires one owns it until Close.
type SessionProvider struct {
	token   string
	baseURL string
	proxy   ProxyConfig
	logger  *slog.Logger
}

// NewSessionProvider creates a provider for the given bridge endpoint.
func NewSessionProvider(token, baseURL string, proxyCfg ProxyConfig, logger *slog.Logger) *SessionProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionProvider{
		token:   token,
		baseURL: baseURL,
		proxy:   proxyCfg,
		logger:  logger,
	}
}

// Acquire connects a fresh session. The connection error propagates to the
// caller unhandled; an operation that cannot acquire a session aborts before
// any business logic runs. On success the caller must Close the session on
// every exit path.
func (p *SessionProvider) Acquire(ctx context.Context) (*Session, error) {
	httpClient, err := p.httpClient()
	if err != nil {
		return nil, err
	}

	client := NewClient(p.token, p.baseURL, httpClient)
	if err := client.Start(ctx); err != nil {
		return nil, fmt.Errorf("telegram: start session: %w", err)
	}

	return &Session{Client: client, logger: p.logger}, nil
}

// httpClient builds the transport, dialing through SOCKS5 when configured.
func (p *SessionProvider) httpClient() (*http.Client, error) {
	if !p.proxy.Enabled {
		return &http.Client{Timeout: 60 * time.Second}, nil
	}

	addr := net.JoinHostPort(p.proxy.Host, fmt.Sprintf("%d", p.proxy.Port))
	dialer, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("telegram: socks5 dialer for %s: %w", addr, err)
	}

	contextDialer, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("telegram: socks5 dialer for %s does not support context dialing", addr)
	}

	return &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			DialContext: contextDialer.DialContext,
		},
	}, nil
}

// Session is an ephemeral handle to a connected account session. It is owned
// exclusively by the operation that acquired it.
type Session struct {
	*Client

	logger *slog.Logger
	closed bool
}

// Close disconnects the session. Safe to call more than once; only the first
// call reaches the bridge. Disconnect failures are logged, not propagated;
// the operation's own result must not depend on teardown.
func (s *Session) Close(ctx context.Context) {
	if s.closed {
		return
	}
	s.closed = true

	if err := s.Stop(ctx); err != nil {
		s.logger.Warn("session stop failed", "error", err)
	}
}
