package pool

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PoolConfig defines connection pool configuration
type PoolConfig struct {
	ConnectionTimeout   time.Duration
	RequestTimeout      time.Duration
	IdleTimeout         time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
}

// DefaultPoolConfig returns sensible defaults
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		ConnectionTimeout:   5 * time.Second,
		RequestTimeout:      0,
		IdleTimeout:         90 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
	}
}

// ConnectionPool hands out one keep-alive transport per media host so the
// object store clients share connections.
type ConnectionPool struct {
	mu         sync.RWMutex
	transports map[string]*http.Transport
	clients    map[string]*http.Client
	config     PoolConfig
	logger     *zap.Logger
}

// NewConnectionPool creates a new connection pool
func NewConnectionPool(config PoolConfig, logger *zap.Logger) *ConnectionPool {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ConnectionPool{
		transports: make(map[string]*http.Transport),
		clients:    make(map[string]*http.Client),
		config:     config,
		logger:     logger,
	}
}

func poolKey(address string, tlsEnabled bool) string {
	if tlsEnabled {
		return "https://" + address
	}
	return "http://" + address
}

// Transport returns the shared transport for address.
func (p *ConnectionPool) Transport(address string, tlsEnabled bool) *http.Transport {
	key := poolKey(address, tlsEnabled)

	p.mu.RLock()
	transport, exists := p.transports[key]
	p.mu.RUnlock()
	if exists {
		return transport
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double check after acquiring write lock
	if transport, exists = p.transports[key]; exists {
		return transport
	}

	transport = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   p.config.ConnectionTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          p.config.MaxIdleConns,
		MaxIdleConnsPerHost:   p.config.MaxIdleConnsPerHost,
		IdleConnTimeout:       p.config.IdleTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	if tlsEnabled {
		transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	p.transports[key] = transport
	p.logger.Info("Created new HTTP transport",
		zap.String("address", address),
		zap.Bool("tls_enabled", tlsEnabled),
	)

	return transport
}

// HTTPClient wraps the shared transport for address in a client.
func (p *ConnectionPool) HTTPClient(address string, tlsEnabled bool) *http.Client {
	key := poolKey(address, tlsEnabled)

	p.mu.RLock()
	client, exists := p.clients[key]
	p.mu.RUnlock()
	if exists {
		return client
	}

	transport := p.Transport(address, tlsEnabled)

	p.mu.Lock()
	defer p.mu.Unlock()
	if client, exists = p.clients[key]; exists {
		return client
	}
	client = &http.Client{Transport: transport, Timeout: p.config.RequestTimeout}
	p.clients[key] = client
	return client
}

// CloseAllConnections drops idle connections and forgets every transport.
func (p *ConnectionPool) CloseAllConnections() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, transport := range p.transports {
		transport.CloseIdleConnections()
		delete(p.transports, key)
	}
	clear(p.clients)

	p.logger.Info("Closed all connections")
}

// Stats returns pool statistics
func (p *ConnectionPool) Stats() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()

	hosts := make([]string, 0, len(p.transports))
	for key := range p.transports {
		hosts = append(hosts, key)
	}
	return map[string]any{
		"transports": len(p.transports),
		"clients":    len(p.clients),
		"hosts":      hosts,
	}
}
