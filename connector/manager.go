package connector

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

type standardConnector struct {
	provider Provider
	config   Config
	logger   *slog.Logger
}

var globalManager = &Manager{
	providers: make(map[string]Provider),
}

type Manager struct {
	providers map[string]Provider
	mu        sync.RWMutex
}

// Register makes a provider available under name. Registering the same name
// twice replaces the earlier provider.
func Register(name string, provider Provider) {
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	globalManager.providers[name] = provider
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()
	names := make([]string, 0, len(globalManager.providers))
	for name := range globalManager.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func New(name string, config Config) (Connector, error) {
	return NewWithLogger(name, config, nil)
}

// NewWithLogger is New with a logger for connection attempts.
func NewWithLogger(name string, config Config, logger *slog.Logger) (Connector, error) {
	globalManager.mu.RLock()
	provider, ok := globalManager.providers[name]
	globalManager.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider %s not registered", name)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &standardConnector{provider: provider, config: config, logger: logger}, nil
}

// Open connects using config.Driver, retrying when config.Retry is set.
func Open(ctx context.Context, config Config, logger *slog.Logger) (Connection, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid connection config: %w", err)
	}
	c, err := NewWithLogger(config.Driver, config, logger)
	if err != nil {
		return nil, err
	}
	if config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.ConnectTimeout)
		defer cancel()
	}
	if config.Retry != nil {
		return c.ConnectWithRetry(ctx, *config.Retry)
	}
	return c.Connect(ctx)
}

func (c *standardConnector) Connect(ctx context.Context) (Connection, error) {
	conn, err := c.provider.Connect(ctx, c.config)
	if err != nil {
		return nil, err
	}
	if err := c.provider.HealthCheck(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	c.logger.Debug("connected", "driver", c.config.Driver, "dialect", conn.Dialect().Name())
	return conn, nil
}

func (c *standardConnector) ConnectWithRetry(ctx context.Context, opts RetryConfig) (Connection, error) {
	conn, err := retryConnect(ctx, opts, c.logger, c.Connect)
	if err != nil {
		return nil, fmt.Errorf("failed to connect after %d attempts: %w", max(opts.MaxRetries, 1), err)
	}
	return conn, nil
}

func (c *standardConnector) Close() error {
	return nil
}
