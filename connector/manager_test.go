package connector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Konsultn-Engineering/sqltpl/database"
	"github.com/Konsultn-Engineering/sqltpl/dialect"
	"github.com/Konsultn-Engineering/sqltpl/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConnection struct {
	healthErr error
	closed    bool
}

func (c *fakeConnection) Database() database.Database  { return nil }
func (c *fakeConnection) Dialect() dialect.Dialect     { return dialect.NewSQLiteDialect() }
func (c *fakeConnection) Health(context.Context) error { return c.healthErr }
func (c *fakeConnection) Stats() ConnectionStats       { return ConnectionStats{OpenConnections: 1} }
func (c *fakeConnection) Close() error                 { c.closed = true; return nil }

// fakeProvider fails the first failures connection attempts.
type fakeProvider struct {
	failures  int
	attempts  int
	healthErr error
	last      *fakeConnection
}

func (p *fakeProvider) Connect(_ context.Context, _ Config) (Connection, error) {
	p.attempts++
	if p.attempts <= p.failures {
		return nil, errors.New("connection refused")
	}
	p.last = &fakeConnection{healthErr: p.healthErr}
	return p.last, nil
}

func (p *fakeProvider) Dialect() dialect.Dialect { return dialect.NewSQLiteDialect() }

func (p *fakeProvider) HealthCheck(ctx context.Context, conn Connection) error {
	return conn.Health(ctx)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New("no-such-provider", Config{})
	assert.EqualError(t, err, "provider no-such-provider not registered")
}

func TestConnect(t *testing.T) {
	p := &fakeProvider{}
	Register("fake-connect", p)
	assert.Contains(t, Providers(), "fake-connect")

	c, err := New("fake-connect", Config{Driver: "fake-connect"})
	require.NoError(t, err)

	conn, err := c.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sqlite", conn.Dialect().Name())
	assert.Equal(t, 1, conn.Stats().OpenConnections)
	assert.NoError(t, c.Close())
}

func TestConnect_HealthCheckFailureClosesConnection(t *testing.T) {
	p := &fakeProvider{healthErr: errors.New("not ready")}
	Register("fake-unhealthy", p)

	c, err := New("fake-unhealthy", Config{})
	require.NoError(t, err)

	_, err = c.Connect(context.Background())
	assert.EqualError(t, err, "health check failed: not ready")
	assert.True(t, p.last.closed)
}

func TestConnectWithRetry(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		retries  int
		wantErr  bool
		attempts int
	}{
		{name: "first attempt", failures: 0, retries: 3, attempts: 1},
		{name: "succeeds after failures", failures: 2, retries: 3, attempts: 3},
		{name: "gives up", failures: 5, retries: 3, wantErr: true, attempts: 3},
		{name: "zero retries still tries once", failures: 0, retries: 0, attempts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{failures: tt.failures}
			Register("fake-retry", p)

			c, err := NewWithLogger("fake-retry", Config{}, testutil.NewTestLogger(t))
			require.NoError(t, err)

			conn, err := c.ConnectWithRetry(context.Background(), RetryConfig{
				MaxRetries: tt.retries,
				BaseDelay:  time.Millisecond,
				MaxDelay:   2 * time.Millisecond,
			})
			if tt.wantErr {
				assert.ErrorContains(t, err, "connection refused")
				assert.Nil(t, conn)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, conn)
			}
			assert.Equal(t, tt.attempts, p.attempts)
		})
	}
}

func TestConnectWithRetry_ContextCanceled(t *testing.T) {
	p := &fakeProvider{failures: 10}
	Register("fake-cancel", p)

	c, err := New("fake-cancel", Config{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.ConnectWithRetry(ctx, RetryConfig{MaxRetries: 5, BaseDelay: time.Hour})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, p.attempts)
}

func TestOpen(t *testing.T) {
	p := &fakeProvider{failures: 1}
	Register("fake-open", p)

	_, err := Open(context.Background(), Config{}, nil)
	assert.ErrorContains(t, err, "driver is required")

	conn, err := Open(context.Background(), Config{
		Driver: "fake-open",
		Retry:  &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond},
	}, nil)
	require.NoError(t, err)
	assert.NotNil(t, conn)
	assert.Equal(t, 2, p.attempts)
}
