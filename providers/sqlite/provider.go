// Package sqlite registers the "sqlite" connector provider, backed by the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Konsultn-Engineering/sqltpl/connector"
	"github.com/Konsultn-Engineering/sqltpl/database"
	"github.com/Konsultn-Engineering/sqltpl/dialect"

	// registers the "sqlite" database/sql driver
	_ "modernc.org/sqlite"
)

const (
	driverName = "sqlite"
	memoryPath = ":memory:"
)

type Provider struct{}

func init() {
	connector.Register("sqlite", &Provider{})
}

// pathOf returns Path, falling back to Database, then to an in-memory database.
func pathOf(cfg connector.Config) string {
	switch {
	case cfg.Path != "":
		return cfg.Path
	case cfg.Database != "":
		return cfg.Database
	default:
		return memoryPath
	}
}

func (p *Provider) buildDSN(cfg connector.Config) string {
	return connector.NewDSNBuilder("file").Params(cfg.Params).BuildFile(pathOf(cfg))
}

func (p *Provider) Connect(ctx context.Context, cfg connector.Config) (connector.Connection, error) {
	dsn := p.buildDSN(cfg)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	// Every connection to :memory: opens its own database.
	if pathOf(cfg) == memoryPath {
		db.SetMaxOpenConns(1)
	} else if cfg.Pool.MaxOpen > 0 {
		db.SetMaxOpenConns(cfg.Pool.MaxOpen)
	}
	if cfg.Pool.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.Pool.MaxIdle)
	}
	if cfg.Pool.MaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	}
	if cfg.Pool.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.Pool.MaxIdleTime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	return &connection{
		sqlDB:   db,
		db:      database.NewSqlDatabase(db),
		dialect: dialect.NewSQLiteDialect(),
	}, nil
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewSQLiteDialect()
}

func (p *Provider) HealthCheck(ctx context.Context, conn connector.Connection) error {
	return conn.Health(ctx)
}

type connection struct {
	sqlDB   *sql.DB
	db      *database.SqlDatabase
	dialect dialect.Dialect
}

func (c *connection) Database() database.Database {
	return c.db
}

func (c *connection) Dialect() dialect.Dialect {
	return c.dialect
}

func (c *connection) Health(ctx context.Context) error {
	return c.sqlDB.PingContext(ctx)
}

func (c *connection) Stats() connector.ConnectionStats {
	s := c.sqlDB.Stats()
	return connector.ConnectionStats{
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
	}
}

func (c *connection) Close() error {
	return c.sqlDB.Close()
}
