// Package sqltpl builds literal SQL from query templates and runs it against
// a database connection.
//
// Templates use ?, ?d, ?f, ?a and ?# placeholders and {...} conditional
// blocks; see the engine package for the full syntax.
package sqltpl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Konsultn-Engineering/sqltpl/connector"
	"github.com/Konsultn-Engineering/sqltpl/database"
	"github.com/Konsultn-Engineering/sqltpl/dialect"
	"github.com/Konsultn-Engineering/sqltpl/engine"
)

type (
	Assoc = engine.Assoc
	Pair  = engine.Pair
)

var (
	Named      = engine.Named
	Positional = engine.Positional
)

// Skip returns the marker that drops the conditional block consuming it.
func Skip() any {
	return engine.Skip()
}

// DB renders templates with an engine bound to one database.
type DB struct {
	db           database.Database
	conn         connector.Connection
	engine       *engine.Engine
	logger       *slog.Logger
	queryTimeout time.Duration
}

type Option func(*options)

type options struct {
	dialect      dialect.Dialect
	logger       *slog.Logger
	engineOpts   []engine.Option
	queryTimeout time.Duration
}

// WithDialect overrides the dialect taken from the connection.
func WithDialect(d dialect.Dialect) Option {
	return func(o *options) { o.dialect = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEngineOptions passes options through to engine.New.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(o *options) { o.engineOpts = append(o.engineOpts, opts...) }
}

// WithQueryTimeout bounds each Exec call.
func WithQueryTimeout(d time.Duration) Option {
	return func(o *options) { o.queryTimeout = d }
}

// New wraps db. Identifiers are quoted for MySQL unless WithDialect is given.
func New(db database.Database, opts ...Option) *DB {
	return newDB(db, nil, dialect.NewMySQLDialect(), opts)
}

// Connect wraps an open connection, using its dialect.
func Connect(conn connector.Connection, opts ...Option) *DB {
	return newDB(conn.Database(), conn, conn.Dialect(), opts)
}

// Open connects through the provider named by cfg.Driver. The provider
// package must be imported for its side effects.
func Open(ctx context.Context, cfg connector.Config, opts ...Option) (*DB, error) {
	o := collect(opts)
	conn, err := connector.Open(ctx, cfg, o.logger)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	if cfg.QueryTimeout > 0 {
		opts = append([]Option{WithQueryTimeout(cfg.QueryTimeout)}, opts...)
	}
	return Connect(conn, opts...), nil
}

func collect(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

func newDB(db database.Database, conn connector.Connection, d dialect.Dialect, opts []Option) *DB {
	o := collect(opts)
	if o.dialect != nil {
		d = o.dialect
	}
	engineOpts := append([]engine.Option{engine.WithDialect(d), engine.WithLogger(o.logger)}, o.engineOpts...)
	return &DB{
		db:           db,
		conn:         conn,
		engine:       engine.New(engineOpts...),
		logger:       o.logger,
		queryTimeout: o.queryTimeout,
	}
}

// BuildQuery renders template without executing it.
func (d *DB) BuildQuery(template string, args ...any) (string, error) {
	return d.engine.BuildQuery(template, args...)
}

// Skip returns the skip marker.
func (d *DB) Skip() any {
	return d.engine.Skip()
}

// Engine returns the engine used to render templates.
func (d *DB) Engine() *engine.Engine {
	return d.engine
}

// Database returns the wrapped database.
func (d *DB) Database() database.Database {
	return d.db
}

// Query builds template and runs it as a query returning rows.
func (d *DB) Query(ctx context.Context, template string, args ...any) (database.Rows, error) {
	query, err := d.engine.BuildQuery(template, args...)
	if err != nil {
		return nil, err
	}
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		d.logger.Error("query failed", "query", query, "error", err)
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}

// Exec builds template and runs it as a statement.
func (d *DB) Exec(ctx context.Context, template string, args ...any) (database.Result, error) {
	query, err := d.engine.BuildQuery(template, args...)
	if err != nil {
		return nil, err
	}
	if d.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.queryTimeout)
		defer cancel()
	}
	res, err := d.db.ExecContext(ctx, query)
	if err != nil {
		d.logger.Error("exec failed", "query", query, "error", err)
		return nil, fmt.Errorf("exec: %w", err)
	}
	return res, nil
}

// Close closes the connection, or the database when the DB was built with New.
func (d *DB) Close() error {
	if d.conn != nil {
		return d.conn.Close()
	}
	return d.db.Close()
}
