package database

import (
	"context"
	"database/sql"
	"errors"
)

// SqlDatabase implements Database for *sql.DB.
type SqlDatabase struct {
	db *sql.DB
}

func NewSqlDatabase(db *sql.DB) *SqlDatabase {
	return &SqlDatabase{db: db}
}

// QueryContext executes a query that returns rows.
func (s *SqlDatabase) QueryContext(ctx context.Context, query string) (Rows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &SqlRows{rows: rows}, nil
}

// ExecContext executes a query without returning rows.
func (s *SqlDatabase) ExecContext(ctx context.Context, query string) (Result, error) {
	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return res, nil // database/sql.Result implements Result
}

func (s *SqlDatabase) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SqlDatabase) Close() error {
	if s.db == nil {
		return errors.New("database connection not established")
	}
	return s.db.Close()
}

// DB returns the underlying handle.
func (s *SqlDatabase) DB() *sql.DB { return s.db }

// SqlRows implements Rows for *sql.Rows.
type SqlRows struct {
	rows *sql.Rows
}

func (s *SqlRows) Next() bool                 { return s.rows.Next() }
func (s *SqlRows) Scan(dest ...any) error     { return s.rows.Scan(dest...) }
func (s *SqlRows) Close() error               { return s.rows.Close() }
func (s *SqlRows) Columns() ([]string, error) { return s.rows.Columns() }
func (s *SqlRows) Err() error                 { return s.rows.Err() }

var _ Database = (*SqlDatabase)(nil)
