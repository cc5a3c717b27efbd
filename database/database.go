// Package database wraps the drivers a built query is sent to.
//
// Queries reach these types as literal SQL. No bind arguments are passed
// through; the template engine has already rendered every value.
package database

import (
	"context"
	"sync"
)

type Database interface {
	QueryContext(ctx context.Context, query string) (Rows, error)
	ExecContext(ctx context.Context, query string) (Result, error)
	PingContext(ctx context.Context) error
	Close() error
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Columns() ([]string, error)
	Err() error
}

type Result interface {
	RowsAffected() (int64, error)
}

type scanBuffers struct {
	ptrs []any
}

// prepare points the first len(vals) scan targets at vals.
func (sb *scanBuffers) prepare(vals []any) []any {
	if cap(sb.ptrs) < len(vals) {
		sb.ptrs = make([]any, len(vals))
	}
	sb.ptrs = sb.ptrs[:len(vals)]
	for i := range vals {
		sb.ptrs[i] = &vals[i]
	}
	return sb.ptrs
}

func (sb *scanBuffers) release() {
	clear(sb.ptrs)
	scanPool.Put(sb)
}

var scanPool = sync.Pool{
	New: func() interface{} {
		return &scanBuffers{ptrs: make([]any, 0, 20)}
	},
}

// ScanValues reads the current row into a fresh slice, one value per column.
// Byte slices are returned as strings.
func ScanValues(rows Rows, n int) ([]any, error) {
	values := make([]any, n)
	sb := scanPool.Get().(*scanBuffers)
	defer sb.release()

	if err := rows.Scan(sb.prepare(values)...); err != nil {
		return nil, err
	}
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}
	return values, nil
}
