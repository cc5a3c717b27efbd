package sqltpl

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Konsultn-Engineering/sqltpl/connector"
	"github.com/Konsultn-Engineering/sqltpl/database"
	"github.com/Konsultn-Engineering/sqltpl/dialect"
	"github.com/Konsultn-Engineering/sqltpl/engine"
	"github.com/Konsultn-Engineering/sqltpl/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/Konsultn-Engineering/sqltpl/providers/sqlite"
)

func newMockDB(t *testing.T, opts ...Option) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	opts = append([]Option{WithLogger(testutil.NewTestLogger(t))}, opts...)
	return New(database.NewSqlDatabase(db), opts...), mock
}

func TestDB_Query(t *testing.T) {
	d, mock := newMockDB(t)
	mock.ExpectQuery("SELECT `name`, `email` FROM users WHERE user_id = 2 AND block = 1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "email"}).AddRow("Jack", "jack@example.com"))

	rows, err := d.Query(context.Background(),
		"SELECT ?# FROM users WHERE user_id = ?d AND block = ?d",
		[]string{"name", "email"}, 2, true)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next())
	var name, email string
	require.NoError(t, rows.Scan(&name, &email))
	assert.Equal(t, "Jack", name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Exec(t *testing.T) {
	tests := []struct {
		name     string
		template string
		args     []any
		expected string
	}{
		{
			name:     "assoc update",
			template: "UPDATE users SET ?a WHERE user_id = -1",
			args:     []any{Assoc{Named("name", "Jack"), Named("email", nil)}},
			expected: "UPDATE users SET `name` = 'Jack', `email` = NULL WHERE user_id = -1",
		},
		{
			name:     "skipped block",
			template: "DELETE FROM users WHERE id = ?d{ AND block = ?d}",
			args:     []any{3, Skip()},
			expected: "DELETE FROM users WHERE id = 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, mock := newMockDB(t, WithQueryTimeout(time.Second))
			mock.ExpectExec(tt.expected).WillReturnResult(sqlmock.NewResult(0, 1))

			res, err := d.Exec(context.Background(), tt.template, tt.args...)
			require.NoError(t, err)
			n, err := res.RowsAffected()
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDB_BuildErrorDoesNotReachDatabase(t *testing.T) {
	d, mock := newMockDB(t)

	_, err := d.Exec(context.Background(), "SELECT ?# FROM t", 5)
	var ite *engine.IdentifierTypeError
	assert.ErrorAs(t, err, &ite)

	_, err = d.Query(context.Background(), "SELECT * FROM t WHERE id = ?d", Skip())
	assert.ErrorIs(t, err, engine.ErrSkipOutsideBlock)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_DatabaseErrorIsWrapped(t *testing.T) {
	d, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM t").WillReturnError(assert.AnError)
	mock.ExpectQuery("SELECT 1").WillReturnError(assert.AnError)

	_, err := d.Exec(context.Background(), "DELETE FROM t")
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorContains(t, err, "exec: ")

	_, err = d.Query(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorContains(t, err, "query: ")
}

func TestDB_Options(t *testing.T) {
	d, _ := newMockDB(t,
		WithDialect(dialect.NewPostgresDialect()),
		WithEngineOptions(engine.WithStringEscaping()),
	)
	assert.Equal(t, "postgres", d.Engine().Dialect().Name())
	assert.True(t, engine.IsSkip(d.Skip()))
	assert.True(t, engine.IsSkip(Skip()))

	got, err := d.BuildQuery("SELECT ?# FROM t WHERE name = ?", "name", "O'Brien")
	require.NoError(t, err)
	assert.Equal(t, `SELECT "name" FROM t WHERE name = 'O''Brien'`, got)

	d, _ = newMockDB(t)
	assert.Equal(t, "mysql", d.Engine().Dialect().Name())
}

func TestDB_Close(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	d := New(database.NewSqlDatabase(db))
	assert.NotNil(t, d.Database())
	require.NoError(t, d.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	d, err := Open(ctx, connector.Config{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "users.db"),
		QueryTimeout: time.Second,
	}, WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	defer func() { _ = d.Close() }()
	assert.Equal(t, "sqlite", d.Engine().Dialect().Name())

	_, err = d.Exec(ctx, "CREATE TABLE ?# (id INTEGER PRIMARY KEY, name TEXT, email TEXT, block INTEGER)", "users")
	require.NoError(t, err)

	for _, u := range []Assoc{
		{Named("id", 1), Named("name", "Jack"), Named("email", "jack@example.com"), Named("block", false)},
		{Named("id", 2), Named("name", "Jill"), Named("email", nil), Named("block", true)},
	} {
		keys := make([]string, len(u))
		values := make([]any, len(u))
		for i, p := range u {
			keys[i] = p.Key.(string)
			values[i] = p.Value
		}
		_, err := d.Exec(ctx, "INSERT INTO users (?#) VALUES (?a)", keys, values)
		require.NoError(t, err)
	}

	res, err := d.Exec(ctx, "UPDATE users SET ?a WHERE id = ?d", Assoc{Named("email", "jill@example.com")}, 2)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	count := func(block any) int {
		rows, err := d.Query(ctx, "SELECT id FROM users WHERE id IN (?a){ AND block = ?d}", []int{1, 2}, block)
		require.NoError(t, err)
		defer func() { _ = rows.Close() }()
		c := 0
		for rows.Next() {
			c++
		}
		require.NoError(t, rows.Err())
		return c
	}
	assert.Equal(t, 2, count(Skip()))
	assert.Equal(t, 1, count(true))
	assert.Equal(t, 1, count(false))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), connector.Config{Driver: "oracle"})
	assert.ErrorContains(t, err, "provider oracle not registered")
}
