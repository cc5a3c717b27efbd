package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDatabase(t *testing.T) (*SqlDatabase, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	return NewSqlDatabase(db), mock
}

func TestSqlDatabase_QueryContext(t *testing.T) {
	d, mock := newMockDatabase(t)
	query := "SELECT id, name FROM users WHERE id IN (1, 2)"
	mock.ExpectQuery(query).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), []byte("Jack")).
			AddRow(int64(2), "Jill"),
	)

	rows, err := d.QueryContext(context.Background(), query)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, cols)

	var got [][]any
	for rows.Next() {
		values, err := ScanValues(rows, len(cols))
		require.NoError(t, err)
		got = append(got, values)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, [][]any{{int64(1), "Jack"}, {int64(2), "Jill"}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlDatabase_ExecContext(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		affected  int64
		expectErr bool
	}{
		{
			name: "exec success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE users SET `name` = 'Jack' WHERE id = 1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			affected: 1,
		},
		{
			name: "exec with error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE users SET `name` = 'Jack' WHERE id = 1").
					WillReturnError(assert.AnError)
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, mock := newMockDatabase(t)
			tt.setupMock(mock)

			res, err := d.ExecContext(context.Background(), "UPDATE users SET `name` = 'Jack' WHERE id = 1")
			if tt.expectErr {
				assert.ErrorIs(t, err, assert.AnError)
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				n, err := res.RowsAffected()
				require.NoError(t, err)
				assert.Equal(t, tt.affected, n)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSqlDatabase_PingAndClose(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	d := NewSqlDatabase(db)
	assert.Same(t, db, d.DB())

	mock.ExpectPing()
	mock.ExpectClose()

	require.NoError(t, d.PingContext(context.Background()))
	require.NoError(t, d.Close())
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Error(t, (&SqlDatabase{}).Close())
}

func TestPgxResult_RowsAffected(t *testing.T) {
	r := &PgxResult{cmdTag: pgconn.NewCommandTag("UPDATE 3")}
	n, err := r.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
