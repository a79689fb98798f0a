package sqlshape

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return Wrap(sqlDB), mock
}

func TestDB_StatementText(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("select", func(t *testing.T) {
		t.Parallel()

		db, mock := newMockDB(t)
		mock.ExpectQuery("SELECT id, name FROM users WHERE dept = ? AND name = ? ORDER BY id LIMIT 5").
			WithArgs("dev", "alice").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "alice"))

		rows, err := db.Select(ctx, SelectQuery{
			Table:  "users",
			Fields: []string{"id", "name"},
			Where:  Eq(map[string]any{"name": "alice", "dept": "dev"}),
			Order:  "id",
			Limit:  5,
		})
		require.NoError(t, err)
		assert.Equal(t, []Row{{"id": int64(1), "name": "alice"}}, rows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("select with offset only", func(t *testing.T) {
		t.Parallel()

		db, mock := newMockDB(t)
		mock.ExpectQuery("SELECT * FROM users LIMIT -1 OFFSET 10").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		rows, err := db.Select(ctx, SelectQuery{Table: "users", Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.NotNil(t, rows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert", func(t *testing.T) {
		t.Parallel()

		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO users (age, name) VALUES (?, ?)").
			WithArgs(30, "bob").
			WillReturnResult(sqlmock.NewResult(7, 1))

		id, err := db.Insert(ctx, "users", Record{"name": "bob", "age": 30})
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update binds set values before where values", func(t *testing.T) {
		t.Parallel()

		db, mock := newMockDB(t)
		mock.ExpectExec("UPDATE users SET age = ?, dept = ? WHERE name = ?").
			WithArgs(40, "ops", "bob").
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := db.Update(ctx, "users", Eq(map[string]any{"name": "bob"}), Record{"dept": "ops", "age": 40})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty update runs nothing", func(t *testing.T) {
		t.Parallel()

		db, mock := newMockDB(t)

		n, err := db.Update(ctx, "users", Eq(map[string]any{"name": "bob"}), Record{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		db, mock := newMockDB(t)
		mock.ExpectExec("DELETE FROM users WHERE name LIKE ?").
			WithArgs("a%").
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := db.Delete(ctx, "users", Cond("name LIKE ?", "a%"))
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver errors carry context", func(t *testing.T) {
		t.Parallel()

		db, mock := newMockDB(t)
		diskFull := errors.New("disk full")
		mock.ExpectExec("DELETE FROM users").WillReturnError(diskFull)

		_, err := db.Delete(ctx, "users", Where{})
		require.Error(t, err)
		assert.ErrorIs(t, err, diskFull)
		assert.Equal(t, "sqlshape: delete failed, table: users, query: DELETE FROM users: disk full", err.Error())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rows affected error", func(t *testing.T) {
		t.Parallel()

		db, mock := newMockDB(t)
		mock.ExpectExec("UPDATE users SET age = ?").
			WithArgs(1).
			WillReturnResult(sqlmock.NewErrorResult(errors.New("unsupported")))

		_, err := db.Update(ctx, "users", Where{}, Record{"age": 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "details: rows affected")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("scan error", func(t *testing.T) {
		t.Parallel()

		db, mock := newMockDB(t)
		mock.ExpectQuery("SELECT * FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).RowError(0, errors.New("broken row")))

		_, err := db.Select(ctx, SelectQuery{Table: "users"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken row")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
