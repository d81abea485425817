package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestNewTxManager(t *testing.T) {
	db, _ := newMockDB(t)

	txManager := NewTxManager(db)
	assert.NotNil(t, txManager)
	assert.IsType(t, &sqlTxManager{}, txManager)
}

func TestWithTx_Success(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	txManager := NewTxManager(db)
	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		tx := ctx.Value(txKey{})
		assert.NotNil(t, tx)
		assert.IsType(t, &sql.Tx{}, tx)
		return nil
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	txManager := NewTxManager(db)
	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		return assert.AnError
	})

	assert.Equal(t, assert.AnError, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_BeginError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("begin failed"))

	txManager := NewTxManager(db)
	called := false
	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.EqualError(t, err, "begin failed")
	assert.False(t, called)
}

func TestWithTx_CommitError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	txManager := NewTxManager(db)
	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		return nil
	})

	assert.EqualError(t, err, "commit failed")
}

func TestWithTx_RollbackError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("rollback failed"))

	txManager := NewTxManager(db)
	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		return assert.AnError
	})

	assert.EqualError(t, err, "rollback failed")
}

func TestWithTx_JoinsExistingTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	txManager := NewTxManager(db)
	err := txManager.WithTx(context.Background(), func(outer context.Context) error {
		return txManager.WithTx(outer, func(inner context.Context) error {
			assert.Same(t, outer.Value(txKey{}), inner.Value(txKey{}))
			return nil
		})
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTx_WithTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	txManager := NewTxManager(db)
	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		querier := GetTx(ctx, db)
		assert.NotNil(t, querier)
		assert.IsType(t, &sql.Tx{}, querier)
		return nil
	})

	assert.NoError(t, err)
}

func TestGetTx_WithoutTransaction(t *testing.T) {
	db, _ := newMockDB(t)

	querier := GetTx(context.Background(), db)

	assert.NotNil(t, querier)
	assert.Equal(t, db, querier)
}

func TestWithSavepoint(t *testing.T) {
	t.Run("releases savepoint on success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("SAVEPOINT enqueue").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO outbox_items (id) VALUES (?)").
			WithArgs("a").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("RELEASE SAVEPOINT enqueue").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			return WithSavepoint(ctx, "enqueue", func(ctx context.Context) error {
				_, err := GetTx(ctx, db).ExecContext(ctx, "INSERT INTO outbox_items (id) VALUES (?)", "a")
				return err
			})
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back only the savepoint and keeps the outer transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE packs SET status = ?").
			WithArgs("ACTIVE").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("SAVEPOINT enqueue").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO outbox_items (id) VALUES (?)").
			WithArgs("a").
			WillReturnError(errors.New("disk full"))
		mock.ExpectExec("ROLLBACK TO SAVEPOINT enqueue").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("RELEASE SAVEPOINT enqueue").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		var spErr error
		err := NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			if _, err := GetTx(ctx, db).ExecContext(ctx, "UPDATE packs SET status = ?", "ACTIVE"); err != nil {
				return err
			}
			spErr = WithSavepoint(ctx, "enqueue", func(ctx context.Context) error {
				_, err := GetTx(ctx, db).ExecContext(ctx, "INSERT INTO outbox_items (id) VALUES (?)", "a")
				return err
			})
			return nil
		})

		assert.NoError(t, err)
		assert.EqualError(t, spErr, "disk full")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("savepoint creation failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("SAVEPOINT enqueue").WillReturnError(errors.New("boom"))
		mock.ExpectCommit()

		var spErr error
		err := NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			spErr = WithSavepoint(ctx, "enqueue", func(ctx context.Context) error {
				t.Fatal("fn must not run")
				return nil
			})
			return nil
		})

		assert.NoError(t, err)
		assert.ErrorContains(t, spErr, "failed to create savepoint enqueue")
	})

	t.Run("without transaction runs fn directly", func(t *testing.T) {
		called := false
		err := WithSavepoint(context.Background(), "enqueue", func(ctx context.Context) error {
			called = true
			return nil
		})

		assert.NoError(t, err)
		assert.True(t, called)
	})
}
