package auth

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/jimiolaniyan/gosocial/storage"
)

func testRepository(t *testing.T, repo Repository) {
	ctx := context.Background()

	_, err := repo.FindByName(ctx, "user")
	assert.Equal(t, ErrNotFound, err)

	first := &Account{Username: "user", Password: "pass"}
	second := &Account{Username: "other", Password: "word"}
	require.NoError(t, repo.Store(ctx, first))
	require.NoError(t, repo.Store(ctx, second))
	assert.Greater(t, int64(first.ID), int64(0))
	assert.Greater(t, int64(second.ID), int64(first.ID))

	acc, err := repo.FindByID(ctx, first.ID)
	assert.NoError(t, err)
	assert.Equal(t, first, acc)

	acc, err = repo.FindByName(ctx, "other")
	assert.NoError(t, err)
	assert.Equal(t, second, acc)

	acc, err = repo.FindByCredentials(ctx, "user", "pass")
	assert.NoError(t, err)
	assert.Equal(t, first, acc)

	_, err = repo.FindByCredentials(ctx, "user", "word")
	assert.Equal(t, ErrNotFound, err)
	_, err = repo.FindByCredentials(ctx, "USER", "pass")
	assert.Equal(t, ErrNotFound, err)

	_, err = repo.FindByID(ctx, second.ID+100)
	assert.Equal(t, ErrNotFound, err)

	ok, err := repo.Exists(ctx, second.ID)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, second.ID+100)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestInMemoryAccountRepository(t *testing.T) {
	testRepository(t, NewAccountRepository())
}

func TestInMemoryAccountRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()
	acc := &Account{Username: "user", Password: "pass"}
	require.NoError(t, repo.Store(ctx, acc))

	acc.Password = "changed"
	found, _ := repo.FindByID(ctx, acc.ID)
	found.Username = "changed"

	again, _ := repo.FindByID(ctx, acc.ID)
	assert.Equal(t, &Account{ID: acc.ID, Username: "user", Password: "pass"}, again)
}

func TestBadgerAccountRepository(t *testing.T) {
	db, err := storage.OpenBadger("")
	require.NoError(t, err)
	defer db.Close()
	seq, err := storage.BadgerSequence(db, "account")
	require.NoError(t, err)
	defer seq.Release()

	testRepository(t, NewBadgerAccountRepository(db, seq))
}

func TestBadgerAccountRepository_RejectsTakenUsername(t *testing.T) {
	ctx := context.Background()
	db, err := storage.OpenBadger("")
	require.NoError(t, err)
	defer db.Close()
	seq, err := storage.BadgerSequence(db, "account")
	require.NoError(t, err)
	defer seq.Release()
	repo := NewBadgerAccountRepository(db, seq)

	require.NoError(t, repo.Store(ctx, &Account{Username: "user", Password: "pass"}))
	err = repo.Store(ctx, &Account{Username: "user", Password: "other"})

	assert.Equal(t, ErrExistingUsername, err)
}

func newSQLMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "mysql"), mock
}

func TestSQLAccountRepository_FindByName(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewSQLAccountRepository(db)
	query := regexp.QuoteMeta("SELECT account_id, username, password FROM account WHERE username = ?")

	mock.ExpectQuery(query).WithArgs("user").
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "username", "password"}).AddRow(int64(4), "user", "pass"))
	mock.ExpectQuery(query).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	acc, err := repo.FindByName(context.Background(), "user")
	assert.NoError(t, err)
	assert.Equal(t, &Account{ID: 4, Username: "user", Password: "pass"}, acc)

	_, err = repo.FindByName(context.Background(), "ghost")
	assert.Equal(t, ErrNotFound, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLAccountRepository_FindByCredentials(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewSQLAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE username = ? AND password = ?")).WithArgs("user", "pass").
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "username", "password"}).AddRow(int64(1), "user", "pass"))

	acc, err := repo.FindByCredentials(context.Background(), "user", "pass")

	assert.NoError(t, err)
	assert.Equal(t, ID(1), acc.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLAccountRepository_FindByIDAndExists(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewSQLAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM account WHERE account_id = ?")).WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM account WHERE account_id = ?")).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM account WHERE account_id = ?")).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

	_, err := repo.FindByID(context.Background(), 9)
	assert.Equal(t, ErrNotFound, err)

	ok, err := repo.Exists(context.Background(), 2)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(context.Background(), 3)
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLAccountRepository_Store(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewSQLAccountRepository(db)
	boom := errors.New("duplicate entry")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO account (username, password) VALUES (?, ?)")).
		WithArgs("user", "pass").WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO account")).
		WithArgs("user", "pass").WillReturnError(boom)

	acc := &Account{Username: "user", Password: "pass"}
	assert.NoError(t, repo.Store(context.Background(), acc))
	assert.Equal(t, ID(12), acc.ID)

	err := repo.Store(context.Background(), &Account{Username: "user", Password: "pass"})
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMongoAccountRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by name", func(mt *mtest.T) {
		repo := NewMongoAccountRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.accounts", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: int64(3)},
			{Key: "username", Value: "user"},
			{Key: "password", Value: "pass"},
		}))

		acc, err := repo.FindByName(context.Background(), "user")

		assert.NoError(mt, err)
		assert.Equal(mt, &Account{ID: 3, Username: "user", Password: "pass"}, acc)
	})

	mt.Run("missing account", func(mt *mtest.T) {
		repo := NewMongoAccountRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.accounts", mtest.FirstBatch))

		_, err := repo.FindByCredentials(context.Background(), "user", "wrong")

		assert.Equal(mt, ErrNotFound, err)
	})

	mt.Run("store assigns sequence id", func(mt *mtest.T) {
		repo := NewMongoAccountRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{{Key: "_id", Value: "accounts"}, {Key: "seq", Value: int64(8)}}}),
			mtest.CreateSuccessResponse(),
		)

		acc := &Account{Username: "user", Password: "pass"}
		err := repo.Store(context.Background(), acc)

		assert.NoError(mt, err)
		assert.Equal(mt, ID(8), acc.ID)
	})

	mt.Run("exists", func(mt *mtest.T) {
		repo := NewMongoAccountRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.accounts", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}))

		ok, err := repo.Exists(context.Background(), 3)

		assert.NoError(mt, err)
		assert.True(mt, ok)
	})
}
