package storage

import (
	"context"
	"os"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestInsertReturningID_LastInsertID(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "mysql")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO account (username, password) VALUES (?, ?)")).
		WithArgs("user", "pass").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := InsertReturningID(context.Background(), db, "INSERT INTO account (username, password) VALUES (?, ?)", "account_id", "user", "pass")

	assert.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertReturningID_Postgres(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "postgres")

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO account (username, password) VALUES ($1, $2) RETURNING account_id")).
		WithArgs("user", "pass").
		WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow(int64(3)))

	id, err := InsertReturningID(context.Background(), db, "INSERT INTO account (username, password) VALUES (?, ?)", "account_id", "user", "pass")

	assert.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateRejectsUnknownDriver(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	err = Migrate(sqlx.NewDb(mockDB, "sqlite3"))

	assert.Error(t, err)
}

func TestMigrateMySQLIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set; skipping mysql migration test")
	}

	db, err := OpenSQL(context.Background(), "mysql", dsn)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, Migrate(db))
	assert.NoError(t, Migrate(db), "second run must be a no-op")
}

func TestMigratePostgresIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres migration test")
	}

	db, err := OpenSQL(context.Background(), "postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, Migrate(db))
	assert.NoError(t, Migrate(db), "second run must be a no-op")
}

func TestBadgerSequenceStartsAtZero(t *testing.T) {
	db, err := OpenBadger("")
	require.NoError(t, err)
	defer db.Close()

	seq, err := BadgerSequence(db, "account")
	require.NoError(t, err)
	defer seq.Release()

	first, err := seq.Next()
	require.NoError(t, err)
	second, err := seq.Next()
	require.NoError(t, err)

	assert.Equal(t, uint64(0), first)
	assert.Equal(t, uint64(1), second)
}

func TestNextSequence(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("increments counter", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: bson.D{{Key: "_id", Value: "message"}, {Key: "seq", Value: int64(5)}}},
		))

		id, err := NextSequence(context.Background(), mt.DB, "message")

		assert.NoError(mt, err)
		assert.Equal(mt, int64(5), id)
	})

	mt.Run("propagates command errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11000, Message: "boom"}))

		_, err := NextSequence(context.Background(), mt.DB, "message")

		assert.Error(mt, err)
	})
}
