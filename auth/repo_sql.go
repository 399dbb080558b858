package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/jimiolaniyan/gosocial/storage"
)

const (
	selectAccount       = "SELECT account_id, username, password FROM account"
	insertAccount       = "INSERT INTO account (username, password) VALUES (?, ?)"
	countAccountsWithID = "SELECT COUNT(1) FROM account WHERE account_id = ?"
)

type sqlAccountRepository struct {
	db *sqlx.DB
}

type dbAccount struct {
	ID       int64  `db:"account_id"`
	Username string `db:"username"`
	Password string `db:"password"`
}

// NewSQLAccountRepository stores accounts in the account table of a mysql or postgres database.
func NewSQLAccountRepository(db *sqlx.DB) Repository {
	return &sqlAccountRepository{db: db}
}

func (s *sqlAccountRepository) FindByID(ctx context.Context, id ID) (*Account, error) {
	return s.findAccountBy(ctx, selectAccount+" WHERE account_id = ?", int64(id))
}

func (s *sqlAccountRepository) FindByName(ctx context.Context, username string) (*Account, error) {
	return s.findAccountBy(ctx, selectAccount+" WHERE username = ?", username)
}

func (s *sqlAccountRepository) FindByCredentials(ctx context.Context, username, password string) (*Account, error) {
	return s.findAccountBy(ctx, selectAccount+" WHERE username = ? AND password = ?", username, password)
}

func (s *sqlAccountRepository) Exists(ctx context.Context, id ID) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(countAccountsWithID), int64(id)); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *sqlAccountRepository) Store(ctx context.Context, acc *Account) error {
	id, err := storage.InsertReturningID(ctx, s.db, insertAccount, "account_id", acc.Username, acc.Password)
	if err != nil {
		return err
	}
	acc.ID = ID(id)
	return nil
}

func (s *sqlAccountRepository) findAccountBy(ctx context.Context, query string, args ...interface{}) (*Account, error) {
	var a dbAccount
	err := s.db.GetContext(ctx, &a, s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	acc := accountFromDBAccount(a)
	return &acc, nil
}

func accountFromDBAccount(a dbAccount) Account {
	return Account{ID: ID(a.ID), Username: a.Username, Password: a.Password}
}
