package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

type badgerAccountRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerAccountRepository keeps accounts under "account:{id}" with a
// "username:{name}" index. Ids are taken from seq.
func NewBadgerAccountRepository(db *badger.DB, seq *badger.Sequence) Repository {
	return &badgerAccountRepository{db: db, seq: seq}
}

func accountKey(id ID) []byte {
	return []byte(fmt.Sprintf("account:%020d", id))
}

func usernameKey(username string) []byte {
	return []byte("username:" + username)
}

func (b *badgerAccountRepository) Store(_ context.Context, acc *Account) error {
	next, err := b.seq.Next()
	if err != nil {
		return err
	}
	id := ID(next + 1)

	stored := *acc
	stored.ID = id
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(usernameKey(acc.Username)); err == nil {
			return ErrExistingUsername
		}
		if err := txn.Set(accountKey(id), data); err != nil {
			return err
		}
		return txn.Set(usernameKey(acc.Username), accountKey(id))
	})
	if err != nil {
		return err
	}

	acc.ID = id
	return nil
}

func (b *badgerAccountRepository) FindByID(_ context.Context, id ID) (*Account, error) {
	var acc *Account
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		acc, err = getAccount(txn, accountKey(id))
		return err
	})
	return acc, err
}

func (b *badgerAccountRepository) FindByName(_ context.Context, username string) (*Account, error) {
	var acc *Account
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey(username))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		acc, err = getAccount(txn, key)
		return err
	})
	return acc, err
}

func (b *badgerAccountRepository) FindByCredentials(ctx context.Context, username, password string) (*Account, error) {
	acc, err := b.FindByName(ctx, username)
	if err != nil {
		return nil, err
	}
	if acc.Password != password {
		return nil, ErrNotFound
	}
	return acc, nil
}

func (b *badgerAccountRepository) Exists(ctx context.Context, id ID) (bool, error) {
	_, err := b.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func getAccount(txn *badger.Txn, key []byte) (*Account, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var acc Account
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &acc)
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal failed: %w", err)
	}
	return &acc, nil
}
