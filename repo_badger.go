package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"

	"github.com/jimiolaniyan/gosocial/auth"
)

var messagePrefix = []byte("message:")

type badgerMessageRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerMessageRepository keeps messages under "message:{id}". The id is
// zero padded so a prefix scan yields insertion order.
func NewBadgerMessageRepository(db *badger.DB, seq *badger.Sequence) Repository {
	return &badgerMessageRepository{db: db, seq: seq}
}

func messageKey(id MessageID) []byte {
	return []byte(fmt.Sprintf("message:%020d", id))
}

func (b *badgerMessageRepository) FindByID(_ context.Context, id MessageID) (*Message, error) {
	var m *Message
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(messageKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrMessageNotFound
		}
		if err != nil {
			return err
		}

		m = &Message{}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, m)
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (b *badgerMessageRepository) FindAll(_ context.Context) ([]Message, error) {
	msgs := []Message{}
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(messagePrefix); it.ValidForPrefix(messagePrefix); it.Next() {
			var m Message
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			})
			if err != nil {
				return fmt.Errorf("unmarshal failed: %w", err)
			}
			msgs = append(msgs, m)
		}
		return nil
	})
	return msgs, err
}

func (b *badgerMessageRepository) FindByAuthor(ctx context.Context, accountID auth.ID) ([]Message, error) {
	all, err := b.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(m Message, _ int) bool {
		return m.PostedBy == accountID
	}), nil
}

func (b *badgerMessageRepository) Store(_ context.Context, m *Message) error {
	next, err := b.seq.Next()
	if err != nil {
		return err
	}

	stored := *m
	stored.ID = MessageID(next + 1)
	if err := b.db.Update(func(txn *badger.Txn) error {
		return setMessage(txn, stored)
	}); err != nil {
		return err
	}

	m.ID = stored.ID
	return nil
}

func (b *badgerMessageRepository) Update(_ context.Context, m *Message) error {
	return b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(messageKey(m.ID)); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrMessageNotFound
		} else if err != nil {
			return err
		}
		return setMessage(txn, *m)
	})
}

func (b *badgerMessageRepository) Delete(_ context.Context, id MessageID) (int64, error) {
	var n int64
	err := b.db.Update(func(txn *badger.Txn) error {
		key := messageKey(id)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		} else if err != nil {
			return err
		}

		n = 1
		return txn.Delete(key)
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func setMessage(txn *badger.Txn, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set(messageKey(m.ID), data)
}
