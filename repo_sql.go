package social

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/jimiolaniyan/gosocial/auth"
	"github.com/jimiolaniyan/gosocial/storage"
)

const (
	selectMessage = "SELECT message_id, posted_by, message_text, posted_time FROM message"
	insertMessage = "INSERT INTO message (posted_by, message_text, posted_time) VALUES (?, ?, ?)"
	updateMessage = "UPDATE message SET posted_by = ?, message_text = ?, posted_time = ? WHERE message_id = ?"
	deleteMessage = "DELETE FROM message WHERE message_id = ?"
)

type sqlMessageRepository struct {
	db *sqlx.DB
}

type dbMessage struct {
	ID         int64  `db:"message_id"`
	PostedBy   int64  `db:"posted_by"`
	Text       string `db:"message_text"`
	PostedTime int64  `db:"posted_time"`
}

// NewSQLMessageRepository stores messages in the message table of a mysql or postgres database.
func NewSQLMessageRepository(db *sqlx.DB) Repository {
	return &sqlMessageRepository{db: db}
}

func (s *sqlMessageRepository) FindByID(ctx context.Context, id MessageID) (*Message, error) {
	var row dbMessage
	err := s.db.GetContext(ctx, &row, s.db.Rebind(selectMessage+" WHERE message_id = ?"), int64(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}

	m := messageFromDBMessage(row)
	return &m, nil
}

func (s *sqlMessageRepository) FindAll(ctx context.Context) ([]Message, error) {
	return s.selectMessages(ctx, selectMessage+" ORDER BY message_id")
}

func (s *sqlMessageRepository) FindByAuthor(ctx context.Context, accountID auth.ID) ([]Message, error) {
	return s.selectMessages(ctx, selectMessage+" WHERE posted_by = ? ORDER BY message_id", int64(accountID))
}

func (s *sqlMessageRepository) Store(ctx context.Context, m *Message) error {
	id, err := storage.InsertReturningID(ctx, s.db, insertMessage, "message_id", int64(m.PostedBy), m.Text, m.PostedTime)
	if err != nil {
		return err
	}
	m.ID = MessageID(id)
	return nil
}

func (s *sqlMessageRepository) Update(ctx context.Context, m *Message) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(updateMessage), int64(m.PostedBy), m.Text, m.PostedTime, int64(m.ID))
	if err != nil {
		return err
	}
	// mysql reports 0 affected rows when nothing changed, so only a
	// disappeared row is treated as missing.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := s.FindByID(ctx, m.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqlMessageRepository) Delete(ctx context.Context, id MessageID) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(deleteMessage), int64(id))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *sqlMessageRepository) selectMessages(ctx context.Context, query string, args ...interface{}) ([]Message, error) {
	var rows []dbMessage
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row dbMessage, _ int) Message {
		return messageFromDBMessage(row)
	}), nil
}

func messageFromDBMessage(row dbMessage) Message {
	return Message{
		ID:         MessageID(row.ID),
		PostedBy:   auth.ID(row.PostedBy),
		Text:       row.Text,
		PostedTime: row.PostedTime,
	}
}
