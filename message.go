package social

import (
	"context"
	"errors"
	"time"

	"github.com/jimiolaniyan/gosocial/auth"
)

var (
	ErrAccountNotFound    = errors.New("account does not exist")
	ErrMessageNotFound    = errors.New("message does not exist")
	ErrInvalidMessageText = errors.New("message cannot be blank or over 255 characters")
	ErrInvalidMessageID   = errors.New("invalid message id")
)

// Repository is the message store. Lists come back in id order.
type Repository interface {
	FindByID(ctx context.Context, id MessageID) (*Message, error)
	FindAll(ctx context.Context) ([]Message, error)
	FindByAuthor(ctx context.Context, accountID auth.ID) ([]Message, error)
	Store(ctx context.Context, m *Message) error
	Update(ctx context.Context, m *Message) error
	Delete(ctx context.Context, id MessageID) (int64, error)
}

type MessageID int64

type Message struct {
	ID         MessageID `json:"messageId"`
	PostedBy   auth.ID   `json:"postedBy"`
	Text       string    `json:"messageText"`
	PostedTime int64     `json:"postedTime"`
}

// NewMessage checks the text and returns an unsaved message. A zero postedTime
// is replaced with the current time in epoch milliseconds.
func NewMessage(postedBy auth.ID, text string, postedTime int64) (*Message, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}

	if postedTime == 0 {
		postedTime = time.Now().UnixMilli()
	}
	return &Message{PostedBy: postedBy, Text: text, PostedTime: postedTime}, nil
}
