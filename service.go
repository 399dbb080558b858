package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimiolaniyan/gosocial/auth"
)

type Service interface {
	CreateMessage(ctx context.Context, req createMessageRequest) (*Message, error)
	GetAllMessages(ctx context.Context) ([]Message, error)
	GetMessage(ctx context.Context, id MessageID) (*Message, error)
	DeleteMessage(ctx context.Context, id MessageID) (int64, error)
	UpdateMessage(ctx context.Context, id MessageID, text string) (int64, error)
	GetAccountMessages(ctx context.Context, accountID auth.ID) ([]Message, error)
}

type Option func(*service)

// LenientAccountMessages makes GetAccountMessages answer an unknown account
// with an empty list instead of ErrAccountNotFound.
func LenientAccountMessages() Option {
	return func(s *service) {
		s.strictAccountMessages = false
	}
}

type service struct {
	messages              Repository
	accounts              auth.Repository
	strictAccountMessages bool
}

type createMessageRequest struct {
	PostedBy   auth.ID `json:"postedBy"`
	Text       string  `json:"messageText"`
	PostedTime int64   `json:"postedTime"`
}

type updateMessageRequest struct {
	Text string `json:"messageText"`
}

func NewService(messages Repository, accounts auth.Repository, opts ...Option) Service {
	svc := &service{messages: messages, accounts: accounts, strictAccountMessages: true}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (svc *service) CreateMessage(ctx context.Context, req createMessageRequest) (*Message, error) {
	if err := svc.verifyAccountExists(ctx, req.PostedBy); err != nil {
		return nil, err
	}

	m, err := NewMessage(req.PostedBy, req.Text, req.PostedTime)
	if err != nil {
		return nil, err
	}

	if err = svc.messages.Store(ctx, m); err != nil {
		return nil, fmt.Errorf("error saving message: %w", err)
	}
	return m, nil
}

func (svc *service) GetAllMessages(ctx context.Context) ([]Message, error) {
	msgs, err := svc.messages.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	return nonNil(msgs), nil
}

// GetMessage returns nil without an error when the message does not exist.
func (svc *service) GetMessage(ctx context.Context, id MessageID) (*Message, error) {
	m, err := svc.messages.FindByID(ctx, id)
	if errors.Is(err, ErrMessageNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding message: %w", err)
	}
	return m, nil
}

// DeleteMessage returns the number of messages removed, 0 when there was nothing to delete.
func (svc *service) DeleteMessage(ctx context.Context, id MessageID) (int64, error) {
	n, err := svc.messages.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("error deleting message: %w", err)
	}
	return n, nil
}

// UpdateMessage replaces the text of an existing message. The author is not
// checked again.
func (svc *service) UpdateMessage(ctx context.Context, id MessageID, text string) (int64, error) {
	m, err := svc.messages.FindByID(ctx, id)
	if errors.Is(err, ErrMessageNotFound) {
		return 0, ErrMessageNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("error finding message: %w", err)
	}

	if err := validateText(text); err != nil {
		return 0, err
	}

	m.Text = text
	if err := svc.messages.Update(ctx, m); err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			return 0, ErrMessageNotFound
		}
		return 0, fmt.Errorf("error updating message: %w", err)
	}
	return 1, nil
}

func (svc *service) GetAccountMessages(ctx context.Context, accountID auth.ID) ([]Message, error) {
	err := svc.verifyAccountExists(ctx, accountID)
	if errors.Is(err, ErrAccountNotFound) && !svc.strictAccountMessages {
		return []Message{}, nil
	}
	if err != nil {
		return nil, err
	}

	msgs, err := svc.messages.FindByAuthor(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("error listing messages of account %d: %w", accountID, err)
	}
	return nonNil(msgs), nil
}

func (svc *service) verifyAccountExists(ctx context.Context, id auth.ID) error {
	ok, err := svc.accounts.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("error looking up account %d: %w", id, err)
	}
	if !ok {
		return ErrAccountNotFound
	}
	return nil
}

func nonNil(msgs []Message) []Message {
	if msgs == nil {
		return []Message{}
	}
	return msgs
}
