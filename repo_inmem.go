package social

import (
	"context"
	"sync"

	"github.com/samber/lo"

	"github.com/jimiolaniyan/gosocial/auth"
)

type messageRepository struct {
	mu       sync.RWMutex
	messages map[MessageID]*Message
	order    []MessageID
	lastID   MessageID
}

func NewMessageRepository() Repository {
	return &messageRepository{messages: map[MessageID]*Message{}}
}

func (repo *messageRepository) FindByID(_ context.Context, id MessageID) (*Message, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if m, ok := repo.messages[id]; ok {
		found := *m
		return &found, nil
	}
	return nil, ErrMessageNotFound
}

func (repo *messageRepository) FindAll(_ context.Context) ([]Message, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	return lo.Map(repo.order, func(id MessageID, _ int) Message {
		return *repo.messages[id]
	}), nil
}

func (repo *messageRepository) FindByAuthor(ctx context.Context, accountID auth.ID) ([]Message, error) {
	all, _ := repo.FindAll(ctx)
	return lo.Filter(all, func(m Message, _ int) bool {
		return m.PostedBy == accountID
	}), nil
}

func (repo *messageRepository) Store(_ context.Context, m *Message) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.lastID++
	m.ID = repo.lastID
	stored := *m
	repo.messages[m.ID] = &stored
	repo.order = append(repo.order, m.ID)
	return nil
}

func (repo *messageRepository) Update(_ context.Context, m *Message) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.messages[m.ID]; !ok {
		return ErrMessageNotFound
	}
	stored := *m
	repo.messages[m.ID] = &stored
	return nil
}

func (repo *messageRepository) Delete(_ context.Context, id MessageID) (int64, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.messages[id]; !ok {
		return 0, nil
	}
	delete(repo.messages, id)
	repo.order = lo.Without(repo.order, id)
	return 1, nil
}
