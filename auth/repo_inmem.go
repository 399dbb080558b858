package auth

import (
	"context"
	"sync"

	"github.com/samber/lo"
)

type accountRepository struct {
	mu       sync.RWMutex
	accounts map[ID]*Account
	order    []ID
	lastID   ID
}

func NewAccountRepository() Repository {
	return &accountRepository{accounts: map[ID]*Account{}}
}

func (repo *accountRepository) Store(_ context.Context, acc *Account) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.lastID++
	acc.ID = repo.lastID
	stored := *acc
	repo.accounts[acc.ID] = &stored
	repo.order = append(repo.order, acc.ID)
	return nil
}

func (repo *accountRepository) FindByID(_ context.Context, id ID) (*Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if u, ok := repo.accounts[id]; ok {
		acc := *u
		return &acc, nil
	}
	return nil, ErrNotFound
}

func (repo *accountRepository) FindByName(_ context.Context, username string) (*Account, error) {
	return repo.findFirst(func(a *Account) bool {
		return a.Username == username
	})
}

func (repo *accountRepository) FindByCredentials(_ context.Context, username, password string) (*Account, error) {
	return repo.findFirst(func(a *Account) bool {
		return a.Username == username && a.Password == password
	})
}

func (repo *accountRepository) Exists(_ context.Context, id ID) (bool, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	_, ok := repo.accounts[id]
	return ok, nil
}

func (repo *accountRepository) findFirst(match func(*Account) bool) (*Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	id, ok := lo.Find(repo.order, func(id ID) bool {
		return match(repo.accounts[id])
	})
	if !ok {
		return nil, ErrNotFound
	}
	acc := *repo.accounts[id]
	return &acc, nil
}
