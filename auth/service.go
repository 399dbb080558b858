package auth

import (
	"context"
	"errors"
	"fmt"
)

type service struct {
	accounts Repository
}

func NewService(accounts Repository) Service {
	return &service{accounts: accounts}
}

// RegisterAccount checks, in order, that the username is free, not blank and
// that the password is long enough before storing the account.
func (svc *service) RegisterAccount(ctx context.Context, r registerAccountRequest) (*Account, error) {
	if err := svc.verifyNotInUse(ctx, r.Username); err != nil {
		return nil, err
	}

	acc, err := NewAccount(r.Username, r.Password)
	if err != nil {
		return nil, err
	}

	if err = svc.accounts.Store(ctx, acc); err != nil {
		return nil, fmt.Errorf("error saving account: %w", err)
	}

	return acc, nil
}

func (svc *service) ValidateCredentials(ctx context.Context, r validateCredentialsRequest) (*Account, error) {
	acc, err := svc.accounts.FindByCredentials(ctx, r.Username, r.Password)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("error looking up credentials: %w", err)
	}

	return acc, nil
}

func (svc *service) verifyNotInUse(ctx context.Context, username string) error {
	_, err := svc.accounts.FindByName(ctx, username)
	switch {
	case err == nil:
		return ErrExistingUsername
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return fmt.Errorf("error looking up username: %w", err)
	}
}
