package auth

import "context"

type Service interface {
	RegisterAccount(ctx context.Context, r registerAccountRequest) (*Account, error)
	ValidateCredentials(ctx context.Context, r validateCredentialsRequest) (*Account, error)
}

// Repository is the account store. Lookups report a missing account with ErrNotFound.
type Repository interface {
	FindByID(ctx context.Context, id ID) (*Account, error)
	FindByName(ctx context.Context, username string) (*Account, error)
	FindByCredentials(ctx context.Context, username, password string) (*Account, error)
	Exists(ctx context.Context, id ID) (bool, error)
	Store(ctx context.Context, acc *Account) error
}

type registerAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type validateCredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
