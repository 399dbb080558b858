package auth

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ID int64

// Account is a registered user identity. The password is stored as given.
type Account struct {
	ID       ID     `json:"accountId"`
	Username string `json:"username"`
	Password string `json:"password"`
}

var (
	ErrInvalidUsername    = errors.New("username cannot be blank")
	ErrExistingUsername   = errors.New("username already exists")
	ErrWeakPassword       = errors.New("password needs to be at least 4 characters long")
	ErrNotFound           = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidAccountID   = errors.New("invalid account id")
)

var validate = validator.New()

//NewAccount validates username and password and returns a new Account if
// arguments are valid
func NewAccount(username string, password string) (*Account, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrInvalidUsername
	}

	if err := validate.Var(password, "min=4"); err != nil {
		return nil, ErrWeakPassword
	}

	return &Account{Username: username, Password: password}, nil
}
