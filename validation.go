package social

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxMessageLength = 255

var (
	validate = validator.New()
	textRule = fmt.Sprintf("max=%d", maxMessageLength)
)

// validateText rejects blank text and text longer than maxMessageLength characters.
func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrInvalidMessageText
	}

	if err := validate.Var(text, textRule); err != nil {
		return ErrInvalidMessageText
	}
	return nil
}
