package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/playcall/internal/game"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// lookupErr turns a missing row into game.ErrNotFound and wraps anything else.
func lookupErr(err error, what string, id interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %v", game.ErrNotFound, what, id)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

func validateInput(input interface{}) error {
	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", game.ErrInvalidInput, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", game.ErrInvalidInput, err)
	}
	return nil
}
