package versus

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"campus-spot/internal/apperr"

	"github.com/go-playground/validator/v10"
)

const maxPlayerIDLength = 255

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

func requestValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("player", func(fl validator.FieldLevel) bool {
			return validatePlayerID(fl.Field().String()) == nil
		})
	})
	return validate
}

type challengeRequest struct {
	Challenger string `validate:"required,player"`
	Challengee string `validate:"required,player"`
}

type playerRequest struct {
	Player string `validate:"required,player"`
}

type roundRequest struct {
	Player string `validate:"required,player"`
	Round  int    `validate:"min=1,max=5"`
	Score  int    `validate:"min=0"`
}

func validatePlayerID(id string) error {
	if id == "" {
		return errors.New("player id is required")
	}
	if len(id) > maxPlayerIDLength {
		return fmt.Errorf("player id must be %d characters or fewer", maxPlayerIDLength)
	}
	if strings.TrimSpace(id) != id {
		return errors.New("player id has surrounding whitespace")
	}
	for _, r := range id {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return errors.New("player id contains unsupported characters")
		}
	}
	return nil
}

// check maps validator failures onto the error taxonomy: a bad round number is
// ErrInvalidRound, a bad opponent is ErrInvalidOpponent, anything else is
// ErrInvalidInput.
func check(req any) error {
	err := requestValidator().Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	fe := fieldErrs[0]
	switch fe.Field() {
	case "Round":
		return fmt.Errorf("%w: round %v is outside [1, %d]", apperr.ErrInvalidRound, fe.Value(), Rounds)
	case "Challengee":
		return fmt.Errorf("%w: %q is not a valid player id", apperr.ErrInvalidOpponent, fe.Value())
	}
	return fmt.Errorf("%w: %s failed %q", apperr.ErrInvalidInput, strings.ToLower(fe.Field()), fe.Tag())
}
