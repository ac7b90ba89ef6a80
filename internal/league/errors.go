package league

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ValidateScore rejeita placares negativos antes de tocar no banco
func ValidateScore(s Score) error {
	if s.Home < 0 || s.Away < 0 {
		return fmt.Errorf("%w: goals must be non-negative integers", ErrInvalidInput)
	}
	return nil
}
