// Package apperr holds the error taxonomy shared by the versus and daily engines.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidOpponent    = errors.New("invalid opponent")
	ErrNotParticipant     = errors.New("not a participant")
	ErrInvalidRound       = errors.New("invalid round")
	ErrInvalidState       = errors.New("invalid challenge state")
	ErrDuplicateChallenge = errors.New("challenge already exists")
	ErrStorage            = errors.New("storage failure")
)

var domainErrors = []error{
	ErrNotFound,
	ErrInvalidInput,
	ErrInvalidOpponent,
	ErrNotParticipant,
	ErrInvalidRound,
	ErrInvalidState,
	ErrDuplicateChallenge,
	ErrStorage,
}

// DuplicateChallengeError reports the open challenge that already links two players.
type DuplicateChallengeError struct {
	ExistingID uint
}

func (e *DuplicateChallengeError) Error() string {
	return fmt.Sprintf("challenge already exists: id=%d", e.ExistingID)
}

func (e *DuplicateChallengeError) Is(target error) bool {
	return target == ErrDuplicateChallenge
}

// StorageError wraps a failure of the underlying transactional store.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "storage failure: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Storage returns err unchanged when it already belongs to the taxonomy and
// wraps it as a StorageError otherwise. A nil error stays nil.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	return &StorageError{Err: err}
}

// NotFound formats an ErrNotFound with the missing entity.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Invalid formats an ErrInvalidInput with the offending argument.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
