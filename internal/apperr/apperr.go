package apperr

import (
	"errors"
	"fmt"
)

// Kind roots let callers branch on the failure class with errors.Is
// without knowing which package produced the error.
var (
	KindValidation    = errors.New("validation")
	KindConfiguration = errors.New("configuration")
	KindConflict      = errors.New("conflict")
	KindNotFound      = errors.New("not_found")
	KindPersistence   = errors.New("persistence")
)

// Validation builds a sentinel error of the validation kind.
func Validation(code string) error {
	return &kindError{code: code, kind: KindValidation}
}

// Configuration builds a sentinel error of the configuration kind.
func Configuration(code string) error {
	return &kindError{code: code, kind: KindConfiguration}
}

// Conflict builds a sentinel error of the conflict kind.
func Conflict(code string) error {
	return &kindError{code: code, kind: KindConflict}
}

// NotFound builds a sentinel error of the not-found kind.
func NotFound(code string) error {
	return &kindError{code: code, kind: KindNotFound}
}

// Persistence builds a sentinel error of the persistence kind.
func Persistence(code string) error {
	return &kindError{code: code, kind: KindPersistence}
}

type kindError struct {
	code string
	kind error
}

func (e *kindError) Error() string { return e.code }

func (e *kindError) Unwrap() error { return e.kind }

// Wrap attaches context to a sentinel while keeping errors.Is working
// against both the sentinel and its kind.
func Wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, sentinel)...)
}
