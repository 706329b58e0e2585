package services

import (
	"errors"
	"fmt"
)

var (
	// ErrGenerationExhausted means no free short code was found within MaxCodeAttempts.
	ErrGenerationExhausted = errors.New("could not generate a unique short code, please retry")
	// ErrConfiguration means neither BASE_URL nor the request host can be used to build a short URL.
	ErrConfiguration = errors.New("no usable base URL: set BASE_URL or send a Host header")
)

// ValidationError reports bad destination input at creation time.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PersistenceError wraps a failed store operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
