package core

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input: bad cycle keys, negative horizons,
// billing parameters out of range, transactions referencing the wrong card.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a lookup that matched nothing, e.g. exporting a cycle
// that is not part of the computed invoice sequence.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NotFound builds a NotFoundError for the given resource and key.
func NotFound(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
