package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrEmailNotFound    = errors.New("email not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrLimitExceeded    = errors.New("usage limit exceeded")
	ErrLLMContract      = errors.New("classifier contract violation")
	ErrSchemaInvalid    = errors.New("extraction schema violation")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
