package lesson

import (
	"errors"
	"fmt"
)

// ValidationError is a rejected request input. Sentinels below are compared
// with errors.Is; errors.As recovers Field and Code.
type ValidationError struct {
	Field string
	Code  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%s)", e.Field, e.Code)
}

var (
	ErrInvalidAge        = &ValidationError{Field: "age", Code: "invalid_age"}
	ErrInvalidTone       = &ValidationError{Field: "tone", Code: "invalid_tone"}
	ErrInvalidLanguage   = &ValidationError{Field: "language", Code: "invalid_language"}
	ErrInvalidDate       = &ValidationError{Field: "date", Code: "invalid_date"}
	ErrMissingParameters = &ValidationError{Field: "lessonId", Code: "missing_parameters"}
	ErrMalformedKey      = &ValidationError{Field: "variationKey", Code: "invalid_variation_key"}
)

var ErrNotFound = errors.New("not found")

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func LessonNotFound(id string) error {
	return &NotFoundError{Resource: "lesson", ID: id}
}

func VariationNotFound(key string) error {
	return &NotFoundError{Resource: "variation", ID: key}
}

var (
	ErrMissingAgeExpression = errors.New("missing age expression")
	ErrQuestionCount        = errors.New("question template count")
)

// SynthesisError means the DNA content could not produce a variation. It is a
// content bug, not a caller error.
type SynthesisError struct {
	LessonID string
	Err      error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesize lesson %q: %v", e.LessonID, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

func MissingAgeExpression(lessonID string, category AgeCategory) error {
	return &SynthesisError{LessonID: lessonID, Err: fmt.Errorf("%w for %s", ErrMissingAgeExpression, category)}
}

var ErrStorageUnavailable = errors.New("storage unavailable")

// StorageError wraps a backend failure. Always retryable.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }

func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// QueueingError is a failed render submission. Never fatal to a resolution.
type QueueingError struct {
	VariationKey string
	Err          error
}

func (e *QueueingError) Error() string {
	return fmt.Sprintf("queue render for %q: %v", e.VariationKey, e.Err)
}

func (e *QueueingError) Unwrap() error { return e.Err }
