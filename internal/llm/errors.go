package llm

import (
	"errors"
	"net/http"
)

// ErrEmptyReply is returned when the provider answers without any text.
var ErrEmptyReply = errors.New("llm: empty reply from model")

// ErrNoCredential is returned when a backend is used without an API key.
var ErrNoCredential = errors.New("llm: no API key configured")

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is marked as not worth retrying.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// classifyStatus marks client errors as permanent. 429 stays retryable.
func classifyStatus(code int, err error) error {
	if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
		return NewPermanentError(err)
	}
	return err
}
