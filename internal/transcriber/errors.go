package transcriber

import (
	"errors"
	"fmt"
)

var (
	// ErrRecognitionService marks a recognition call that failed for reasons
	// other than the audio itself (network, auth, quota, timeout).
	ErrRecognitionService = errors.New("recognition service failure")

	// ErrNoSpeech is returned by adapters when the service could not
	// recognize any speech in the audio.
	ErrNoSpeech = errors.New("no intelligible speech")
)

// ServiceError carries the provider and HTTP status of a failed recognition call.
type ServiceError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e == nil || e.Err == nil {
		return "recognition service error"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return []error{ErrRecognitionService, e.Err}
}

func NewServiceError(provider string, status int, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{Provider: provider, StatusCode: status, Err: err}
}

// IsServiceError reports whether err came from a recognition backend.
func IsServiceError(err error) bool {
	var svc *ServiceError
	return errors.As(err, &svc)
}
