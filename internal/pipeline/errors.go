package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/leonardotrapani/lyricsync/internal/audio"
	"github.com/leonardotrapani/lyricsync/internal/segment"
	"github.com/leonardotrapani/lyricsync/internal/transcriber"
)

// Error kinds. A StageError matches exactly one of these with errors.Is.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrSourceNotFound = errors.New("source not found")
	ErrConversion     = errors.New("conversion failed")
	ErrIsolation      = errors.New("vocal isolation failed")
	ErrPersistence    = errors.New("persistence failed")

	ErrUnreadableAudio    = audio.ErrUnreadableAudio
	ErrInvalidWindow      = segment.ErrInvalidWindow
	ErrRecognitionService = transcriber.ErrRecognitionService
)

// StageError is the terminal error of a run
type StageError struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil || e.Err == e.Kind {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// KindName returns a stable machine readable name for the kind of err. For a
// StageError only its Kind is considered.
func KindName(err error) string {
	err = KindOf(err)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrSourceNotFound):
		return "source_not_found"
	case errors.Is(err, ErrConversion):
		return "conversion"
	case errors.Is(err, ErrIsolation):
		return "isolation"
	case errors.Is(err, ErrUnreadableAudio):
		return "unreadable_audio"
	case errors.Is(err, ErrInvalidWindow):
		return "invalid_window"
	case errors.Is(err, ErrRecognitionService):
		return "recognition_service"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	default:
		return "internal"
	}
}

// KindOf returns the Kind of a StageError, or err itself otherwise
func KindOf(err error) error {
	var se *StageError
	if errors.As(err, &se) && se.Kind != nil {
		return se.Kind
	}
	return err
}

// StageOf returns the stage a run failed in, or "" if err is not a StageError
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
