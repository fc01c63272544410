package transcriber

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Outcome tags a per-segment recognition result
type Outcome int

const (
	OutcomeText Outcome = iota
	OutcomeEmpty
	OutcomeUnrecoverable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeText:
		return "text"
	case OutcomeEmpty:
		return "empty"
	case OutcomeUnrecoverable:
		return "unrecoverable"
	default:
		return "unknown"
	}
}

// Result is the outcome of one recognition call. Text is set only for
// OutcomeText and Err only for OutcomeUnrecoverable.
type Result struct {
	Outcome Outcome
	Text    string
	Err     error
}

func Text(s string) Result {
	return Result{Outcome: OutcomeText, Text: s}
}

func Empty() Result {
	return Result{Outcome: OutcomeEmpty}
}

func Unrecoverable(err error) Result {
	return Result{Outcome: OutcomeUnrecoverable, Err: err}
}

// Client performs exactly one adapter call per segment and classifies the result
type Client struct {
	adapter Adapter
	timeout time.Duration
}

func NewClient(adapter Adapter, timeout time.Duration) *Client {
	return &Client{adapter: adapter, timeout: timeout}
}

// Transcribe never retries; retry policy belongs to the caller.
func (c *Client) Transcribe(ctx context.Context, wav []byte) Result {
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	text, err := c.adapter.Transcribe(callCtx, wav)
	switch {
	case errors.Is(err, ErrNoSpeech):
		return Empty()
	case err != nil:
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %v: %w", c.timeout, err)
		}
		if !errors.Is(err, ErrRecognitionService) {
			err = fmt.Errorf("%w: %w", ErrRecognitionService, err)
		}
		log.Printf("transcriber: segment failed: %v", err)
		return Unrecoverable(err)
	}

	// a recognizer may split one window over several lines; an LRC entry is one line
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return Empty()
	}
	return Text(text)
}
