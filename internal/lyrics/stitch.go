package lyrics

import (
	"fmt"
	"strings"

	"github.com/leonardotrapani/lyricsync/internal/segment"
	"github.com/leonardotrapani/lyricsync/internal/transcriber"
)

// Policy decides what an unrecoverable segment does to the document
type Policy string

const (
	// PolicyTolerant emits an empty line for every failed segment and keeps going
	PolicyTolerant Policy = "tolerant"
	// PolicyFailFast stops at the first unrecoverable segment
	PolicyFailFast Policy = "fail-fast"
)

// ParsePolicy accepts the config spellings of a policy
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyTolerant:
		return PolicyTolerant, nil
	case PolicyFailFast, "failfast", "fail_fast":
		return PolicyFailFast, nil
	default:
		return "", fmt.Errorf("unknown segment policy %q (want tolerant or fail-fast)", s)
	}
}

// Entry pairs a planned segment with its recognition result
type Entry struct {
	Segment segment.Segment
	Result  transcriber.Result
}

// SegmentError reports the segment that stopped a fail-fast stitch
type SegmentError struct {
	Index int
	Start float64
	Err   error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d at %s: %v", e.Index, FormatTimestamp(TimestampFor(e.Start)), e.Err)
}

func (e *SegmentError) Unwrap() []error {
	return []error{transcriber.ErrRecognitionService, e.Err}
}

// Stitch builds a document from entries in the order given. Under
// PolicyFailFast the returned document is the prefix up to and including the
// first unrecoverable entry, and the error is a *SegmentError.
func Stitch(entries []Entry, policy Policy) (Document, error) {
	doc := Document{Lines: make([]Line, 0, len(entries))}

	for _, e := range entries {
		line := Line{Timestamp: TimestampFor(e.Segment.Start)}

		switch e.Result.Outcome {
		case transcriber.OutcomeText:
			line.Text = strings.Join(strings.Fields(e.Result.Text), " ")
		case transcriber.OutcomeEmpty:
		case transcriber.OutcomeUnrecoverable:
			doc.Gaps = append(doc.Gaps, e.Segment.Index)
			if policy == PolicyFailFast {
				doc.Lines = append(doc.Lines, line)
				return doc, &SegmentError{Index: e.Segment.Index, Start: e.Segment.Start, Err: e.Result.Err}
			}
		}

		doc.Lines = append(doc.Lines, line)
	}

	return doc, nil
}
