package lyrics

import (
	"fmt"
	"math"
	"strings"
)

// Line is one timestamped lyric line. Text may be empty.
type Line struct {
	Timestamp int // whole seconds from the start of the track
	Text      string
}

// Document is an ordered set of lines with non-decreasing timestamps
type Document struct {
	Lines []Line
	Gaps  []int // indexes of segments that failed recognition
}

// FormatTimestamp renders whole seconds as an LRC tag, e.g. 125 -> "[02:05.00]".
// Minutes are not capped at 99.
func FormatTimestamp(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("[%02d:%02d.00]", seconds/60, seconds%60)
}

// TimestampFor truncates a segment start to whole seconds
func TimestampFor(start float64) int {
	return int(math.Floor(start))
}

// Render returns the LRC text for the document, one line per entry.
func (d Document) Render() string {
	var b strings.Builder
	for _, l := range d.Lines {
		fmt.Fprintf(&b, "%s %s\n", FormatTimestamp(l.Timestamp), l.Text)
	}
	return b.String()
}

// NonEmpty returns how many lines carry text
func (d Document) NonEmpty() int {
	n := 0
	for _, l := range d.Lines {
		if l.Text != "" {
			n++
		}
	}
	return n
}
