package segment

import (
	"errors"
	"fmt"
	"iter"
	"math"
)

// DefaultWindow is the segment length in seconds used when none is configured
const DefaultWindow = 30

var ErrInvalidWindow = errors.New("invalid segment window")

// Segment is one fixed-size window of a track, in seconds
type Segment struct {
	Index  int
	Start  float64
	Length float64
}

// End returns the exclusive end offset of the segment
func (s Segment) End() float64 {
	return s.Start + s.Length
}

// Plan returns the windows tiling [0, duration) in increasing order. The
// sequence is lazy and can be ranged over any number of times.
func Plan(duration float64, window int) (iter.Seq[Segment], error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}

	return func(yield func(Segment) bool) {
		if math.IsNaN(duration) || duration <= 0 {
			return
		}
		for i := 0; ; i++ {
			start := float64(i * window)
			if start >= duration {
				return
			}
			seg := Segment{
				Index:  i,
				Start:  start,
				Length: math.Min(float64(window), duration-start),
			}
			if !yield(seg) {
				return
			}
		}
	}, nil
}

// Count returns how many segments Plan yields without materializing them.
func Count(duration float64, window int) int {
	if window <= 0 || math.IsNaN(duration) || duration <= 0 {
		return 0
	}
	return int(math.Ceil(duration / float64(window)))
}

// Collect materializes a planned sequence.
func Collect(seq iter.Seq[Segment]) []Segment {
	var out []Segment
	for s := range seq {
		out = append(out, s)
	}
	return out
}
