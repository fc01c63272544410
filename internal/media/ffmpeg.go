package media

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"
)

// FFmpeg decodes and resamples audio through the ffmpeg binary
type FFmpeg struct {
	Binary  string
	Timeout time.Duration
}

// ConvertOptions selects the PCM layout of the output WAV
type ConvertOptions struct {
	SampleRate int
	Channels   int
}

func NewFFmpeg(binary string, timeout time.Duration) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{Binary: binary, Timeout: timeout}
}

// Convert decodes src into a 16-bit PCM WAV at dst
func (f *FFmpeg) Convert(ctx context.Context, src, dst string, opts ConvertOptions) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("ffmpeg: source: %w", err)
	}

	args := []string{"-y", "-i", src, "-vn"}
	if opts.Channels > 0 {
		args = append(args, "-ac", strconv.Itoa(opts.Channels))
	}
	if opts.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(opts.SampleRate))
	}
	args = append(args, "-acodec", "pcm_s16le", "-f", "wav", "-loglevel", "error", dst)

	if _, err := run(ctx, f.Timeout, "ffmpeg", f.Binary, args...); err != nil {
		return err
	}

	if info, err := os.Stat(dst); err != nil || info.Size() == 0 {
		return &ToolError{Tool: "ffmpeg", Err: fmt.Errorf("no output written to %s", dst)}
	}
	return nil
}
