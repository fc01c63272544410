package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// whisper-cli prints this marker instead of text for silent input
const whisperBlankAudio = "[BLANK_AUDIO]"

// WhisperCppAdapter implements Adapter for local whisper-cpp transcription
type WhisperCppAdapter struct {
	binary    string
	modelPath string
	language  string
	threads   int
}

// NewWhisperCppAdapter creates a new whisper-cpp adapter
// modelPath: full path to the ggml model file
// lang: whisper-cpp language code, empty for auto
// threads: number of CPU threads (0 for auto)
func NewWhisperCppAdapter(modelPath, lang string, threads int) *WhisperCppAdapter {
	return &WhisperCppAdapter{
		binary:    "whisper-cli",
		modelPath: modelPath,
		language:  lang,
		threads:   threads,
	}
}

func (a *WhisperCppAdapter) Transcribe(ctx context.Context, wav []byte) (string, error) {
	if len(wav) == 0 {
		return "", nil
	}

	if _, err := os.Stat(a.modelPath); os.IsNotExist(err) {
		return "", NewServiceError("whisper-cpp", 0, fmt.Errorf("model file not found: %s", a.modelPath))
	}

	whisperPath, err := exec.LookPath(a.binary)
	if err != nil {
		return "", NewServiceError("whisper-cpp", 0, fmt.Errorf("%s not found: install whisper.cpp first", a.binary))
	}

	// concurrent requests each get their own temp file
	tmp, err := os.CreateTemp("", "lyricsync-segment-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpFile := tmp.Name()
	defer os.Remove(tmpFile)

	if _, err := tmp.Write(wav); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	lang := a.language
	if lang == "" {
		lang = "auto"
	}

	args := []string{
		"-m", a.modelPath,
		"-l", lang,
		"-nt", // no timestamps
		"-np", // no progress
		"-f", tmpFile,
	}
	if a.threads > 0 {
		args = append(args, "-t", strconv.Itoa(a.threads))
	}

	cmd := exec.CommandContext(ctx, whisperPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Printf("whisper-cpp: command failed after %v: %v\nstderr: %s", duration, err, stderr.String())
		return "", NewServiceError("whisper-cpp", 0, fmt.Errorf("whisper-cli failed: %w", err))
	}

	// -nt prints one line per whisper segment
	text := strings.Join(strings.Fields(stdout.String()), " ")
	log.Printf("whisper-cpp: transcribed %d bytes in %v: %q", len(wav), duration, text)

	if text == "" || strings.EqualFold(text, whisperBlankAudio) {
		return "", ErrNoSpeech
	}
	return text, nil
}
