package testutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/leonardotrapani/lyricsync/internal/audio"
	"github.com/leonardotrapani/lyricsync/internal/config"
	"github.com/leonardotrapani/lyricsync/internal/media"
	"github.com/leonardotrapani/lyricsync/internal/transcriber"
)

// TestConfig returns a valid configuration whose directories live under a
// per-test temp dir
func TestConfig(t *testing.T) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage = config.StorageConfig{
		UploadDir: filepath.Join(root, "uploads"),
		OutputDir: filepath.Join(root, "uploads", "lrc"),
		TempDir:   filepath.Join(root, "tmp"),
	}
	cfg.Transcription.Provider = "openai"
	cfg.Transcription.Model = "whisper-1"
	cfg.Providers = map[string]config.ProviderConfig{
		"openai": {APIKey: "test-api-key"},
	}
	return cfg
}

// CreateTempConfigFile creates a temporary config file for testing
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// SilentWAV returns seconds of 16-bit mono silence
func SilentWAV(seconds float64, rate int) []byte {
	frames := int(seconds * float64(rate))
	return audio.EncodeWAV(audio.PCM16Mono(rate), make([]byte, frames*2))
}

// WriteWAV writes seconds of 16-bit mono silence to path
func WriteWAV(t *testing.T, path string, seconds float64, rate int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, SilentWAV(seconds, rate), 0644); err != nil {
		t.Fatalf("Failed to write wav %s: %v", path, err)
	}
}

// MockTranscriberAdapter implements transcriber.Adapter for testing
type MockTranscriberAdapter struct {
	TranscribeFunc func(ctx context.Context, audioData []byte) (string, error)
}

func (m *MockTranscriberAdapter) Transcribe(ctx context.Context, audioData []byte) (string, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audioData)
	}
	return "mock transcription", nil
}

// NewMockTranscriberAdapter creates a mock transcriber adapter
func NewMockTranscriberAdapter() *MockTranscriberAdapter {
	return &MockTranscriberAdapter{}
}

// MockRecognizer returns one result per call. ResultFunc receives the zero
// based call number, which matches the segment index when nothing is retried.
type MockRecognizer struct {
	ResultFunc func(call int, wav []byte) transcriber.Result

	mu    sync.Mutex
	calls int
	sizes []int
}

// NewMockRecognizer returns a recognizer answering text for every segment
func NewMockRecognizer(text string) *MockRecognizer {
	return &MockRecognizer{
		ResultFunc: func(int, []byte) transcriber.Result { return transcriber.Text(text) },
	}
}

func (m *MockRecognizer) Transcribe(ctx context.Context, wav []byte) transcriber.Result {
	m.mu.Lock()
	call := m.calls
	m.calls++
	m.sizes = append(m.sizes, len(wav))
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return transcriber.Unrecoverable(err)
	}
	return m.ResultFunc(call, wav)
}

// Calls returns how many times Transcribe ran
func (m *MockRecognizer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ClipSizes returns the byte length of every clip received
func (m *MockRecognizer) ClipSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.sizes...)
}

// FakeConverter writes Seconds of silence to dst instead of running ffmpeg.
// When Block is set it waits for the context instead.
type FakeConverter struct {
	Seconds float64
	Err     error
	Block   bool

	mu      sync.Mutex
	options []media.ConvertOptions
}

func NewFakeConverter(seconds float64) *FakeConverter {
	return &FakeConverter{Seconds: seconds}
}

func (f *FakeConverter) Convert(ctx context.Context, src, dst string, opts media.ConvertOptions) error {
	f.mu.Lock()
	f.options = append(f.options, opts)
	f.mu.Unlock()

	if f.Block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.Err != nil {
		return f.Err
	}
	if _, err := os.Stat(src); err != nil {
		return err
	}

	rate := opts.SampleRate
	if rate <= 0 {
		rate = 8000
	}
	return os.WriteFile(dst, SilentWAV(f.Seconds, rate), 0644)
}

// Calls returns the options of every Convert call in order
func (f *FakeConverter) Calls() []media.ConvertOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]media.ConvertOptions(nil), f.options...)
}

// FakeIsolator copies its input to outDir/vocals.wav. Output, when set,
// replaces the copied bytes.
type FakeIsolator struct {
	Err    error
	Output []byte
}

func (f *FakeIsolator) Isolate(ctx context.Context, src, outDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Err != nil {
		return "", f.Err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, "vocals.wav")
	if f.Output != nil {
		return dst, os.WriteFile(dst, f.Output, 0644)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("copy stem: %w", err)
	}
	return dst, out.Close()
}

// MockLLMAdapter implements llm.Adapter for testing
type MockLLMAdapter struct {
	ProcessFunc  func(text string) (string, error)
	ProcessError error

	mu     sync.Mutex
	inputs []string
}

func NewMockLLMAdapter(fn func(text string) (string, error)) *MockLLMAdapter {
	return &MockLLMAdapter{ProcessFunc: fn}
}

func (m *MockLLMAdapter) Process(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, text)
	m.mu.Unlock()

	if m.ProcessError != nil {
		return "", m.ProcessError
	}
	if m.ProcessFunc != nil {
		return m.ProcessFunc(text)
	}
	return text, nil
}

// Inputs returns every line passed to Process
func (m *MockLLMAdapter) Inputs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.inputs...)
}

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Condition not met within %v", timeout)
		default:
			if condition() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// DirEntries returns the names inside dir, or nil if it does not exist
func DirEntries(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
