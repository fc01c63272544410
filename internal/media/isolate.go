package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	BackendSpleeter = "spleeter"
	BackendDemucs   = "demucs"
)

// Isolator separates the vocal stem of src into outDir and returns its path
type Isolator interface {
	Isolate(ctx context.Context, src, outDir string) (string, error)
}

// NewIsolator returns the isolation backend named by backend
func NewIsolator(backend, binary, model string, timeout time.Duration) (Isolator, error) {
	switch backend {
	case "", BackendSpleeter:
		return NewSpleeter(binary, model, timeout), nil
	case BackendDemucs:
		return NewDemucs(binary, model, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported isolation backend: %s", backend)
	}
}

// Spleeter runs `spleeter separate` with a two stem model
type Spleeter struct {
	Binary  string
	Model   string
	Timeout time.Duration
}

func NewSpleeter(binary, model string, timeout time.Duration) *Spleeter {
	if binary == "" {
		binary = "spleeter"
	}
	if model == "" {
		model = "spleeter:2stems"
	}
	return &Spleeter{Binary: binary, Model: model, Timeout: timeout}
}

func (s *Spleeter) Isolate(ctx context.Context, src, outDir string) (string, error) {
	args := []string{"separate", "-p", s.Model, "-o", outDir, src}
	if _, err := run(ctx, s.Timeout, "spleeter", s.Binary, args...); err != nil {
		return "", err
	}

	// spleeter writes <outDir>/<input name without extension>/vocals.wav
	return stemPath("spleeter", filepath.Join(outDir, trimExt(src), "vocals.wav"))
}

// Demucs runs demucs in two stem mode
type Demucs struct {
	Binary  string
	Model   string
	Timeout time.Duration
}

func NewDemucs(binary, model string, timeout time.Duration) *Demucs {
	if binary == "" {
		binary = "demucs"
	}
	if model == "" {
		model = "htdemucs"
	}
	return &Demucs{Binary: binary, Model: model, Timeout: timeout}
}

func (d *Demucs) Isolate(ctx context.Context, src, outDir string) (string, error) {
	args := []string{"--two-stems=vocals", "-n", d.Model, "-o", outDir, src}
	if _, err := run(ctx, d.Timeout, "demucs", d.Binary, args...); err != nil {
		return "", err
	}

	return stemPath("demucs", filepath.Join(outDir, d.Model, trimExt(src), "vocals.wav"))
}

func stemPath(tool, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &ToolError{Tool: tool, Err: fmt.Errorf("vocals stem missing: %w", err)}
	}
	if info.Size() == 0 {
		return "", &ToolError{Tool: tool, Err: fmt.Errorf("vocals stem empty: %s", path)}
	}
	return path, nil
}

func trimExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
