package whisper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// ProgressFunc is called during download with bytes downloaded and total
type ProgressFunc func(downloaded, total int64)

// Store manages the model files inside one directory
type Store struct {
	Dir     string
	BaseURL string
	Client  *http.Client
}

// DefaultStore returns the store rooted at GetModelsDir
func DefaultStore() (*Store, error) {
	dir, err := GetModelsDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get models directory: %w", err)
	}
	return &Store{Dir: dir, BaseURL: baseDownloadURL, Client: http.DefaultClient}, nil
}

// Path returns where modelID lives in the store
func (s *Store) Path(modelID string) string {
	return filepath.Join(s.Dir, FilenameFor(modelID))
}

// IsInstalled returns true if the model file exists and is not empty
func (s *Store) IsInstalled(modelID string) bool {
	info, err := os.Stat(s.Path(modelID))
	return err == nil && info.Size() > 0
}

// ListInstalled returns IDs of all installed catalogue models
func (s *Store) ListInstalled() []string {
	var installed []string
	for _, m := range models {
		if s.IsInstalled(m.ID) {
			installed = append(installed, m.ID)
		}
	}
	return installed
}

// Download fetches a catalogue model. The file only appears under its final
// name once complete. onProgress may be nil.
func (s *Store) Download(ctx context.Context, modelID string, onProgress ProgressFunc) error {
	info := GetModel(modelID)
	if info == nil {
		return fmt.Errorf("unknown model: %s", modelID)
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	destPath := s.Path(modelID)
	tempPath := destPath + ".downloading"

	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		out.Close()
		os.Remove(tempPath)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/"+info.Filename, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	total := resp.ContentLength
	if total < 0 {
		total = info.SizeBytes
	}

	pw := &progressWriter{w: out, total: total, onProgress: onProgress}
	if _, err := io.Copy(pw, resp.Body); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to write model: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tempPath, destPath); err != nil {
		return fmt.Errorf("failed to finalize download: %w", err)
	}
	return nil
}

// Remove deletes a downloaded model
func (s *Store) Remove(modelID string) error {
	if !s.IsInstalled(modelID) {
		return fmt.Errorf("model not installed: %s", modelID)
	}
	if err := os.Remove(s.Path(modelID)); err != nil {
		return fmt.Errorf("failed to remove model: %w", err)
	}
	return nil
}

type progressWriter struct {
	w          io.Writer
	downloaded int64
	total      int64
	onProgress ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.downloaded += int64(n)
	if p.onProgress != nil {
		p.onProgress(p.downloaded, p.total)
	}
	return n, err
}
