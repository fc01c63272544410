package whisper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leonardotrapani/lyricsync/internal/provider"
)

func TestGetModelsDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	dir, err := GetModelsDir()
	if err != nil {
		t.Fatalf("GetModelsDir() error = %v", err)
	}
	if dir != filepath.Join("/data", "lyricsync", "models") {
		t.Errorf("GetModelsDir() = %s", dir)
	}

	t.Setenv("XDG_DATA_HOME", "")
	dir, err = GetModelsDir()
	if err != nil {
		t.Fatalf("GetModelsDir() error = %v", err)
	}
	if !strings.HasSuffix(dir, filepath.Join(".local", "share", "lyricsync", "models")) {
		t.Errorf("GetModelsDir() = %s, want path ending with .local/share/lyricsync/models", dir)
	}
}

func TestGetModelPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	tests := []struct {
		modelID string
		want    string
	}{
		{"base", "/data/lyricsync/models/ggml-base.bin"},
		{"large-v3-turbo", "/data/lyricsync/models/ggml-large-v3-turbo.bin"},
		{"custom-finetune", "/data/lyricsync/models/ggml-custom-finetune.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.modelID, func(t *testing.T) {
			if got := GetModelPath(tt.modelID); got != filepath.FromSlash(tt.want) {
				t.Errorf("GetModelPath(%q) = %s, want %s", tt.modelID, got, tt.want)
			}
		})
	}
}

func TestGetModel(t *testing.T) {
	info := GetModel("small")
	if info == nil {
		t.Fatal("GetModel(small) = nil, want non-nil")
	}
	if info.Filename != "ggml-small.bin" {
		t.Errorf("info.Filename = %s, want ggml-small.bin", info.Filename)
	}

	if GetModel("unknown") != nil {
		t.Error("GetModel(unknown) should be nil")
	}
}

// every local model the provider offers must be downloadable
func TestCatalogueCoversProvider(t *testing.T) {
	p := provider.GetProvider(provider.ProviderWhisperCpp)
	for _, m := range p.Models() {
		if GetModel(m.ID) == nil {
			t.Errorf("provider model %s missing from download catalogue", m.ID)
		}
	}
}

func TestModelInfo_HasAllFields(t *testing.T) {
	for _, m := range ListModels() {
		if m.ID == "" || m.Name == "" || m.Filename == "" || m.Size == "" {
			t.Errorf("model %+v has empty fields", m)
		}
		if m.SizeBytes <= 0 {
			t.Errorf("model %s has invalid SizeBytes: %d", m.ID, m.SizeBytes)
		}
	}
}

func newTestStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Store{Dir: filepath.Join(t.TempDir(), "models"), BaseURL: srv.URL, Client: srv.Client()}
}

func TestStore_DownloadAndRemove(t *testing.T) {
	payload := strings.Repeat("ggml", 1024)
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ggml-base.bin" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(payload))
	})

	var last, total int64
	err := store.Download(context.Background(), "base", func(downloaded, n int64) {
		last, total = downloaded, n
	})
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if last != int64(len(payload)) || total != int64(len(payload)) {
		t.Errorf("progress = %d/%d, want %d/%d", last, total, len(payload), len(payload))
	}

	data, err := os.ReadFile(store.Path("base"))
	if err != nil {
		t.Fatalf("model file missing: %v", err)
	}
	if string(data) != payload {
		t.Error("model file content mismatch")
	}
	if _, err := os.Stat(store.Path("base") + ".downloading"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}

	if !store.IsInstalled("base") {
		t.Error("IsInstalled(base) = false after download")
	}
	if got := store.ListInstalled(); len(got) != 1 || got[0] != "base" {
		t.Errorf("ListInstalled() = %v", got)
	}

	if err := store.Remove("base"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if store.IsInstalled("base") {
		t.Error("model still installed after Remove")
	}
}

func TestStore_DownloadErrors(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	err := store.Download(context.Background(), "unknown-model", nil)
	if err == nil || !strings.Contains(err.Error(), "unknown model") {
		t.Errorf("Download(unknown-model) error = %v, want unknown model", err)
	}

	err = store.Download(context.Background(), "small", nil)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Download(small) error = %v, want status error", err)
	}
	if store.IsInstalled("small") {
		t.Error("failed download left an installed model")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Download(ctx, "medium", nil); err == nil {
		t.Error("Download with cancelled context = nil, want error")
	}
}

func TestStore_RemoveNotInstalled(t *testing.T) {
	store := &Store{Dir: t.TempDir()}
	err := store.Remove("medium")
	if err == nil || !strings.Contains(err.Error(), "not installed") {
		t.Errorf("Remove error = %v, want not installed", err)
	}
}
