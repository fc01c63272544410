package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leonardotrapani/lyricsync/internal/config"
	"github.com/leonardotrapani/lyricsync/internal/models/whisper"
)

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		song string
		want string
	}{
		{"/music/song.mp3", "/music/song.lrc"},
		{"track.flac", "track.lrc"},
		{"no-ext", "no-ext.lrc"},
		{"/a.b/c.d.wav", "/a.b/c.d.lrc"},
	}
	for _, tt := range tests {
		if got := defaultOutput(tt.song); got != tt.want {
			t.Errorf("defaultOutput(%q) = %q, want %q", tt.song, got, tt.want)
		}
	}
}

func TestApplyTranscribeFlags(t *testing.T) {
	cmd := transcribeCmd()
	if err := cmd.ParseFlags([]string{"--window", "15", "--policy", "fail-fast"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	cfg := config.DefaultConfig()
	retries := cfg.Transcription.Retries
	applyTranscribeFlags(cfg, cmd, transcribeFlags{window: 15, policy: "fail-fast"})

	if cfg.Transcription.Window != 15 {
		t.Errorf("Window = %d, want 15", cfg.Transcription.Window)
	}
	if cfg.Transcription.Policy != "fail-fast" {
		t.Errorf("Policy = %s, want fail-fast", cfg.Transcription.Policy)
	}
	if cfg.Transcription.Retries != retries {
		t.Errorf("Retries changed to %d without the flag", cfg.Transcription.Retries)
	}
}

func TestRunTranscribe_InvalidPolicy(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Transcription.Policy = "sometimes"
	err := runTranscribe(context.Background(), cfg, "song.mp3", "")
	if err == nil {
		t.Fatal("runTranscribe() with bad policy = nil, want error")
	}
}

func TestRunModelDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ggml-model"))
	}))
	defer srv.Close()

	store := &whisper.Store{Dir: t.TempDir(), BaseURL: srv.URL, Client: srv.Client()}

	if err := runModelDownload(context.Background(), store, "base"); err != nil {
		t.Fatalf("runModelDownload() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(store.Dir, "ggml-base.bin"))
	if err != nil || string(data) != "ggml-model" {
		t.Fatalf("model file = %q, %v", data, err)
	}

	// second call is a no-op
	if err := runModelDownload(context.Background(), store, "base"); err != nil {
		t.Errorf("runModelDownload() on installed model error = %v", err)
	}

	err = runModelDownload(context.Background(), store, "tiny.en")
	if err == nil || !strings.Contains(err.Error(), "unknown model") {
		t.Errorf("runModelDownload(tiny.en) error = %v, want unknown model", err)
	}
}

func TestRootCommands(t *testing.T) {
	want := []string{"serve", "transcribe", "check", "configure", "model", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %s not registered", name)
		}
	}
}
