package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func validConfig() *Config {
	c := DefaultConfig()
	c.Providers["openai"] = ProviderConfig{APIKey: "sk-test"}
	return c
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	if c.Transcription.Window != 30 {
		t.Errorf("default window = %d, want 30", c.Transcription.Window)
	}
	if c.Transcription.Policy != "tolerant" {
		t.Errorf("default policy = %q, want tolerant", c.Transcription.Policy)
	}
	if c.Storage.UploadDir != "uploads" || c.Storage.OutputDir != "uploads/lrc" {
		t.Errorf("default storage = %+v", c.Storage)
	}
	if c.Isolation.Backend != "spleeter" {
		t.Errorf("default isolation backend = %q", c.Isolation.Backend)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
keywords = ["Beyoncé", "Halo"]

[server]
  address = ":9000"

[transcription]
  provider = "deepgram"
  model = "nova-2"
  window = 15
  timeout = "90s"

[providers.deepgram]
  api_key = "dg-key"
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.Server.Address != ":9000" {
		t.Errorf("server.address = %q", c.Server.Address)
	}
	if c.Server.MaxConcurrent != 2 {
		t.Errorf("server.max_concurrent = %d, want default 2", c.Server.MaxConcurrent)
	}
	if c.Transcription.Window != 15 {
		t.Errorf("transcription.window = %d", c.Transcription.Window)
	}
	if c.Transcription.Timeout != 90*time.Second {
		t.Errorf("transcription.timeout = %v", c.Transcription.Timeout)
	}
	if c.Transcription.Policy != "tolerant" {
		t.Errorf("transcription.policy = %q, want default", c.Transcription.Policy)
	}
	if c.Transcription.Threads < 1 {
		t.Errorf("threads default not applied: %d", c.Transcription.Threads)
	}
	if len(c.Keywords) != 2 {
		t.Errorf("keywords = %v", c.Keywords)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrConfigNotFound", err)
	}

	bad := writeConfig(t, dir, "[server\naddress = ")
	if _, err := Load(bad); err == nil || errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Load(bad) error = %v, want parse error", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	c, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if c.Server.Address != ":8000" {
		t.Errorf("expected defaults, got address %q", c.Server.Address)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero window", func(c *Config) { c.Transcription.Window = 0 }, "transcription.window"},
		{"negative window", func(c *Config) { c.Transcription.Window = -30 }, "transcription.window"},
		{"bad policy", func(c *Config) { c.Transcription.Policy = "strict" }, "transcription.policy"},
		{"fail-fast policy", func(c *Config) { c.Transcription.Policy = "fail-fast" }, ""},
		{"unknown provider", func(c *Config) { c.Transcription.Provider = "mistral" }, "unsupported transcription.provider"},
		{"bare groq", func(c *Config) { c.Transcription.Provider = "groq" }, "unsupported transcription.provider"},
		{"wrong model", func(c *Config) { c.Transcription.Model = "nova-3" }, "invalid model"},
		{"llm model as transcription", func(c *Config) { c.Transcription.Model = "gpt-4o" }, "invalid model"},
		{"missing api key", func(c *Config) { c.Providers = nil }, "API key required"},
		{"whisper-cpp needs no key", func(c *Config) {
			c.Providers = nil
			c.Transcription.Provider = "whisper-cpp"
			c.Transcription.Model = "base"
		}, ""},
		{"groq key from transcription.api_key", func(c *Config) {
			c.Transcription.Provider = "groq-transcription"
			c.Transcription.Model = "whisper-large-v3"
			c.Transcription.APIKey = "gsk_x"
		}, ""},
		{"zero concurrency", func(c *Config) { c.Server.MaxConcurrent = 0 }, "server.max_concurrent"},
		{"bad backend", func(c *Config) { c.Isolation.Backend = "umx" }, "isolation.backend"},
		{"demucs backend", func(c *Config) { c.Isolation.Backend = "demucs"; c.Isolation.Model = "htdemucs" }, ""},
		{"zero decode rate", func(c *Config) { c.Audio.DecodeSampleRate = 0 }, "audio.decode_sample_rate"},
		{"negative recognition rate", func(c *Config) { c.Audio.RecognitionSampleRate = -1 }, "audio.recognition_sample_rate"},
		{"empty upload dir", func(c *Config) { c.Storage.UploadDir = "" }, "storage.upload_dir"},
		{"spanish language", func(c *Config) { c.Transcription.Language = "es" }, ""},
		{"unknown language", func(c *Config) { c.Transcription.Language = "klingon" }, "transcription.language"},
		{"negative retries", func(c *Config) { c.Transcription.Retries = -1 }, "transcription.retries"},
		{"llm without provider", func(c *Config) { c.LLM.Enabled = true }, "llm.provider"},
		{"llm groq without key", func(c *Config) { c.LLM.Enabled = true; c.LLM.Provider = "groq" }, "API key required for LLM"},
		{"llm openai", func(c *Config) { c.LLM.Enabled = true; c.LLM.Provider = "openai"; c.LLM.Model = "gpt-4o-mini" }, ""},
		{"llm elevenlabs", func(c *Config) { c.LLM.Enabled = true; c.LLM.Provider = "elevenlabs" }, "invalid llm.provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolveAPIKeyForProvider(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_env")

	c := DefaultConfig()
	c.Transcription.Provider = "groq-transcription"

	if got := c.resolveAPIKeyForProvider("groq-transcription"); got != "gsk_env" {
		t.Errorf("env fallback = %q", got)
	}

	c.Transcription.APIKey = "gsk_transcription"
	if got := c.resolveAPIKeyForProvider("groq-transcription"); got != "gsk_transcription" {
		t.Errorf("transcription.api_key = %q", got)
	}

	c.Providers["groq"] = ProviderConfig{APIKey: "gsk_providers"}
	if got := c.resolveAPIKeyForProvider("groq-transcription"); got != "gsk_providers" {
		t.Errorf("providers.groq.api_key = %q", got)
	}

	// transcription.api_key never leaks to a different provider
	t.Setenv("OPENAI_API_KEY", "")
	if got := c.resolveAPIKeyForProvider("openai"); got != "" {
		t.Errorf("openai key = %q, want empty", got)
	}
}

func TestToTranscriberConfig(t *testing.T) {
	c := validConfig()
	c.Keywords = []string{"chorus"}
	c.Transcription.Language = " EN"

	tc := c.ToTranscriberConfig()
	if tc.Provider != "openai" || tc.Model != "whisper-1" || tc.APIKey != "sk-test" {
		t.Errorf("ToTranscriberConfig() = %+v", tc)
	}
	if tc.Language != "en" || len(tc.Keywords) != 1 || tc.Timeout != 60*time.Second {
		t.Errorf("ToTranscriberConfig() = %+v", tc)
	}
}

func TestClone(t *testing.T) {
	c := validConfig()
	c.Keywords = []string{"a"}

	clone := c.Clone()
	clone.Providers["openai"] = ProviderConfig{APIKey: "changed"}
	clone.Keywords[0] = "b"
	clone.Transcription.Window = 10

	if c.Providers["openai"].APIKey != "sk-test" || c.Keywords[0] != "a" || c.Transcription.Window != 30 {
		t.Error("Clone() shares state with the original")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	c := validConfig()
	c.Keywords = []string{"Beyoncé", `say "hi"`}
	c.Transcription.Policy = "fail-fast"
	c.Transcription.Window = 20
	c.Isolation.Backend = "demucs"
	c.Logging.File = "/var/log/lyricsync.log"

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := Save(path, c); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Transcription.Policy != "fail-fast" || loaded.Transcription.Window != 20 {
		t.Errorf("transcription = %+v", loaded.Transcription)
	}
	if loaded.Isolation.Backend != "demucs" || loaded.Logging.File != "/var/log/lyricsync.log" {
		t.Errorf("isolation/logging not preserved")
	}
	if loaded.Providers["openai"].APIKey != "sk-test" {
		t.Errorf("providers = %v", loaded.Providers)
	}
	if len(loaded.Keywords) != 2 || loaded.Keywords[1] != `say "hi"` {
		t.Errorf("keywords = %v", loaded.Keywords)
	}
	if loaded.Server.RequestTimeout != c.Server.RequestTimeout {
		t.Errorf("request_timeout = %v, want %v", loaded.Server.RequestTimeout, c.Server.RequestTimeout)
	}
}

func TestManager_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	base := validConfig()
	path := filepath.Join(dir, "config.toml")
	if err := Save(path, base); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.StartWatching(ctx); err != nil {
		t.Fatalf("StartWatching() error = %v", err)
	}
	defer m.Stop()

	updated := validConfig()
	updated.Transcription.Window = 45
	if err := Save(path, updated); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if m.GetConfig().Transcription.Window == 45 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if got := m.GetConfig().Transcription.Window; got != 45 {
		t.Fatalf("window after reload = %d, want 45", got)
	}

	// an invalid file keeps the previous configuration
	if err := os.WriteFile(path, []byte("[transcription]\nwindow = 0\n"), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if got := m.GetConfig().Transcription.Window; got != 45 {
		t.Errorf("window after invalid reload = %d, want 45", got)
	}
}

func TestNewManager_InvalidConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[transcription]\nwindow = -1\n")
	if _, err := NewManager(path); err == nil {
		t.Error("NewManager() should reject an invalid configuration")
	}
}
