package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Save writes cfg to path as a commented TOML file
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var b strings.Builder
	b.WriteString(`# lyricsync configuration
# Changes are picked up by a running "lyricsync serve" without restart.

`)
	// top-level keys must come before the first table
	if len(cfg.Keywords) > 0 {
		quoted := make([]string, len(cfg.Keywords))
		for i, k := range cfg.Keywords {
			quoted[i] = fmt.Sprintf("%q", k)
		}
		fmt.Fprintf(&b, "# Spelling hints passed to recognition and refinement\nkeywords = [%s]\n\n", strings.Join(quoted, ", "))
	}

	fmt.Fprintf(&b, `# HTTP server
[server]
  address = %q             # listen address
  max_concurrent = %d          # songs processed at the same time
  queue_timeout = %q         # how long a request waits for a free slot before 503
  request_timeout = %q       # upper bound for a whole request
  debug = %t

`, cfg.Server.Address, cfg.Server.MaxConcurrent, cfg.Server.QueueTimeout.String(), cfg.Server.RequestTimeout.String(), cfg.Server.Debug)

	fmt.Fprintf(&b, `# Where uploads, lyric files and per-request workspaces live
[storage]
  upload_dir = %q
  output_dir = %q
  temp_dir = %q                # empty = system temp directory

`, cfg.Storage.UploadDir, cfg.Storage.OutputDir, cfg.Storage.TempDir)

	fmt.Fprintf(&b, `# Decoding (ffmpeg)
[audio]
  ffmpeg_path = %q
  decode_sample_rate = %d      # sample rate of the decoded track fed to isolation
  decode_channels = %d
  recognition_sample_rate = %d # resample vocals before recognition (0 = keep)
  convert_timeout = %q

`, cfg.Audio.FFmpegPath, cfg.Audio.DecodeSampleRate, cfg.Audio.DecodeChannels, cfg.Audio.RecognitionSampleRate, cfg.Audio.ConvertTimeout.String())

	fmt.Fprintf(&b, `# Vocal isolation ("spleeter" or "demucs")
[isolation]
  backend = %q
  binary = %q                  # empty = look up backend name in PATH
  model = %q
  timeout = %q

`, cfg.Isolation.Backend, cfg.Isolation.Binary, cfg.Isolation.Model, cfg.Isolation.Timeout.String())

	fmt.Fprintf(&b, `# Speech recognition
# provider: openai, groq-transcription, elevenlabs, deepgram, whisper-cpp
# policy: "tolerant" keeps going with empty lines, "fail-fast" stops at the first failed segment
[transcription]
  provider = %q
  model = %q
  api_key = %q                 # or providers.<name>.api_key, or the provider's env variable
  language = %q                # empty for auto-detect
  model_path = %q              # whisper-cpp model file
  threads = %d
  window = %d                  # segment length in seconds
  policy = %q
  timeout = %q                 # per recognition call
  retries = %d                 # extra attempts for a failed segment
  retry_backoff = %q

`, cfg.Transcription.Provider, cfg.Transcription.Model, cfg.Transcription.APIKey, cfg.Transcription.Language, cfg.Transcription.ModelPath,
		cfg.Transcription.Threads, cfg.Transcription.Window, cfg.Transcription.Policy, cfg.Transcription.Timeout.String(),
		cfg.Transcription.Retries, cfg.Transcription.RetryBackoff.String())

	fmt.Fprintf(&b, `# Optional per-line lyric cleanup
[llm]
  enabled = %t
  provider = %q
  model = %q
  custom_prompt = %q
  timeout = %q

`, cfg.LLM.Enabled, cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.CustomPrompt, cfg.LLM.Timeout.String())

	fmt.Fprintf(&b, `# Rotating log file (empty file = stderr only)
[logging]
  file = %q
  max_size_mb = %d
  max_backups = %d
  max_age_days = %d
  compress = %t
`, cfg.Logging.File, cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups, cfg.Logging.MaxAgeDays, cfg.Logging.Compress)

	names := make([]string, 0, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		if pc.APIKey != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "\n[providers.%s]\n  api_key = %q\n", name, cfg.Providers[name].APIKey)
	}

	// API keys may be in the file
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
