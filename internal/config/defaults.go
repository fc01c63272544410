package config

import (
	"runtime"
	"time"
)

// DefaultConfig returns a configuration that works with the openai provider
// once OPENAI_API_KEY is set.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        ":8000",
			MaxConcurrent:  2,
			QueueTimeout:   30 * time.Second,
			RequestTimeout: 30 * time.Minute,
		},
		Storage: StorageConfig{
			UploadDir: "uploads",
			OutputDir: "uploads/lrc",
		},
		Audio: AudioConfig{
			FFmpegPath:            "ffmpeg",
			DecodeSampleRate:      44100,
			DecodeChannels:        2,
			RecognitionSampleRate: 16000,
			ConvertTimeout:        5 * time.Minute,
		},
		Isolation: IsolationConfig{
			Backend: "spleeter",
			Model:   "spleeter:2stems",
			Timeout: 15 * time.Minute,
		},
		Transcription: TranscriptionConfig{
			Provider:     "openai",
			Model:        "whisper-1",
			Window:       30,
			Policy:       "tolerant",
			Timeout:      60 * time.Second,
			Retries:      1,
			RetryBackoff: 2 * time.Second,
		},
		Providers: make(map[string]ProviderConfig),
		LLM: LLMConfig{
			Enabled: false,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			MaxSizeMB:  100,
			MaxBackups: 10,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// applyThreadsDefault sets default threads for local transcription if not explicitly set
func (c *Config) applyThreadsDefault() {
	if c.Transcription.Threads == 0 {
		threads := runtime.NumCPU() - 1
		if threads < 1 {
			threads = 1
		}
		c.Transcription.Threads = threads
	}
}
