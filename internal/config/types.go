package config

import "time"

type Config struct {
	Server        ServerConfig              `toml:"server"`
	Storage       StorageConfig             `toml:"storage"`
	Audio         AudioConfig               `toml:"audio"`
	Isolation     IsolationConfig           `toml:"isolation"`
	Transcription TranscriptionConfig       `toml:"transcription"`
	Providers     map[string]ProviderConfig `toml:"providers"`
	Keywords      []string                  `toml:"keywords"`
	LLM           LLMConfig                 `toml:"llm"`
	Logging       LoggingConfig             `toml:"logging"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Address        string        `toml:"address"`
	MaxConcurrent  int           `toml:"max_concurrent"`
	QueueTimeout   time.Duration `toml:"queue_timeout"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	Debug          bool          `toml:"debug"`
}

// StorageConfig holds where uploads, documents and workspaces live
type StorageConfig struct {
	UploadDir string `toml:"upload_dir"`
	OutputDir string `toml:"output_dir"`
	TempDir   string `toml:"temp_dir"` // empty = os.TempDir()
}

// AudioConfig controls decoding and the format sent to recognition
type AudioConfig struct {
	FFmpegPath            string        `toml:"ffmpeg_path"`
	DecodeSampleRate      int           `toml:"decode_sample_rate"`
	DecodeChannels        int           `toml:"decode_channels"`
	RecognitionSampleRate int           `toml:"recognition_sample_rate"` // 0 = send isolated vocals as is
	ConvertTimeout        time.Duration `toml:"convert_timeout"`
}

// IsolationConfig selects the vocal separation backend
type IsolationConfig struct {
	Backend string        `toml:"backend"`
	Binary  string        `toml:"binary"`
	Model   string        `toml:"model"`
	Timeout time.Duration `toml:"timeout"`
}

type TranscriptionConfig struct {
	Provider     string        `toml:"provider"`
	Model        string        `toml:"model"`
	Language     string        `toml:"language"`
	APIKey       string        `toml:"api_key"`
	ModelPath    string        `toml:"model_path"`
	Threads      int           `toml:"threads"`
	Window       int           `toml:"window"`
	Policy       string        `toml:"policy"`
	Timeout      time.Duration `toml:"timeout"`
	Retries      int           `toml:"retries"`
	RetryBackoff time.Duration `toml:"retry_backoff"`
}

// ProviderConfig holds API key for a provider
type ProviderConfig struct {
	APIKey string `toml:"api_key"`
}

// LLMConfig configures the optional lyric line refinement
type LLMConfig struct {
	Enabled      bool          `toml:"enabled"`
	Provider     string        `toml:"provider"`
	Model        string        `toml:"model"`
	CustomPrompt string        `toml:"custom_prompt"`
	Timeout      time.Duration `toml:"timeout"`
}

// LoggingConfig routes the standard logger to a rotating file
type LoggingConfig struct {
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Clone returns a deep copy safe to hand to a single request
func (c *Config) Clone() *Config {
	out := *c
	if c.Providers != nil {
		out.Providers = make(map[string]ProviderConfig, len(c.Providers))
		for k, v := range c.Providers {
			out.Providers[k] = v
		}
	}
	if c.Keywords != nil {
		out.Keywords = append([]string(nil), c.Keywords...)
	}
	return &out
}
