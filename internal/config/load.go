package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

var ErrConfigNotFound = errors.New("config not found")

// GetConfigPath returns the default config location, creating its directory
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	appDir := filepath.Join(configDir, "lyricsync")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(appDir, "config.toml"), nil
}

// ResolvePath returns explicit if set, otherwise the default config path
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return GetConfigPath()
}

// Load decodes the file at path over the defaults, so omitted keys keep
// their default values.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s (run lyricsync configure)", ErrConfigNotFound, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	log.Printf("Config: loading configuration from %s", path)
	config := DefaultConfig()
	meta, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		log.Printf("Config: ignoring unknown keys: %v", undecoded)
	}

	if config.Providers == nil {
		config.Providers = make(map[string]ProviderConfig)
	}
	config.applyThreadsDefault()

	log.Printf("Config: configuration loaded successfully")
	return config, nil
}

// LoadOrDefault is Load, falling back to DefaultConfig when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	config, err := Load(path)
	if errors.Is(err, ErrConfigNotFound) {
		log.Printf("Config: %s not found, using defaults", path)
		config = DefaultConfig()
		config.applyThreadsDefault()
		return config, nil
	}
	return config, err
}
