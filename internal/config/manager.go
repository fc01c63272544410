package config

import (
	"context"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Manager holds the active configuration and reloads it when the file changes
type Manager struct {
	mu      sync.RWMutex
	path    string
	config  *Config
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

func NewManager(path string) (*Manager, error) {
	log.Printf("Config manager: initializing configuration system...")

	config, err := LoadOrDefault(path)
	if err != nil {
		log.Printf("Config manager: failed to load initial configuration: %v", err)
		return nil, err
	}

	log.Printf("Config manager: validating initial configuration...")
	if err := config.Validate(); err != nil {
		log.Printf("Config manager: invalid configuration: %v", err)
		return nil, err
	}

	m := &Manager{
		path:   path,
		config: config,
	}

	log.Printf("Config manager: initialization completed successfully")
	return m, nil
}

// GetConfig returns a snapshot; callers may keep it for the whole request
func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.config.Clone()
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) StartWatching(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	m.watcher = watcher

	// watch the directory so editors that replace the file are picked up
	configDir := filepath.Dir(m.path)
	if err := watcher.Add(configDir); err != nil {
		watcher.Close()
		return err
	}

	m.wg.Add(1)
	go m.watchLoop(ctx)

	log.Printf("Config manager: watching %s for changes", m.path)
	return nil
}

func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
}

func (m *Manager) watchLoop(ctx context.Context) {
	defer m.wg.Done()
	configFileName := filepath.Base(m.path)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != configFileName {
				continue
			}

			// Only react to Write and Create events (ignore Chmod, Remove, etc.)
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				log.Printf("Config manager: file change detected: %s. Reloading config...", event.Name)
				m.reloadConfig()
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Config watcher error: %v", err)

		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) reloadConfig() {
	log.Printf("Config manager: starting configuration reload...")

	newConfig, err := Load(m.path)
	if err != nil {
		log.Printf("Config manager: failed to reload config: %v", err)
		return
	}

	log.Printf("Config manager: validating new configuration...")
	if err := newConfig.Validate(); err != nil {
		log.Printf("Config manager: invalid config after reload, keeping previous: %v", err)
		return
	}

	m.mu.Lock()
	m.config = newConfig
	m.mu.Unlock()

	log.Printf("Config manager: configuration successfully reloaded")
}
