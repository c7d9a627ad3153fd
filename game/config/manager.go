package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/wricardo/maze-lab/game/engine"
	"github.com/wricardo/maze-lab/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// preset file extensions in lookup order
var extensions = []string{".json", ".toml"}

// Manager handles maze preset loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.MazeConfig
	defaultID     string
	configs       map[string]*engine.MazeConfig
	mu            sync.RWMutex
}

// NewManager creates a new preset manager over configDir
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.MazeConfig),
	}

	m.defaultID = engine.DefaultMazeConfig().Name
	m.loadDefaultConfig()
	return m, nil
}

// LoadConfig loads a preset by ID (file name without extension)
func (m *Manager) LoadConfig(name string) (*engine.MazeConfig, error) {
	id := configID(name)

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	path, ok := m.findFile(id)
	if !ok {
		if id == engine.DefaultMazeConfig().Name {
			return engine.DefaultMazeConfig(), nil
		}
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, id)
	}

	config, err := engine.LoadMazeConfig(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}

	m.configs[id] = config
	return config, nil
}

// findFile returns the preset file for id, preferring JSON over TOML
func (m *Manager) findFile(id string) (string, bool) {
	for _, ext := range extensions {
		path := filepath.Join(m.configDir, id+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// ListConfigs returns information about all valid presets, sorted by ID
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	seen := make(map[string]bool)
	var configs []*service.ConfigInfo

	for _, entry := range entries {
		if entry.IsDir() || !isPresetFile(entry.Name()) {
			continue
		}

		id := configID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(id)
		if err != nil {
			// Skip invalid presets
			continue
		}
		seen[id] = true

		configs = append(configs, newConfigInfo(entry.Name(), id, config))
	}

	builtin := engine.DefaultMazeConfig()
	if !seen[builtin.Name] {
		configs = append(configs, newConfigInfo("", builtin.Name, builtin))
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ConfigID < configs[j].ConfigID
	})
	return configs, nil
}

func newConfigInfo(filename, id string, config *engine.MazeConfig) *service.ConfigInfo {
	return &service.ConfigInfo{
		Filename:    filename,
		ConfigID:    id,
		Name:        config.Name,
		Description: config.Description,
		Width:       config.Width,
		Height:      config.Height,
		Generator:   config.Generator,
		Pathfinder:  config.Pathfinder,
		DelayMS:     config.DelayMS,
	}
}

// GetDefault returns the default preset
func (m *Manager) GetDefault() *engine.MazeConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default preset by ID
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	m.defaultID = configID(name)
	return nil
}

// RefreshCache drops every cached preset and reloads the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.MazeConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// Invalidate drops one preset from the cache
func (m *Manager) Invalidate(name string) {
	m.mu.Lock()
	delete(m.configs, configID(name))
	m.mu.Unlock()
}

// loadDefaultConfig reloads the default preset, falling back to the built-in one
func (m *Manager) loadDefaultConfig() {
	m.mu.RLock()
	id := m.defaultID
	m.mu.RUnlock()

	config, err := m.LoadConfig(id)
	if err != nil {
		log.Printf("[CONFIG] default preset %s unavailable, using built-in: %v", id, err)
		config = engine.DefaultMazeConfig()
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig validates and writes a preset. The format follows the extension of
// name and defaults to JSON.
func (m *Manager) SaveConfig(name string, config *engine.MazeConfig) error {
	if err := engine.ValidateMazeConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".toml" {
		ext = ".json"
	}
	id := configID(name)
	if id == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: bad preset name %q", ErrInvalidConfig, name)
	}

	data, err := engine.MarshalMazeConfig(config, ext)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, id+ext)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}

// Watch refreshes cached presets when files in the config directory change,
// until ctx is done.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(m.configDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", m.configDir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isPresetFile(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				log.Printf("[CONFIG] %s changed (%s), reloading", filepath.Base(ev.Name), ev.Op)
				m.Invalidate(ev.Name)
				m.mu.RLock()
				isDefault := configID(ev.Name) == m.defaultID
				m.mu.RUnlock()
				if isDefault {
					m.loadDefaultConfig()
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[CONFIG] watcher error: %v", err)
		}
	}
}

// configID strips the directory and preset extension from name
func configID(name string) string {
	base := filepath.Base(name)
	for _, ext := range extensions {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return base
}

func isPresetFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}
