package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds all user-configurable settings loaded from config.json
type Config struct {
	Gesture GestureConfig `json:"gesture" toml:"gesture" yaml:"gesture"`
	Drag    DragConfig    `json:"drag" toml:"drag" yaml:"drag"`
	Surface SurfaceConfig `json:"surface" toml:"surface" yaml:"surface"`
	Shelf   ShelfConfig   `json:"shelf" toml:"shelf" yaml:"shelf"`
	Ingest  IngestConfig  `json:"ingest" toml:"ingest" yaml:"ingest"`
	Watch   WatchConfig   `json:"watch" toml:"watch" yaml:"watch"`
}

// GestureConfig tunes the shake recognizer
type GestureConfig struct {
	SampleHz         int     `json:"sampleHz" toml:"sample_hz" yaml:"sampleHz"`
	MinVelocity      float32 `json:"minVelocity" toml:"min_velocity" yaml:"minVelocity"` // px per tick
	Threshold        int     `json:"threshold" toml:"threshold" yaml:"threshold"`        // direction changes
	InactivityFrames int     `json:"inactivityFrames" toml:"inactivity_frames" yaml:"inactivityFrames"`
}

// DragConfig tunes drag session polling
type DragConfig struct {
	PollIntervalMs     int `json:"pollIntervalMs" toml:"poll_interval_ms" yaml:"pollIntervalMs"`
	InvalidStreakLimit int `json:"invalidStreakLimit" toml:"invalid_streak_limit" yaml:"invalidStreakLimit"`
}

// SurfaceConfig positions and sizes the drop surface
type SurfaceConfig struct {
	OffsetX float32 `json:"offsetX" toml:"offset_x" yaml:"offsetX"`
	OffsetY float32 `json:"offsetY" toml:"offset_y" yaml:"offsetY"`
	Width   int     `json:"width" toml:"width" yaml:"width"`   // dp
	Height  int     `json:"height" toml:"height" yaml:"height"` // dp
}

// ShelfConfig holds shelf defaults; values saved with `settings set` win
type ShelfConfig struct {
	MaxRecentItems    int  `json:"maxRecentItems" toml:"max_recent_items" yaml:"maxRecentItems"`
	AutoExpireDays    int  `json:"autoExpireDays" toml:"auto_expire_days" yaml:"autoExpireDays"`
	PreventDuplicates bool `json:"preventDuplicates" toml:"prevent_duplicates" yaml:"preventDuplicates"`
	AutoCleanup       bool `json:"autoCleanup" toml:"auto_cleanup" yaml:"autoCleanup"`
}

// IngestConfig holds settings for resolving dropped content
type IngestConfig struct {
	TempDirName string `json:"tempDirName" toml:"temp_dir_name" yaml:"tempDirName"`
}

// WatchConfig controls removal of shelf entries whose files disappear
type WatchConfig struct {
	Enabled    bool `json:"enabled" toml:"enabled" yaml:"enabled"`
	DebounceMs int  `json:"debounceMs" toml:"debounce_ms" yaml:"debounceMs"`
}

// Manager handles loading, saving, and accessing configuration
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	parseErr error // Stores parsing error if config failed to load
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		config: DefaultConfig(),
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Gesture: GestureConfig{
			SampleHz:         60,
			MinVelocity:      10,
			Threshold:        3,
			InactivityFrames: 10,
		},
		Drag: DragConfig{
			PollIntervalMs:     80,
			InvalidStreakLimit: 2,
		},
		Surface: SurfaceConfig{
			OffsetX: 20,
			OffsetY: 20,
			Width:   280,
			Height:  180,
		},
		Shelf: ShelfConfig{
			MaxRecentItems:    50,
			AutoExpireDays:    7,
			PreventDuplicates: true,
			AutoCleanup:       true,
		},
		Ingest: IngestConfig{
			TempDirName: "Dropshelf",
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMs: 200,
		},
	}
}

// ConfigPath returns the config file path: ~/.config/dropshelf/config.json
// This is consistent across all platforms (Windows, macOS, Linux)
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dropshelf", "config.json")
}

// Load reads the configuration from ConfigPath
func (m *Manager) Load() error {
	return m.LoadFrom(ConfigPath())
}

// LoadFrom reads the configuration from path. The format follows the file
// extension: .toml, .yaml/.yml, otherwise JSON.
// If the file doesn't exist, creates it with defaults
// If parsing fails, stores the error and returns defaults
func (m *Manager) LoadFrom(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.path = path
	m.parseErr = nil

	configDir := filepath.Dir(m.path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		log.Printf("Config: failed to create directory %s: %v", configDir, err)
		return err
	}

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		log.Printf("Config: creating default config at %s", m.path)
		m.config = DefaultConfig()
		if saveErr := m.saveUnlocked(); saveErr != nil {
			log.Printf("Config: failed to save default config: %v", saveErr)
			return saveErr
		}
		return nil
	}
	if err != nil {
		log.Printf("Config: failed to read %s: %v", m.path, err)
		return err
	}

	cfg, err := Decode(m.path, data)
	if err != nil {
		// Store error for display, use defaults
		log.Printf("Config: parse error: %v", err)
		m.parseErr = err
		m.config = DefaultConfig()
		return nil
	}

	log.Printf("Config: loaded from %s", m.path)
	m.config = cfg
	return nil
}

// Decode parses data on top of the defaults, so keys missing from the
// file keep their default values.
func Decode(path string, data []byte) (*Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse TOML config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse YAML config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse JSON config: %w", err)
		}
	}
	return cfg, nil
}

// Encode renders cfg in the format implied by path.
func Encode(path string, cfg *Config) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case ".yaml", ".yml":
		return yaml.Marshal(cfg)
	default:
		return json.MarshalIndent(cfg, "", "  ")
	}
}

// saveUnlocked saves config without acquiring lock (caller must hold lock)
func (m *Manager) saveUnlocked() error {
	data, err := Encode(m.path, m.config)
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o644)
}

// Save writes the current configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveUnlocked()
}

// Path returns the file the configuration was loaded from
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return *DefaultConfig()
	}
	return *m.config
}

// ParseError returns the parsing error if config failed to load
func (m *Manager) ParseError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.parseErr
}

// PollInterval returns the drag poll interval
func (c DragConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// Debounce returns the watcher debounce delay
func (c WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// ExpiryWindow returns the shelf expiry window
func (c ShelfConfig) ExpiryWindow() time.Duration {
	return time.Duration(c.AutoExpireDays) * 24 * time.Hour
}

// GenerateConfig backs up existing config at path and creates a fresh
// default config. Returns the backup path if a backup was created, or
// empty string if no existing config
func GenerateConfig(path string) (backupPath string, err error) {
	if path == "" {
		path = ConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		timestamp := time.Now().Format("20060102-150405")
		ext := filepath.Ext(path)
		backupPath = strings.TrimSuffix(path, ext) + ".backup." + timestamp + ext

		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read existing config: %w", err)
		}
		if err := os.WriteFile(backupPath, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write backup: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return backupPath, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Encode(path, DefaultConfig())
	if err != nil {
		return backupPath, fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return backupPath, fmt.Errorf("failed to write config: %w", err)
	}

	return backupPath, nil
}
