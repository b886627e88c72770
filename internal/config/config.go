// Package config provides configuration management for the overlay.
package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config represents the application configuration
type Config struct {
	// General contains behavior settings
	General GeneralConfig `json:"general"`

	// Indicator contains presentation settings
	Indicator IndicatorConfig `json:"indicator"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	// TickIntervalMS is how often the queue is drained, in milliseconds
	TickIntervalMS int `json:"tick_interval_ms"`

	// StartPaused starts the overlay with capture disabled
	StartPaused bool `json:"start_paused"`

	// APIEnabled enables the local HTTP status server
	APIEnabled bool `json:"api_enabled"`

	// APIPort is the port for the status server
	APIPort int `json:"api_port"`

	// APIToken is an optional authentication token for API requests
	APIToken string `json:"api_token,omitempty"`
}

// IndicatorConfig contains how the on-screen indicators look
type IndicatorConfig struct {
	// PrimaryEnabled shows an indicator for the left button
	PrimaryEnabled bool `json:"primary_enabled"`

	// SecondaryEnabled shows an indicator for the right button
	SecondaryEnabled bool `json:"secondary_enabled"`

	// Size is the indicator diameter in pixels
	Size int `json:"size"`

	// Alpha is the indicator opacity, 0-255
	Alpha uint8 `json:"alpha"`

	// OffsetX shifts the indicator relative to the cursor
	OffsetX int `json:"offset_x"`

	// OffsetY shifts the indicator relative to the cursor
	OffsetY int `json:"offset_y"`
}

// DefaultConfig returns a new Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			TickIntervalMS: 16, // ~60 Hz
			APIEnabled:     true,
			APIPort:        18074,
		},
		Indicator: IndicatorConfig{
			PrimaryEnabled:   true,
			SecondaryEnabled: true,
			Size:             48,
			Alpha:            200,
			OffsetX:          24,
			OffsetY:          24,
		},
	}
}

// TickInterval returns the configured cadence as a duration, with a floor
// so a broken config file cannot spin the loop.
func (c *Config) TickInterval() time.Duration {
	ms := c.General.TickIntervalMS
	if ms < 1 {
		ms = 16
	}
	return time.Duration(ms) * time.Millisecond
}

// Manager handles loading, saving and watching the configuration
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
	onChanged  func()
	watcher    *fsnotify.Watcher
}

// NewManager creates a new configuration manager using the platform
// config directory
func NewManager() (*Manager, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return NewManagerWithPath(configPath), nil
}

// NewManagerWithPath creates a manager bound to an explicit file path
func NewManagerWithPath(path string) *Manager {
	return &Manager{
		configPath: path,
		config:     DefaultConfig(),
	}
}

// getConfigPath returns the path to the configuration file
func getConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "clickhalo")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "clickhalo")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config", "clickhalo")
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Load reads the configuration from disk. A missing file is not an error;
// defaults stay in effect.
//
// The file is decoded into a fresh Config and the pointer is swapped under
// the lock. Callers holding an earlier Get result keep a snapshot that
// never mutates, which matters because the watcher calls Load at runtime
// while other goroutines are reading.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.configPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return err
	}

	m.mu.Lock()
	m.config = cfg
	onChanged := m.onChanged
	m.mu.Unlock()

	if onChanged != nil {
		onChanged()
	}
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return err
	}

	log.Printf("Config: Saving configuration to %s (%d bytes)", m.configPath, len(data))
	return os.WriteFile(m.configPath, data, 0644)
}

// Get returns the current configuration. The returned value is a snapshot:
// Load and Set replace the whole Config rather than mutating it, so the
// pointer stays valid to read after a reload.
func (m *Manager) Get() *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Set updates the configuration
func (m *Manager) Set(config *Config) {
	m.mu.Lock()
	m.config = config
	onChanged := m.onChanged
	m.mu.Unlock()

	if onChanged != nil {
		onChanged()
	}
}

// RegisterChangeCallback registers a function to be called when config changes
func (m *Manager) RegisterChangeCallback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChanged = fn
}

// Watch reloads the configuration whenever the file changes on disk, so
// edits apply without a restart. Call Close to stop watching.
func (m *Manager) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory: editors replace the file, which drops a watch
	// placed on the file itself.
	if err := watcher.Add(filepath.Dir(m.configPath)); err != nil {
		watcher.Close()
		return err
	}

	m.mu.Lock()
	m.watcher = watcher
	m.mu.Unlock()

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(m.configPath) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				log.Printf("Config: %s changed on disk, reloading", m.configPath)
				if err := m.Load(); err != nil {
					log.Printf("Config: reload failed: %v", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Config: watcher error: %v", err)
			}
		}
	}()

	log.Printf("Config: watching %s", m.configPath)
	return nil
}

// Close stops the config file watcher if one is running
func (m *Manager) Close() error {
	m.mu.Lock()
	watcher := m.watcher
	m.watcher = nil
	m.mu.Unlock()

	if watcher != nil {
		return watcher.Close()
	}
	return nil
}
