package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Config holds all user-configurable settings loaded from config.json
type Config struct {
	UI       UIConfig       `json:"ui"`
	Detector DetectorConfig `json:"detector"`
	Preview  PreviewConfig  `json:"preview"`
	Hotkeys  HotkeysConfig  `json:"hotkeys"`
}

// UIConfig holds window and theme settings
type UIConfig struct {
	Theme        string `json:"theme"` // "light" or "dark"
	WindowWidth  int    `json:"windowWidth"`
	WindowHeight int    `json:"windowHeight"`
	ToastSeconds int    `json:"toastSeconds"`
}

// DetectorConfig selects and configures the object detection engine
type DetectorConfig struct {
	Engine         string   `json:"engine"` // "http" | "command"
	URL            string   `json:"url"`
	ModelType      string   `json:"modelType"`
	Command        string   `json:"command"`
	Args           []string `json:"args"`
	TimeoutSeconds int      `json:"timeoutSeconds"` // 0 = no limit
	Workers        int      `json:"workers"`        // 0 = one per CPU
	NamesFile      string   `json:"namesFile"`      // coco.names style class list
	MinScore       float64  `json:"minScore"`
}

// PreviewConfig holds the displayed bitmap size
type PreviewConfig struct {
	Width     int `json:"width"`
	Height    int `json:"height"`
	CacheSize int `json:"cacheSize"`
}

// Timeout returns the configured detection timeout, zero when unlimited.
func (d DetectorConfig) Timeout() time.Duration {
	if d.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(d.TimeoutSeconds) * time.Second
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
		UI: UIConfig{
			Theme:        "light",
			WindowWidth:  1000,
			WindowHeight: 800,
			ToastSeconds: 3,
		},
		Detector: DetectorConfig{
			Engine:         "http",
			URL:            "http://localhost:8000/detect",
			ModelType:      "yolov4-tiny",
			TimeoutSeconds: 300,
			MinScore:       0.5,
		},
		Preview: PreviewConfig{
			Width:     800,
			Height:    600,
			CacheSize: 32,
		},
		Hotkeys: DefaultHotkeys(),
	}
}

// ConfigPath returns the config file path: ~/.config/spotter/config.json
// This is consistent across all platforms (Windows, macOS, Linux)
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "spotter", "config.json")
}

// Load reads the configuration from the default config path.
func (m *Manager) Load() error {
	return m.LoadFrom(ConfigPath())
}

// LoadFrom reads the configuration from path.
// If the file doesn't exist, creates it with defaults.
// If parsing fails, stores the error and keeps the defaults.
// Fields missing from the file keep their default values.
func (m *Manager) LoadFrom(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.path = path
	m.parseErr = nil

	configDir := filepath.Dir(m.path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		log.Printf("Config: failed to create directory %s: %v", configDir, err)
		return errors.Wrap(err, "create config directory")
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
		return errors.Wrap(err, "read config")
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		// Keep the error for the UI and run on defaults
		log.Printf("Config: JSON parse error: %v", err)
		m.parseErr = err
		m.config = DefaultConfig()
		return nil
	}

	log.Printf("Config: loaded from %s", m.path)
	m.config = cfg
	return nil
}

// saveUnlocked saves config without acquiring lock (caller must hold lock)
func (m *Manager) saveUnlocked() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return errors.Wrap(os.WriteFile(m.path, data, 0o644), "write config")
}

// Save writes the current configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.path == "" {
		m.path = ConfigPath()
	}
	return m.saveUnlocked()
}

// Path returns the file the configuration was loaded from.
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
	cfg := *m.config
	cfg.Detector.Args = append([]string(nil), m.config.Detector.Args...)
	return cfg
}

// ParseError returns the parsing error if config failed to load
func (m *Manager) ParseError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.parseErr
}

// SetTheme updates the theme setting
func (m *Manager) SetTheme(theme string) error {
	m.mu.Lock()
	m.config.UI.Theme = theme
	m.mu.Unlock()
	return m.Save()
}

// IsDarkMode returns true if dark mode is enabled
func (m *Manager) IsDarkMode() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.UI.Theme == "dark"
}
