package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/repolens/internal/connectors/github"
	"github.com/custodia-labs/repolens/internal/export"
	"github.com/custodia-labs/repolens/internal/scanner"
)

// Settings are the persisted analysis defaults. Flags override them
// per invocation.
type Settings struct {
	MaxConcurrentRequests int      `toml:"max_concurrent_requests"`
	RetryAttempts         int      `toml:"retry_attempts"`
	ChunkMaxBytes         int      `toml:"chunk_max_bytes"`
	ExclusionPatterns     []string `toml:"exclusion_patterns"`
	OutputDir             string   `toml:"output_dir"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxConcurrentRequests: github.DefaultMaxConcurrent,
		RetryAttempts:         github.DefaultRetryAttempts,
		ChunkMaxBytes:         export.DefaultChunkMaxBytes,
		ExclusionPatterns:     append([]string(nil), scanner.DefaultExclusions...),
		OutputDir:             "output",
	}
}

// SettingsStore reads and writes Settings as TOML.
type SettingsStore struct {
	mu       sync.RWMutex
	filePath string
	settings Settings
}

// NewSettingsStore creates a store at configDir/config.toml. An empty
// configDir defaults to ~/.repolens. A missing file yields the default
// settings; a present file overrides them field by field.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		configDir = filepath.Join(home, ".repolens")
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &SettingsStore{
		filePath: filepath.Join(configDir, "config.toml"),
		settings: DefaultSettings(),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Settings returns the current settings.
func (s *SettingsStore) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.settings
	out.ExclusionPatterns = append([]string(nil), s.settings.ExclusionPatterns...)
	return out
}

// Update replaces the settings and persists them.
func (s *SettingsStore) Update(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return s.save()
}

// Load reads the settings file, keeping defaults for absent fields.
func (s *SettingsStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}
	s.settings = loaded
	return nil
}

// save writes the settings file (caller must hold the lock).
func (s *SettingsStore) save() error {
	data, err := toml.Marshal(s.settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}
