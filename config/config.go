package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ServerSettings controls the HTTP listener and process logging.
type ServerSettings struct {
	Port          int    `json:"port"`
	LogFile       string `json:"logFile,omitempty"` // empty = stderr only
	LogMaxSizeMB  int    `json:"logMaxSizeMb"`
	LogMaxBackups int    `json:"logMaxBackups"`
}

// MetadataSettings configures the external metadata provider client.
type MetadataSettings struct {
	APIKey        string `json:"apiKey,omitempty"` // falls back to TMDB_API_KEY
	Language      string `json:"language"`
	CacheDir      string `json:"cacheDir"`
	CacheTTLHours int    `json:"cacheTtlHours"`
}

// ProviderSettings configures the streaming availability provider.
type ProviderSettings struct {
	BaseURL         string `json:"baseUrl"`
	CacheTTLMinutes int    `json:"cacheTtlMinutes"`
}

// DatabaseSettings locates the catalog database.
type DatabaseSettings struct {
	Path string `json:"path"`
}

// MaintenanceSettings guards and sizes the metadata repair pass.
type MaintenanceSettings struct {
	Secret            string `json:"secret,omitempty"` // falls back to MAINTENANCE_SECRET
	BatchSize         int    `json:"batchSize"`
	SyncIntervalHours int    `json:"syncIntervalHours"`
}

type Settings struct {
	Server      ServerSettings      `json:"server"`
	Metadata    MetadataSettings    `json:"metadata"`
	Provider    ProviderSettings    `json:"provider"`
	Database    DatabaseSettings    `json:"database"`
	Maintenance MaintenanceSettings `json:"maintenance"`
}

// DefaultSettings returns the settings used when no config file exists yet.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Port:          8790,
			LogMaxSizeMB:  20,
			LogMaxBackups: 3,
		},
		Metadata: MetadataSettings{
			Language:      "en-US",
			CacheDir:      "data/cache",
			CacheTTLHours: 24,
		},
		Provider: ProviderSettings{
			BaseURL:         "https://superflixapi.buzz",
			CacheTTLMinutes: 30,
		},
		Database: DatabaseSettings{
			Path: "data/cinestream.db",
		},
		Maintenance: MaintenanceSettings{
			BatchSize:         50,
			SyncIntervalHours: 24,
		},
	}
}

var ErrPathRequired = errors.New("config path is required")

// Manager owns the settings file. Reads are cheap and concurrency-safe;
// updates are persisted atomically via a temp-file rename.
type Manager struct {
	path     string
	mu       sync.RWMutex
	settings Settings
}

// NewManager loads settings from path, creating the file with defaults when
// it does not exist. Secrets left empty in the file are filled from the
// environment (TMDB_API_KEY, MAINTENANCE_SECRET).
func NewManager(path string) (*Manager, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrPathRequired
	}

	m := &Manager{path: path, settings: DefaultSettings()}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := m.save(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(data, &m.settings); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if m.settings.Metadata.APIKey == "" {
		m.settings.Metadata.APIKey = os.Getenv("TMDB_API_KEY")
	}
	if m.settings.Maintenance.Secret == "" {
		m.settings.Maintenance.Secret = os.Getenv("MAINTENANCE_SECRET")
	}

	return m, nil
}

// Get returns a copy of the current settings.
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Update applies fn to the settings under lock and persists the result.
func (m *Manager) Update(fn func(*Settings)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.settings)
	return m.save()
}

func (m *Manager) save() error {
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}

	tmp := m.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create config temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m.settings); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode config: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close config temp file: %w", err)
	}
	return os.Rename(tmp, m.path)
}
