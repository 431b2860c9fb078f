// Package config provides configuration management for folio with Viper integration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// File permission constants
const (
	dirPerm  = 0755 // Standard directory permissions (rwxr-xr-x)
	filePerm = 0644 // Standard file permissions (rw-r--r--)
)

// Config represents the complete configuration for folio.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Viewer   ViewerConfig   `mapstructure:"viewer" yaml:"viewer"`
	Printing PrintingConfig `mapstructure:"printing" yaml:"printing"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// DatabaseConfig holds view-state database configuration.
type DatabaseConfig struct {
	Path         string        `mapstructure:"path" yaml:"path"`
	QueryTimeout time.Duration `mapstructure:"query_timeout" yaml:"query_timeout"`
}

// ViewerConfig holds the interactive viewing pipeline configuration.
type ViewerConfig struct {
	// Zoom factor bounds and steps. WheelZoomStep is the per-notch factor for
	// Ctrl+wheel, ZoomStep the factor for explicit zoom in/out commands.
	MinZoom       float64 `mapstructure:"min_zoom" yaml:"min_zoom"`
	MaxZoom       float64 `mapstructure:"max_zoom" yaml:"max_zoom"`
	ZoomStep      float64 `mapstructure:"zoom_step" yaml:"zoom_step"`
	WheelZoomStep float64 `mapstructure:"wheel_zoom_step" yaml:"wheel_zoom_step"`

	// RenderDebounce is the quiet interval before a zoom/rotate/resize burst
	// triggers a re-render. Page changes render immediately.
	RenderDebounce time.Duration `mapstructure:"render_debounce" yaml:"render_debounce"`
	// SearchDebounce is the quiet interval applied by interactive shells
	// before a search query is submitted.
	SearchDebounce time.Duration `mapstructure:"search_debounce" yaml:"search_debounce"`

	// ThumbnailScale is the fixed rasterization scale for the thumbnail stream.
	ThumbnailScale float64 `mapstructure:"thumbnail_scale" yaml:"thumbnail_scale"`
	// ThumbnailWidth is the icon width thumbnails are downscaled to.
	ThumbnailWidth int `mapstructure:"thumbnail_width" yaml:"thumbnail_width"`

	// RestoreViewState re-opens documents at their last page/zoom/rotation.
	RestoreViewState bool `mapstructure:"restore_view_state" yaml:"restore_view_state"`
}

// PrintingConfig holds print rasterization configuration.
type PrintingConfig struct {
	// RasterScale is the fixed scale used for print-quality rasterization.
	RasterScale float64 `mapstructure:"raster_scale" yaml:"raster_scale"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	v := viper.New()

	// Configure Viper - supports yaml, json, toml automatically
	v.SetConfigName("config")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Current directory for development

	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"database.path":             "DATABASE_PATH",
		"database.query_timeout":    "DATABASE_QUERY_TIMEOUT",
		"viewer.min_zoom":           "VIEWER_MIN_ZOOM",
		"viewer.max_zoom":           "VIEWER_MAX_ZOOM",
		"viewer.zoom_step":          "VIEWER_ZOOM_STEP",
		"viewer.render_debounce":    "VIEWER_RENDER_DEBOUNCE",
		"viewer.thumbnail_scale":    "VIEWER_THUMBNAIL_SCALE",
		"viewer.restore_view_state": "VIEWER_RESTORE_VIEW_STATE",
		"printing.raster_scale":     "PRINTING_RASTER_SCALE",
		"logging.level":             "LOGGING_LEVEL",
		"logging.format":            "LOGGING_FORMAT",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, "FOLIO_"+env); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable %s: %w", env, err)
		}
	}

	return &Manager{
		viper:     v,
		callbacks: make([]func(*Config), 0),
	}, nil
}

// Load loads the configuration from file and environment variables.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	m.setDefaults()

	if err := m.viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create default one
			if err := m.createDefaultConfig(); err != nil {
				return fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config, err := m.unmarshal()
	if err != nil {
		return err
	}

	m.config = config
	return nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent external modification
	configCopy := *m.config
	return &configCopy
}

// Watch starts watching the config file for changes and reloads automatically.
func (m *Manager) Watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return nil // Already watching
	}

	m.viper.WatchConfig()
	m.viper.OnConfigChange(func(_ fsnotify.Event) {
		if err := m.reload(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to reload config: %v\n", err)
			return
		}

		m.mu.RLock()
		config := m.config
		callbacks := make([]func(*Config), len(m.callbacks))
		copy(callbacks, m.callbacks)
		m.mu.RUnlock()

		for _, callback := range callbacks {
			callback(config)
		}
	})

	m.watching = true
	return nil
}

// OnConfigChange registers a callback function to be called when config changes.
func (m *Manager) OnConfigChange(callback func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, callback)
}

func (m *Manager) reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.viper.ReadInConfig(); err != nil {
		return err
	}

	config, err := m.unmarshal()
	if err != nil {
		return err
	}

	m.config = config
	return nil
}

// unmarshal decodes viper state into a validated Config. Caller holds the lock.
func (m *Manager) unmarshal() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Database.Path == "" {
		dbPath, err := GetDatabaseFile()
		if err != nil {
			return nil, fmt.Errorf("failed to get database path: %w", err)
		}
		config.Database.Path = dbPath
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// GetConfigFile returns the path of the config file in use, if any.
func (m *Manager) GetConfigFile() string {
	return m.viper.ConfigFileUsed()
}
