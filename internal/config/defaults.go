package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the default configuration values.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			QueryTimeout: 5 * time.Second,
		},
		Viewer: ViewerConfig{
			MinZoom:          0.1,
			MaxZoom:          15.0,
			ZoomStep:         1.25,
			WheelZoomStep:    1.15,
			RenderDebounce:   150 * time.Millisecond,
			SearchDebounce:   300 * time.Millisecond,
			ThumbnailScale:   0.5,
			ThumbnailWidth:   130,
			RestoreViewState: true,
		},
		Printing: PrintingConfig{
			RasterScale: 4.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// setDefaults sets default configuration values in Viper.
func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("database.query_timeout", defaults.Database.QueryTimeout)

	m.viper.SetDefault("viewer.min_zoom", defaults.Viewer.MinZoom)
	m.viper.SetDefault("viewer.max_zoom", defaults.Viewer.MaxZoom)
	m.viper.SetDefault("viewer.zoom_step", defaults.Viewer.ZoomStep)
	m.viper.SetDefault("viewer.wheel_zoom_step", defaults.Viewer.WheelZoomStep)
	m.viper.SetDefault("viewer.render_debounce", defaults.Viewer.RenderDebounce)
	m.viper.SetDefault("viewer.search_debounce", defaults.Viewer.SearchDebounce)
	m.viper.SetDefault("viewer.thumbnail_scale", defaults.Viewer.ThumbnailScale)
	m.viper.SetDefault("viewer.thumbnail_width", defaults.Viewer.ThumbnailWidth)
	m.viper.SetDefault("viewer.restore_view_state", defaults.Viewer.RestoreViewState)

	m.viper.SetDefault("printing.raster_scale", defaults.Printing.RasterScale)

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
}

// createDefaultConfig writes a default config.yaml so users have something to edit.
func (m *Manager) createDefaultConfig() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, data, filePerm); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	m.viper.SetConfigFile(configPath)
	return m.viper.ReadInConfig()
}
