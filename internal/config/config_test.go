package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.1, cfg.Viewer.MinZoom)
	assert.Equal(t, 15.0, cfg.Viewer.MaxZoom)
	assert.Equal(t, 1.25, cfg.Viewer.ZoomStep)
	assert.Equal(t, 0.5, cfg.Viewer.ThumbnailScale)
	assert.Equal(t, 4.0, cfg.Printing.RasterScale)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero min zoom", func(c *Config) { c.Viewer.MinZoom = 0 }},
		{"inverted zoom bounds", func(c *Config) { c.Viewer.MaxZoom = 0.05 }},
		{"zoom step below identity", func(c *Config) { c.Viewer.ZoomStep = 1.0 }},
		{"negative debounce", func(c *Config) { c.Viewer.RenderDebounce = -1 }},
		{"thumbnail scale above one", func(c *Config) { c.Viewer.ThumbnailScale = 1.5 }},
		{"zero print scale", func(c *Config) { c.Printing.RasterScale = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSchemaMentionsTopLevelSections(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	for _, section := range []string{"database", "viewer", "printing", "logging"} {
		assert.Contains(t, string(data), section)
	}
}
