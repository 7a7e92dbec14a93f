package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edgeguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 2*time.Second, cfg.PollInterval.Std())
	assert.Equal(t, 0.01, cfg.Contamination)
	assert.Equal(t, 10, cfg.MaxCategories)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
core_data_url: http://core-data:59880/api/v3
poll_interval: 500ms
event_limit: 20
max_categories: 5
contamination: 0.05
store_path: /var/lib/edgeguard/results.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://core-data:59880/api/v3", cfg.CoreDataURL)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval.Std())
	assert.Equal(t, 20, cfg.EventLimit)
	assert.Equal(t, 5, cfg.MaxCategories)
	assert.Equal(t, 0.05, cfg.Contamination)
	assert.Equal(t, "/var/lib/edgeguard/results.db", cfg.StorePath)
	// Untouched keys keep their defaults.
	assert.Equal(t, 100, cfg.Trees)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad yaml", content: "core_data_url: [broken"},
		{name: "bad duration", content: "poll_interval: soon"},
		{name: "bad contamination", content: "contamination: 1.5"},
		{name: "bad limit", content: "event_limit: -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
