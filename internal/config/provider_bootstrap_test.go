package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBootstrapFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadProviderBootstrapConfig(t *testing.T) {
	path := writeBootstrapFile(t, `
providers:
  - name: openai
    base_url: https://api.openai.com/v1
    api_key: sk-test
    sync_models: true
    models:
      - model_id: gpt-4-turbo
        display_name: GPT-4 Turbo
      - model_id: o3-mini
        reasoning: true
`)

	cfg, err := LoadProviderBootstrapConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 1)

	entry := cfg.Providers[0]
	assert.Equal(t, "openai", entry.Name)
	assert.True(t, entry.SyncModels)
	require.Len(t, entry.Models, 2)
	assert.Equal(t, "GPT-4 Turbo", entry.Models[0].DisplayName)
	assert.True(t, entry.Models[1].Reasoning)
}

func TestLoadProviderBootstrapConfigRejectsMissingFields(t *testing.T) {
	path := writeBootstrapFile(t, `
providers:
  - base_url: https://api.openai.com/v1
`)
	_, err := LoadProviderBootstrapConfig(path)
	assert.ErrorContains(t, err, "name is required")

	path = writeBootstrapFile(t, `
providers:
  - name: openai
    base_url: https://api.openai.com/v1
    models:
      - display_name: unnamed
`)
	_, err = LoadProviderBootstrapConfig(path)
	assert.ErrorContains(t, err, "model_id is required")
}
