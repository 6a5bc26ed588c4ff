package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProviderBootstrapModel describes a model seeded alongside its provider.
type ProviderBootstrapModel struct {
	ModelID     string `yaml:"model_id"`
	DisplayName string `yaml:"display_name"`
	Reasoning   bool   `yaml:"reasoning"`
}

// ProviderBootstrapEntry describes one provider seeded at startup. When
// SyncModels is set the provider's /models listing is pulled in addition to
// the explicitly listed models.
type ProviderBootstrapEntry struct {
	Name       string                   `yaml:"name"`
	BaseURL    string                   `yaml:"base_url"`
	APIKey     string                   `yaml:"api_key"`
	SyncModels bool                     `yaml:"sync_models"`
	Models     []ProviderBootstrapModel `yaml:"models"`
}

// ProviderBootstrapConfig is the parsed PROVIDER_BOOTSTRAP_FILE contents.
type ProviderBootstrapConfig struct {
	Providers []ProviderBootstrapEntry `yaml:"providers"`
}

// LoadProviderBootstrapConfig reads and validates a provider bootstrap YAML file.
func LoadProviderBootstrapConfig(path string) (*ProviderBootstrapConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read provider bootstrap file: %w", err)
	}

	var cfg ProviderBootstrapConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse provider bootstrap file: %w", err)
	}

	for i, entry := range cfg.Providers {
		if entry.Name == "" {
			return nil, fmt.Errorf("provider bootstrap entry %d: name is required", i)
		}
		if entry.BaseURL == "" {
			return nil, fmt.Errorf("provider bootstrap entry %q: base_url is required", entry.Name)
		}
		for j, m := range entry.Models {
			if m.ModelID == "" {
				return nil, fmt.Errorf("provider %q model %d: model_id is required", entry.Name, j)
			}
		}
	}

	return &cfg, nil
}
