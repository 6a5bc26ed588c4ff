package models

// CreateProviderRequest registers an OpenAI-compatible endpoint. The api_key
// is encrypted at rest and never echoed back.
type CreateProviderRequest struct {
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
}

// CreateModelRequest registers a model under a provider.
type CreateModelRequest struct {
	ProviderID  string `json:"provider_id"`
	ModelID     string `json:"model_id"`
	Name        string `json:"name"`
	IsReasoning bool   `json:"is_reasoning"`
}

// ToggleModelRequest flips whether a model can be selected.
type ToggleModelRequest struct {
	Enabled bool `json:"enabled"`
}
