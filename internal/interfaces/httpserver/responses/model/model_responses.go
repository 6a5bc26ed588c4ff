package model

// DeleteResponse confirms a provider or model deletion.
type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// SyncResponse reports one sync run.
type SyncResponse struct {
	ProviderID  string `json:"provider_id"`
	ModelsAdded int    `json:"models_added"`
}
