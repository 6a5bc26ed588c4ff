package model

import (
	"context"
	"time"
)

// Provider is one OpenAI-compatible endpoint the evaluator can dispatch to.
// The credential is encrypted at rest and decrypted in memory only when a
// call is issued.
type Provider struct {
	ID              uint       `json:"-"`
	PublicID        string     `json:"id"`
	Name            string     `json:"name"`
	BaseURL         string     `json:"base_url"`
	EncryptedAPIKey string     `json:"-"`
	APIKeyHint      *string    `json:"api_key_hint,omitempty"`
	LastSyncedAt    *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ProviderRepository abstracts persistence for providers.
type ProviderRepository interface {
	Create(ctx context.Context, provider *Provider) error
	Update(ctx context.Context, provider *Provider) error
	DeleteByID(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*Provider, error)
	FindByPublicID(ctx context.Context, publicID string) (*Provider, error)
	List(ctx context.Context) ([]*Provider, error)
}
