package model

import (
	"context"
	"time"
)

// Model is one selectable model under a provider. ModelID is the identifier
// the provider API expects (e.g. "gpt-4-turbo"); DisplayName is what the UI
// shows. Read-only to the orchestrator.
type Model struct {
	ID          uint      `json:"-"`
	PublicID    string    `json:"id"`
	ProviderID  uint      `json:"-"`
	ModelID     string    `json:"model_id"`
	DisplayName string    `json:"name"`
	Reasoning   bool      `json:"is_reasoning"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ModelFilter defines optional conditions for querying models.
type ModelFilter struct {
	ProviderID *uint
	ModelID    *string
	Enabled    *bool
}

// ModelRepository abstracts persistence for models.
type ModelRepository interface {
	Create(ctx context.Context, model *Model) error
	Update(ctx context.Context, model *Model) error
	DeleteByID(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*Model, error)
	FindByPublicID(ctx context.Context, publicID string) (*Model, error)
	FindByFilter(ctx context.Context, filter ModelFilter) ([]*Model, error)
	List(ctx context.Context) ([]*Model, error)
}
