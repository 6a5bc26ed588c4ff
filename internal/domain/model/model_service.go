package model

import (
	"context"
	"strings"

	"llm-evaluator/internal/utils/idgen"
	"llm-evaluator/internal/utils/platformerrors"
)

// ModelService handles manual model registration and toggling. Models added
// by sync go through ProviderService instead.
type ModelService struct {
	modelRepo    ModelRepository
	providerRepo ProviderRepository
}

// NewModelService creates a new model service
func NewModelService(modelRepo ModelRepository, providerRepo ProviderRepository) *ModelService {
	return &ModelService{modelRepo: modelRepo, providerRepo: providerRepo}
}

// CreateModelInput carries caller-supplied model fields. ProviderPublicID
// must reference an existing provider.
type CreateModelInput struct {
	ProviderPublicID string
	ModelID          string
	DisplayName      string
	Reasoning        bool
}

// CreateModel registers a model under a provider.
func (s *ModelService) CreateModel(ctx context.Context, input CreateModelInput) (*Model, error) {
	if strings.TrimSpace(input.ModelID) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"model_id is required", nil, "7d3f9a1b-2c4e-4d6a-8b0f-5e9c1a3d7b2f")
	}

	provider, err := s.providerRepo.FindByPublicID(ctx, input.ProviderPublicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "provider not found")
	}

	existing, err := s.modelRepo.FindByFilter(ctx, ModelFilter{ProviderID: &provider.ID, ModelID: &input.ModelID})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to check existing models")
	}
	if len(existing) > 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			"model already registered for this provider", nil, "1e5a7c9d-3b6f-4a8e-9d2c-0f4b6e8a1c3d")
	}

	publicID, err := idgen.GenerateSecureID("model", 16)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate model ID")
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = input.ModelID
	}

	m := &Model{
		PublicID:    publicID,
		ProviderID:  provider.ID,
		ModelID:     strings.TrimSpace(input.ModelID),
		DisplayName: displayName,
		Reasoning:   input.Reasoning,
		Enabled:     true,
	}
	if err := s.modelRepo.Create(ctx, m); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create model")
	}
	return m, nil
}

// GetModel retrieves a model by public ID.
func (s *ModelService) GetModel(ctx context.Context, publicID string) (*Model, error) {
	m, err := s.modelRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "model not found")
	}
	return m, nil
}

// ListModels returns models, optionally restricted to enabled ones.
func (s *ModelService) ListModels(ctx context.Context, enabledOnly bool) ([]*Model, error) {
	filter := ModelFilter{}
	if enabledOnly {
		enabled := true
		filter.Enabled = &enabled
	}
	models, err := s.modelRepo.FindByFilter(ctx, filter)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list models")
	}
	return models, nil
}

// SetEnabled toggles whether a model can be selected for evaluation runs.
func (s *ModelService) SetEnabled(ctx context.Context, publicID string, enabled bool) (*Model, error) {
	m, err := s.modelRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "model not found")
	}
	if m.Enabled == enabled {
		return m, nil
	}
	m.Enabled = enabled
	if err := s.modelRepo.Update(ctx, m); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update model")
	}
	return m, nil
}

// DeleteModel removes a model registration.
func (s *ModelService) DeleteModel(ctx context.Context, publicID string) error {
	m, err := s.modelRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "model not found")
	}
	if err := s.modelRepo.DeleteByID(ctx, m.ID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete model")
	}
	return nil
}
