package model

import (
	"context"
	"strings"
	"time"

	"llm-evaluator/internal/utils/crypto"
	"llm-evaluator/internal/utils/idgen"
	"llm-evaluator/internal/utils/platformerrors"
)

// SyncedModel is one model reported by a provider's /models listing.
type SyncedModel struct {
	ModelID     string
	DisplayName string
}

// ModelLister pulls the model listing from a provider endpoint. Implemented
// by the inference layer; kept as an interface so the domain stays free of
// HTTP concerns.
type ModelLister interface {
	ListModels(ctx context.Context, provider *Provider) ([]SyncedModel, error)
}

// ProviderService handles provider CRUD, credential encryption and model sync.
type ProviderService struct {
	providerRepo ProviderRepository
	modelRepo    ModelRepository
	lister       ModelLister
	secret       string
}

// NewProviderService creates a new provider service. secret is the AES key
// used to encrypt provider credentials at rest.
func NewProviderService(
	providerRepo ProviderRepository,
	modelRepo ModelRepository,
	lister ModelLister,
	secret string,
) *ProviderService {
	return &ProviderService{
		providerRepo: providerRepo,
		modelRepo:    modelRepo,
		lister:       lister,
		secret:       secret,
	}
}

// CreateProviderInput carries caller-supplied provider fields. APIKey is the
// plaintext credential; it is encrypted before persistence and never echoed.
type CreateProviderInput struct {
	Name    string
	BaseURL string
	APIKey  string
}

// CreateProvider registers a provider endpoint.
func (s *ProviderService) CreateProvider(ctx context.Context, input CreateProviderInput) (*Provider, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"provider name is required", nil, "c2a4e6f8-0b1d-4c3e-9a5f-7e8d0c2b4a6e")
	}
	if strings.TrimSpace(input.BaseURL) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"provider base_url is required", nil, "e8f0a2c4-6d7e-4b9a-8c1f-3e5d7a9b0c2d")
	}

	publicID, err := idgen.GenerateSecureID("prov", 16)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate provider ID")
	}

	provider := &Provider{
		PublicID: publicID,
		Name:     strings.TrimSpace(input.Name),
		BaseURL:  strings.TrimRight(strings.TrimSpace(input.BaseURL), "/"),
	}

	if input.APIKey != "" {
		encrypted, err := crypto.EncryptString(s.secret, input.APIKey)
		if err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to encrypt API key")
		}
		provider.EncryptedAPIKey = encrypted
		hint := apiKeyHint(input.APIKey)
		provider.APIKeyHint = &hint
	}

	if err := s.providerRepo.Create(ctx, provider); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create provider")
	}
	return provider, nil
}

// GetProvider retrieves a provider by public ID.
func (s *ProviderService) GetProvider(ctx context.Context, publicID string) (*Provider, error) {
	provider, err := s.providerRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "provider not found")
	}
	return provider, nil
}

// ListProviders returns all registered providers.
func (s *ProviderService) ListProviders(ctx context.Context) ([]*Provider, error) {
	providers, err := s.providerRepo.List(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list providers")
	}
	return providers, nil
}

// DeleteProvider removes a provider and its models.
func (s *ProviderService) DeleteProvider(ctx context.Context, publicID string) error {
	provider, err := s.providerRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "provider not found")
	}
	if err := s.providerRepo.DeleteByID(ctx, provider.ID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete provider")
	}
	return nil
}

// SyncModels pulls the provider's /models listing and registers models the
// evaluator has not seen yet. Existing models are left untouched so manual
// renames and toggles survive a sync. Returns the number of models added.
func (s *ProviderService) SyncModels(ctx context.Context, providerPublicID string) (int, error) {
	provider, err := s.providerRepo.FindByPublicID(ctx, providerPublicID)
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "provider not found")
	}

	listed, err := s.lister.ListModels(ctx, provider)
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to fetch models from provider")
	}

	existing, err := s.modelRepo.FindByFilter(ctx, ModelFilter{ProviderID: &provider.ID})
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load existing models")
	}
	known := make(map[string]bool, len(existing))
	for _, m := range existing {
		known[m.ModelID] = true
	}

	added := 0
	for _, lm := range listed {
		if lm.ModelID == "" || known[lm.ModelID] {
			continue
		}
		publicID, err := idgen.GenerateSecureID("model", 16)
		if err != nil {
			return added, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate model ID")
		}
		displayName := lm.DisplayName
		if displayName == "" {
			displayName = lm.ModelID
		}
		m := &Model{
			PublicID:    publicID,
			ProviderID:  provider.ID,
			ModelID:     lm.ModelID,
			DisplayName: displayName,
			Enabled:     true,
		}
		if err := s.modelRepo.Create(ctx, m); err != nil {
			return added, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create synced model")
		}
		known[lm.ModelID] = true
		added++
	}

	now := time.Now()
	provider.LastSyncedAt = &now
	if err := s.providerRepo.Update(ctx, provider); err != nil {
		return added, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to record sync time")
	}

	return added, nil
}

func apiKeyHint(apiKey string) string {
	if len(apiKey) <= 4 {
		return strings.Repeat("*", len(apiKey))
	}
	return "..." + apiKey[len(apiKey)-4:]
}
