package modelrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"llm-evaluator/internal/domain/model"
	"llm-evaluator/internal/infrastructure/database/entities"
	"llm-evaluator/internal/utils/platformerrors"
)

// ProviderRepository is the gorm-backed provider store.
type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) Create(ctx context.Context, provider *model.Provider) error {
	entity := mapProviderToEntity(provider)
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create provider",
			err,
			"9b1d3f5a-7c2e-4a8d-b0f4-6e8a0c2d4f6b",
		)
	}
	provider.ID = entity.ID
	provider.CreatedAt = entity.CreatedAt
	provider.UpdatedAt = entity.UpdatedAt
	return nil
}

func (r *ProviderRepository) Update(ctx context.Context, provider *model.Provider) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Provider{}).
		Where("id = ?", provider.ID).
		Updates(map[string]any{
			"name":              provider.Name,
			"base_url":          provider.BaseURL,
			"encrypted_api_key": provider.EncryptedAPIKey,
			"api_key_hint":      provider.APIKeyHint,
			"last_synced_at":    provider.LastSyncedAt,
		}).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update provider",
			err,
			"3d5f7a9b-1e4c-4c6a-8b2d-0f4a6c8e0b3d",
		)
	}
	return nil
}

func (r *ProviderRepository) DeleteByID(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&entities.Provider{}, id).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete provider",
			err,
			"7f9b1d3a-5c6e-4e8a-9d0b-2f4c6a8e2b5d",
		)
	}
	return nil
}

func (r *ProviderRepository) FindByID(ctx context.Context, id uint) (*model.Provider, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *ProviderRepository) FindByPublicID(ctx context.Context, publicID string) (*model.Provider, error) {
	return r.findOne(ctx, "public_id = ?", publicID)
}

func (r *ProviderRepository) findOne(ctx context.Context, query string, arg any) (*model.Provider, error) {
	var entity entities.Provider
	err := r.db.WithContext(ctx).Where(query, arg).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"provider not found",
				err,
				"1b3d5f7a-9e0c-4a2e-8c4b-6d8f0a2c4e7b",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to load provider",
			err,
			"5d7f9b1a-3c4e-4c6a-9e8b-0d2f4a6c8e9b",
		)
	}
	provider := mapProvider(entity)
	return &provider, nil
}

func (r *ProviderRepository) List(ctx context.Context) ([]*model.Provider, error) {
	var rows []entities.Provider
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list providers",
			err,
			"9f1b3d5a-7e8c-4e0a-8b6d-4f6a8c0e2b1d",
		)
	}
	out := make([]*model.Provider, 0, len(rows))
	for _, row := range rows {
		provider := mapProvider(row)
		out = append(out, &provider)
	}
	return out, nil
}

func mapProvider(entity entities.Provider) model.Provider {
	return model.Provider{
		ID:              entity.ID,
		PublicID:        entity.PublicID,
		Name:            entity.Name,
		BaseURL:         entity.BaseURL,
		EncryptedAPIKey: entity.EncryptedAPIKey,
		APIKeyHint:      entity.APIKeyHint,
		LastSyncedAt:    entity.LastSyncedAt,
		CreatedAt:       entity.CreatedAt,
		UpdatedAt:       entity.UpdatedAt,
	}
}

func mapProviderToEntity(provider *model.Provider) entities.Provider {
	return entities.Provider{
		ID:              provider.ID,
		PublicID:        provider.PublicID,
		Name:            provider.Name,
		BaseURL:         provider.BaseURL,
		EncryptedAPIKey: provider.EncryptedAPIKey,
		APIKeyHint:      provider.APIKeyHint,
		LastSyncedAt:    provider.LastSyncedAt,
	}
}
