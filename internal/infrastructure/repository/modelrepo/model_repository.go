package modelrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"llm-evaluator/internal/domain/model"
	"llm-evaluator/internal/infrastructure/database/entities"
	"llm-evaluator/internal/utils/platformerrors"
)

// ModelRepository is the gorm-backed model store.
type ModelRepository struct {
	db *gorm.DB
}

func NewModelRepository(db *gorm.DB) *ModelRepository {
	return &ModelRepository{db: db}
}

func (r *ModelRepository) Create(ctx context.Context, m *model.Model) error {
	entity := mapModelToEntity(m)
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create model",
			err,
			"2c4e6a8b-0d1f-4b3d-9a5c-7e9b1d3f5a8c",
		)
	}
	m.ID = entity.ID
	m.CreatedAt = entity.CreatedAt
	m.UpdatedAt = entity.UpdatedAt
	return nil
}

func (r *ModelRepository) Update(ctx context.Context, m *model.Model) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Model{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"model_id":     m.ModelID,
			"display_name": m.DisplayName,
			"reasoning":    m.Reasoning,
			"enabled":      m.Enabled,
		}).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update model",
			err,
			"6e8a0c2b-4d5f-4d7a-8b9c-1f3d5b7a9c0e",
		)
	}
	return nil
}

func (r *ModelRepository) DeleteByID(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&entities.Model{}, id).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete model",
			err,
			"0a2c4e6b-8d9f-4f1a-9c3d-5b7f9d1b3e6c",
		)
	}
	return nil
}

func (r *ModelRepository) FindByID(ctx context.Context, id uint) (*model.Model, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *ModelRepository) FindByPublicID(ctx context.Context, publicID string) (*model.Model, error) {
	return r.findOne(ctx, "public_id = ?", publicID)
}

func (r *ModelRepository) findOne(ctx context.Context, query string, arg any) (*model.Model, error) {
	var entity entities.Model
	err := r.db.WithContext(ctx).Where(query, arg).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"model not found",
				err,
				"4c6e8a0b-2d3f-4b5d-8a7c-9e1f3d5b7a1c",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to load model",
			err,
			"8e0a2c4b-6d7f-4d9a-9c1b-3f5d7b9d1a4c",
		)
	}
	m := mapModel(entity)
	return &m, nil
}

func (r *ModelRepository) FindByFilter(ctx context.Context, filter model.ModelFilter) ([]*model.Model, error) {
	query := r.db.WithContext(ctx).Model(&entities.Model{})
	if filter.ProviderID != nil {
		query = query.Where("provider_id = ?", *filter.ProviderID)
	}
	if filter.ModelID != nil {
		query = query.Where("model_id = ?", *filter.ModelID)
	}
	if filter.Enabled != nil {
		query = query.Where("enabled = ?", *filter.Enabled)
	}

	var rows []entities.Model
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to query models",
			err,
			"2a4c6e8b-0f1d-4f3b-8d5a-7c9e1b3f5d7a",
		)
	}
	out := make([]*model.Model, 0, len(rows))
	for _, row := range rows {
		m := mapModel(row)
		out = append(out, &m)
	}
	return out, nil
}

func (r *ModelRepository) List(ctx context.Context) ([]*model.Model, error) {
	return r.FindByFilter(ctx, model.ModelFilter{})
}

func mapModel(entity entities.Model) model.Model {
	return model.Model{
		ID:          entity.ID,
		PublicID:    entity.PublicID,
		ProviderID:  entity.ProviderID,
		ModelID:     entity.ModelID,
		DisplayName: entity.DisplayName,
		Reasoning:   entity.Reasoning,
		Enabled:     entity.Enabled,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}

func mapModelToEntity(m *model.Model) entities.Model {
	return entities.Model{
		ID:          m.ID,
		PublicID:    m.PublicID,
		ProviderID:  m.ProviderID,
		ModelID:     m.ModelID,
		DisplayName: m.DisplayName,
		Reasoning:   m.Reasoning,
		Enabled:     m.Enabled,
	}
}
