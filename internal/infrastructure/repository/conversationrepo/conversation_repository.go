package conversationrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"llm-evaluator/internal/domain/conversation"
	"llm-evaluator/internal/infrastructure/database/entities"
	"llm-evaluator/internal/utils/functional"
	"llm-evaluator/internal/utils/platformerrors"
)

// Repository is the gorm-backed conversation store. Multi-row mutations run
// in one transaction so the stored sequence is never half-applied.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, conv *conversation.Conversation) error {
	entity := entities.Conversation{
		PublicID:     conv.PublicID,
		Title:        conv.Title,
		SystemPrompt: conv.SystemPrompt,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create conversation",
			err,
			"6f2a8d4c-1e9b-4f3a-8c5d-7b0e2f4a6c8d",
		)
	}
	conv.ID = entity.ID
	conv.CreatedAt = entity.CreatedAt
	conv.UpdatedAt = entity.UpdatedAt
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*conversation.Conversation, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	return r.findOne(ctx, "public_id = ?", publicID)
}

func (r *Repository) findOne(ctx context.Context, query string, arg any) (*conversation.Conversation, error) {
	var entity entities.Conversation
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_number ASC")
		}).
		Preload("Messages.Metadata").
		Where(query, arg).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"conversation not found",
				err,
				"8a4c6e2d-3f1b-4d7a-9e5c-0b2d4f6a8c1e",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to load conversation",
			err,
			"2e6a8c0d-5f7b-4a9e-8d1c-3b5d7f9a0c2e",
		)
	}
	conv := mapConversation(entity)
	return &conv, nil
}

func (r *Repository) List(ctx context.Context) ([]*conversation.Conversation, error) {
	var rows []entities.Conversation
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list conversations",
			err,
			"4a8c2e6d-7f9b-4c1a-8e3d-5b7d9f1a3c5e",
		)
	}
	return functional.Map(rows, func(row entities.Conversation) *conversation.Conversation {
		conv := mapConversation(row)
		return &conv
	}), nil
}

func (r *Repository) Update(ctx context.Context, conv *conversation.Conversation) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", conv.ID).
		Updates(map[string]any{
			"title":         conv.Title,
			"system_prompt": conv.SystemPrompt,
		}).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update conversation",
			err,
			"0c4e6a8d-9f1b-4e3a-8c5d-7b9d1f3a5c7e",
		)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&entities.Conversation{}, id).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete conversation",
			err,
			"6e8a0c2d-1f3b-4a5e-9c7d-8b0d2f4a6c9e",
		)
	}
	return nil
}

func (r *Repository) AppendMessages(ctx context.Context, conversationID uint, messages []*conversation.Message) error {
	if len(messages) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextSequence(tx, conversationID)
		if err != nil {
			return err
		}
		return insertMessages(tx, conversationID, next, messages)
	})
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to append messages",
			err,
			"2a4c6e8d-3b5f-4d7a-8e9c-0d2f4a6b8c0e",
		)
	}
	return r.touch(ctx, conversationID)
}

func (r *Repository) ReplaceFrom(ctx context.Context, conversationID uint, fromSequence int, messages []*conversation.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doomed []entities.Message
		if err := tx.Where("conversation_id = ? AND sequence_number >= ?", conversationID, fromSequence).
			Find(&doomed).Error; err != nil {
			return err
		}
		if len(doomed) > 0 {
			ids := functional.Map(doomed, func(m entities.Message) uint { return m.ID })
			if err := tx.Where("message_id IN ?", ids).Delete(&entities.GenerationMetadata{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", ids).Delete(&entities.Message{}).Error; err != nil {
				return err
			}
		}
		return insertMessages(tx, conversationID, fromSequence, messages)
	})
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to replace messages",
			err,
			"8c0e2a4d-5f7b-4e9a-8d1c-2b4d6f8a0c3e",
		)
	}
	return r.touch(ctx, conversationID)
}

func (r *Repository) UpdateMessage(ctx context.Context, msg *conversation.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entity entities.Message
		if err := tx.Where("public_id = ?", msg.PublicID).First(&entity).Error; err != nil {
			return err
		}
		if err := tx.Model(&entities.Message{}).
			Where("id = ?", entity.ID).
			Update("content", msg.Content).Error; err != nil {
			return err
		}
		if err := tx.Where("message_id = ?", entity.ID).Delete(&entities.GenerationMetadata{}).Error; err != nil {
			return err
		}
		for _, meta := range msg.Metadata {
			row := mapMetadataToEntity(entity.ID, meta)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"message not found",
				err,
				"4e6a8c0d-7b9f-4a1e-8c3d-6f8b0d2a4c6e",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update message",
			err,
			"0a2c4e6d-9f1b-4c3a-8e5d-4b6d8f0a2c4e",
		)
	}
	return nil
}

func (r *Repository) FindMessageByPublicID(ctx context.Context, publicID string) (*conversation.Message, error) {
	var entity entities.Message
	err := r.db.WithContext(ctx).
		Preload("Metadata").
		Where("public_id = ?", publicID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"message not found",
				err,
				"6c8e0a2d-3f5b-4e7a-9c1d-0b2d4f6a8c2e",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to load message",
			err,
			"2e4a6c8d-1b3f-4d5a-8e7c-6f8b0d2a4c8e",
		)
	}
	msg := mapMessage(entity)
	return &msg, nil
}

func (r *Repository) touch(ctx context.Context, conversationID uint) error {
	return r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", gorm.Expr("NOW()")).Error
}

func nextSequence(tx *gorm.DB, conversationID uint) (int, error) {
	var count int64
	if err := tx.Model(&entities.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func insertMessages(tx *gorm.DB, conversationID uint, startSequence int, messages []*conversation.Message) error {
	seq := startSequence
	for _, msg := range messages {
		entity := entities.Message{
			PublicID:       msg.PublicID,
			ConversationID: conversationID,
			Role:           string(msg.Role),
			Content:        msg.Content,
			SequenceNumber: seq,
		}
		for _, meta := range msg.Metadata {
			entity.Metadata = append(entity.Metadata, mapMetadataToEntity(0, meta))
		}
		if err := tx.Create(&entity).Error; err != nil {
			return err
		}
		msg.ID = entity.ID
		msg.ConversationID = conversationID
		msg.SequenceNumber = seq
		seq++
	}
	return nil
}

func mapConversation(entity entities.Conversation) conversation.Conversation {
	conv := conversation.Conversation{
		ID:           entity.ID,
		PublicID:     entity.PublicID,
		Title:        entity.Title,
		SystemPrompt: entity.SystemPrompt,
		CreatedAt:    entity.CreatedAt,
		UpdatedAt:    entity.UpdatedAt,
	}
	for _, m := range entity.Messages {
		conv.Messages = append(conv.Messages, mapMessage(m))
	}
	return conv
}

func mapMessage(entity entities.Message) conversation.Message {
	msg := conversation.Message{
		ID:             entity.ID,
		PublicID:       entity.PublicID,
		ConversationID: entity.ConversationID,
		Role:           conversation.Role(entity.Role),
		Content:        entity.Content,
		SequenceNumber: entity.SequenceNumber,
		CreatedAt:      entity.CreatedAt,
	}
	for _, meta := range entity.Metadata {
		msg.Metadata = append(msg.Metadata, conversation.GenerationMetadata{
			ModelPublicID:     meta.ModelPublicID,
			TimeToFirstToken:  meta.TimeToFirstToken,
			TokensPerSecond:   meta.TokensPerSecond,
			OutputTokens:      meta.OutputTokens,
			InputTokens:       meta.InputTokens,
			CachedInputTokens: meta.CachedInputTokens,
		})
	}
	return msg
}

func mapMetadataToEntity(messageID uint, meta conversation.GenerationMetadata) entities.GenerationMetadata {
	return entities.GenerationMetadata{
		MessageID:         messageID,
		ModelPublicID:     meta.ModelPublicID,
		TimeToFirstToken:  meta.TimeToFirstToken,
		TokensPerSecond:   meta.TokensPerSecond,
		OutputTokens:      meta.OutputTokens,
		InputTokens:       meta.InputTokens,
		CachedInputTokens: meta.CachedInputTokens,
	}
}
