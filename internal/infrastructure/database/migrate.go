package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"llm-evaluator/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Provider{},
		&entities.Model{},
		&entities.Conversation{},
		&entities.Message{},
		&entities.GenerationMetadata{},
	); err != nil {
		return err
	}
	log.Info().Msg("applied evaluator schema migrations")
	return nil
}
