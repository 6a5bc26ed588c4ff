package infrastructure

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"resty.dev/v3"

	"llm-evaluator/internal/config"
	"llm-evaluator/internal/domain/chat"
	"llm-evaluator/internal/domain/conversation"
	"llm-evaluator/internal/domain/model"
	"llm-evaluator/internal/infrastructure/crontab"
	"llm-evaluator/internal/infrastructure/database"
	"llm-evaluator/internal/infrastructure/inference"
	"llm-evaluator/internal/infrastructure/logger"
	"llm-evaluator/internal/infrastructure/metrics"
	"llm-evaluator/internal/infrastructure/repository/conversationrepo"
	"llm-evaluator/internal/infrastructure/repository/modelrepo"
	"llm-evaluator/internal/utils/httpclients"
)

// ProvideConfig loads and provides the application configuration
func ProvideConfig() (*config.Config, error) {
	return config.Load()
}

// ProvideDatabase provides a database connection
func ProvideDatabase(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Run migrations if AUTO_MIGRATE is enabled
	if cfg.AutoMigrate {
		log.Info().Msg("Running database migrations...")
		if err := database.AutoMigrate(context.Background(), db, log); err != nil {
			log.Error().Err(err).Msg("Failed to run database migrations")
			return nil, err
		}
	}

	return db, nil
}

// ProvideRestyClient provides the shared outbound HTTP client
func ProvideRestyClient() *resty.Client {
	return httpclients.NewClient("inference")
}

// ProvideInferenceProvider wires the provider-facing completion adapter
func ProvideInferenceProvider(
	providerRepo model.ProviderRepository,
	client *resty.Client,
	cfg *config.Config,
) *inference.InferenceProvider {
	return inference.NewInferenceProvider(providerRepo, client, cfg.ProviderSecret, cfg.ProviderTimeout)
}

// Infrastructure holds all infrastructure dependencies
type Infrastructure struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// NewInfrastructure creates a new infrastructure instance
func NewInfrastructure(db *gorm.DB, logger zerolog.Logger) *Infrastructure {
	return &Infrastructure{
		DB:     db,
		Logger: logger,
	}
}

// InfrastructureProvider provides all infrastructure dependencies
var InfrastructureProvider = wire.NewSet(
	// Config
	ProvideConfig,

	// Database
	ProvideDatabase,

	// Repositories
	conversationrepo.NewRepository,
	wire.Bind(new(conversation.Repository), new(*conversationrepo.Repository)),
	modelrepo.NewProviderRepository,
	wire.Bind(new(model.ProviderRepository), new(*modelrepo.ProviderRepository)),
	modelrepo.NewModelRepository,
	wire.Bind(new(model.ModelRepository), new(*modelrepo.ModelRepository)),

	// Inference adapter
	ProvideRestyClient,
	ProvideInferenceProvider,
	wire.Bind(new(chat.CompletionGateway), new(*inference.InferenceProvider)),
	wire.Bind(new(model.ModelLister), new(*inference.InferenceProvider)),

	// Metrics
	metrics.NewChatRecorder,
	wire.Bind(new(chat.Recorder), new(*metrics.ChatRecorder)),

	// Logger
	logger.GetLogger,

	// Crontab for model sync
	crontab.NewCrontab,

	// Infrastructure struct
	NewInfrastructure,
)
