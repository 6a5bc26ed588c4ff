package domain

import (
	"github.com/google/wire"

	"llm-evaluator/internal/config"
	"llm-evaluator/internal/domain/chat"
	"llm-evaluator/internal/domain/conversation"
	"llm-evaluator/internal/domain/model"
)

// ServiceProvider provides all domain services
var ServiceProvider = wire.NewSet(
	// Conversation domain
	conversation.NewConversationService,

	// Model domain
	model.NewModelService,
	ProvideProviderService,

	// Chat orchestration
	chat.NewDispatcher,
	chat.NewChatService,
)

func ProvideProviderService(
	providerRepo model.ProviderRepository,
	modelRepo model.ModelRepository,
	lister model.ModelLister,
	cfg *config.Config,
) *model.ProviderService {
	return model.NewProviderService(providerRepo, modelRepo, lister, cfg.ProviderSecret)
}
