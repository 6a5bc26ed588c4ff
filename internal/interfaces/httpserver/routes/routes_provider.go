package routes

import (
	"github.com/google/wire"

	"llm-evaluator/internal/interfaces/httpserver/handlers/chathandler"
	"llm-evaluator/internal/interfaces/httpserver/handlers/conversationhandler"
	"llm-evaluator/internal/interfaces/httpserver/handlers/modelhandler"
	"llm-evaluator/internal/interfaces/httpserver/routes/api"
)

var RouteProvider = wire.NewSet(
	// Handlers
	chathandler.NewChatHandler,
	conversationhandler.NewConversationHandler,
	modelhandler.NewProviderHandler,
	modelhandler.NewModelHandler,

	// Routes
	api.NewChatRoute,
	api.NewConversationRoute,
	api.NewModelRoute,
	api.NewApiRoute,
)
