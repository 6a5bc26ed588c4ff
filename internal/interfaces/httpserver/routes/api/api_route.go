package api

import (
	"github.com/gin-gonic/gin"
)

// ApiRoute groups every endpoint under the /api prefix.
type ApiRoute struct {
	chat         *ChatRoute
	conversation *ConversationRoute
	model        *ModelRoute
}

func NewApiRoute(
	chat *ChatRoute,
	conversation *ConversationRoute,
	model *ModelRoute,
) *ApiRoute {
	return &ApiRoute{
		chat:         chat,
		conversation: conversation,
		model:        model,
	}
}

func (apiRoute *ApiRoute) RegisterRouter(router gin.IRouter) {
	apiRouter := router.Group("/api")
	apiRoute.chat.RegisterRouter(apiRouter)
	apiRoute.conversation.RegisterRouter(apiRouter)
	apiRoute.model.RegisterRouter(apiRouter)
}
