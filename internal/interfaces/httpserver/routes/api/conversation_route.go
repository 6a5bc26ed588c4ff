package api

import (
	"github.com/gin-gonic/gin"

	"llm-evaluator/internal/interfaces/httpserver/handlers/conversationhandler"
)

type ConversationRoute struct {
	handler *conversationhandler.ConversationHandler
}

func NewConversationRoute(handler *conversationhandler.ConversationHandler) *ConversationRoute {
	return &ConversationRoute{handler: handler}
}

func (convRoute *ConversationRoute) RegisterRouter(router gin.IRouter) {
	convRouter := router.Group("/conversations")
	convRouter.POST("", convRoute.handler.CreateConversation)
	convRouter.GET("", convRoute.handler.ListConversations)
	convRouter.GET("/:id", convRoute.handler.GetConversation)
	convRouter.DELETE("/:id", convRoute.handler.DeleteConversation)
}
