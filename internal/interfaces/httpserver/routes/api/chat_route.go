package api

import (
	"github.com/gin-gonic/gin"

	"llm-evaluator/internal/interfaces/httpserver/handlers/chathandler"
)

type ChatRoute struct {
	handler *chathandler.ChatHandler
}

func NewChatRoute(handler *chathandler.ChatHandler) *ChatRoute {
	return &ChatRoute{handler: handler}
}

func (chatRoute *ChatRoute) RegisterRouter(router gin.IRouter) {
	chatRouter := router.Group("/chat")
	chatRouter.POST("", chatRoute.handler.Append)
	chatRouter.POST("/edit", chatRoute.handler.Edit)
	chatRouter.POST("/regenerate", chatRoute.handler.Regenerate)
}
