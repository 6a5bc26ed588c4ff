package conversationhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"llm-evaluator/internal/domain/conversation"
	conversationrequests "llm-evaluator/internal/interfaces/httpserver/requests/conversation"
	"llm-evaluator/internal/interfaces/httpserver/responses"
	conversationresponses "llm-evaluator/internal/interfaces/httpserver/responses/conversation"
	"llm-evaluator/internal/utils/platformerrors"
)

// ConversationHandler handles conversation CRUD HTTP requests
type ConversationHandler struct {
	conversationService *conversation.ConversationService
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversationService *conversation.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// CreateConversation creates a new conversation
func (h *ConversationHandler) CreateConversation(reqCtx *gin.Context) {
	var req conversationrequests.CreateConversationRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation,
			"invalid conversation request body", "4e6a8c0d-2b4f-4d6a-8e8c-7f9b1d3a5c6e")
		return
	}

	conv, err := h.conversationService.CreateConversation(reqCtx.Request.Context(), conversation.CreateConversationInput{
		Title:        req.Title,
		SystemPrompt: req.SystemPrompt,
	})
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to create conversation")
		return
	}

	reqCtx.JSON(http.StatusCreated, conv)
}

// ListConversations returns all conversations, most recent first
func (h *ConversationHandler) ListConversations(reqCtx *gin.Context) {
	conversations, err := h.conversationService.ListConversations(reqCtx.Request.Context())
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to list conversations")
		return
	}

	reqCtx.JSON(http.StatusOK, conversations)
}

// GetConversation returns one conversation with its ordered messages
func (h *ConversationHandler) GetConversation(reqCtx *gin.Context) {
	conv, err := h.conversationService.GetConversation(reqCtx.Request.Context(), reqCtx.Param("id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to retrieve conversation")
		return
	}

	reqCtx.JSON(http.StatusOK, conv)
}

// DeleteConversation removes a conversation and everything under it
func (h *ConversationHandler) DeleteConversation(reqCtx *gin.Context) {
	publicID := reqCtx.Param("id")
	if err := h.conversationService.DeleteConversation(reqCtx.Request.Context(), publicID); err != nil {
		responses.HandleError(reqCtx, err, "failed to delete conversation")
		return
	}

	reqCtx.JSON(http.StatusOK, conversationresponses.DeleteConversationResponse{
		ID:      publicID,
		Deleted: true,
	})
}
