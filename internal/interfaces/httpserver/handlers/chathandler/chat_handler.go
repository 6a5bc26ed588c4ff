package chathandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"llm-evaluator/internal/domain/chat"
	chatrequests "llm-evaluator/internal/interfaces/httpserver/requests/chat"
	"llm-evaluator/internal/interfaces/httpserver/responses"
	chatresponses "llm-evaluator/internal/interfaces/httpserver/responses/chat"
	"llm-evaluator/internal/utils/platformerrors"
)

// ChatHandler handles chat mutation HTTP requests
type ChatHandler struct {
	chatService *chat.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *chat.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Append fans one user message out to the selected models and commits the
// resulting turns.
func (h *ChatHandler) Append(reqCtx *gin.Context) {
	var req chatrequests.ChatRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation,
			"invalid chat request body", "b2e4a6c8-0d2f-4a4c-8e6b-1d3f5a7c9e0b")
		return
	}

	result, err := h.chatService.Append(reqCtx.Request.Context(), chat.AppendInput{
		ConversationPublicID: req.ConversationID,
		ModelPublicIDs:       req.ModelsToUse,
		SystemPrompt:         req.SystemPrompt,
		Message:              req.Message,
	})
	if err != nil {
		responses.HandleError(reqCtx, err, "chat request failed")
		return
	}

	reqCtx.JSON(http.StatusOK, chatresponses.NewChatResponse(result))
}

// Edit rewrites a past user message, truncates everything after it and
// regenerates from there.
func (h *ChatHandler) Edit(reqCtx *gin.Context) {
	var req chatrequests.EditRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation,
			"invalid edit request body", "6a8c0e2d-4f6b-4c8e-9a0d-3b5d7f9a1c2e")
		return
	}

	result, err := h.chatService.Edit(reqCtx.Request.Context(), chat.EditInput{
		ConversationPublicID: req.ConversationID,
		ModelPublicIDs:       req.ModelsToUse,
		MessagePublicID:      req.MessageID,
		NewContent:           req.NewContent,
		SystemPrompt:         req.SystemPrompt,
	})
	if err != nil {
		responses.HandleError(reqCtx, err, "edit request failed")
		return
	}

	reqCtx.JSON(http.StatusOK, chatresponses.NewChatResponse(result))
}

// Regenerate retries one assistant message in place without touching the
// rest of the timeline.
func (h *ChatHandler) Regenerate(reqCtx *gin.Context) {
	var req chatrequests.RegenerateRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation,
			"invalid regenerate request body", "0c2e4a6d-8f0b-4e0a-8c2d-5b7d9f1a3c4e")
		return
	}

	result, err := h.chatService.Regenerate(reqCtx.Request.Context(), chat.RegenerateInput{
		ConversationPublicID: req.ConversationID,
		MessagePublicID:      req.MessageID,
		SystemPrompt:         req.SystemPrompt,
	})
	if err != nil {
		responses.HandleError(reqCtx, err, "regenerate request failed")
		return
	}

	reqCtx.JSON(http.StatusOK, chatresponses.NewChatResponse(result))
}
