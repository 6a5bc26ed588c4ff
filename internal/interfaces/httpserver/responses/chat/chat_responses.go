package chat

import (
	"llm-evaluator/internal/domain/chat"
	"llm-evaluator/internal/domain/conversation"
)

// ChatResponse is the committed state after a chat mutation. Messages are the
// full post-mutation timeline in order; failures list the selected models
// that produced no turn.
type ChatResponse struct {
	ConversationID string                 `json:"conversation_id"`
	Title          string                 `json:"title"`
	SystemPrompt   string                 `json:"system_prompt"`
	Messages       []conversation.Message `json:"messages"`
	Failures       []chat.ModelFailure    `json:"failures,omitempty"`
}

func NewChatResponse(result *chat.MutationResult) ChatResponse {
	return ChatResponse{
		ConversationID: result.Conversation.PublicID,
		Title:          result.Conversation.Title,
		SystemPrompt:   result.Conversation.SystemPrompt,
		Messages:       result.Conversation.Messages,
		Failures:       result.Failures,
	}
}
