package chat

// ChatRequest appends one user message and fans it out to the selected models.
// An empty conversation_id starts a new conversation.
type ChatRequest struct {
	ConversationID string   `json:"conversation_id"`
	ModelsToUse    []string `json:"models_to_use"`
	SystemPrompt   string   `json:"system_prompt"`
	Message        string   `json:"message"`
}

// EditRequest replaces a past user message, discards everything after it and
// regenerates from there.
type EditRequest struct {
	ConversationID string   `json:"conversation_id"`
	ModelsToUse    []string `json:"models_to_use"`
	MessageID      string   `json:"message_id"`
	NewContent     string   `json:"new_content"`
	SystemPrompt   string   `json:"system_prompt"`
}

// RegenerateRequest retries a single assistant message in place.
// conversation_id is optional; the message resolves it when absent.
type RegenerateRequest struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	SystemPrompt   string `json:"system_prompt"`
}
