package conversation

// CreateConversationRequest carries the optional initial fields; both default
// server-side when empty.
type CreateConversationRequest struct {
	Title        string `json:"title"`
	SystemPrompt string `json:"system_prompt"`
}
