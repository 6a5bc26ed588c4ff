package conversation

// DeleteConversationResponse confirms a deletion.
type DeleteConversationResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
