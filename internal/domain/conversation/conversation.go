package conversation

import (
	"context"
	"time"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// GenerationMetadata records per-model timing and token accounting for one
// assistant turn. Created once per successful model response; replaced
// wholesale on regenerate, never merged.
type GenerationMetadata struct {
	ModelPublicID     string  `json:"model_id"`
	TimeToFirstToken  float64 `json:"time_to_first_token"`
	TokensPerSecond   float64 `json:"tokens_per_second"`
	OutputTokens      int     `json:"output_tokens"`
	InputTokens       *int    `json:"input_tokens,omitempty"`
	CachedInputTokens *int    `json:"cached_input_tokens,omitempty"`
}

// Message is one turn in a conversation. User messages never carry
// generation metadata; assistant messages carry at most one entry per model
// that answered at that turn.
type Message struct {
	ID             uint                 `json:"-"`
	PublicID       string               `json:"id"`
	ConversationID uint                 `json:"-"`
	Role           Role                 `json:"role"`
	Content        string               `json:"content"`
	SequenceNumber int                  `json:"-"`
	Metadata       []GenerationMetadata `json:"generation_metadata,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// Conversation is an ordered, linear message timeline with a mutable
// conversation-scoped system prompt. Message order is the order turns
// occurred; positions are stable except for truncation on edit.
type Conversation struct {
	ID           uint      `json:"-"`
	PublicID     string    `json:"id"`
	Title        string    `json:"title"`
	SystemPrompt string    `json:"system_prompt"`
	Messages     []Message `json:"messages,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MessageAt returns the message with the given public ID and its index in
// the sequence, or nil when absent.
func (c *Conversation) MessageAt(publicID string) (*Message, int) {
	for i := range c.Messages {
		if c.Messages[i].PublicID == publicID {
			return &c.Messages[i], i
		}
	}
	return nil, -1
}

// Repository abstracts conversation and message persistence. Mutating
// operations that touch multiple rows are atomic: the stored sequence is
// never observable in a half-applied state.
type Repository interface {
	Create(ctx context.Context, conv *Conversation) error
	FindByID(ctx context.Context, id uint) (*Conversation, error)
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	List(ctx context.Context) ([]*Conversation, error)
	Update(ctx context.Context, conv *Conversation) error
	Delete(ctx context.Context, id uint) error

	// AppendMessages appends messages to the end of the sequence.
	AppendMessages(ctx context.Context, conversationID uint, messages []*Message) error
	// ReplaceFrom discards every message at sequence >= fromSequence and
	// appends the replacement messages starting at fromSequence.
	ReplaceFrom(ctx context.Context, conversationID uint, fromSequence int, messages []*Message) error
	// UpdateMessage rewrites one message's content and replaces its
	// metadata set in place, keeping position and identity.
	UpdateMessage(ctx context.Context, msg *Message) error
	// FindMessageByPublicID resolves a message without knowing its
	// conversation up front.
	FindMessageByPublicID(ctx context.Context, publicID string) (*Message, error)
}

// NewConversation creates a conversation with the given parameters.
func NewConversation(publicID, title, systemPrompt string) *Conversation {
	now := time.Now()
	return &Conversation{
		PublicID:     publicID,
		Title:        title,
		SystemPrompt: systemPrompt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewUserMessage creates a user turn. User turns never carry metadata.
func NewUserMessage(publicID, content string) *Message {
	return &Message{
		PublicID:  publicID,
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewAssistantMessage creates an assistant turn for a single model's answer.
func NewAssistantMessage(publicID, content string, meta GenerationMetadata) *Message {
	return &Message{
		PublicID:  publicID,
		Role:      RoleAssistant,
		Content:   content,
		Metadata:  []GenerationMetadata{meta},
		CreatedAt: time.Now(),
	}
}
