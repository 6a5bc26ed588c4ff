package conversation

import (
	"context"

	"llm-evaluator/internal/utils/idgen"
	"llm-evaluator/internal/utils/platformerrors"
)

const (
	DefaultTitle        = "New Conversation"
	DefaultSystemPrompt = "You are a helpful assistant."

	maxTitleLength        = 256
	maxSystemPromptLength = 32768
)

// ConversationService handles conversation CRUD. Turn mutation lives in the
// chat package; this service never touches message content.
type ConversationService struct {
	repo Repository
}

// NewConversationService creates a new conversation service
func NewConversationService(repo Repository) *ConversationService {
	return &ConversationService{repo: repo}
}

// CreateConversationInput carries the caller-supplied conversation fields.
type CreateConversationInput struct {
	Title        string
	SystemPrompt string
}

// CreateConversation creates a conversation, filling defaults for empty fields.
func (s *ConversationService) CreateConversation(ctx context.Context, input CreateConversationInput) (*Conversation, error) {
	if input.Title == "" {
		input.Title = DefaultTitle
	}
	if input.SystemPrompt == "" {
		input.SystemPrompt = DefaultSystemPrompt
	}
	if err := validateConversationFields(ctx, input.Title, input.SystemPrompt); err != nil {
		return nil, err
	}

	publicID, err := idgen.GenerateSecureID("conv", 16)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate conversation ID")
	}

	conv := NewConversation(publicID, input.Title, input.SystemPrompt)
	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create conversation")
	}
	return conv, nil
}

// GetConversation retrieves a conversation with its ordered messages.
func (s *ConversationService) GetConversation(ctx context.Context, publicID string) (*Conversation, error) {
	conv, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}
	return conv, nil
}

// ListConversations returns all conversations without their messages,
// most recent first.
func (s *ConversationService) ListConversations(ctx context.Context) ([]*Conversation, error) {
	conversations, err := s.repo.List(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list conversations")
	}
	return conversations, nil
}

// DeleteConversation removes a conversation, its messages and their metadata.
func (s *ConversationService) DeleteConversation(ctx context.Context, publicID string) error {
	conv, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}
	if err := s.repo.Delete(ctx, conv.ID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete conversation")
	}
	return nil
}

func validateConversationFields(ctx context.Context, title, systemPrompt string) error {
	if len(title) > maxTitleLength {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"title exceeds maximum length", nil, "9f1d2c3b-7a84-4e0d-b5f2-6c1a8e9d0f34")
	}
	if len(systemPrompt) > maxSystemPromptLength {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"system prompt exceeds maximum length", nil, "4b7e8f2a-1c5d-4a9b-8e3f-7d2c6a1b0e95")
	}
	return nil
}
