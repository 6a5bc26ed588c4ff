package chat

import (
	"context"
	"strings"

	"llm-evaluator/internal/domain/conversation"
	"llm-evaluator/internal/domain/model"
	"llm-evaluator/internal/infrastructure/logger"
	"llm-evaluator/internal/utils/idgen"
	"llm-evaluator/internal/utils/platformerrors"
	"llm-evaluator/internal/utils/stringutils"
)

const maxGeneratedTitleLength = 50

// ChatService applies append, edit and regenerate mutations to a
// conversation's message sequence. Mutations on the same conversation are
// serialized through a per-conversation lock; structural failures abort
// before any write so the stored sequence is never half-applied.
type ChatService struct {
	convRepo   conversation.Repository
	modelRepo  model.ModelRepository
	dispatcher *Dispatcher
	recorder   Recorder
	locks      *conversationLocks
}

// NewChatService creates a new chat service
func NewChatService(
	convRepo conversation.Repository,
	modelRepo model.ModelRepository,
	dispatcher *Dispatcher,
	recorder Recorder,
) *ChatService {
	return &ChatService{
		convRepo:   convRepo,
		modelRepo:  modelRepo,
		dispatcher: dispatcher,
		recorder:   recorder,
		locks:      newConversationLocks(),
	}
}

// AppendInput carries one append mutation. An empty ConversationPublicID
// creates a new conversation seeded from the first message.
type AppendInput struct {
	ConversationPublicID string
	ModelPublicIDs       []string
	SystemPrompt         string
	Message              string
}

// EditInput carries one edit mutation: replace a past user turn and discard
// everything after it, then regenerate from there.
type EditInput struct {
	ConversationPublicID string
	ModelPublicIDs       []string
	MessagePublicID      string
	NewContent           string
	SystemPrompt         string
}

// RegenerateInput carries one regenerate mutation. ConversationPublicID is
// optional; when absent the conversation is resolved from the message.
type RegenerateInput struct {
	ConversationPublicID string
	MessagePublicID      string
	SystemPrompt         string
}

// Append adds a user turn and one assistant turn per model that answered.
// Models that fail are reported in the result, not committed; the
// conversation still advances for every model that succeeded.
func (s *ChatService) Append(ctx context.Context, input AppendInput) (*MutationResult, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"message content is required", nil, "8b2d4f6a-1e3c-4a5b-9d7f-0c2e4a6b8d1c")
	}
	models, err := s.resolveModels(ctx, input.ModelPublicIDs)
	if err != nil {
		return nil, err
	}

	convPublicID := input.ConversationPublicID
	if convPublicID == "" {
		created, err := s.createConversation(ctx, input.Message, input.SystemPrompt)
		if err != nil {
			return nil, err
		}
		convPublicID = created.PublicID
	}

	mu := s.locks.lock(convPublicID)
	defer mu.Unlock()

	conv, err := s.convRepo.FindByPublicID(ctx, convPublicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}

	if err := s.applySystemPrompt(ctx, conv, input.SystemPrompt); err != nil {
		return nil, err
	}

	userMsg, err := s.newUserMessage(ctx, input.Message)
	if err != nil {
		return nil, err
	}

	prefix := make([]conversation.Message, len(conv.Messages), len(conv.Messages)+1)
	copy(prefix, conv.Messages)
	prefix = append(prefix, *userMsg)

	results, err := s.dispatcher.Dispatch(ctx, prefix, conv.SystemPrompt, models)
	if err != nil {
		return nil, err
	}

	committed := []*conversation.Message{userMsg}
	assistants, failures, err := s.collectTurns(ctx, results)
	if err != nil {
		return nil, err
	}
	committed = append(committed, assistants...)

	if err := s.convRepo.AppendMessages(ctx, conv.ID, committed); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to commit turns")
	}

	return s.result(ctx, convPublicID, failures)
}

// Edit replaces a user turn's content, discards every later message, and
// regenerates assistant turns from the truncated prefix. The truncation and
// the new turns commit in one atomic replace; a structural failure leaves
// the stored sequence untouched.
func (s *ChatService) Edit(ctx context.Context, input EditInput) (*MutationResult, error) {
	if strings.TrimSpace(input.NewContent) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"new message content is required", nil, "2f6a8c0e-4b5d-4e7a-8c1f-9d3b5a7c0e2f")
	}
	models, err := s.resolveModels(ctx, input.ModelPublicIDs)
	if err != nil {
		return nil, err
	}
	if input.ConversationPublicID == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"conversation_id is required", nil, "6c0e2a4f-8d1b-4c3e-9a5d-7f9b1d3e5a7c")
	}

	mu := s.locks.lock(input.ConversationPublicID)
	defer mu.Unlock()

	conv, err := s.convRepo.FindByPublicID(ctx, input.ConversationPublicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}

	target, idx := conv.MessageAt(input.MessagePublicID)
	if target == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"message not found in conversation", nil, "0d4f6b8a-2e3c-4d5f-8b9a-1c7e9f0b2d4f")
	}
	if target.Role != conversation.RoleUser {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"edit target must be a user message", nil, "4a8c0d2f-6b7e-4f9a-8d3c-5e1b7d9f2a4c")
	}

	if err := s.applySystemPrompt(ctx, conv, input.SystemPrompt); err != nil {
		return nil, err
	}

	edited := *target
	edited.Content = input.NewContent

	prefix := make([]conversation.Message, idx, idx+1)
	copy(prefix, conv.Messages[:idx])
	prefix = append(prefix, edited)

	results, err := s.dispatcher.Dispatch(ctx, prefix, conv.SystemPrompt, models)
	if err != nil {
		return nil, err
	}

	replacements := []*conversation.Message{&edited}
	assistants, failures, err := s.collectTurns(ctx, results)
	if err != nil {
		return nil, err
	}
	replacements = append(replacements, assistants...)

	if err := s.convRepo.ReplaceFrom(ctx, conv.ID, target.SequenceNumber, replacements); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to commit edit")
	}

	return s.result(ctx, input.ConversationPublicID, failures)
}

// Regenerate reissues one assistant turn against its originating model. The
// message keeps its position and identity; later messages are untouched even
// when they depended on the regenerated content. On failure the prior
// committed content stands and the failure is reported.
func (s *ChatService) Regenerate(ctx context.Context, input RegenerateInput) (*MutationResult, error) {
	if input.MessagePublicID == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"message_id is required", nil, "8e2a4c6f-0b1d-4e3a-9c5f-7a9d1b3f5c8e")
	}

	convPublicID, err := s.resolveConversationID(ctx, input)
	if err != nil {
		return nil, err
	}

	mu := s.locks.lock(convPublicID)
	defer mu.Unlock()

	conv, err := s.convRepo.FindByPublicID(ctx, convPublicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}

	target, idx := conv.MessageAt(input.MessagePublicID)
	if target == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"message not found in conversation", nil, "2c6e8a0d-4f5b-4a7c-8e9d-3b1f5d7a9c2e")
	}
	if target.Role != conversation.RoleAssistant {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"regenerate target must be an assistant message", nil, "6a0c2e4d-8b9f-4d1a-8f3e-5c7a9b1d3f6a")
	}
	if len(target.Metadata) != 1 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"regenerate target must have exactly one originating model", nil, "0e4a6c8d-2f3b-4e5a-9d7c-1b3f5a7d9e0c")
	}

	m, err := s.modelRepo.FindByPublicID(ctx, target.Metadata[0].ModelPublicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "originating model no longer registered")
	}

	if err := s.applySystemPrompt(ctx, conv, input.SystemPrompt); err != nil {
		return nil, err
	}

	// The prefix is everything before the target, trimmed of trailing
	// assistant siblings from the same fan-out so the history ends in the
	// user turn that produced it.
	end := idx
	for end > 0 && conv.Messages[end-1].Role == conversation.RoleAssistant {
		end--
	}
	if end == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"no user turn precedes the regenerate target", nil, "4c8e0a2d-6f7b-4a9c-8d1e-3f5b7d9a1c4e")
	}
	prefix := make([]conversation.Message, end)
	copy(prefix, conv.Messages[:end])

	results, err := s.dispatcher.Dispatch(ctx, prefix, conv.SystemPrompt, []*model.Model{m})
	if err != nil {
		return nil, err
	}

	slot := results[0]
	if slot.Failure != nil {
		// No write: the prior committed content stands.
		return &MutationResult{Conversation: conv, Failures: []ModelFailure{*slot.Failure}}, nil
	}

	meta := s.normalize(ctx, slot.Model.PublicID, slot.Result)
	s.recorder.ObserveCompletion(slot.Model.PublicID, meta)

	updated := *target
	updated.Content = slot.Result.Content
	updated.Metadata = []conversation.GenerationMetadata{meta}
	if err := s.convRepo.UpdateMessage(ctx, &updated); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to commit regenerated turn")
	}

	return s.result(ctx, convPublicID, nil)
}

func (s *ChatService) resolveModels(ctx context.Context, publicIDs []string) ([]*model.Model, error) {
	if len(publicIDs) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"no models selected", nil, "e2c4a6d8-0f1b-4c5e-8a9d-7b3f5d7a9c0e")
	}

	models := make([]*model.Model, 0, len(publicIDs))
	for _, id := range publicIDs {
		m, err := s.modelRepo.FindByPublicID(ctx, id)
		if err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "model not found")
		}
		if !m.Enabled {
			return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"model is disabled", nil, "a6c8e0d2-4b5f-4d7a-9c1e-8f3b5d7a9e1c",
				map[string]any{"model_id": id})
		}
		models = append(models, m)
	}
	return models, nil
}

func (s *ChatService) createConversation(ctx context.Context, firstMessage, systemPrompt string) (*conversation.Conversation, error) {
	publicID, err := idgen.GenerateSecureID("conv", 16)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate conversation ID")
	}

	title := stringutils.GenerateTitle(firstMessage, maxGeneratedTitleLength)
	if title == "" {
		title = conversation.DefaultTitle
	}
	if systemPrompt == "" {
		systemPrompt = conversation.DefaultSystemPrompt
	}

	conv := conversation.NewConversation(publicID, title, systemPrompt)
	if err := s.convRepo.Create(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create conversation")
	}
	return conv, nil
}

func (s *ChatService) resolveConversationID(ctx context.Context, input RegenerateInput) (string, error) {
	if input.ConversationPublicID != "" {
		return input.ConversationPublicID, nil
	}
	msg, err := s.convRepo.FindMessageByPublicID(ctx, input.MessagePublicID)
	if err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "message not found")
	}
	conv, err := s.convRepo.FindByID(ctx, msg.ConversationID)
	if err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}
	return conv.PublicID, nil
}

// applySystemPrompt persists a changed conversation-scoped system prompt
// before dispatch, so the call and the stored state agree.
func (s *ChatService) applySystemPrompt(ctx context.Context, conv *conversation.Conversation, systemPrompt string) error {
	if systemPrompt == "" || systemPrompt == conv.SystemPrompt {
		return nil
	}
	conv.SystemPrompt = systemPrompt
	if err := s.convRepo.Update(ctx, conv); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update system prompt")
	}
	return nil
}

// collectTurns turns fan-out slots into assistant messages and failure
// entries, preserving slot order.
func (s *ChatService) collectTurns(ctx context.Context, results []ModelResult) ([]*conversation.Message, []ModelFailure, error) {
	var assistants []*conversation.Message
	var failures []ModelFailure
	for _, slot := range results {
		if slot.Failure != nil {
			failures = append(failures, *slot.Failure)
			continue
		}

		meta := s.normalize(ctx, slot.Model.PublicID, slot.Result)
		s.recorder.ObserveCompletion(slot.Model.PublicID, meta)

		publicID, err := idgen.GenerateSecureID("msg", 16)
		if err != nil {
			return nil, nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate message ID")
		}
		assistants = append(assistants, conversation.NewAssistantMessage(publicID, slot.Result.Content, meta))
	}
	return assistants, failures, nil
}

// normalize sanitizes metrics, logging rather than failing when a provider
// reports inconsistent token counts. The generated text always survives.
func (s *ChatService) normalize(ctx context.Context, modelPublicID string, res *CompletionResult) conversation.GenerationMetadata {
	meta, err := NormalizeMetadata(ctx, modelPublicID, res)
	if err != nil {
		log := logger.GetLogger()
		log.Warn().
			Str("model_id", modelPublicID).
			Err(err).
			Msg("dropping inconsistent generation metrics")
	}
	return meta
}

func (s *ChatService) newUserMessage(ctx context.Context, content string) (*conversation.Message, error) {
	publicID, err := idgen.GenerateSecureID("msg", 16)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate message ID")
	}
	return conversation.NewUserMessage(publicID, content), nil
}

func (s *ChatService) result(ctx context.Context, convPublicID string, failures []ModelFailure) (*MutationResult, error) {
	conv, err := s.convRepo.FindByPublicID(ctx, convPublicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to reload conversation")
	}
	return &MutationResult{Conversation: conv, Failures: failures}, nil
}
