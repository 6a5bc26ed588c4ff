package inference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"llm-evaluator/internal/domain/chat"
	"llm-evaluator/internal/domain/conversation"
	"llm-evaluator/internal/domain/model"
	"llm-evaluator/internal/utils/crypto"
	clients "llm-evaluator/internal/utils/httpclients/chat"
)

// InferenceProvider calls OpenAI-compatible endpoints on behalf of the chat
// orchestrator. It resolves a model's provider, decrypts the credential in
// memory and issues one streamed completion per call. It never retries; the
// caller decides what a failed slot means.
type InferenceProvider struct {
	providerRepo model.ProviderRepository
	client       *resty.Client
	secret       string
	timeout      time.Duration
}

func NewInferenceProvider(
	providerRepo model.ProviderRepository,
	client *resty.Client,
	secret string,
	timeout time.Duration,
) *InferenceProvider {
	return &InferenceProvider{
		providerRepo: providerRepo,
		client:       client,
		secret:       secret,
		timeout:      timeout,
	}
}

// Complete issues one streamed completion for the given model. All errors are
// returned as *chat.ProviderFailure so the dispatcher can classify the slot.
func (p *InferenceProvider) Complete(ctx context.Context, m *model.Model, systemPrompt string, history []conversation.Message) (*chat.CompletionResult, error) {
	provider, err := p.providerRepo.FindByID(ctx, m.ProviderID)
	if err != nil {
		return nil, &chat.ProviderFailure{Kind: chat.FailureProviderUnavailable, Err: err}
	}
	apiKey, err := p.decryptKey(provider)
	if err != nil {
		return nil, &chat.ProviderFailure{Kind: chat.FailureProviderUnavailable, Err: err}
	}

	request := openai.ChatCompletionRequest{
		Model:    m.ModelID,
		Messages: buildMessages(systemPrompt, history),
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	completionClient := clients.NewCompletionClient(p.client, provider.Name, provider.BaseURL)
	stats, err := completionClient.StreamChatCompletion(callCtx, apiKey, request)
	if err != nil {
		return nil, classify(err)
	}
	if stats.Content == "" {
		return nil, &chat.ProviderFailure{
			Kind: chat.FailureMalformedResponse,
			Err:  fmt.Errorf("provider stream carried no content"),
		}
	}

	return &chat.CompletionResult{
		Content:           stats.Content,
		TimeToFirstToken:  stats.TimeToFirstToken.Seconds(),
		TokensPerSecond:   tokensPerSecond(stats),
		OutputTokens:      stats.CompletionTokens,
		InputTokens:       stats.PromptTokens,
		CachedInputTokens: stats.CachedPromptTokens,
	}, nil
}

// ListModels pulls the /models listing from a provider endpoint.
func (p *InferenceProvider) ListModels(ctx context.Context, provider *model.Provider) ([]model.SyncedModel, error) {
	apiKey, err := p.decryptKey(provider)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	modelClient := clients.NewModelClient(p.client, provider.Name, provider.BaseURL)
	listing, err := modelClient.ListModels(callCtx, apiKey)
	if err != nil {
		return nil, err
	}

	synced := make([]model.SyncedModel, 0, len(listing.Data))
	for _, entry := range listing.Data {
		if entry.ID == "" {
			continue
		}
		synced = append(synced, model.SyncedModel{
			ModelID:     entry.ID,
			DisplayName: entry.DisplayName,
		})
	}
	return synced, nil
}

func (p *InferenceProvider) decryptKey(provider *model.Provider) (string, error) {
	if provider.EncryptedAPIKey == "" {
		return "", nil
	}
	return crypto.DecryptString(p.secret, provider.EncryptedAPIKey)
}

func buildMessages(systemPrompt string, history []conversation.Message) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == conversation.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return messages
}

func classify(err error) *chat.ProviderFailure {
	var statusErr *clients.StatusError
	if errors.As(err, &statusErr) {
		return &chat.ProviderFailure{Kind: chat.FailureProviderRejected, Err: err}
	}
	var parseErr *clients.ParseError
	if errors.As(err, &parseErr) {
		return &chat.ProviderFailure{Kind: chat.FailureMalformedResponse, Err: err}
	}
	return &chat.ProviderFailure{Kind: chat.FailureProviderUnavailable, Err: err}
}

func tokensPerSecond(stats *clients.StreamStats) float64 {
	generation := stats.TotalDuration - stats.TimeToFirstToken
	if generation <= 0 {
		generation = stats.TotalDuration
	}
	seconds := generation.Seconds()
	if seconds <= 0 || stats.CompletionTokens == 0 {
		return 0
	}
	return float64(stats.CompletionTokens) / seconds
}
