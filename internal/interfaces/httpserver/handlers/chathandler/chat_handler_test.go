package chathandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"

	"llm-evaluator/internal/domain/chat"
	"llm-evaluator/internal/domain/conversation"
	"llm-evaluator/internal/domain/model"
	chatresponses "llm-evaluator/internal/interfaces/httpserver/responses/chat"
	"llm-evaluator/internal/utils/platformerrors"
)

type stubGateway struct {
	content string
}

func (g *stubGateway) Complete(context.Context, *model.Model, string, []conversation.Message) (*chat.CompletionResult, error) {
	return &chat.CompletionResult{
		Content:          g.content,
		TimeToFirstToken: 0.1,
		TokensPerSecond:  40,
		OutputTokens:     1,
	}, nil
}

type stubConvRepo struct {
	nextID        uint
	conversations map[string]*conversation.Conversation
}

func newStubConvRepo() *stubConvRepo {
	return &stubConvRepo{conversations: map[string]*conversation.Conversation{}}
}

func (r *stubConvRepo) notFound(ctx context.Context) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound, "conversation not found", nil, "test-conv-missing")
}

func (r *stubConvRepo) Create(_ context.Context, conv *conversation.Conversation) error {
	r.nextID++
	conv.ID = r.nextID
	clone := *conv
	r.conversations[conv.PublicID] = &clone
	return nil
}

func (r *stubConvRepo) FindByID(ctx context.Context, id uint) (*conversation.Conversation, error) {
	for publicID, conv := range r.conversations {
		if conv.ID == id {
			return r.FindByPublicID(ctx, publicID)
		}
	}
	return nil, r.notFound(ctx)
}

func (r *stubConvRepo) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	conv, ok := r.conversations[publicID]
	if !ok {
		return nil, r.notFound(ctx)
	}
	clone := *conv
	clone.Messages = append([]conversation.Message(nil), conv.Messages...)
	sort.SliceStable(clone.Messages, func(i, j int) bool {
		return clone.Messages[i].SequenceNumber < clone.Messages[j].SequenceNumber
	})
	return &clone, nil
}

func (r *stubConvRepo) List(context.Context) ([]*conversation.Conversation, error) {
	return nil, nil
}

func (r *stubConvRepo) Update(ctx context.Context, conv *conversation.Conversation) error {
	stored, ok := r.conversations[conv.PublicID]
	if !ok {
		return r.notFound(ctx)
	}
	stored.Title = conv.Title
	stored.SystemPrompt = conv.SystemPrompt
	return nil
}

func (r *stubConvRepo) Delete(context.Context, uint) error { return nil }

func (r *stubConvRepo) AppendMessages(ctx context.Context, conversationID uint, messages []*conversation.Message) error {
	for _, conv := range r.conversations {
		if conv.ID != conversationID {
			continue
		}
		seq := len(conv.Messages)
		for _, msg := range messages {
			clone := *msg
			clone.ConversationID = conversationID
			clone.SequenceNumber = seq
			conv.Messages = append(conv.Messages, clone)
			seq++
		}
		return nil
	}
	return r.notFound(ctx)
}

func (r *stubConvRepo) ReplaceFrom(ctx context.Context, conversationID uint, fromSequence int, messages []*conversation.Message) error {
	for _, conv := range r.conversations {
		if conv.ID != conversationID {
			continue
		}
		kept := conv.Messages[:0]
		for _, msg := range conv.Messages {
			if msg.SequenceNumber < fromSequence {
				kept = append(kept, msg)
			}
		}
		conv.Messages = kept
		seq := fromSequence
		for _, msg := range messages {
			clone := *msg
			clone.ConversationID = conversationID
			clone.SequenceNumber = seq
			conv.Messages = append(conv.Messages, clone)
			seq++
		}
		return nil
	}
	return r.notFound(ctx)
}

func (r *stubConvRepo) UpdateMessage(ctx context.Context, msg *conversation.Message) error {
	for _, conv := range r.conversations {
		for i := range conv.Messages {
			if conv.Messages[i].PublicID == msg.PublicID {
				conv.Messages[i].Content = msg.Content
				conv.Messages[i].Metadata = append([]conversation.GenerationMetadata(nil), msg.Metadata...)
				return nil
			}
		}
	}
	return r.notFound(ctx)
}

func (r *stubConvRepo) FindMessageByPublicID(ctx context.Context, publicID string) (*conversation.Message, error) {
	for _, conv := range r.conversations {
		for i := range conv.Messages {
			if conv.Messages[i].PublicID == publicID {
				clone := conv.Messages[i]
				return &clone, nil
			}
		}
	}
	return nil, r.notFound(ctx)
}

type stubModelRepo struct {
	models []*model.Model
}

func (r *stubModelRepo) Create(context.Context, *model.Model) error { return nil }
func (r *stubModelRepo) Update(context.Context, *model.Model) error { return nil }
func (r *stubModelRepo) DeleteByID(context.Context, uint) error     { return nil }

func (r *stubModelRepo) FindByID(ctx context.Context, id uint) (*model.Model, error) {
	for _, m := range r.models {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound, "model not found", nil, "test-model-missing")
}

func (r *stubModelRepo) FindByPublicID(ctx context.Context, publicID string) (*model.Model, error) {
	for _, m := range r.models {
		if m.PublicID == publicID {
			return m, nil
		}
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound, "model not found", nil, "test-model-missing")
}

func (r *stubModelRepo) FindByFilter(context.Context, model.ModelFilter) ([]*model.Model, error) {
	return r.models, nil
}

func (r *stubModelRepo) List(context.Context) ([]*model.Model, error) {
	return r.models, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	convRepo := newStubConvRepo()
	modelRepo := &stubModelRepo{models: []*model.Model{
		{ID: 1, PublicID: "model_a", ProviderID: 1, ModelID: "gpt-4-turbo", Enabled: true},
	}}
	gateway := &stubGateway{content: "4"}
	dispatcher := chat.NewDispatcher(gateway, chat.NopRecorder{})
	service := chat.NewChatService(convRepo, modelRepo, dispatcher, chat.NopRecorder{})
	handler := NewChatHandler(service)

	engine := gin.New()
	engine.POST("/api/chat", handler.Append)
	return engine
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func TestChatEndpointCreatesConversation(t *testing.T) {
	engine := newTestRouter()

	recorder := postJSON(t, engine, "/api/chat", map[string]any{
		"models_to_use": []string{"model_a"},
		"system_prompt": "You are terse.",
		"message":       "What is 2+2?",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var resp chatresponses.ChatResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ConversationID == "" {
		t.Fatalf("expected a conversation id")
	}
	if resp.SystemPrompt != "You are terse." {
		t.Fatalf("unexpected system prompt %q", resp.SystemPrompt)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("expected user + assistant message, got %d", len(resp.Messages))
	}
	assistant := resp.Messages[1]
	if assistant.Role != conversation.RoleAssistant || assistant.Content != "4" {
		t.Fatalf("unexpected assistant turn: %+v", assistant)
	}
	if len(assistant.Metadata) != 1 || assistant.Metadata[0].ModelPublicID != "model_a" {
		t.Fatalf("expected generation metadata for model_a, got %+v", assistant.Metadata)
	}
	if len(resp.Failures) != 0 {
		t.Fatalf("unexpected failures: %+v", resp.Failures)
	}
}

func TestChatEndpointRejectsEmptySelection(t *testing.T) {
	engine := newTestRouter()

	recorder := postJSON(t, engine, "/api/chat", map[string]any{
		"models_to_use": []string{},
		"message":       "hello",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", recorder.Code, recorder.Body.String())
	}
}
