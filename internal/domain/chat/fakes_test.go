package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"llm-evaluator/internal/domain/conversation"
	"llm-evaluator/internal/domain/model"
	"llm-evaluator/internal/utils/platformerrors"
)

// fakeGateway returns canned results per model public ID, with an optional
// delay per model to simulate slow providers.
type fakeGateway struct {
	mu          sync.Mutex
	calls       int
	inFlight    int
	maxInFlight int
	responses   map[string]fakeResponse
}

type fakeResponse struct {
	delay  time.Duration
	result *CompletionResult
	err    error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{responses: make(map[string]fakeResponse)}
}

func (g *fakeGateway) respond(modelPublicID string, res *CompletionResult, delay time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.responses[modelPublicID] = fakeResponse{delay: delay, result: res}
}

func (g *fakeGateway) fail(modelPublicID string, kind FailureKind, delay time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.responses[modelPublicID] = fakeResponse{delay: delay, err: &ProviderFailure{Kind: kind}}
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *fakeGateway) maxConcurrent() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.maxInFlight
}

func (g *fakeGateway) Complete(ctx context.Context, m *model.Model, systemPrompt string, history []conversation.Message) (*CompletionResult, error) {
	g.mu.Lock()
	g.calls++
	g.inFlight++
	if g.inFlight > g.maxInFlight {
		g.maxInFlight = g.inFlight
	}
	resp, ok := g.responses[m.PublicID]
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.inFlight--
		g.mu.Unlock()
	}()
	if !ok {
		return nil, &ProviderFailure{Kind: FailureProviderUnavailable}
	}
	if resp.delay > 0 {
		time.Sleep(resp.delay)
	}
	if resp.err != nil {
		return nil, resp.err
	}
	out := *resp.result
	return &out, nil
}

// memConversationRepo is an in-memory conversation.Repository. Reads return
// deep copies so tests can compare committed state across mutations.
type memConversationRepo struct {
	mu     sync.Mutex
	nextID uint
	convs  map[uint]*conversation.Conversation
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{convs: make(map[uint]*conversation.Conversation)}
}

func (r *memConversationRepo) Create(ctx context.Context, conv *conversation.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	conv.ID = r.nextID
	stored := copyConversation(conv)
	r.convs[conv.ID] = stored
	return nil
}

func (r *memConversationRepo) FindByID(ctx context.Context, id uint) (*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[id]
	if !ok {
		return nil, notFound(ctx, "conversation not found")
	}
	return copyConversation(conv), nil
}

func (r *memConversationRepo) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conv := range r.convs {
		if conv.PublicID == publicID {
			return copyConversation(conv), nil
		}
	}
	return nil, notFound(ctx, "conversation not found")
}

func (r *memConversationRepo) List(ctx context.Context) ([]*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*conversation.Conversation, 0, len(r.convs))
	for _, conv := range r.convs {
		c := copyConversation(conv)
		c.Messages = nil
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memConversationRepo) Update(ctx context.Context, conv *conversation.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.convs[conv.ID]
	if !ok {
		return notFound(ctx, "conversation not found")
	}
	stored.Title = conv.Title
	stored.SystemPrompt = conv.SystemPrompt
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *memConversationRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.convs, id)
	return nil
}

func (r *memConversationRepo) AppendMessages(ctx context.Context, conversationID uint, messages []*conversation.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[conversationID]
	if !ok {
		return notFound(ctx, "conversation not found")
	}
	seq := len(conv.Messages)
	for _, m := range messages {
		msg := *m
		msg.ConversationID = conversationID
		msg.SequenceNumber = seq
		msg.Metadata = append([]conversation.GenerationMetadata(nil), m.Metadata...)
		conv.Messages = append(conv.Messages, msg)
		seq++
	}
	return nil
}

func (r *memConversationRepo) ReplaceFrom(ctx context.Context, conversationID uint, fromSequence int, messages []*conversation.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[conversationID]
	if !ok {
		return notFound(ctx, "conversation not found")
	}
	kept := conv.Messages[:0:0]
	for _, m := range conv.Messages {
		if m.SequenceNumber < fromSequence {
			kept = append(kept, m)
		}
	}
	conv.Messages = kept
	seq := fromSequence
	for _, m := range messages {
		msg := *m
		msg.ConversationID = conversationID
		msg.SequenceNumber = seq
		msg.Metadata = append([]conversation.GenerationMetadata(nil), m.Metadata...)
		conv.Messages = append(conv.Messages, msg)
		seq++
	}
	return nil
}

func (r *memConversationRepo) UpdateMessage(ctx context.Context, msg *conversation.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conv := range r.convs {
		for i := range conv.Messages {
			if conv.Messages[i].PublicID == msg.PublicID {
				conv.Messages[i].Content = msg.Content
				conv.Messages[i].Metadata = append([]conversation.GenerationMetadata(nil), msg.Metadata...)
				return nil
			}
		}
	}
	return notFound(ctx, "message not found")
}

func (r *memConversationRepo) FindMessageByPublicID(ctx context.Context, publicID string) (*conversation.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conv := range r.convs {
		for i := range conv.Messages {
			if conv.Messages[i].PublicID == publicID {
				msg := conv.Messages[i]
				msg.Metadata = append([]conversation.GenerationMetadata(nil), conv.Messages[i].Metadata...)
				return &msg, nil
			}
		}
	}
	return nil, notFound(ctx, "message not found")
}

func copyConversation(conv *conversation.Conversation) *conversation.Conversation {
	out := *conv
	out.Messages = make([]conversation.Message, len(conv.Messages))
	for i, m := range conv.Messages {
		out.Messages[i] = m
		out.Messages[i].Metadata = append([]conversation.GenerationMetadata(nil), m.Metadata...)
	}
	sort.Slice(out.Messages, func(i, j int) bool {
		return out.Messages[i].SequenceNumber < out.Messages[j].SequenceNumber
	})
	return &out
}

// memModelRepo is an in-memory model.ModelRepository keyed by public ID.
type memModelRepo struct {
	mu       sync.Mutex
	byPublic map[string]*model.Model
}

func newMemModelRepo(models ...*model.Model) *memModelRepo {
	r := &memModelRepo{byPublic: make(map[string]*model.Model)}
	for _, m := range models {
		r.byPublic[m.PublicID] = m
	}
	return r
}

func (r *memModelRepo) Create(ctx context.Context, m *model.Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPublic[m.PublicID] = m
	return nil
}

func (r *memModelRepo) Update(ctx context.Context, m *model.Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPublic[m.PublicID] = m
	return nil
}

func (r *memModelRepo) DeleteByID(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, m := range r.byPublic {
		if m.ID == id {
			delete(r.byPublic, k)
		}
	}
	return nil
}

func (r *memModelRepo) FindByID(ctx context.Context, id uint) (*model.Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.byPublic {
		if m.ID == id {
			out := *m
			return &out, nil
		}
	}
	return nil, notFound(ctx, "model not found")
}

func (r *memModelRepo) FindByPublicID(ctx context.Context, publicID string) (*model.Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byPublic[publicID]
	if !ok {
		return nil, notFound(ctx, "model not found")
	}
	out := *m
	return &out, nil
}

func (r *memModelRepo) FindByFilter(ctx context.Context, filter model.ModelFilter) ([]*model.Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Model
	for _, m := range r.byPublic {
		if filter.ProviderID != nil && m.ProviderID != *filter.ProviderID {
			continue
		}
		if filter.ModelID != nil && m.ModelID != *filter.ModelID {
			continue
		}
		if filter.Enabled != nil && m.Enabled != *filter.Enabled {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	return out, nil
}

func (r *memModelRepo) List(ctx context.Context) ([]*model.Model, error) {
	return r.FindByFilter(ctx, model.ModelFilter{})
}

func notFound(ctx context.Context, message string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, message, nil, "")
}

func enabledModel(id uint, publicID, modelID string) *model.Model {
	return &model.Model{ID: id, PublicID: publicID, ProviderID: 1, ModelID: modelID, DisplayName: modelID, Enabled: true}
}
