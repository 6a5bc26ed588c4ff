package chat

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"llm-evaluator/internal/domain/conversation"
	"llm-evaluator/internal/utils/platformerrors"
)

func newTestService(gateway *fakeGateway) (*ChatService, *memConversationRepo, *memModelRepo) {
	convRepo := newMemConversationRepo()
	modelRepo := newMemModelRepo(
		enabledModel(1, "model_a", "alpha"),
		enabledModel(2, "model_b", "beta"),
	)
	svc := NewChatService(convRepo, modelRepo, NewDispatcher(gateway, NopRecorder{}), NopRecorder{})
	return svc, convRepo, modelRepo
}

func seedConversation(t *testing.T, repo *memConversationRepo, systemPrompt string, msgs []*conversation.Message) *conversation.Conversation {
	t.Helper()
	ctx := context.Background()
	conv := conversation.NewConversation("conv_seed", "Seeded", systemPrompt)
	if err := repo.Create(ctx, conv); err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
	if err := repo.AppendMessages(ctx, conv.ID, msgs); err != nil {
		t.Fatalf("seed messages: %v", err)
	}
	seeded, err := repo.FindByPublicID(ctx, conv.PublicID)
	if err != nil {
		t.Fatalf("reload seeded conversation: %v", err)
	}
	return seeded
}

func assistantTurn(publicID, content, modelPublicID string) *conversation.Message {
	return conversation.NewAssistantMessage(publicID, content, conversation.GenerationMetadata{
		ModelPublicID:    modelPublicID,
		TimeToFirstToken: 0.1,
		TokensPerSecond:  10,
		OutputTokens:     3,
	})
}

func TestAppendCreatesConversationAndCommitsPartialSuccess(t *testing.T) {
	ctx := context.Background()
	gateway := newFakeGateway()
	gateway.respond("model_a", &CompletionResult{
		Content:          "4",
		TimeToFirstToken: 0.2,
		TokensPerSecond:  50,
		OutputTokens:     1,
	}, 0)
	gateway.fail("model_b", FailureProviderUnavailable, 0)

	svc, _, _ := newTestService(gateway)

	res, err := svc.Append(ctx, AppendInput{
		ModelPublicIDs: []string{"model_a", "model_b"},
		SystemPrompt:   "You are terse.",
		Message:        "2+2?",
	})
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	conv := res.Conversation
	if conv.SystemPrompt != "You are terse." {
		t.Errorf("system prompt = %q, want %q", conv.SystemPrompt, "You are terse.")
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 committed messages, got %d", len(conv.Messages))
	}
	if conv.Messages[0].Role != conversation.RoleUser || conv.Messages[0].Content != "2+2?" {
		t.Errorf("first turn = %s %q, want user \"2+2?\"", conv.Messages[0].Role, conv.Messages[0].Content)
	}
	if len(conv.Messages[0].Metadata) != 0 {
		t.Error("user turns must not carry generation metadata")
	}

	answer := conv.Messages[1]
	if answer.Role != conversation.RoleAssistant || answer.Content != "4" {
		t.Errorf("second turn = %s %q, want assistant \"4\"", answer.Role, answer.Content)
	}
	if len(answer.Metadata) != 1 {
		t.Fatalf("expected one metadata entry, got %d", len(answer.Metadata))
	}
	meta := answer.Metadata[0]
	if meta.ModelPublicID != "model_a" || meta.TimeToFirstToken != 0.2 || meta.TokensPerSecond != 50 || meta.OutputTokens != 1 {
		t.Errorf("unexpected metadata: %+v", meta)
	}

	if len(res.Failures) != 1 {
		t.Fatalf("expected one reported failure, got %d", len(res.Failures))
	}
	if res.Failures[0].ModelPublicID != "model_b" || res.Failures[0].Kind != FailureProviderUnavailable {
		t.Errorf("unexpected failure: %+v", res.Failures[0])
	}
}

func TestAppendWithoutModelsDoesNothing(t *testing.T) {
	ctx := context.Background()
	gateway := newFakeGateway()
	svc, convRepo, _ := newTestService(gateway)

	seeded := seedConversation(t, convRepo, "prompt", []*conversation.Message{
		conversation.NewUserMessage("msg_u0", "hello"),
	})

	_, err := svc.Append(ctx, AppendInput{
		ConversationPublicID: seeded.PublicID,
		Message:              "another",
	})
	if err == nil {
		t.Fatal("expected an error for an empty model selection")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("expected a validation error, got %v", err)
	}
	if gateway.callCount() != 0 {
		t.Errorf("expected zero network calls, got %d", gateway.callCount())
	}

	after, err := convRepo.FindByPublicID(ctx, seeded.PublicID)
	if err != nil {
		t.Fatalf("reload conversation: %v", err)
	}
	if !reflect.DeepEqual(seeded.Messages, after.Messages) {
		t.Error("conversation changed after a rejected append")
	}
}

func TestAppendUnknownConversationAborts(t *testing.T) {
	gateway := newFakeGateway()
	svc, _, _ := newTestService(gateway)

	_, err := svc.Append(context.Background(), AppendInput{
		ConversationPublicID: "conv_missing",
		ModelPublicIDs:       []string{"model_a"},
		Message:              "hello",
	})
	if err == nil {
		t.Fatal("expected an error for an unknown conversation")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("expected a not-found error, got %v", err)
	}
}

func TestEditTruncatesAndRegenerates(t *testing.T) {
	ctx := context.Background()
	gateway := newFakeGateway()
	gateway.respond("model_a", &CompletionResult{Content: "fresh answer", OutputTokens: 2}, 0)

	svc, convRepo, _ := newTestService(gateway)

	seeded := seedConversation(t, convRepo, "prompt", []*conversation.Message{
		conversation.NewUserMessage("msg_u0", "first question"),
		assistantTurn("msg_a1", "first answer", "model_a"),
		conversation.NewUserMessage("msg_u2", "second question"),
		assistantTurn("msg_a3", "second answer", "model_a"),
		conversation.NewUserMessage("msg_u4", "third question"),
		assistantTurn("msg_a5", "third answer", "model_a"),
	})

	res, err := svc.Edit(ctx, EditInput{
		ConversationPublicID: seeded.PublicID,
		ModelPublicIDs:       []string{"model_a"},
		MessagePublicID:      "msg_u2",
		NewContent:           "revised question",
	})
	if err != nil {
		t.Fatalf("Edit returned error: %v", err)
	}

	msgs := res.Conversation.Messages
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages after edit, got %d", len(msgs))
	}
	if msgs[0].PublicID != "msg_u0" || msgs[1].PublicID != "msg_a1" {
		t.Error("messages before the edit target must survive unchanged")
	}
	if msgs[2].PublicID != "msg_u2" {
		t.Errorf("edited message lost its identity: %s", msgs[2].PublicID)
	}
	if msgs[2].Content != "revised question" {
		t.Errorf("edited content = %q, want %q", msgs[2].Content, "revised question")
	}
	if msgs[3].Role != conversation.RoleAssistant || msgs[3].Content != "fresh answer" {
		t.Errorf("regenerated turn = %s %q", msgs[3].Role, msgs[3].Content)
	}
	for _, gone := range []string{"msg_a3", "msg_u4", "msg_a5"} {
		if m, _ := res.Conversation.MessageAt(gone); m != nil {
			t.Errorf("message %s should have been discarded by the edit", gone)
		}
	}
}

func TestEditNonUserTargetRejected(t *testing.T) {
	ctx := context.Background()
	gateway := newFakeGateway()
	svc, convRepo, _ := newTestService(gateway)

	seeded := seedConversation(t, convRepo, "prompt", []*conversation.Message{
		conversation.NewUserMessage("msg_u0", "question"),
		assistantTurn("msg_a1", "answer", "model_a"),
	})

	_, err := svc.Edit(ctx, EditInput{
		ConversationPublicID: seeded.PublicID,
		ModelPublicIDs:       []string{"model_a"},
		MessagePublicID:      "msg_a1",
		NewContent:           "rewritten",
	})
	if err == nil {
		t.Fatal("expected an error when editing an assistant message")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("expected a validation error, got %v", err)
	}
	if gateway.callCount() != 0 {
		t.Errorf("expected zero network calls, got %d", gateway.callCount())
	}

	after, _ := convRepo.FindByPublicID(ctx, seeded.PublicID)
	if !reflect.DeepEqual(seeded.Messages, after.Messages) {
		t.Error("conversation changed after a rejected edit")
	}
}

func TestRegenerateReplacesOnlyTheTarget(t *testing.T) {
	ctx := context.Background()
	gateway := newFakeGateway()
	gateway.respond("model_b", &CompletionResult{
		Content:          "regenerated",
		TimeToFirstToken: 0.3,
		TokensPerSecond:  20,
		OutputTokens:     5,
	}, 0)

	svc, convRepo, _ := newTestService(gateway)

	seeded := seedConversation(t, convRepo, "prompt", []*conversation.Message{
		conversation.NewUserMessage("msg_u0", "first question"),
		assistantTurn("msg_a1", "first answer", "model_a"),
		conversation.NewUserMessage("msg_u2", "second question"),
		assistantTurn("msg_a3", "answer from alpha", "model_a"),
		assistantTurn("msg_a4", "answer from beta", "model_b"),
		conversation.NewUserMessage("msg_u5", "third question"),
	})

	res, err := svc.Regenerate(ctx, RegenerateInput{
		MessagePublicID: "msg_a4",
	})
	if err != nil {
		t.Fatalf("Regenerate returned error: %v", err)
	}

	msgs := res.Conversation.Messages
	if len(msgs) != len(seeded.Messages) {
		t.Fatalf("regenerate changed the message count: %d != %d", len(msgs), len(seeded.Messages))
	}
	for i := range msgs {
		if i == 4 {
			continue
		}
		if !reflect.DeepEqual(seeded.Messages[i], msgs[i]) {
			t.Errorf("message at index %d changed during regenerate", i)
		}
	}

	target := msgs[4]
	if target.PublicID != "msg_a4" || target.SequenceNumber != 4 {
		t.Errorf("regenerated turn lost identity or position: %s seq %d", target.PublicID, target.SequenceNumber)
	}
	if target.Content != "regenerated" {
		t.Errorf("regenerated content = %q", target.Content)
	}
	if len(target.Metadata) != 1 || target.Metadata[0].TokensPerSecond != 20 {
		t.Errorf("metadata not replaced wholesale: %+v", target.Metadata)
	}
}

func TestRegenerateFailureKeepsPriorContent(t *testing.T) {
	ctx := context.Background()
	gateway := newFakeGateway()
	gateway.fail("model_a", FailureProviderRejected, 0)

	svc, convRepo, _ := newTestService(gateway)

	seeded := seedConversation(t, convRepo, "prompt", []*conversation.Message{
		conversation.NewUserMessage("msg_u0", "question"),
		assistantTurn("msg_a1", "committed answer", "model_a"),
	})

	res, err := svc.Regenerate(ctx, RegenerateInput{
		ConversationPublicID: seeded.PublicID,
		MessagePublicID:      "msg_a1",
	})
	if err != nil {
		t.Fatalf("Regenerate returned error: %v", err)
	}
	if len(res.Failures) != 1 || res.Failures[0].Kind != FailureProviderRejected {
		t.Fatalf("expected the provider failure to be reported, got %+v", res.Failures)
	}

	after, _ := convRepo.FindByPublicID(ctx, seeded.PublicID)
	if !reflect.DeepEqual(seeded.Messages, after.Messages) {
		t.Error("a failed regenerate must leave the stored conversation untouched")
	}
	if after.Messages[1].Content != "committed answer" {
		t.Errorf("prior content lost: %q", after.Messages[1].Content)
	}
}

func TestMutationsOnOneConversationAreSerialized(t *testing.T) {
	ctx := context.Background()
	gateway := newFakeGateway()
	gateway.respond("model_a", &CompletionResult{Content: "answer", OutputTokens: 1}, 30*time.Millisecond)

	svc, convRepo, _ := newTestService(gateway)

	seeded := seedConversation(t, convRepo, "prompt", []*conversation.Message{
		conversation.NewUserMessage("msg_u0", "question"),
		assistantTurn("msg_a1", "first answer", "model_a"),
	})

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.Edit(ctx, EditInput{
			ConversationPublicID: seeded.PublicID,
			ModelPublicIDs:       []string{"model_a"},
			MessagePublicID:      "msg_u0",
			NewContent:           "revised question",
		})
		errs <- err
	}()
	go func() {
		defer wg.Done()
		_, err := svc.Append(ctx, AppendInput{
			ConversationPublicID: seeded.PublicID,
			ModelPublicIDs:       []string{"model_a"},
			Message:              "followup",
		})
		errs <- err
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent mutation returned error: %v", err)
		}
	}

	if got := gateway.maxConcurrent(); got != 1 {
		t.Errorf("two mutations on one conversation overlapped: %d in flight", got)
	}

	after, err := convRepo.FindByPublicID(ctx, seeded.PublicID)
	if err != nil {
		t.Fatalf("reload conversation: %v", err)
	}
	for i, m := range after.Messages {
		if m.SequenceNumber != i {
			t.Fatalf("sequence numbers not contiguous: index %d holds seq %d", i, m.SequenceNumber)
		}
	}
	// Edit before append leaves 4 messages; append before edit leaves the
	// truncated 2. Anything else means the mutations interleaved.
	if n := len(after.Messages); n != 2 && n != 4 {
		t.Fatalf("expected 2 or 4 committed messages, got %d", n)
	}
	if after.Messages[0].Content != "revised question" {
		t.Errorf("edited content lost: %q", after.Messages[0].Content)
	}
	for i, m := range after.Messages {
		want := conversation.RoleUser
		if i%2 == 1 {
			want = conversation.RoleAssistant
		}
		if m.Role != want {
			t.Errorf("turn %d role = %s, want %s", i, m.Role, want)
		}
	}
}

func TestRegenerateUnknownMessage(t *testing.T) {
	gateway := newFakeGateway()
	svc, _, _ := newTestService(gateway)

	_, err := svc.Regenerate(context.Background(), RegenerateInput{
		MessagePublicID: "msg_missing",
	})
	if err == nil {
		t.Fatal("expected an error for an unknown message")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("expected a not-found error, got %v", err)
	}
}

func TestRegenerateMultiModelTargetRejected(t *testing.T) {
	ctx := context.Background()
	gateway := newFakeGateway()
	svc, convRepo, _ := newTestService(gateway)

	multi := conversation.NewAssistantMessage("msg_multi", "blended", conversation.GenerationMetadata{ModelPublicID: "model_a"})
	multi.Metadata = append(multi.Metadata, conversation.GenerationMetadata{ModelPublicID: "model_b"})

	seeded := seedConversation(t, convRepo, "prompt", []*conversation.Message{
		conversation.NewUserMessage("msg_u0", "question"),
		multi,
	})

	_, err := svc.Regenerate(ctx, RegenerateInput{
		ConversationPublicID: seeded.PublicID,
		MessagePublicID:      "msg_multi",
	})
	if err == nil {
		t.Fatal("expected an error for a target with two originating models")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("expected a validation error, got %v", err)
	}
}
