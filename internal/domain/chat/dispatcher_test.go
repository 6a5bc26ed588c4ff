package chat

import (
	"context"
	"testing"
	"time"

	"llm-evaluator/internal/domain/conversation"
	"llm-evaluator/internal/domain/model"
	"llm-evaluator/internal/utils/platformerrors"
)

func TestDispatchKeepsSelectionOrder(t *testing.T) {
	gateway := newFakeGateway()
	// m3 answers first, m1 last; output slots must still follow the
	// selection order.
	gateway.respond("model_1", &CompletionResult{Content: "one"}, 60*time.Millisecond)
	gateway.respond("model_2", &CompletionResult{Content: "two"}, 30*time.Millisecond)
	gateway.respond("model_3", &CompletionResult{Content: "three"}, 0)

	d := NewDispatcher(gateway, NopRecorder{})
	models := []*model.Model{
		enabledModel(1, "model_1", "alpha"),
		enabledModel(2, "model_2", "beta"),
		enabledModel(3, "model_3", "gamma"),
	}
	history := []conversation.Message{{Role: conversation.RoleUser, Content: "hi"}}

	results, err := d.Dispatch(context.Background(), history, "", models)
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 result slots, got %d", len(results))
	}
	for i, want := range []string{"one", "two", "three"} {
		if results[i].Failure != nil {
			t.Fatalf("slot %d unexpectedly failed: %v", i, results[i].Failure)
		}
		if results[i].Result.Content != want {
			t.Errorf("slot %d content = %q, want %q", i, results[i].Result.Content, want)
		}
		if results[i].Model.PublicID != models[i].PublicID {
			t.Errorf("slot %d model = %s, want %s", i, results[i].Model.PublicID, models[i].PublicID)
		}
	}
}

func TestDispatchIsolatesSlotFailures(t *testing.T) {
	gateway := newFakeGateway()
	gateway.respond("model_1", &CompletionResult{Content: "ok"}, 0)
	gateway.fail("model_2", FailureProviderRejected, 0)
	gateway.respond("model_3", &CompletionResult{Content: "also ok"}, 0)

	d := NewDispatcher(gateway, NopRecorder{})
	models := []*model.Model{
		enabledModel(1, "model_1", "alpha"),
		enabledModel(2, "model_2", "beta"),
		enabledModel(3, "model_3", "gamma"),
	}
	history := []conversation.Message{{Role: conversation.RoleUser, Content: "hi"}}

	results, err := d.Dispatch(context.Background(), history, "", models)
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if results[0].Failure != nil || results[2].Failure != nil {
		t.Fatalf("sibling slots must not fail when one model fails")
	}
	if results[1].Failure == nil {
		t.Fatal("expected a failure marker in the failing model's slot")
	}
	if results[1].Failure.Kind != FailureProviderRejected {
		t.Errorf("failure kind = %s, want %s", results[1].Failure.Kind, FailureProviderRejected)
	}
	if results[1].Failure.ModelPublicID != "model_2" {
		t.Errorf("failure model = %s, want model_2", results[1].Failure.ModelPublicID)
	}
}

func TestDispatchEmptySelectionFailsFast(t *testing.T) {
	gateway := newFakeGateway()
	d := NewDispatcher(gateway, NopRecorder{})

	_, err := d.Dispatch(context.Background(), nil, "", nil)
	if err == nil {
		t.Fatal("expected an error for an empty selection")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("expected a validation error, got %v", err)
	}
	if gateway.callCount() != 0 {
		t.Errorf("expected zero network calls, got %d", gateway.callCount())
	}
}
