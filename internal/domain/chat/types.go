package chat

import (
	"context"
	"errors"
	"fmt"

	"llm-evaluator/internal/domain/conversation"
	"llm-evaluator/internal/domain/model"
)

// FailureKind classifies why a single model's completion call failed.
type FailureKind string

const (
	// FailureProviderUnavailable covers connection errors and timeouts.
	FailureProviderUnavailable FailureKind = "provider_unavailable"
	// FailureProviderRejected covers HTTP error statuses from the endpoint,
	// including auth failures.
	FailureProviderRejected FailureKind = "provider_rejected"
	// FailureMalformedResponse covers payloads the adapter cannot parse.
	FailureMalformedResponse FailureKind = "malformed_response"
)

// ProviderFailure is the error a completion gateway returns when a call to a
// provider fails. It carries the classification; the gateway never retries.
type ProviderFailure struct {
	Kind FailureKind
	Err  error
}

func (e *ProviderFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *ProviderFailure) Unwrap() error {
	return e.Err
}

// CompletionResult is one model's raw answer with the wire timing the
// adapter observed. Token fields may be negative or inconsistent when the
// provider reports bad usage numbers; NormalizeMetadata sanitizes them.
type CompletionResult struct {
	Content           string
	TimeToFirstToken  float64
	TokensPerSecond   float64
	OutputTokens      int
	InputTokens       *int
	CachedInputTokens *int
}

// CompletionGateway issues one completion call against the provider backing
// the given model. Implemented by the inference layer. Errors are
// *ProviderFailure; the gateway enforces the per-call timeout.
type CompletionGateway interface {
	Complete(ctx context.Context, m *model.Model, systemPrompt string, history []conversation.Message) (*CompletionResult, error)
}

// ModelFailure is the per-model error surfaced to the caller when a slot in
// a fan-out fails. Failures are reported explicitly, never silently dropped.
type ModelFailure struct {
	ModelPublicID string      `json:"model_id"`
	Kind          FailureKind `json:"reason"`
	Message       string      `json:"message"`
}

// ModelResult is one slot in a fan-out result. Exactly one of Result and
// Failure is set.
type ModelResult struct {
	Model   *model.Model
	Result  *CompletionResult
	Failure *ModelFailure
}

// MutationResult is the outcome of an append, edit or regenerate. The
// conversation reflects the committed state; Failures lists every selected
// model that did not produce a turn.
type MutationResult struct {
	Conversation *conversation.Conversation
	Failures     []ModelFailure
}

// Recorder feeds operational metrics from dispatch outcomes. Implemented by
// the metrics infrastructure; the domain only reports, never aggregates.
type Recorder interface {
	ObserveFanout(size int)
	ObserveCompletion(modelPublicID string, meta conversation.GenerationMetadata)
	ObserveFailure(modelPublicID string, kind FailureKind)
}

// NopRecorder discards all observations.
type NopRecorder struct{}

func (NopRecorder) ObserveFanout(int)                                         {}
func (NopRecorder) ObserveCompletion(string, conversation.GenerationMetadata) {}
func (NopRecorder) ObserveFailure(string, FailureKind)                        {}

func classifyFailure(modelPublicID string, err error) ModelFailure {
	var pf *ProviderFailure
	if errors.As(err, &pf) {
		return ModelFailure{ModelPublicID: modelPublicID, Kind: pf.Kind, Message: pf.Error()}
	}
	// Timeouts, cancellations and anything unclassified read as the
	// provider being unreachable.
	return ModelFailure{ModelPublicID: modelPublicID, Kind: FailureProviderUnavailable, Message: err.Error()}
}
