package chat

import (
	"context"
	"sync"

	"llm-evaluator/internal/domain/conversation"
	"llm-evaluator/internal/domain/model"
	"llm-evaluator/internal/infrastructure/logger"
	"llm-evaluator/internal/utils/platformerrors"
)

// Dispatcher fans one prompt out to a set of models concurrently and joins
// all results. One slot per selected model, in selection order, regardless
// of which call finishes first. A slot's failure never cancels or delays
// its siblings.
type Dispatcher struct {
	gateway  CompletionGateway
	recorder Recorder
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(gateway CompletionGateway, recorder Recorder) *Dispatcher {
	return &Dispatcher{gateway: gateway, recorder: recorder}
}

// Dispatch runs one completion call per model against the given history and
// system prompt. An empty selection is a caller contract violation and fails
// fast with no network calls.
func (d *Dispatcher) Dispatch(ctx context.Context, history []conversation.Message, systemPrompt string, models []*model.Model) ([]ModelResult, error) {
	if len(models) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"no models selected for dispatch", nil, "3e7b9d1f-5a2c-4e8b-9f4d-1c6a8b0e2d5f")
	}

	d.recorder.ObserveFanout(len(models))

	results := make([]ModelResult, len(models))
	var wg sync.WaitGroup
	for i, m := range models {
		wg.Add(1)
		go func(slot int, m *model.Model) {
			defer wg.Done()
			results[slot] = d.complete(ctx, history, systemPrompt, m)
		}(i, m)
	}
	wg.Wait()

	return results, nil
}

func (d *Dispatcher) complete(ctx context.Context, history []conversation.Message, systemPrompt string, m *model.Model) ModelResult {
	log := logger.GetLogger()

	res, err := d.gateway.Complete(ctx, m, systemPrompt, history)
	if err != nil {
		failure := classifyFailure(m.PublicID, err)
		d.recorder.ObserveFailure(m.PublicID, failure.Kind)
		log.Warn().
			Str("model_id", m.PublicID).
			Str("model", m.ModelID).
			Str("reason", string(failure.Kind)).
			Err(err).
			Msg("model completion failed")
		return ModelResult{Model: m, Failure: &failure}
	}

	return ModelResult{Model: m, Result: res}
}
