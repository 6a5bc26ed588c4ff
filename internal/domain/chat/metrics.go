package chat

import (
	"context"

	"llm-evaluator/internal/domain/conversation"
	"llm-evaluator/internal/utils/platformerrors"
)

// NormalizeMetadata converts a raw completion result into committed
// generation metadata. Negative numerics are clamped to zero. A cached token
// count exceeding the input token count is reported as a validation error,
// but the returned metadata is still usable with the offending optional
// fields dropped; the generated text is never discarded over bad metrics.
func NormalizeMetadata(ctx context.Context, modelPublicID string, res *CompletionResult) (conversation.GenerationMetadata, error) {
	meta := conversation.GenerationMetadata{
		ModelPublicID:    modelPublicID,
		TimeToFirstToken: clampFloat(res.TimeToFirstToken),
		TokensPerSecond:  clampFloat(res.TokensPerSecond),
		OutputTokens:     clampInt(res.OutputTokens),
	}
	if res.InputTokens != nil {
		v := clampInt(*res.InputTokens)
		meta.InputTokens = &v
	}
	if res.CachedInputTokens != nil {
		v := clampInt(*res.CachedInputTokens)
		meta.CachedInputTokens = &v
	}

	if meta.CachedInputTokens != nil {
		if meta.InputTokens == nil || *meta.CachedInputTokens > *meta.InputTokens {
			meta.CachedInputTokens = nil
			return meta, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"cached input token count exceeds input token count", nil,
				"5a8c2e4f-9b1d-4f7a-8e3c-6d0b2a4c8e1f",
				map[string]any{"model_id": modelPublicID})
		}
	}

	return meta, nil
}

func clampFloat(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
