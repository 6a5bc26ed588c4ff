package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"llm-evaluator/internal/infrastructure/logger"

	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"
)

const (
	dataPrefix           = "data: "
	doneMarker           = "[DONE]"
	scannerInitialBuffer = 12 * 1024        // 12KB
	scannerMaxBuffer     = 10 * 1024 * 1024 // 10MB
)

// StatusError is a non-2xx answer from the provider. The status code lets
// callers distinguish a rejection from an unreachable endpoint.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("provider returned status %d", e.Status)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.Status, e.Body)
}

// ParseError is a 2xx answer whose payload could not be decoded as an
// OpenAI-compatible stream.
type ParseError struct {
	Data string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable provider response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StreamStats is everything a single streamed completion yields once the
// stream has been fully drained: the assembled text plus the timings and
// token counts needed for generation metadata.
type StreamStats struct {
	Content            string
	TimeToFirstToken   time.Duration
	TotalDuration      time.Duration
	CompletionTokens   int
	PromptTokens       *int
	CachedPromptTokens *int
	// UsageReported is false when the provider never sent a usage chunk and
	// CompletionTokens is a whitespace word estimate instead.
	UsageReported bool
}

type streamUsage struct {
	PromptTokens        int `json:"prompt_tokens"`
	CompletionTokens    int `json:"completion_tokens"`
	TotalTokens         int `json:"total_tokens"`
	PromptTokensDetails *struct {
		CachedTokens int `json:"cached_tokens"`
	} `json:"prompt_tokens_details"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content          string `json:"content"`
			ReasoningContent string `json:"reasoning_content"`
		} `json:"delta"`
	} `json:"choices"`
	Usage *streamUsage `json:"usage"`
}

// CompletionClient issues streaming chat completions against one
// OpenAI-compatible base URL.
type CompletionClient struct {
	client  *resty.Client
	baseURL string
	name    string
}

func NewCompletionClient(client *resty.Client, name, baseURL string) *CompletionClient {
	return &CompletionClient{
		client:  client,
		baseURL: normalizeBaseURL(baseURL),
		name:    name,
	}
}

// StreamChatCompletion runs the request in streaming mode and drains the
// stream to completion. Time to first token is measured from just before the
// request is sent to the first chunk carrying content.
func (c *CompletionClient) StreamChatCompletion(ctx context.Context, apiKey string, request openai.ChatCompletionRequest) (*StreamStats, error) {
	request.Stream = true
	// forced on to collect token usage from the final chunk
	request.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

	start := time.Now()
	resp, err := c.doStreamingRequest(ctx, apiKey, request)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.RawResponse.Body.Close(); closeErr != nil {
			log := logger.GetLogger()
			log.Error().Err(closeErr).Str("client", c.name).Msg("unable to close response body")
		}
	}()

	stats := &StreamStats{}
	var contentBuilder strings.Builder
	firstToken := time.Duration(-1)

	scanner := bufio.NewScanner(resp.RawResponse.Body)
	scanner.Buffer(make([]byte, 0, scannerInitialBuffer), scannerMaxBuffer)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := scanner.Text()
		data, found := strings.CutPrefix(line, dataPrefix)
		if !found {
			continue
		}
		if data == doneMarker {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil, &ParseError{Data: data, Err: err}
		}

		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if firstToken < 0 {
				firstToken = time.Since(start)
			}
			contentBuilder.WriteString(choice.Delta.Content)
		}

		if chunk.Usage != nil && chunk.Usage.TotalTokens > 0 {
			stats.UsageReported = true
			stats.CompletionTokens = chunk.Usage.CompletionTokens
			prompt := chunk.Usage.PromptTokens
			stats.PromptTokens = &prompt
			if chunk.Usage.PromptTokensDetails != nil {
				cached := chunk.Usage.PromptTokensDetails.CachedTokens
				stats.CachedPromptTokens = &cached
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	stats.Content = contentBuilder.String()
	stats.TotalDuration = time.Since(start)
	if firstToken < 0 {
		firstToken = stats.TotalDuration
	}
	stats.TimeToFirstToken = firstToken
	if !stats.UsageReported {
		stats.CompletionTokens = EstimateTokens(stats.Content)
	}
	return stats, nil
}

func (c *CompletionClient) doStreamingRequest(ctx context.Context, apiKey string, request openai.ChatCompletionRequest) (*resty.Response, error) {
	req := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request).
		SetDoNotParseResponse(true)
	if strings.TrimSpace(apiKey) != "" {
		req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	}
	if req.Header.Get("Accept-Encoding") == "" {
		req.SetHeader("Accept-Encoding", "identity")
	}

	resp, err := req.Post(endpoint(c.baseURL, "/chat/completions"))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, statusErrorFromResponse(resp)
	}
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return nil, &ParseError{Err: fmt.Errorf("empty response body")}
	}
	return resp, nil
}

func statusErrorFromResponse(resp *resty.Response) error {
	statusErr := &StatusError{Status: resp.StatusCode()}
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return statusErr
	}
	defer resp.RawResponse.Body.Close()
	body, err := io.ReadAll(resp.RawResponse.Body)
	if err != nil {
		return statusErr
	}
	statusErr.Body = strings.TrimSpace(string(body))
	return statusErr
}

// EstimateTokens is the whitespace word count fallback for providers that
// never report usage.
func EstimateTokens(text string) int {
	return len(strings.Fields(text))
}

func endpoint(baseURL, path string) string {
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if baseURL == "" {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return baseURL + path
	}
	return baseURL + "/" + path
}

func normalizeBaseURL(base string) string {
	trimmed := strings.TrimSpace(base)
	trimmed = strings.TrimRight(trimmed, "/")
	return trimmed
}
