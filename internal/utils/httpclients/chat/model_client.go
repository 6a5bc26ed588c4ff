package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"resty.dev/v3"
)

// ModelClient lists the models an OpenAI-compatible endpoint exposes.
type ModelClient struct {
	client  *resty.Client
	baseURL string
	name    string
}

type ModelsResponse struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// Model is one entry from a provider's /models listing. Providers disagree on
// where the human-readable name lives, so the raw payload is kept around and
// DisplayName is backfilled from whichever field is present.
type Model struct {
	ID          string         `json:"id"`
	Object      string         `json:"object"`
	OwnedBy     string         `json:"owned_by"`
	DisplayName string         `json:"display_name"`
	Name        string         `json:"name"`
	Raw         map[string]any `json:"-"`
}

func (m *Model) UnmarshalJSON(data []byte) error {
	type Alias Model
	aux := Alias{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Model(aux)
	m.Raw = raw
	if m.DisplayName == "" {
		if display, ok := raw["display_name"].(string); ok && display != "" {
			m.DisplayName = display
		} else if name, ok := raw["name"].(string); ok && name != "" {
			m.DisplayName = name
		} else {
			m.DisplayName = m.ID
		}
	}
	return nil
}

func NewModelClient(client *resty.Client, name, baseURL string) *ModelClient {
	return &ModelClient{
		client:  client,
		baseURL: normalizeBaseURL(baseURL),
		name:    name,
	}
}

func (c *ModelClient) ListModels(ctx context.Context, apiKey string) (*ModelsResponse, error) {
	var respBody ModelsResponse
	req := c.client.R().
		SetContext(ctx).
		SetResult(&respBody)
	if strings.TrimSpace(apiKey) != "" {
		req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	}
	resp, err := req.Get(endpoint(c.baseURL, "/models"))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, statusErrorFromResponse(resp)
	}
	return &respBody, nil
}
