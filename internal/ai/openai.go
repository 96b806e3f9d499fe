package ai

import (
	"context"
	"encoding/base64"

	"github.com/waajacu/minerals/internal/transport"
	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/minerals"
)

// DefaultOpenAIEndpoint is the chat completions endpoint.
const DefaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAI is a Service backed by the OpenAI chat completions API.
type OpenAI struct {
	client   *transport.Client
	model    string
	endpoint string
}

// OpenAIOption configures an OpenAI service.
type OpenAIOption func(*OpenAI)

// WithEndpoint overrides the chat completions URL.
func WithEndpoint(url string) OpenAIOption {
	return func(o *OpenAI) { o.endpoint = url }
}

// WithTransport replaces the HTTP transport client.
func WithTransport(c *transport.Client) OpenAIOption {
	return func(o *OpenAI) { o.client = c }
}

// NewOpenAI creates an OpenAI service.
func NewOpenAI(apiKey, model string, opts ...OpenAIOption) *OpenAI {
	if model == "" {
		model = DefaultOpenAIModel
	}
	o := &OpenAI{
		client:   transport.New(ProviderOpenAI, apiKey, &transport.BearerAuth{}),
		model:    model,
		endpoint: DefaultOpenAIEndpoint,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name implements Service.
func (o *OpenAI) Name() string { return ProviderOpenAI }

type chatPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string     `json:"role"`
	Content []chatPart `json:"content"`
}

type jsonSchemaFormat struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type responseFormat struct {
	Type       string           `json:"type"`
	JSONSchema jsonSchemaFormat `json:"json_schema"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float64        `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *OpenAI) complete(ctx context.Context, req chatRequest) (string, error) {
	var resp chatResponse
	if err := o.client.PostJSON(ctx, o.endpoint, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &errors.APIError{Provider: ProviderOpenAI, Message: "response has no choices", Endpoint: o.endpoint}
	}
	msg := resp.Choices[0].Message
	if msg.Content == "" && msg.Refusal != "" {
		return "", &errors.APIError{Provider: ProviderOpenAI, Message: "model refused: " + msg.Refusal, Endpoint: o.endpoint}
	}
	return msg.Content, nil
}

// Suggest implements Service.
func (o *OpenAI) Suggest(ctx context.Context, req SuggestRequest) (Suggestion, error) {
	dataURL := "data:" + minerals.ContentTypeForExt(req.Ext) + ";base64," + base64.StdEncoding.EncodeToString(req.Image)
	body := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: []chatPart{{Type: "text", Text: suggestSystemPrompt}}},
			{Role: "user", Content: []chatPart{
				{Type: "text", Text: suggestUserPrompt(req.Context)},
				{Type: "image_url", ImageURL: &chatImageURL{URL: dataURL}},
			}},
		},
		ResponseFormat: responseFormat{
			Type:       "json_schema",
			JSONSchema: jsonSchemaFormat{Name: suggestSchemaName, Strict: true, Schema: suggestionJSONSchema()},
		},
		Temperature: suggestTemperature,
	}
	raw, err := o.complete(ctx, body)
	if err != nil {
		return Suggestion{}, err
	}
	return decodeSuggestion(ProviderOpenAI, raw)
}

// Translate implements Service.
func (o *OpenAI) Translate(ctx context.Context, source minerals.Text, target i18n.Language) (minerals.Text, error) {
	prompt, err := translateUserPrompt(source, target)
	if err != nil {
		return minerals.Text{}, errors.WrapParse("json", "translation source", err)
	}
	body := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: []chatPart{{Type: "text", Text: translateSystemPrompt}}},
			{Role: "user", Content: []chatPart{{Type: "text", Text: prompt}}},
		},
		ResponseFormat: responseFormat{
			Type:       "json_schema",
			JSONSchema: jsonSchemaFormat{Name: translateSchemaName(target), Strict: true, Schema: translationJSONSchema()},
		},
		Temperature: translateTemperature,
	}
	raw, err := o.complete(ctx, body)
	if err != nil {
		return minerals.Text{}, err
	}
	return decodeTranslation(ProviderOpenAI, raw)
}
