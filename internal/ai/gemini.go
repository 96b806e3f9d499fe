package ai

import (
	"context"
	"sync"

	"google.golang.org/genai"

	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/minerals"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini is a Service backed by the Gemini API.
type Gemini struct {
	apiKey string
	model  string

	mu     sync.Mutex
	client *genai.Client
}

// NewGemini creates a Gemini service. The SDK client is created on first use.
func NewGemini(apiKey, model string) *Gemini {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{apiKey: apiKey, model: model}
}

// Name implements Service.
func (g *Gemini) Name() string { return ProviderGemini }

func (g *Gemini) getOrCreateClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}
	if g.apiKey == "" {
		return nil, &errors.APIError{Provider: ProviderGemini, Message: "no API key configured", Err: errors.ErrAPIKeyRequired}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  g.apiKey,
	})
	if err != nil {
		return nil, errors.WrapAPI(ProviderGemini, 0, err)
	}
	g.client = client
	return client, nil
}

func (g *Gemini) generate(ctx context.Context, system string, parts []*genai.Part, schema *genai.Schema, temperature float32) (string, error) {
	client, err := g.getOrCreateClient(ctx)
	if err != nil {
		return "", err
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(temperature),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.NewTimeoutError(ProviderGemini, "", err.Error())
		}
		return "", errors.WrapAPI(ProviderGemini, 0, err)
	}
	return resp.Text(), nil
}

// Suggest implements Service.
func (g *Gemini) Suggest(ctx context.Context, req SuggestRequest) (Suggestion, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(suggestUserPrompt(req.Context)),
		genai.NewPartFromBytes(req.Image, minerals.ContentTypeForExt(req.Ext)),
	}
	raw, err := g.generate(ctx, suggestSystemPrompt, parts, suggestionGenaiSchema(), suggestTemperature)
	if err != nil {
		return Suggestion{}, err
	}
	return decodeSuggestion(ProviderGemini, raw)
}

// Translate implements Service.
func (g *Gemini) Translate(ctx context.Context, source minerals.Text, target i18n.Language) (minerals.Text, error) {
	prompt, err := translateUserPrompt(source, target)
	if err != nil {
		return minerals.Text{}, errors.WrapParse("json", "translation source", err)
	}
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	raw, err := g.generate(ctx, translateSystemPrompt, parts, translationGenaiSchema(), translateTemperature)
	if err != nil {
		return minerals.Text{}, err
	}
	return decodeTranslation(ProviderGemini, raw)
}

func suggestionGenaiSchema() *genai.Schema {
	props := map[string]*genai.Schema{}
	for _, f := range suggestFields {
		props[f] = &genai.Schema{Type: genai.TypeString}
	}
	props["hardness_mohs"] = &genai.Schema{Type: genai.TypeNumber}
	props["density_g_cm3"] = &genai.Schema{Type: genai.TypeNumber}
	props["major_elements"] = &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"element": {Type: genai.TypeString},
				"percent": {Type: genai.TypeNumber},
			},
			Required: []string{"element", "percent"},
		},
	}
	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		Required:         suggestFields,
		PropertyOrdering: suggestFields,
	}
}

func translationGenaiSchema() *genai.Schema {
	props := map[string]*genai.Schema{}
	for _, f := range textFields {
		props[f] = &genai.Schema{Type: genai.TypeString}
	}
	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		Required:         textFields,
		PropertyOrdering: textFields,
	}
}
