package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/minerals"
)

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
	}))
}

func TestOpenAITranslate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		chatReply(t, w, `{"common_name":"Cuarzo","description":"Mineral común","mineral_family":"Silicatos",
			"formula":"SiO2","crystal_system":"Trigonal","color":"Incoloro","streak":"Blanca","luster":"Vítreo","notes":""}`)
	}))
	defer srv.Close()

	svc := NewOpenAI("sk-test", "", WithEndpoint(srv.URL))
	es := i18n.MustLookup("es")
	out, err := svc.Translate(context.Background(), minerals.Text{CommonName: "Quartz", Formula: "SiO2"}, es)
	require.NoError(t, err)

	assert.Equal(t, "Cuarzo", out.CommonName)
	assert.Equal(t, "SiO2", out.Formula)
	assert.Equal(t, DefaultOpenAIModel, got.Model)
	assert.Equal(t, "mineral_translation_es", got.ResponseFormat.JSONSchema.Name)
	assert.True(t, got.ResponseFormat.JSONSchema.Strict)
	assert.InDelta(t, 0.1, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, translateSystemPrompt, got.Messages[0].Content[0].Text)
	assert.Contains(t, got.Messages[1].Content[0].Text, "into Spanish (es)")
	assert.Contains(t, got.Messages[1].Content[0].Text, `"common_name":"Quartz"`)
}

func TestOpenAISuggest(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		chatReply(t, w, `{"common_name":"Quartz","description":"Clear crystal","mineral_family":"Silicates",
			"formula":"SiO2","hardness_mohs":7,"density_g_cm3":2.65,"crystal_system":"Trigonal","color":"Colorless",
			"streak":"White","luster":"Vitreous","notes":"",
			"major_elements":[{"element":"O","percent":53.3},{"element":" ","percent":1},{"element":"Si","percent":46.7}]}`)
	}))
	defer srv.Close()

	svc := NewOpenAI("sk-test", "gpt-test", WithEndpoint(srv.URL))
	s, err := svc.Suggest(context.Background(), SuggestRequest{Image: []byte{0x89, 'P', 'N', 'G'}, Ext: "png", Context: "found near a creek"})
	require.NoError(t, err)

	assert.Equal(t, "Quartz", s.CommonName)
	assert.InDelta(t, 7.0, s.HardnessMohs, 1e-9)
	assert.Equal(t, map[string]float64{"O": 53.3, "Si": 46.7}, s.ElementsMap())
	assert.Equal(t, "O=53.30\nSi=46.70", s.ElementsText())

	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, suggestSchemaName, got.ResponseFormat.JSONSchema.Name)
	require.Len(t, got.Messages[1].Content, 2)
	assert.Contains(t, got.Messages[1].Content[0].Text, "found near a creek")
	assert.True(t, strings.HasPrefix(got.Messages[1].Content[1].ImageURL.URL, "data:image/png;base64,"))
}

func TestOpenAIErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"error":"slow down"}`, http.StatusTooManyRequests)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errors.ErrRateLimited)
				assert.True(t, errors.IsProviderUnavailable(err))
			},
		},
		{
			name: "missing field",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				chatReply(t, w, `{"common_name":"Cuarzo"}`)
			},
			check: func(t *testing.T, err error) {
				var pe *errors.ParseError
				assert.ErrorAs(t, err, &pe)
			},
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsProviderUnavailable(err))
			},
		},
		{
			name: "too slow",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsTimeout(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			svc := NewOpenAI("sk-test", "", WithEndpoint(srv.URL))
			_, err := svc.Translate(ctx, minerals.Text{CommonName: "Quartz"}, i18n.MustLookup("de"))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOpenAIWithoutKey(t *testing.T) {
	svc := NewOpenAI("", "", WithEndpoint("http://127.0.0.1:1"))
	_, err := svc.Translate(context.Background(), minerals.Text{}, i18n.MustLookup("fr"))
	assert.ErrorIs(t, err, errors.ErrAPIKeyRequired)
}

func TestDecodeTranslationRepairsOutput(t *testing.T) {
	raw := "{'common_name': 'Quarz', 'description': 'Häufig', 'mineral_family': 'Silikate', 'formula': 'SiO2', " +
		"'crystal_system': 'Trigonal', 'color': 'Farblos', 'streak': 'Weiß', 'luster': 'Glasglanz', 'notes': '',}"
	out, err := decodeTranslation(ProviderOpenAI, raw)
	require.NoError(t, err)
	assert.Equal(t, "Quarz", out.CommonName)
	assert.Equal(t, "Weiß", out.Streak)
}

func TestDecodeModelJSONEmpty(t *testing.T) {
	var v map[string]any
	err := decodeModelJSON(ProviderGemini, "   ", &v)
	var pe *errors.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Message, "empty")
}

func TestSchemas(t *testing.T) {
	tr := translationJSONSchema()
	assert.Equal(t, false, tr["additionalProperties"])
	assert.Len(t, tr["properties"], 9)
	assert.Equal(t, textFields, tr["required"])

	sg := suggestionJSONSchema()
	assert.Len(t, sg["properties"], 12)
	props := sg["properties"].(map[string]any)
	assert.Equal(t, "number", props["hardness_mohs"].(map[string]any)["type"])
	assert.Equal(t, "array", props["major_elements"].(map[string]any)["type"])

	gs := translationGenaiSchema()
	assert.Len(t, gs.Properties, 9)
	assert.Len(t, suggestionGenaiSchema().Properties, 12)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected string
		wantErr  bool
	}{
		{name: "no keys", cfg: Config{}, expected: ProviderNone},
		{name: "openai key", cfg: Config{OpenAIKey: "k"}, expected: ProviderOpenAI},
		{name: "gemini key", cfg: Config{GeminiKey: "k"}, expected: ProviderGemini},
		{name: "openai preferred", cfg: Config{OpenAIKey: "k", GeminiKey: "g"}, expected: ProviderOpenAI},
		{name: "explicit gemini", cfg: Config{Provider: "Gemini", OpenAIKey: "k"}, expected: ProviderGemini},
		{name: "explicit none", cfg: Config{Provider: "none", OpenAIKey: "k"}, expected: ProviderNone},
		{name: "unknown", cfg: Config{Provider: "claude"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := New(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, svc.Name())
			assert.Equal(t, tt.expected == ProviderNone, IsDisabled(svc))
		})
	}
}

func TestDisabled(t *testing.T) {
	svc := Instrument(Disabled{})
	_, err := svc.Suggest(context.Background(), SuggestRequest{})
	assert.ErrorIs(t, err, errors.ErrAPIKeyRequired)
	_, err = svc.Translate(context.Background(), minerals.Text{}, i18n.MustLookup("ja"))
	assert.ErrorIs(t, err, errors.ErrAPIKeyRequired)
}
