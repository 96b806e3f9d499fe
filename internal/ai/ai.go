// Package ai talks to the external suggestion and translation services.
//
// Both operations return structured JSON constrained by a fixed schema. Any
// transport failure, non-conforming payload or timeout is returned as an
// error; callers decide the fallback.
package ai

import (
	"context"
	"strings"

	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/minerals"
)

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// SuggestRequest carries an uploaded photo and optional operator context.
type SuggestRequest struct {
	Image   []byte
	Ext     string
	Context string
}

// Element is one element share in a suggestion.
type Element struct {
	Element string  `json:"element"`
	Percent float64 `json:"percent"`
}

// Suggestion is the model's proposed record for a photo.
type Suggestion struct {
	CommonName    string    `json:"common_name"`
	Description   string    `json:"description"`
	Family        string    `json:"mineral_family"`
	Formula       string    `json:"formula"`
	HardnessMohs  float64   `json:"hardness_mohs"`
	DensityGCm3   float64   `json:"density_g_cm3"`
	CrystalSystem string    `json:"crystal_system"`
	Color         string    `json:"color"`
	Streak        string    `json:"streak"`
	Luster        string    `json:"luster"`
	MajorElements []Element `json:"major_elements"`
	Notes         string    `json:"notes"`
}

// ElementsMap converts the element list to a map, dropping blank names.
func (s Suggestion) ElementsMap() map[string]float64 {
	out := make(map[string]float64, len(s.MajorElements))
	for _, e := range s.MajorElements {
		name := strings.TrimSpace(e.Element)
		if name == "" {
			continue
		}
		out[name] = e.Percent
	}
	return out
}

// ElementsText renders the element list in the form's line format.
func (s Suggestion) ElementsText() string {
	return minerals.ElementsToText(s.ElementsMap())
}

// Service is an AI backend.
type Service interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// Suggest proposes record fields for a photo.
	Suggest(ctx context.Context, req SuggestRequest) (Suggestion, error)
	// Translate renders the translatable fields of a base-language record in target.
	Translate(ctx context.Context, source minerals.Text, target i18n.Language) (minerals.Text, error)
}
