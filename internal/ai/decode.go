package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/minerals"
)

// decodeModelJSON decodes model output into v. Output that is not valid JSON
// gets one repair pass before it is rejected.
func decodeModelJSON(provider, raw string, v any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.NewParseError("json", provider, "empty model output", nil)
	}
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}
	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return errors.NewParseError("json", provider, "unrepairable model output", err)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return errors.NewParseError("json", provider, "model output does not match schema", err)
	}
	return nil
}

// translationPayload uses pointers so missing keys are detected.
type translationPayload struct {
	CommonName    *string `json:"common_name"`
	Description   *string `json:"description"`
	Family        *string `json:"mineral_family"`
	Formula       *string `json:"formula"`
	CrystalSystem *string `json:"crystal_system"`
	Color         *string `json:"color"`
	Streak        *string `json:"streak"`
	Luster        *string `json:"luster"`
	Notes         *string `json:"notes"`
}

// decodeTranslation parses a translation and enforces that every schema key is present.
func decodeTranslation(provider, raw string) (minerals.Text, error) {
	var p translationPayload
	if err := decodeModelJSON(provider, raw, &p); err != nil {
		return minerals.Text{}, err
	}
	fields := []struct {
		name string
		val  *string
	}{
		{"common_name", p.CommonName},
		{"description", p.Description},
		{"mineral_family", p.Family},
		{"formula", p.Formula},
		{"crystal_system", p.CrystalSystem},
		{"color", p.Color},
		{"streak", p.Streak},
		{"luster", p.Luster},
		{"notes", p.Notes},
	}
	for _, f := range fields {
		if f.val == nil {
			return minerals.Text{}, errors.NewParseError("json", provider, fmt.Sprintf("translation is missing %q", f.name), nil)
		}
	}
	return minerals.Text{
		CommonName:    *p.CommonName,
		Description:   *p.Description,
		Family:        *p.Family,
		Formula:       *p.Formula,
		CrystalSystem: *p.CrystalSystem,
		Color:         *p.Color,
		Streak:        *p.Streak,
		Luster:        *p.Luster,
		Notes:         *p.Notes,
	}, nil
}

// decodeSuggestion parses a suggestion.
func decodeSuggestion(provider, raw string) (Suggestion, error) {
	var s Suggestion
	if err := decodeModelJSON(provider, raw, &s); err != nil {
		return Suggestion{}, err
	}
	return s, nil
}
