package ai

import (
	"encoding/json"
	"fmt"

	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/minerals"
)

const (
	suggestSystemPrompt = "You assist mineral cataloging. Use the provided photo (and optional operator context) " +
		"to infer likely mineral properties. Generate a plausible common_name and a concise description. " +
		"If uncertain, provide conservative estimates and practical values. Output must follow JSON schema exactly."

	translateSystemPrompt = "You are a translation engine for mineral catalog metadata. " +
		"Output JSON only and follow schema exactly."

	suggestTemperature   = 0.2
	translateTemperature = 0.1

	suggestSchemaName = "mineral_suggestion"
)

// textFields are the translatable keys, in schema order.
var textFields = []string{
	"common_name", "description", "mineral_family", "formula",
	"crystal_system", "color", "streak", "luster", "notes",
}

// suggestFields are the suggestion keys, in schema order.
var suggestFields = []string{
	"common_name", "description", "mineral_family", "formula", "hardness_mohs",
	"density_g_cm3", "crystal_system", "color", "streak", "luster", "major_elements", "notes",
}

func suggestUserPrompt(operatorContext string) string {
	return fmt.Sprintf("User context (may be empty): %s\n\nGenerate a likely mineral profile from the image. "+
		"The common_name and description must be generated too.", operatorContext)
}

func translateUserPrompt(source minerals.Text, target i18n.Language) (string, error) {
	payload, err := json.Marshal(source)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Translate the mineral metadata JSON from English into %s (%s). "+
		"Use concise professional wording. Preserve chemical formulas and symbols exactly.\n\nSource JSON:\n%s",
		target.Name, target.Code, payload), nil
}

func translateSchemaName(target i18n.Language) string {
	return "mineral_translation_" + string(target.Code)
}

// suggestionJSONSchema is the strict JSON schema for a suggestion.
func suggestionJSONSchema() map[string]any {
	props := map[string]any{}
	for _, f := range suggestFields {
		props[f] = map[string]any{"type": "string"}
	}
	props["hardness_mohs"] = map[string]any{"type": "number"}
	props["density_g_cm3"] = map[string]any{"type": "number"}
	props["major_elements"] = map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"element": map[string]any{"type": "string"},
				"percent": map[string]any{"type": "number"},
			},
			"required": []string{"element", "percent"},
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             suggestFields,
	}
}

// translationJSONSchema is the strict JSON schema for a translation.
func translationJSONSchema() map[string]any {
	props := map[string]any{}
	for _, f := range textFields {
		props[f] = map[string]any{"type": "string"}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             textFields,
	}
}
