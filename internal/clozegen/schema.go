package clozegen

import "github.com/lernwerk/vokabel/internal/llm"

// ClozeSchema is the structured output of a cloze generation request.
var ClozeSchema = &llm.Schema{
	Name:        "vocab-cloze",
	Description: "One German and one English example sentence with the vocabulary word blanked out",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cloze_de": map[string]any{
				"type":        "string",
				"description": "A short German sentence in which the German word is replaced by ___",
			},
			"cloze_en": map[string]any{
				"type":        "string",
				"description": "A short English sentence in which the English word is replaced by ___",
			},
		},
		"required":             []any{"cloze_de", "cloze_en"},
		"additionalProperties": false,
	},
}
