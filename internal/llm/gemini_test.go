package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cloze_de": map[string]any{"type": "string", "description": "German sentence"},
			"level":    map[string]any{"type": "string", "enum": []any{"easy", "hard"}},
			"count":    map[string]any{"type": "integer"},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"cloze_de"},
	}

	s := geminiSchema(def)
	if s.Type != genai.TypeObject {
		t.Fatalf("Type = %s, want OBJECT", s.Type)
	}
	if len(s.Properties) != 4 {
		t.Fatalf("properties = %d, want 4", len(s.Properties))
	}
	if p := s.Properties["cloze_de"]; p.Type != genai.TypeString || p.Description != "German sentence" {
		t.Errorf("cloze_de = %+v", p)
	}
	if got := s.Properties["level"].Enum; len(got) != 2 {
		t.Errorf("level enum = %v", got)
	}
	if s.Properties["count"].Type != genai.TypeInteger {
		t.Errorf("count type = %s", s.Properties["count"].Type)
	}
	if s.Properties["tags"].Items.Type != genai.TypeString {
		t.Errorf("tags items = %s", s.Properties["tags"].Items.Type)
	}
	if len(s.Required) != 1 || s.Required[0] != "cloze_de" {
		t.Errorf("Required = %v", s.Required)
	}
}

func TestGeminiSchemaUnknownType(t *testing.T) {
	if s := geminiSchema(map[string]any{"type": "null"}); s.Type != genai.TypeString {
		t.Errorf("Type = %s, want STRING fallback", s.Type)
	}
}
