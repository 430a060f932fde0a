package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Name: "test-cloze",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"cloze_de": map[string]any{"type": "string"},
				"cloze_en": map[string]any{"type": "string"},
				"level":    map[string]any{"type": "string", "enum": []string{"easy", "hard"}},
			},
			"required": []string{"cloze_de"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		schema  *Schema
		raw     string
		wantErr bool
	}{
		{"valid", testSchema(), `{"cloze_de":"Das ___.","cloze_en":"The ___."}`, false},
		{"optional missing", testSchema(), `{"cloze_de":"Das ___."}`, false},
		{"required missing", testSchema(), `{"cloze_en":"The ___."}`, true},
		{"wrong type", testSchema(), `{"cloze_de":3}`, true},
		{"enum", testSchema(), `{"cloze_de":"x","level":"medium"}`, true},
		{"malformed", testSchema(), `{"cloze_de":`, true},
		{"empty", testSchema(), ``, true},
		{"nil schema", nil, `not json at all`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(tt.schema, json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *InvalidResponseError
				if !errors.As(err, &inv) {
					t.Errorf("err = %T, want *InvalidResponseError", err)
				}
			}
		})
	}
}

func TestCompileSchemaCached(t *testing.T) {
	a, err := compileSchema(testSchema())
	if err != nil {
		t.Fatal(err)
	}
	b, err := compileSchema(testSchema())
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("schema compiled twice")
	}
}
