package clozegen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/lernwerk/vokabel/internal/llm"
	"github.com/lernwerk/vokabel/internal/logging"
	"github.com/lernwerk/vokabel/internal/vocab"
)

func testWord() vocab.WordEntry {
	return vocab.WordEntry{
		ID:     "w1",
		Source: "Hund",
		Target: "dog; hound",
		Course: vocab.Course{Grade: 5, Unit: 1, Station: 1},
	}
}

func clozeJSON(de, en string) json.RawMessage {
	b, _ := json.Marshal(Cloze{Source: de, Target: en})
	return b
}

func TestGenerate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: clozeJSON("Der ___ bellt laut.", "The ___ barks loudly."),
	})
	gen := New(mock, DefaultConfig())

	c, err := gen.Generate(context.Background(), testWord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Source != "Der ___ bellt laut." {
		t.Errorf("unexpected cloze_de: %q", c.Source)
	}
	if c.Target != "The ___ barks loudly." {
		t.Errorf("unexpected cloze_en: %q", c.Target)
	}

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Schema != ClozeSchema {
		t.Error("expected the cloze schema")
	}
	msg := calls[0].Messages[0].Content
	if !strings.Contains(msg, "German word: Hund") || !strings.Contains(msg, "Other accepted English answers: hound") {
		t.Errorf("unexpected user message:\n%s", msg)
	}
}

func TestGenerate_RetriesWithFeedback(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: clozeJSON("Der Hund ist ein ___.", "The ___ barks.")},
		llm.MockResponse{Content: clozeJSON("Der ___ bellt.", "The ___ barks.")},
	)
	gen := New(mock, DefaultConfig())

	if _, err := gen.Generate(context.Background(), testWord()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := mock.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if !strings.Contains(calls[1].Messages[0].Content, "previous answer was rejected") {
		t.Error("expected validation feedback in the second request")
	}
}

func TestGenerate_GivesUp(t *testing.T) {
	bad := llm.MockResponse{Content: clozeJSON("Kein Platzhalter.", "The ___ barks.")}
	gen := New(llm.NewMockProvider(bad, bad), DefaultConfig())

	_, err := gen.Generate(context.Background(), testWord())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Validator != "structural" {
		t.Errorf("expected structural validator, got %q", verr.Validator)
	}
}

func TestGenerate_SchemaViolation(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"cloze_de": "Der ___ bellt."}`)})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), testWord())
	var invalid *llm.InvalidResponseError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidResponseError, got %v", err)
	}
}

func TestValidators(t *testing.T) {
	w := testWord()
	tests := []struct {
		name      string
		cloze     Cloze
		validator string
	}{
		{"valid", Cloze{"Der ___ schläft.", "The ___ sleeps."}, ""},
		{"empty de", Cloze{" ", "The ___ sleeps."}, "structural"},
		{"two blanks", Cloze{"Der ___ und der ___.", "The ___ sleeps."}, "structural"},
		{"too long", Cloze{"Der ___ " + strings.Repeat("x", 200), "The ___ sleeps."}, "structural"},
		{"german leak", Cloze{"Mein Hund mag den ___.", "The ___ sleeps."}, "leak"},
		{"english alternative leak", Cloze{"Der ___ schläft.", "A hound is a ___."}, "leak"},
		{"substring is no leak", Cloze{"Der ___ mag Hundefutter.", "The ___ likes dogfood."}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *ValidationError
			for _, v := range DefaultConfig().Validators {
				if got = v.Validate(&tt.cloze, w); got != nil {
					break
				}
			}
			switch {
			case tt.validator == "" && got != nil:
				t.Errorf("unexpected rejection: %v", got)
			case tt.validator != "" && got == nil:
				t.Errorf("expected rejection by %s", tt.validator)
			case got != nil && got.Validator != tt.validator:
				t.Errorf("rejected by %s, want %s", got.Validator, tt.validator)
			}
		})
	}
}

type fakeStore struct {
	missing []vocab.WordEntry
	set     map[string]Cloze
}

func (f *fakeStore) WordsMissingCloze(_ context.Context, limit int) ([]vocab.WordEntry, error) {
	if limit > 0 && limit < len(f.missing) {
		return f.missing[:limit], nil
	}
	return f.missing, nil
}

func (f *fakeStore) SetCloze(_ context.Context, id, de, en string) error {
	if f.set == nil {
		f.set = make(map[string]Cloze)
	}
	f.set[id] = Cloze{de, en}
	return nil
}

func TestBackfill(t *testing.T) {
	store := &fakeStore{missing: []vocab.WordEntry{
		testWord(),
		{ID: "w2", Source: "Katze", Target: "cat"},
		{ID: "w3", Source: "Maus", Target: "mouse"},
	}}
	bad := llm.MockResponse{Content: clozeJSON("Die Katze ___.", "The cat ___.")}
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: clozeJSON("Der ___ bellt.", "The ___ barks.")},
		bad, bad,
		llm.MockResponse{Content: clozeJSON("Die ___ piepst.", "The ___ squeaks.")},
	)
	gen := New(mock, DefaultConfig())

	rep, err := gen.Backfill(context.Background(), store, 0, logging.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Generated != 2 || rep.Failed != 1 {
		t.Errorf("unexpected report: %+v", rep)
	}
	if store.set["w3"].Source != "Die ___ piepst." {
		t.Errorf("unexpected cloze for w3: %+v", store.set["w3"])
	}
	if _, ok := store.set["w2"]; ok {
		t.Error("w2 should have been skipped")
	}
	for _, c := range mock.Calls() {
		if c.Temperature != 0.4 {
			t.Errorf("unexpected temperature %v", c.Temperature)
		}
	}
}

func TestBackfill_StopsWhenUnavailable(t *testing.T) {
	store := &fakeStore{missing: []vocab.WordEntry{testWord(), {ID: "w2", Source: "Katze", Target: "cat"}}}
	gen := New(llm.NewMockProvider(), DefaultConfig())

	rep, err := gen.Backfill(context.Background(), store, 10, logging.Discard())
	var unavailable *llm.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	if rep.Generated != 0 || rep.Failed != 0 {
		t.Errorf("unexpected report: %+v", rep)
	}
}
