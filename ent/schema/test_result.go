package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// TestResult is the outcome of one finished quiz.
type TestResult struct {
	ent.Schema
}

func (TestResult) Mixin() []ent.Mixin {
	return []ent.Mixin{CreatedMixin{}}
}

func (TestResult) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			MaxLen(64).
			Immutable(),
		field.String("user_id").
			MaxLen(64),
		field.String("user_email").
			Default(""),
		field.Int("grade"),
		field.Int("unit"),
		field.Int("station"),
		field.Int("total").
			Positive(),
		field.Int("correct").
			NonNegative(),
		field.Int("percent").
			Range(0, 100),
		field.String("mode").
			Comment("cloze or choice"),
	}
}

func (TestResult) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "created_at"),
	}
}
