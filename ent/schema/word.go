package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Word is one vocabulary pair together with its cloze sentences.
type Word struct {
	ent.Schema
}

func (Word) Mixin() []ent.Mixin {
	return []ent.Mixin{CreatedMixin{}}
}

func (Word) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			MaxLen(64).
			Immutable(),
		field.String("de").
			NotEmpty().
			Comment("German form; may hold alternatives separated by /"),
		field.String("en").
			Default("").
			Comment("English form; may hold alternatives separated by /"),
		field.Int("grade"),
		field.Int("unit"),
		field.Int("station"),
		field.String("cloze_de").
			MaxLen(1024).
			Default("").
			Comment("German sentence with a ___ gap"),
		field.String("cloze_en").
			MaxLen(1024).
			Default("").
			Comment("English sentence with a ___ gap"),
	}
}

func (Word) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("grade", "unit", "station"),
	}
}
