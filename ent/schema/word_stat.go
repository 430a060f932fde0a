package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// WordStat counts the attempts of one user at one word.
type WordStat struct {
	ent.Schema
}

func (WordStat) Fields() []ent.Field {
	return []ent.Field{
		field.String("word_id"),
		field.String("user_id"),
		field.Int("attempts").
			Default(0),
		field.Int("correct").
			Default(0),
		field.Int64("last_seen_at").
			Comment("Unix milliseconds"),
	}
}

func (WordStat) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("word_id", "user_id").Unique(),
	}
}
