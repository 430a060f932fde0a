package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Profile is a learner or administrator account.
type Profile struct {
	ent.Schema
}

func (Profile) Mixin() []ent.Mixin {
	return []ent.Mixin{CreatedMixin{}}
}

func (Profile) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			MaxLen(64).
			Immutable(),
		field.String("email").
			MaxLen(255).
			Unique(),
		field.String("full_name").
			Default(""),
		field.String("password_hash").
			Default("").
			Sensitive().
			Comment("bcrypt hash; empty for profiles without API login"),
		field.Bool("is_admin").
			Default(false),
	}
}
