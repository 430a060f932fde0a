package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/mixin"
)

// CreatedMixin adds the creation timestamp every table carries.
// Timestamps are stored as Unix milliseconds so the same column type
// works on SQLite, PostgreSQL and MySQL.
type CreatedMixin struct {
	mixin.Schema
}

func (CreatedMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("created_at").
			DefaultFunc(func() int64 { return time.Now().UnixMilli() }).
			Immutable().
			Comment("Unix milliseconds"),
	}
}
