package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Interaction holds the schema definition for the Interaction entity, one
// row per guard decision.
type Interaction struct {
	ent.Schema
}

// Fields of the Interaction.
func (Interaction) Fields() []ent.Field {
	return []ent.Field{
		field.String("project_id").
			NotEmpty(),
		field.String("user_prompt"),
		field.String("mode"),
		field.String("what_changed"),
		field.Bool("context_preserved"),
		field.Int("dom_drift_percent"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the Interaction.
func (Interaction) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("project", Project.Type).
			Ref("interactions").
			Unique(),
	}
}

// Indexes of the Interaction.
func (Interaction) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("project_id", "created_at"),
	}
}
