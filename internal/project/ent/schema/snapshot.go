package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Snapshot holds the schema definition for the Snapshot entity.
type Snapshot struct {
	ent.Schema
}

// Fields of the Snapshot.
func (Snapshot) Fields() []ent.Field {
	return []ent.Field{
		field.String("snapshot_id").
			Unique().
			NotEmpty().
			Immutable(),
		field.String("project_id").
			NotEmpty(),
		field.String("description"),
		field.JSON("files", map[string]string{}),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the Snapshot.
func (Snapshot) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("project", Project.Type).
			Ref("snapshots").
			Unique(),
	}
}

// Indexes of the Snapshot.
func (Snapshot) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("project_id", "created_at"),
	}
}
