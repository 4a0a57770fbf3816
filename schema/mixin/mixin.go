package mixin

import (
	"github.com/google/uuid"

	"github.com/syssam/relm"
	"github.com/syssam/relm/schema"
	"github.com/syssam/relm/schema/field"
)

// Schema is the default implementation for the relm.Mixin interface.
// It should be embedded in all custom mixin definitions.
//
// Example:
//
//	type MyMixin struct {
//	    mixin.Schema
//	}
//
//	func (MyMixin) Fields() []relm.Field {
//	    return []relm.Field{
//	        field.String("custom_field"),
//	    }
//	}
type Schema struct{}

// Fields returns the fields of the mixin.
// Override this method to add custom fields.
func (Schema) Fields() []relm.Field { return nil }

// Relations returns the relationships of the mixin. Every model using the
// mixin gets its own copy of them.
func (Schema) Relations() []relm.Relation { return nil }

// Annotations returns the annotations of the mixin.
func (Schema) Annotations() []schema.Annotation { return nil }

// schema mixin must implement `Mixin` interface.
var _ relm.Mixin = (*Schema)(nil)

// =============================================================================
// Built-in Mixins
// =============================================================================

// ID adds an auto-increment int64 primary key named id.
type ID struct {
	Schema
}

// Fields returns the id field.
func (ID) Fields() []relm.Field {
	return []relm.Field{
		field.Int64("id").
			PrimaryKey().
			AutoIncrement(),
	}
}

// UUIDID adds a uuid primary key named id. Foreign keys referencing models
// using it are uuid columns too.
type UUIDID struct {
	Schema
}

// Fields returns the id field.
func (UUIDID) Fields() []relm.Field {
	return []relm.Field{
		field.UUID("id", uuid.UUID{}).
			PrimaryKey(),
	}
}

// Time adds created_at and updated_at timestamp fields to a schema.
//
// Example:
//
//	func (User) Mixin() []relm.Mixin {
//	    return []relm.Mixin{
//	        mixin.Time{},
//	    }
//	}
type Time struct {
	Schema
}

// Fields returns the time tracking fields.
func (Time) Fields() []relm.Field {
	return append(CreateTime{}.Fields(), UpdateTime{}.Fields()...)
}

// CreateTime adds only created_at timestamp field to a schema.
type CreateTime struct {
	Schema
}

// Fields returns the created_at field.
func (CreateTime) Fields() []relm.Field {
	return []relm.Field{
		field.Time("created_at").
			Comment("Timestamp when the entity was created"),
	}
}

// UpdateTime adds only updated_at timestamp field to a schema.
type UpdateTime struct {
	Schema
}

// Fields returns the updated_at field.
func (UpdateTime) Fields() []relm.Field {
	return []relm.Field{
		field.Time("updated_at").
			Comment("Timestamp when the entity was last updated"),
	}
}

// SoftDelete adds a nullable deleted_at field for soft deletion support.
type SoftDelete struct {
	Schema
}

// Fields returns the soft delete field.
func (SoftDelete) Fields() []relm.Field {
	return []relm.Field{
		field.Time("deleted_at").
			Nillable().
			Comment("Timestamp when the entity was soft deleted (nil means not deleted)"),
	}
}

// TimeSoftDelete combines Time and SoftDelete mixins.
type TimeSoftDelete struct {
	Schema
}

// Fields returns all timestamp and soft delete fields.
func (TimeSoftDelete) Fields() []relm.Field {
	return append(Time{}.Fields(), SoftDelete{}.Fields()...)
}

// AnnotateFields wraps a mixin and adds annotations to all its fields.
//
// Example:
//
//	mixin.AnnotateFields(
//	    mixin.Time{},
//	    sqlschema.WithComments(false),
//	)
func AnnotateFields(m relm.Mixin, annotations ...schema.Annotation) relm.Mixin {
	return fieldAnnotator{Mixin: m, annotations: annotations}
}

// AnnotateRelations wraps a mixin and adds annotations to all its
// relationships.
//
// Example:
//
//	mixin.AnnotateRelations(
//	    OwnedMixin{},
//	    sqlschema.OnDelete(sqlschema.Cascade),
//	)
func AnnotateRelations(m relm.Mixin, annotations ...schema.Annotation) relm.Mixin {
	return relationAnnotator{Mixin: m, annotations: annotations}
}

type fieldAnnotator struct {
	relm.Mixin
	annotations []schema.Annotation
}

func (a fieldAnnotator) Fields() []relm.Field {
	fields := a.Mixin.Fields()
	for i := range fields {
		desc := fields[i].Descriptor()
		desc.Annotations = append(desc.Annotations, a.annotations...)
	}
	return fields
}

type relationAnnotator struct {
	relm.Mixin
	annotations []schema.Annotation
}

func (a relationAnnotator) Relations() []relm.Relation {
	rels := a.Mixin.Relations()
	for i := range rels {
		desc := rels[i].Descriptor()
		desc.Annotations = append(desc.Annotations, a.annotations...)
	}
	return rels
}
