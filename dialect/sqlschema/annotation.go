// Package sqlschema provides SQL-specific annotations for relm schemas.
//
// Import this package as:
//
//	import "github.com/syssam/relm/dialect/sqlschema"
//
// # Model Annotations
//
//	func (User) Annotations() []schema.Annotation {
//	    return []schema.Annotation{
//	        sqlschema.Table("people"),
//	        sqlschema.Schema("crm"),
//	    }
//	}
//
// # Field Annotations
//
//	field.String("code").Annotations(sqlschema.Size(10))
//	field.String("data").Annotations(sqlschema.ColumnType("JSONB"))
//
// # Relation Annotations
//
// Foreign-key actions for the synthesized constraints:
//
//	edge.OneToMany("posts", Post.Type).Annotations(sqlschema.OnDelete(sqlschema.Cascade))
//	edge.ManyToOne("owner", User.Type).Annotations(sqlschema.OnDelete(sqlschema.SetNull))
//
// The OnDelete and OnUpdate options of the edge builder take precedence over
// the annotation.
package sqlschema

import (
	"github.com/syssam/relm/schema"
)

// AnnotationName is the name used for SQL annotations.
const AnnotationName = "sql"

// CascadeAction defines cascade behavior for foreign key constraints.
type CascadeAction string

const (
	Cascade    CascadeAction = "CASCADE"
	SetNull    CascadeAction = "SET NULL"
	Restrict   CascadeAction = "RESTRICT"
	SetDefault CascadeAction = "SET DEFAULT"
	NoAction   CascadeAction = "NO ACTION"
)

// Valid reports if the action is one of the known cascade actions.
func (a CascadeAction) Valid() bool {
	switch a {
	case Cascade, SetNull, Restrict, SetDefault, NoAction:
		return true
	}
	return false
}

// Annotation holds SQL-specific settings for models, fields and relations.
// Can be used with functional constructors or struct literals:
//
//	sqlschema.Size(10)
//	sqlschema.Annotation{Table: "users", Schema: "crm"}
type Annotation struct {
	// Table overrides the database table name of a model.
	Table string

	// Schema sets the database schema (namespace) of a model's table.
	// Association tables synthesized for the model are created in it too.
	Schema string

	// Size overrides the column size (e.g., VARCHAR(Size)).
	Size int64

	// ColumnType sets a custom database column type, parsed by the dialect.
	ColumnType string

	// OnDelete sets the ON DELETE action of a synthesized foreign key.
	OnDelete CascadeAction

	// OnUpdate sets the ON UPDATE action of a synthesized foreign key.
	OnUpdate CascadeAction

	// WithComments controls whether comments are stored in the database.
	WithComments *bool
}

// Name implements schema.Annotation.
func (Annotation) Name() string {
	return AnnotationName
}

// Merge implements the schema.Merger interface.
func (a Annotation) Merge(other schema.Annotation) schema.Annotation {
	switch other := other.(type) {
	case Annotation:
		return Merge(a, other)
	case *Annotation:
		if other != nil {
			return Merge(a, *other)
		}
	}
	return a
}

var (
	_ schema.Annotation = (*Annotation)(nil)
	_ schema.Merger     = (*Annotation)(nil)
)

// Table sets the database table name for a model.
func Table(name string) Annotation {
	return Annotation{Table: name}
}

// Schema sets the database schema for a model.
func Schema(name string) Annotation {
	return Annotation{Schema: name}
}

// Size sets the column size override.
//
//	field.String("code").
//	    Annotations(sqlschema.Size(10))
func Size(size int64) Annotation {
	return Annotation{Size: size}
}

// ColumnType sets a custom database column type.
//
//	field.String("data").
//	    Annotations(sqlschema.ColumnType("JSONB"))
func ColumnType(typ string) Annotation {
	return Annotation{ColumnType: typ}
}

// OnDelete sets the ON DELETE action for a relation's foreign key.
func OnDelete(action CascadeAction) Annotation {
	return Annotation{OnDelete: action}
}

// OnUpdate sets the ON UPDATE action for a relation's foreign key.
func OnUpdate(action CascadeAction) Annotation {
	return Annotation{OnUpdate: action}
}

// WithComments controls whether the comment is stored in the database.
// By default, comments are stored.
func WithComments(enable bool) Annotation {
	return Annotation{WithComments: &enable}
}

// Merge combines multiple SQL annotations into one.
// Later annotations override earlier ones.
func Merge(annotations ...Annotation) Annotation {
	result := Annotation{}
	for _, a := range annotations {
		if a.Table != "" {
			result.Table = a.Table
		}
		if a.Schema != "" {
			result.Schema = a.Schema
		}
		if a.Size != 0 {
			result.Size = a.Size
		}
		if a.ColumnType != "" {
			result.ColumnType = a.ColumnType
		}
		if a.OnDelete != "" {
			result.OnDelete = a.OnDelete
		}
		if a.OnUpdate != "" {
			result.OnUpdate = a.OnUpdate
		}
		if a.WithComments != nil {
			result.WithComments = a.WithComments
		}
	}
	return result
}

// Lookup merges all SQL annotations found in the given list.
// The second return value reports if any was found.
func Lookup(annotations []schema.Annotation) (Annotation, bool) {
	var found []Annotation
	for _, at := range annotations {
		switch at := at.(type) {
		case Annotation:
			found = append(found, at)
		case *Annotation:
			if at != nil {
				found = append(found, *at)
			}
		}
	}
	if len(found) == 0 {
		return Annotation{}, false
	}
	return Merge(found...), true
}

// StoreComments reports whether comments should be stored.
func (a Annotation) StoreComments() bool {
	return a.WithComments == nil || *a.WithComments
}
