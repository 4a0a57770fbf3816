package relm

import (
	"reflect"

	"github.com/syssam/relm/schema"
	"github.com/syssam/relm/schema/edge"
	"github.com/syssam/relm/schema/field"
)

type (
	// The Interface type describes the requirements for an exported type defined in the schema package.
	// It functions as the interface between the user's schema types and codegen loader.
	// Users should use the Schema type for embedding as follows:
	//
	//	type T struct {
	//		relm.Schema
	//	}
	Interface interface {
		// Type is a dummy method, that is used in relation declaration.
		Type()
		// Fields returns the fields of the schema.
		Fields() []Field
		// Relations returns the relationships of the schema.
		Relations() []Relation
		// Mixin returns an optional list of Mixin to extend the schema.
		Mixin() []Mixin
		// Config returns an optional config for the schema.
		Config() Config
		// Annotations returns a list of schema annotations to be used by
		// the resolver and codegen extensions.
		Annotations() []schema.Annotation
	}

	// A Field interface returns a field descriptor for vertex fields/properties.
	// The usage for the interface is as follows:
	//
	//	func (T) Fields() []relm.Field {
	//		return []relm.Field{
	//			field.Int("age"),
	//		}
	//	}
	Field interface {
		Descriptor() *field.Descriptor
	}

	// A Relation interface returns a relationship descriptor. The foreign
	// keys and association tables it implies are synthesized when the
	// registry is configured.
	//
	//	func (User) Relations() []relm.Relation {
	//		return []relm.Relation{
	//			edge.OneToMany("posts", Post.Type).Backref("author"),
	//		}
	//	}
	Relation interface {
		Descriptor() *edge.Descriptor
	}

	// The Mixin type describes a set of methods that can extend
	// other methods in the schema without calling them directly.
	//
	//	type TimeMixin struct {}
	//
	//	func (TimeMixin) Fields() []relm.Field {
	//		return []relm.Field{
	//			field.Time("created_at"),
	//			field.Time("updated_at"),
	//		}
	//	}
	//
	//	type T struct {
	//		relm.Schema
	//	}
	//
	//	func (T) Mixin() []relm.Mixin {
	//		return []relm.Mixin{
	//			TimeMixin{},
	//		}
	//	}
	Mixin interface {
		// Fields returns a slice of fields to be added
		// to the schema fields.
		Fields() []Field
		// Relations returns a slice of relationships to be added
		// to the schema relationships.
		Relations() []Relation
		// Annotations returns a list of schema annotations.
		Annotations() []schema.Annotation
	}

	// Config is the configuration for the schema.
	Config struct {
		// A Table is an optional table name defined for the schema.
		Table string
		// Schema is the optional database schema (namespace) of the table.
		Schema string
		// Comment is the table comment.
		Comment string
	}

	// Schema is the default implementation for the schema Interface.
	// It can be embedded in end-user schemas as follows:
	//
	//	type T struct {
	//		relm.Schema
	//	}
	Schema struct {
		Interface
	}
)

// Type is a dummy method that is used in relation declaration.
func (Schema) Type() {}

// Fields of the schema.
func (Schema) Fields() []Field { return nil }

// Relations of the schema.
func (Schema) Relations() []Relation { return nil }

// Mixin of the schema.
func (Schema) Mixin() []Mixin { return nil }

// Config of the schema.
func (Schema) Config() Config { return Config{} }

// Annotations of the schema.
func (Schema) Annotations() []schema.Annotation { return nil }

// Namer is implemented by schemas that are not named after their Go type,
// like the schemas loaded from declaration files.
type Namer interface {
	Name() string
}

// ModelName returns the model name of a schema: the result of its Name
// method, or the name of its Go type.
func ModelName(s Interface) string {
	if n, ok := s.(Namer); ok {
		return n.Name()
	}
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
