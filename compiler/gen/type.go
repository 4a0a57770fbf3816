package gen

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/relm"
	dbschema "github.com/syssam/relm/dialect/sql/schema"
	"github.com/syssam/relm/schema/edge"
	"github.com/syssam/relm/schema/field"
)

// The following types and their exported methods are used by the generator
// to render the models of a configured registry.
type (
	// Graph holds the models of a registry and the association tables
	// synthesized for them.
	Graph struct {
		*Config
		// Nodes are the models, in registration order.
		Nodes []*Type
		// Tables are the association tables of many-to-many relationships.
		Tables []*Table
		md     *dbschema.MetaData
	}

	// Type represents one model, its properties and relationships.
	Type struct {
		// Name holds the model name.
		Name string
		// Model is the configured model.
		Model *relm.Model
		// Fields holds the column-backed properties, including the
		// synthesized foreign keys.
		Fields []*Field
		// Edges holds the relationships, including the backrefs.
		Edges []*Edge
	}

	// Field holds the information of a model property.
	Field struct {
		// Name is the property key.
		Name string
		// Column is the table column of the property.
		Column *dbschema.Column
		// Type holds the type information of the field.
		Type *field.TypeInfo
		// Nillable fields are pointers in the generated struct.
		Nillable bool
		// Synthesized marks foreign keys added by a relationship.
		Synthesized bool
		// Comment is written as the struct field doc.
		Comment string
	}

	// Edge is a relationship field of a model.
	Edge struct {
		// Name is the relationship key.
		Name string
		// Type is the target model.
		Type *Type
		// Unique edges hold a single target.
		Unique bool
		// Rel is the resolved relationship.
		Rel *relm.Relationship
		// StructTag of the field, defaults to "json".
		StructTag string
	}

	// Table is an association table.
	Table struct {
		*dbschema.Table
		// Ident is the Go identifier prefix of the table constants.
		Ident string
	}
)

// NewGraph creates a graph from a configured registry. Models with pending
// relationships are rejected.
func NewGraph(c *Config, reg *relm.Registry) (*Graph, error) {
	if c == nil {
		return nil, NewConfigError("Config", nil, "missing config")
	}
	g := &Graph{Config: c, md: reg.MetaData()}
	types := make(map[string]*Type)
	for _, m := range reg.Models() {
		if p := m.Pending(); len(p) > 0 {
			return nil, NewSchemaError(m.Name, p[0].Key, "unresolved relationship, configure the registry before generating", nil)
		}
		t := &Type{Name: m.Name, Model: m}
		for _, p := range m.Properties() {
			t.Fields = append(t.Fields, &Field{
				Name:        p.Key,
				Column:      p.Column,
				Type:        p.Info,
				Nillable:    p.Column.Nullable && !p.Info.Nillable,
				Synthesized: p.Synthesized,
				Comment:     p.Comment,
			})
		}
		types[m.Name] = t
		g.Nodes = append(g.Nodes, t)
	}
	for _, t := range g.Nodes {
		for _, r := range t.Model.Relationships() {
			target, ok := types[r.Target.Name]
			if !ok {
				return nil, NewSchemaError(t.Name, r.Key, fmt.Sprintf("target model %q is not in the registry", r.Target.Name), nil)
			}
			t.Edges = append(t.Edges, &Edge{
				Name:      r.Key,
				Type:      target,
				Unique:    !r.UseList(),
				Rel:       r,
				StructTag: structTag(r.Key, edgeTag(r)),
			})
		}
		if err := t.check(); err != nil {
			return nil, err
		}
	}
	for _, tb := range g.md.Tables() {
		if tb.Association {
			g.Tables = append(g.Tables, &Table{Table: tb, Ident: pascal(tb.Name)})
		}
	}
	return g, nil
}

// check reports struct fields of a type that collide.
func (t *Type) check() error {
	seen := make(map[string]string, len(t.Fields)+len(t.Edges))
	add := func(key, ident string) error {
		if prev, ok := seen[ident]; ok {
			return NewSchemaError(t.Name, key, fmt.Sprintf("Go field %s is also generated for %q", ident, prev), nil)
		}
		seen[ident] = key
		return nil
	}
	for _, f := range t.Fields {
		if err := add(f.Name, f.StructField()); err != nil {
			return err
		}
	}
	for _, e := range t.Edges {
		if err := add(e.Name, e.StructField()); err != nil {
			return err
		}
	}
	return nil
}

// Receiver returns the receiver name of this node.
func (t *Type) Receiver() string {
	return receiver(t.Name)
}

// FileName returns the name of the generated file of the model.
func (t *Type) FileName() string {
	return snake(t.Name) + ".go"
}

// Table returns the table of the model.
func (t *Type) Table() *dbschema.Table {
	return t.Model.Table
}

// TableConst returns the name of the table constant.
func (t *Type) TableConst() string {
	return t.Name + "Table"
}

// SliceName returns the name of the slice type of the model.
func (t *Type) SliceName() string {
	return plural(t.Name)
}

// StructField returns the struct field name of the property.
func (f *Field) StructField() string {
	return pascal(f.Name)
}

// Const returns the name of the column constant of the field.
func (f *Field) Const(t *Type) string {
	return t.Name + "Column" + pascal(f.Column.Name)
}

// StructTag returns the struct tag of the field.
func (f *Field) StructTag() string {
	return structTag(f.Column.Name, "")
}

// GoType returns the Go type of the field.
func (f *Field) GoType() jen.Code {
	if f.Nillable {
		return pointerType(f.Type)
	}
	return baseType(f.Type)
}

// StructField returns the struct field name of the relationship.
func (e *Edge) StructField() string {
	return pascal(e.Name)
}

// GoType returns the Go type of the relationship field.
func (e *Edge) GoType() jen.Code {
	if e.Unique {
		return jen.Op("*").Id(e.Type.Name)
	}
	return jen.Index().Op("*").Id(e.Type.Name)
}

// Comment returns the doc of the relationship field.
func (e *Edge) Comment() string {
	if e.Rel.Comment != "" {
		return e.Rel.Comment
	}
	kind := map[edge.Direction]string{
		edge.O2M: "one-to-many",
		edge.M2O: "many-to-one",
		edge.M2M: "many-to-many",
	}[e.Rel.Direction]
	return fmt.Sprintf("%s holds the %s relationship to %s.", e.StructField(), kind, e.Type.Name)
}

func baseType(info *field.TypeInfo) jen.Code {
	switch t := info.Type; {
	case t == field.TypeTime:
		return jen.Qual("time", "Time")
	case t == field.TypeBytes:
		return jen.Index().Byte()
	case t == field.TypeUUID && info.PkgPath != "":
		return jen.Qual(info.PkgPath, identName(info.Ident))
	case t == field.TypeUUID:
		return jen.Index(jen.Lit(16)).Byte()
	default:
		return jen.Id(t.String())
	}
}

func pointerType(info *field.TypeInfo) jen.Code {
	switch t := info.Type; {
	case t == field.TypeTime:
		return jen.Op("*").Qual("time", "Time")
	case t == field.TypeUUID && info.PkgPath != "":
		return jen.Op("*").Qual(info.PkgPath, identName(info.Ident))
	case t == field.TypeUUID:
		return jen.Op("*").Index(jen.Lit(16)).Byte()
	default:
		return jen.Id("*" + t.String())
	}
}

// identName returns the type name of a qualified identifier.
func identName(ident string) string {
	if i := strings.LastIndex(ident, "."); i >= 0 {
		return ident[i+1:]
	}
	return ident
}

func edgeTag(r *relm.Relationship) string {
	if r.Descriptor == nil {
		return ""
	}
	ant, _ := edge.Lookup(r.Descriptor.Annotations)
	return ant.StructTag
}

func structTag(name, tag string) string {
	t := fmt.Sprintf(`json:"%s,omitempty"`, name)
	if tag == "" {
		return t
	}
	if _, ok := reflect.StructTag(tag).Lookup("json"); !ok {
		tag = t + " " + tag
	}
	return tag
}
