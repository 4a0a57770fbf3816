package edge

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/syssam/relm/dialect/sqlschema"
	"github.com/syssam/relm/schema"
)

// A Direction describes the cardinality of a relationship, seen from the
// model that declares it.
type Direction uint8

// Relationship directions.
const (
	_   Direction = iota
	O2M           // one-to-many: foreign key on the target table.
	M2O           // many-to-one: foreign key on the declaring table.
	M2M           // many-to-many: association table.
)

// String returns the direction string representation.
func (d Direction) String() string {
	switch d {
	case O2M:
		return "O2M"
	case M2O:
		return "M2O"
	case M2M:
		return "M2M"
	default:
		return "Unknown"
	}
}

// Reverse returns the direction of the relationship as seen from the target.
func (d Direction) Reverse() Direction {
	switch d {
	case O2M:
		return M2O
	case M2O:
		return O2M
	default:
		return d
	}
}

// UseList reports if the relationship holds a collection of targets.
func (d Direction) UseList() bool {
	return d == O2M || d == M2M
}

// ErrMissingAssociation is returned by the descriptor of a many-to-many
// relationship that names neither a secondary table nor an association
// table to generate.
var ErrMissingAssociation = errors.New("edge: you need to provide secondary or table name for the relation for the association table that will be generated")

// FKOptions holds the options of the foreign keys synthesized for a
// relationship. Unset pointers mean the resolver picks the default.
type FKOptions struct {
	Key      string  // column name prefix, defaults to the relation or model name.
	Prefix   *string // property prefix, defaults to "_".
	Nullable *bool   // defaults to true.
	Name     string  // constraint symbol.
	OnDelete sqlschema.CascadeAction
	OnUpdate sqlschema.CascadeAction
}

// Descriptor holds the relationship configuration, evaluated when the
// declaring model is registered.
type Descriptor struct {
	Name          string              // relationship key.
	Type          string              // target model name.
	Direction     Direction           // relationship direction.
	Backref       string              // reverse relationship to create on the target.
	BackPopulates string              // existing reverse relationship on the target.
	Table         string              // association table to generate (M2M).
	Secondary     string              // existing association table (M2M).
	TableComment  string              // comment of the generated association table.
	FK            FKOptions           // foreign key options.
	Comment       string              // relationship comment.
	Info          map[string]any      // user info, carried to the relationship.
	Annotations   []schema.Annotation // relationship annotations.
	Err           error
}

// OneToMany returns a builder of a one-to-many relationship. The foreign key
// columns referencing the declaring model are added to the target table.
//
//	edge.OneToMany("posts", Post.Type)
func OneToMany(name string, target any) *Builder {
	return newBuilder(name, target, O2M)
}

// ManyToOne returns a builder of a many-to-one relationship. The foreign key
// columns referencing the target are added to the declaring table.
//
//	edge.ManyToOne("author", User.Type)
func ManyToOne(name string, target any) *Builder {
	return newBuilder(name, target, M2O)
}

// ManyToMany returns a builder of a many-to-many relationship. Either an
// association table name or an existing secondary table is required.
//
//	edge.ManyToMany("tags", Tag.Type).Table("post_tags")
func ManyToMany(name string, target any) *Builder {
	return newBuilder(name, target, M2M)
}

func newBuilder(name string, target any, dir Direction) *Builder {
	return &Builder{desc: &Descriptor{
		Name:      name,
		Type:      typ(target),
		Direction: dir,
	}}
}

// Builder is the builder for relationship descriptors.
type Builder struct {
	desc *Descriptor
}

// Backref creates the reverse relationship with the given name on the
// target model. Its direction is the reverse of this one.
func (b *Builder) Backref(name string) *Builder {
	b.desc.Backref = name
	return b
}

// BackPopulates links this relationship with a relationship of the given
// name declared on the target model.
func (b *Builder) BackPopulates(name string) *Builder {
	b.desc.BackPopulates = name
	return b
}

// Table sets the name of the association table generated for a
// many-to-many relationship. Relationships that back-populate each other
// should name the same table.
func (b *Builder) Table(name string) *Builder {
	b.desc.Table = name
	return b
}

// Secondary sets an existing table as the association table of a
// many-to-many relationship.
func (b *Builder) Secondary(table string) *Builder {
	b.desc.Secondary = table
	return b
}

// TableComment sets the comment of the generated association table.
func (b *Builder) TableComment(c string) *Builder {
	b.desc.TableComment = c
	return b
}

// FKKey sets the key used to name the synthesized foreign key columns and
// properties. An empty key selects the default: the relationship name for
// many-to-one, else the backref name, else the declaring model name.
//
//	edge.ManyToOne("owner", User.Type).FKKey("user") // user_pk
func (b *Builder) FKKey(key string) *Builder {
	b.desc.FK.Key = key
	return b
}

// FKPrefix sets the prefix of the properties mapped to the synthesized
// foreign key columns.
func (b *Builder) FKPrefix(prefix string) *Builder {
	b.desc.FK.Prefix = &prefix
	return b
}

// FKNullable sets the nullability of the synthesized foreign key columns.
func (b *Builder) FKNullable(nullable bool) *Builder {
	b.desc.FK.Nullable = &nullable
	return b
}

// FKName sets the symbol of the synthesized foreign key constraint.
func (b *Builder) FKName(symbol string) *Builder {
	b.desc.FK.Name = symbol
	return b
}

// OnDelete sets the ON DELETE action of the synthesized foreign keys.
func (b *Builder) OnDelete(action sqlschema.CascadeAction) *Builder {
	b.desc.FK.OnDelete = action
	return b
}

// OnUpdate sets the ON UPDATE action of the synthesized foreign keys.
func (b *Builder) OnUpdate(action sqlschema.CascadeAction) *Builder {
	b.desc.FK.OnUpdate = action
	return b
}

// Comment sets the comment of the relationship.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// StructTag sets the struct tag of the relationship field in the generated
// model.
func (b *Builder) StructTag(tag string) *Builder {
	b.desc.Annotations = append(b.desc.Annotations, Annotation{StructTag: tag})
	return b
}

// Info stores a user value on the relationship.
func (b *Builder) Info(key string, value any) *Builder {
	if b.desc.Info == nil {
		b.desc.Info = make(map[string]any)
	}
	b.desc.Info[key] = value
	return b
}

// Annotations adds a list of annotations to the relationship to be used by
// codegen extensions and the resolver.
//
//	edge.OneToMany("posts", Post.Type).
//		Annotations(sqlschema.OnDelete(sqlschema.Cascade))
func (b *Builder) Annotations(annotations ...schema.Annotation) *Builder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Descriptor implements the relm.Relation interface by returning its
// descriptor.
func (b *Builder) Descriptor() *Descriptor {
	d := b.desc
	d.Err = nil
	switch {
	case d.Name == "":
		d.Err = errors.New("edge: missing relationship name")
	case d.Type == "":
		d.Err = fmt.Errorf("edge: missing target model for relationship %q", d.Name)
	case d.Direction == M2M && d.Table == "" && d.Secondary == "":
		d.Err = fmt.Errorf("relationship %q: %w", d.Name, ErrMissingAssociation)
	case d.Direction == M2M && d.Table != "" && d.Secondary != "":
		d.Err = fmt.Errorf("edge: relationship %q sets both Table and Secondary", d.Name)
	case d.Direction != M2M && (d.Table != "" || d.Secondary != "" || d.TableComment != ""):
		d.Err = fmt.Errorf("edge: association table options are only valid for many-to-many relationships (%q is %s)", d.Name, d.Direction)
	case d.Backref != "" && d.BackPopulates != "":
		d.Err = fmt.Errorf("edge: relationship %q sets both Backref and BackPopulates", d.Name)
	case d.FK.OnDelete != "" && !d.FK.OnDelete.Valid():
		d.Err = fmt.Errorf("edge: invalid ON DELETE action %q for relationship %q", d.FK.OnDelete, d.Name)
	case d.FK.OnUpdate != "" && !d.FK.OnUpdate.Valid():
		d.Err = fmt.Errorf("edge: invalid ON UPDATE action %q for relationship %q", d.FK.OnUpdate, d.Name)
	}
	return d
}

// AssociationTable returns the name of the association table of a
// many-to-many relationship.
func (d *Descriptor) AssociationTable() string {
	if d.Secondary != "" {
		return d.Secondary
	}
	return d.Table
}

// FKActions returns the ON DELETE and ON UPDATE actions of the relationship.
// Builder options take precedence over sqlschema annotations.
func (d *Descriptor) FKActions() (onDelete, onUpdate sqlschema.CascadeAction) {
	onDelete, onUpdate = d.FK.OnDelete, d.FK.OnUpdate
	if ant, ok := sqlschema.Lookup(d.Annotations); ok {
		if onDelete == "" {
			onDelete = ant.OnDelete
		}
		if onUpdate == "" {
			onUpdate = ant.OnUpdate
		}
	}
	return onDelete, onUpdate
}

// typ returns the model name of a relationship target. The target is either
// a model name, a method expression like Post.Type, a schema value or a
// value implementing Name() string.
func typ(t any) string {
	switch t := t.(type) {
	case nil:
		return ""
	case string:
		return t
	case interface{ Name() string }:
		return t.Name()
	}
	rt := reflect.TypeOf(t)
	if rt.Kind() == reflect.Func {
		if rt.NumIn() > 0 {
			return indirect(rt.In(0)).Name()
		}
		return ""
	}
	return indirect(rt).Name()
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
