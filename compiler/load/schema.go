package load

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syssam/relm"
	"github.com/syssam/relm/dialect/sqlschema"
	"github.com/syssam/relm/schema"
	"github.com/syssam/relm/schema/edge"
	"github.com/syssam/relm/schema/field"
)

// File is a declaration file. It lists the models of a registry.
type File struct {
	Models []*Schema `yaml:"models"`
}

// Schema represents a model declared in a declaration file, or marshaled
// from a relm.Interface.
type Schema struct {
	Name         string      `yaml:"name"`
	Pos          string      `yaml:"-"`
	Table        string      `yaml:"table,omitempty"`
	Namespace    string      `yaml:"schema,omitempty"`
	Comment      string      `yaml:"comment,omitempty"`
	WithComments *bool       `yaml:"with_comments,omitempty"`
	Mixins       []string    `yaml:"mixins,omitempty"`
	Fields       []*Field    `yaml:"fields,omitempty"`
	Relations    []*Relation `yaml:"relations,omitempty"`
}

// Field represents a relm.Field.
type Field struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	StorageKey    string `yaml:"storage_key,omitempty"`
	Size          int64  `yaml:"size,omitempty"`
	ColumnType    string `yaml:"column_type,omitempty"`
	PrimaryKey    bool   `yaml:"primary_key,omitempty"`
	AutoIncrement bool   `yaml:"auto_increment,omitempty"`
	Unique        bool   `yaml:"unique,omitempty"`
	Nillable      bool   `yaml:"nillable,omitempty"`
	Comment       string `yaml:"comment,omitempty"`
}

// Relation represents a relm.Relation.
type Relation struct {
	Name          string         `yaml:"name"`
	Type          string         `yaml:"type"`
	Target        string         `yaml:"target"`
	Backref       string         `yaml:"backref,omitempty"`
	BackPopulates string         `yaml:"back_populates,omitempty"`
	Table         string         `yaml:"table,omitempty"`
	Secondary     string         `yaml:"secondary,omitempty"`
	TableComment  string         `yaml:"table_comment,omitempty"`
	FK            *ForeignKey    `yaml:"foreign_key,omitempty"`
	StructTag     string         `yaml:"struct_tag,omitempty"`
	Comment       string         `yaml:"comment,omitempty"`
	Info          map[string]any `yaml:"info,omitempty"`
}

// ForeignKey holds the foreign key options of a relation.
type ForeignKey struct {
	Key      string  `yaml:"key,omitempty"`
	Prefix   *string `yaml:"prefix,omitempty"`
	Nullable *bool   `yaml:"nullable,omitempty"`
	Name     string  `yaml:"name,omitempty"`
	OnDelete string  `yaml:"on_delete,omitempty"`
	OnUpdate string  `yaml:"on_update,omitempty"`
}

// Field types as written in declaration files.
const (
	TypeBool    = "bool"
	TypeTime    = "time"
	TypeUUID    = "uuid"
	TypeBytes   = "bytes"
	TypeString  = "string"
	TypeText    = "text"
	TypeInt32   = "int32"
	TypeInt     = "int"
	TypeInt64   = "int64"
	TypeFloat64 = "float64"
)

// Relation types as written in declaration files.
const (
	OneToMany  = "o2m"
	ManyToOne  = "m2o"
	ManyToMany = "m2m"
)

// NewField creates a loaded field from field descriptor.
// It returns an error if the descriptor contains an error.
func NewField(fd *field.Descriptor) (*Field, error) {
	if fd.Err != nil {
		return nil, fmt.Errorf("field %q: %w", fd.Name, fd.Err)
	}
	f := &Field{
		Name:          fd.Name,
		StorageKey:    fd.StorageKey,
		PrimaryKey:    fd.PrimaryKey,
		AutoIncrement: fd.Increment,
		Unique:        fd.Unique,
		Nillable:      fd.Nillable,
		Comment:       fd.Comment,
	}
	switch t := fd.Info.Type; t {
	case field.TypeString:
		f.Type = TypeString
		if fd.Size == field.TextSize {
			f.Type = TypeText
		} else {
			f.Size = fd.Size
		}
	case field.TypeTime:
		f.Type = TypeTime
	case field.TypeUUID:
		f.Type = TypeUUID
	case field.TypeBytes:
		f.Type = TypeBytes
	case field.TypeBool, field.TypeInt32, field.TypeInt, field.TypeInt64, field.TypeFloat64:
		f.Type = t.String()
	default:
		return nil, fmt.Errorf("field %q: unsupported type %s", fd.Name, t)
	}
	if ant, ok := sqlschema.Lookup(fd.Annotations); ok {
		if ant.Size > 0 {
			f.Size = ant.Size
		}
		f.ColumnType = ant.ColumnType
	}
	return f, nil
}

// NewRelation creates a loaded relation from relationship descriptor.
// It returns an error if the descriptor contains an error.
func NewRelation(ed *edge.Descriptor) (*Relation, error) {
	if ed.Err != nil {
		return nil, fmt.Errorf("relation %q: %w", ed.Name, ed.Err)
	}
	r := &Relation{
		Name:          ed.Name,
		Type:          strings.ToLower(ed.Direction.String()),
		Target:        ed.Type,
		Backref:       ed.Backref,
		BackPopulates: ed.BackPopulates,
		Table:         ed.Table,
		Secondary:     ed.Secondary,
		TableComment:  ed.TableComment,
		Comment:       ed.Comment,
		Info:          ed.Info,
	}
	onDelete, onUpdate := ed.FKActions()
	fk := &ForeignKey{
		Key:      ed.FK.Key,
		Prefix:   ed.FK.Prefix,
		Nullable: ed.FK.Nullable,
		Name:     ed.FK.Name,
		OnDelete: string(onDelete),
		OnUpdate: string(onUpdate),
	}
	if *fk != (ForeignKey{}) {
		r.FK = fk
	}
	if ant, ok := edge.Lookup(ed.Annotations); ok {
		r.StructTag = ant.StructTag
	}
	return r, nil
}

// MarshalSchema encodes the relm.Interface to a declaration file entry.
// Mixed-in fields and relations are inlined.
func MarshalSchema(s relm.Interface) (b []byte, err error) {
	ls, err := FromInterface(s)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(ls)
}

// FromInterface loads the declaration of a relm.Interface.
func FromInterface(s relm.Interface) (*Schema, error) {
	cfg := s.Config()
	ls := &Schema{
		Name:      relm.ModelName(s),
		Table:     cfg.Table,
		Namespace: cfg.Schema,
		Comment:   cfg.Comment,
	}
	mixin, err := safeMixin(s)
	if err != nil {
		return nil, fmt.Errorf("schema %q: %w", ls.Name, err)
	}
	var ants []schema.Annotation
	for _, mx := range mixin {
		name := indirect(reflect.TypeOf(mx)).Name()
		if err := ls.load(mx); err != nil {
			return nil, fmt.Errorf("schema %q: mixin %q: %w", ls.Name, name, err)
		}
		ants = append(ants, mx.Annotations()...)
	}
	if err := ls.load(s); err != nil {
		return nil, fmt.Errorf("schema %q: %w", ls.Name, err)
	}
	ants = append(ants, s.Annotations()...)
	if ant, ok := sqlschema.Lookup(ants); ok {
		if ant.Table != "" {
			ls.Table = ant.Table
		}
		if ant.Schema != "" {
			ls.Namespace = ant.Schema
		}
		ls.WithComments = ant.WithComments
	}
	return ls, nil
}

type declarer interface {
	Fields() []relm.Field
	Relations() []relm.Relation
}

// load appends the fields and relations of a schema or a mixin.
func (s *Schema) load(d declarer) error {
	fields, err := safeFields(d)
	if err != nil {
		return err
	}
	for _, f := range fields {
		sf, err := NewField(f.Descriptor())
		if err != nil {
			return err
		}
		s.Fields = append(s.Fields, sf)
	}
	rels, err := safeRelations(d)
	if err != nil {
		return err
	}
	for _, r := range rels {
		sr, err := NewRelation(r.Descriptor())
		if err != nil {
			return err
		}
		s.Relations = append(s.Relations, sr)
	}
	return nil
}

// safeFields wraps the schema.Fields and mixin.Fields method with recover to ensure no panics in marshaling.
func safeFields(fd interface{ Fields() []relm.Field }) (fields []relm.Field, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%T.Fields panics: %v", fd, v)
			fields = nil
		}
	}()
	return fd.Fields(), nil
}

// safeRelations wraps the Relations method with recover to ensure no panics in marshaling.
func safeRelations(rd interface{ Relations() []relm.Relation }) (rels []relm.Relation, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%T.Relations panics: %v", rd, v)
			rels = nil
		}
	}()
	return rd.Relations(), nil
}

// safeMixin wraps the schema.Mixin method with recover to ensure no panics in marshaling.
func safeMixin(schema relm.Interface) (mixin []relm.Mixin, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("schema.Mixin panics: %v", v)
			mixin = nil
		}
	}()
	return schema.Mixin(), nil
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
