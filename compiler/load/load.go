// Package load reads model declarations from YAML files, and marshals Go
// schemas to the same format.
//
//	models:
//	  - name: User
//	    mixins: [id]
//	    fields:
//	      - {name: name, type: string}
//	    relations:
//	      - {name: posts, type: o2m, target: Post, backref: author}
//	  - name: Post
//	    mixins: [id]
//	    fields:
//	      - {name: title, type: string, size: 120}
package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/syssam/relm"
	"github.com/syssam/relm/dialect/sqlschema"
	"github.com/syssam/relm/schema"
	"github.com/syssam/relm/schema/edge"
	"github.com/syssam/relm/schema/field"
	"github.com/syssam/relm/schema/mixin"
)

// Mixins holds the mixins that declaration files can reference by name.
var Mixins = map[string]relm.Mixin{
	"id":               mixin.ID{},
	"uuid_id":          mixin.UUIDID{},
	"time":             mixin.Time{},
	"create_time":      mixin.CreateTime{},
	"update_time":      mixin.UpdateTime{},
	"soft_delete":      mixin.SoftDelete{},
	"time_soft_delete": mixin.TimeSoftDelete{},
}

// Load reads the declaration files at the given paths and returns their
// models in order.
func Load(paths ...string) ([]relm.Interface, error) {
	var schemas []relm.Interface
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		ss, err := Parse(f, path)
		f.Close()
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, ss...)
	}
	return schemas, nil
}

// Parse decodes a declaration file. Unknown keys, field types, relation types
// and mixins are reported with the position of the model declaring them.
func Parse(r io.Reader, filename string) ([]relm.Interface, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("load: read %s: %w", filename, err)
	}
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("load: %s: %w", filename, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(buf, &doc); err != nil {
		return nil, fmt.Errorf("load: %s: %w", filename, err)
	}
	lines := modelLines(&doc)
	schemas := make([]relm.Interface, 0, len(file.Models))
	seen := make(map[string]bool, len(file.Models))
	for i, s := range file.Models {
		s.Pos = filename
		if i < len(lines) {
			s.Pos = fmt.Sprintf("%s:%d", filename, lines[i])
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("load: %s: model %q declared twice", s.Pos, s.Name)
		}
		seen[s.Name] = true
		m, err := s.Interface()
		if err != nil {
			return nil, fmt.Errorf("load: %s: %w", s.Pos, err)
		}
		schemas = append(schemas, m)
	}
	return schemas, nil
}

// modelLines returns the line of each entry of the models sequence.
func modelLines(doc *yaml.Node) []int {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "models" {
			continue
		}
		var lines []int
		for _, n := range root.Content[i+1].Content {
			lines = append(lines, n.Line)
		}
		return lines
	}
	return nil
}

// Interface builds the relm.Interface of a declared model.
func (s *Schema) Interface() (relm.Interface, error) {
	if s.Name == "" {
		return nil, errors.New("model without name")
	}
	m := &model{decl: s}
	for _, name := range s.Mixins {
		mx, ok := Mixins[name]
		if !ok {
			return nil, fmt.Errorf("model %q: unknown mixin %q", s.Name, name)
		}
		m.mixins = append(m.mixins, mx)
	}
	for _, f := range s.Fields {
		b, err := f.builder()
		if err != nil {
			return nil, fmt.Errorf("model %q: field %q: %w", s.Name, f.Name, err)
		}
		if err := b.Descriptor().Err; err != nil {
			return nil, fmt.Errorf("model %q: %w", s.Name, err)
		}
		m.fields = append(m.fields, b)
	}
	for _, r := range s.Relations {
		b, err := r.builder()
		if err != nil {
			return nil, fmt.Errorf("model %q: relation %q: %w", s.Name, r.Name, err)
		}
		if err := b.Descriptor().Err; err != nil {
			return nil, fmt.Errorf("model %q: %w", s.Name, err)
		}
		m.relations = append(m.relations, b)
	}
	return m, nil
}

// model is the relm.Interface of a declared model.
type model struct {
	relm.Schema
	decl      *Schema
	fields    []relm.Field
	relations []relm.Relation
	mixins    []relm.Mixin
}

func (m *model) Name() string               { return m.decl.Name }
func (m *model) Fields() []relm.Field       { return m.fields }
func (m *model) Relations() []relm.Relation { return m.relations }
func (m *model) Mixin() []relm.Mixin        { return m.mixins }

func (m *model) Config() relm.Config {
	return relm.Config{
		Table:   m.decl.Table,
		Schema:  m.decl.Namespace,
		Comment: m.decl.Comment,
	}
}

func (m *model) Annotations() []schema.Annotation {
	if m.decl.WithComments == nil {
		return nil
	}
	return []schema.Annotation{sqlschema.WithComments(*m.decl.WithComments)}
}

// Declaration returns the declaration a loaded schema was built from.
func Declaration(s relm.Interface) (*Schema, bool) {
	m, ok := s.(*model)
	if !ok {
		return nil, false
	}
	return m.decl, true
}

// builder is implemented by all field builders.
type builder[B any] interface {
	relm.Field
	PrimaryKey() B
	StorageKey(string) B
	Nillable() B
	Unique() B
	Comment(string) B
	Annotations(...schema.Annotation) B
}

func apply[B builder[B]](b B, f *Field) B {
	if f.PrimaryKey {
		b = b.PrimaryKey()
	}
	if f.StorageKey != "" {
		b = b.StorageKey(f.StorageKey)
	}
	if f.Nillable {
		b = b.Nillable()
	}
	if f.Unique {
		b = b.Unique()
	}
	if f.Comment != "" {
		b = b.Comment(f.Comment)
	}
	if f.ColumnType != "" {
		b = b.Annotations(sqlschema.ColumnType(f.ColumnType))
	}
	return b
}

func (f *Field) builder() (relm.Field, error) {
	switch f.Type {
	case TypeString, TypeText:
		b := field.String(f.Name)
		if f.Type == TypeText {
			b = field.Text(f.Name)
		}
		b = apply(b, f)
		if f.AutoIncrement {
			return nil, errors.New("auto_increment requires an integer type")
		}
		if f.Size != 0 {
			b = b.Size(f.Size)
		}
		return b, nil
	case TypeInt, TypeInt32, TypeInt64, TypeFloat64:
		b := field.Float64(f.Name)
		switch f.Type {
		case TypeInt:
			b = field.Int(f.Name)
		case TypeInt32:
			b = field.Int32(f.Name)
		case TypeInt64:
			b = field.Int64(f.Name)
		}
		b = apply(b, f)
		if f.AutoIncrement {
			b = b.AutoIncrement()
		}
		if f.Size != 0 {
			return nil, fmt.Errorf("size is not supported by %s fields", f.Type)
		}
		return b, nil
	case TypeBool, TypeTime, TypeUUID, TypeBytes:
		b := field.Bool(f.Name)
		switch f.Type {
		case TypeTime:
			b = field.Time(f.Name)
		case TypeUUID:
			b = field.UUID(f.Name, uuid.UUID{})
		case TypeBytes:
			b = field.Bytes(f.Name)
		}
		b = apply(b, f)
		if f.AutoIncrement {
			return nil, errors.New("auto_increment requires an integer type")
		}
		if f.Size != 0 {
			if f.Type != TypeBytes {
				return nil, fmt.Errorf("size is not supported by %s fields", f.Type)
			}
			b = b.Annotations(sqlschema.Size(f.Size))
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown type %q", f.Type)
	}
}

func (r *Relation) builder() (*edge.Builder, error) {
	var b *edge.Builder
	switch r.Type {
	case OneToMany:
		b = edge.OneToMany(r.Name, r.Target)
	case ManyToOne:
		b = edge.ManyToOne(r.Name, r.Target)
	case ManyToMany:
		b = edge.ManyToMany(r.Name, r.Target)
	default:
		return nil, fmt.Errorf("unknown relation type %q", r.Type)
	}
	if r.Backref != "" {
		b.Backref(r.Backref)
	}
	if r.BackPopulates != "" {
		b.BackPopulates(r.BackPopulates)
	}
	if r.Table != "" {
		b.Table(r.Table)
	}
	if r.Secondary != "" {
		b.Secondary(r.Secondary)
	}
	if r.TableComment != "" {
		b.TableComment(r.TableComment)
	}
	if r.Comment != "" {
		b.Comment(r.Comment)
	}
	if r.StructTag != "" {
		b.StructTag(r.StructTag)
	}
	for k, v := range r.Info {
		b.Info(k, v)
	}
	if fk := r.FK; fk != nil {
		if fk.Key != "" {
			b.FKKey(fk.Key)
		}
		if fk.Prefix != nil {
			b.FKPrefix(*fk.Prefix)
		}
		if fk.Nullable != nil {
			b.FKNullable(*fk.Nullable)
		}
		if fk.Name != "" {
			b.FKName(fk.Name)
		}
		if fk.OnDelete != "" {
			b.OnDelete(sqlschema.CascadeAction(fk.OnDelete))
		}
		if fk.OnUpdate != "" {
			b.OnUpdate(sqlschema.CascadeAction(fk.OnUpdate))
		}
	}
	return b, nil
}
