package field

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/relm/schema"
)

// Descriptor for field configuration.
type Descriptor struct {
	Name        string              // field name, also the property key.
	StorageKey  string              // column name, defaults to Name.
	Info        *TypeInfo           // field type info.
	Size        int64               // max size parameter for string and bytes.
	PrimaryKey  bool                // part of the primary key.
	Increment   bool                // auto-increment column.
	Unique      bool                // unique index of field.
	Nillable    bool                // nullable column, pointer in Go.
	Comment     string              // field comment.
	Annotations []schema.Annotation // field annotations.
	Err         error
}

// Column returns the column name of the field.
func (d *Descriptor) Column() string {
	if d.StorageKey != "" {
		return d.StorageKey
	}
	return d.Name
}

// ErrEmptyName is returned by Descriptor when a field has no name.
var ErrEmptyName = errors.New("field: missing field name")

func (d *Descriptor) checkName() {
	switch {
	case d.Name == "":
		d.setErr(ErrEmptyName)
	case strings.ContainsAny(d.Name, " .\t\n"):
		d.setErr(fmt.Errorf("field: invalid field name %q", d.Name))
	}
}

func (d *Descriptor) setErr(err error) {
	if d.Err == nil {
		d.Err = err
	}
}

// Int returns a new Field with type int.
func Int(name string) *numericBuilder {
	return &numericBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeInt},
	}}
}

// Int32 returns a new Field with type int32.
func Int32(name string) *numericBuilder {
	return &numericBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeInt32},
	}}
}

// Int64 returns a new Field with type int64.
func Int64(name string) *numericBuilder {
	return &numericBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeInt64},
	}}
}

// Float64 returns a new Field with type float64.
func Float64(name string) *numericBuilder {
	return &numericBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeFloat64},
	}}
}

// String returns a new Field with type string.
func String(name string) *stringBuilder {
	return &stringBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeString},
	}}
}

// Text returns a new string field without limitation on the size.
// In MySQL, it is usually mapped to LONGTEXT.
func Text(name string) *stringBuilder {
	return &stringBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeString},
		Size: TextSize,
	}}
}

// Bool returns a new Field with type bool.
func Bool(name string) *valueBuilder {
	return &valueBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeBool},
	}}
}

// Time returns a new Field with type timestamp.
func Time(name string) *valueBuilder {
	return &valueBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeTime, Ident: "time.Time", PkgPath: "time"},
	}}
}

// Bytes returns a new Field with type bytes/buffer.
// In MySQL and SQLite, it is the "BLOB" type, and in Postgres "BYTEA".
func Bytes(name string) *valueBuilder {
	return &valueBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeBytes, Nillable: true},
	}}
}

// UUID returns a new Field with type UUID. An example for defining UUID field is as follows:
//
//	field.UUID("id", uuid.UUID{})
func UUID(name string, typ any) *valueBuilder {
	b := &valueBuilder{&Descriptor{Name: name}}
	info, err := typeInfo(TypeUUID, typ)
	if err != nil {
		b.desc.Info = &TypeInfo{Type: TypeUUID}
		b.desc.Err = err
		return b
	}
	b.desc.Info = info
	return b
}

// TextSize is the size assigned to Text fields.
const TextSize = 1 << 32

// numericBuilder is the builder for numeric fields.
type numericBuilder struct {
	desc *Descriptor
}

// PrimaryKey marks the field as part of the primary key of its table.
func (b *numericBuilder) PrimaryKey() *numericBuilder {
	b.desc.PrimaryKey = true
	return b
}

// AutoIncrement configures the column as auto-increment. Only integer
// fields can be auto-incremented.
func (b *numericBuilder) AutoIncrement() *numericBuilder {
	if !b.desc.Info.Type.Integer() {
		b.desc.setErr(fmt.Errorf("field: AutoIncrement is not supported for %s field %q", b.desc.Info.Type, b.desc.Name))
	}
	b.desc.Increment = true
	return b
}

// StorageKey sets the column name of the field in the database.
//
//	field.Int("owner").StorageKey("owner_id")
func (b *numericBuilder) StorageKey(key string) *numericBuilder {
	b.desc.StorageKey = key
	return b
}

// Nillable indicates that this field is a nullable column.
func (b *numericBuilder) Nillable() *numericBuilder {
	b.desc.Nillable = true
	return b
}

// Unique makes the field unique within all vertices of this type.
func (b *numericBuilder) Unique() *numericBuilder {
	b.desc.Unique = true
	return b
}

// Comment sets the comment of the field.
func (b *numericBuilder) Comment(c string) *numericBuilder {
	b.desc.Comment = c
	return b
}

// Annotations adds a list of annotations to the field object to be used by
// codegen extensions.
func (b *numericBuilder) Annotations(annotations ...schema.Annotation) *numericBuilder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Descriptor implements the relm.Field interface by returning its descriptor.
func (b *numericBuilder) Descriptor() *Descriptor {
	b.desc.checkName()
	return b.desc
}

// stringBuilder is the builder for string fields.
type stringBuilder struct {
	desc *Descriptor
}

// Size sets the max size of the string column.
//
//	field.String("code").Size(10)
func (b *stringBuilder) Size(size int64) *stringBuilder {
	if size <= 0 {
		b.desc.setErr(fmt.Errorf("field: invalid size %d for field %q", size, b.desc.Name))
	}
	b.desc.Size = size
	return b
}

// PrimaryKey marks the field as part of the primary key of its table.
func (b *stringBuilder) PrimaryKey() *stringBuilder {
	b.desc.PrimaryKey = true
	return b
}

// StorageKey sets the column name of the field in the database.
func (b *stringBuilder) StorageKey(key string) *stringBuilder {
	b.desc.StorageKey = key
	return b
}

// Nillable indicates that this field is a nullable column.
func (b *stringBuilder) Nillable() *stringBuilder {
	b.desc.Nillable = true
	return b
}

// Unique makes the field unique within all vertices of this type.
func (b *stringBuilder) Unique() *stringBuilder {
	b.desc.Unique = true
	return b
}

// Comment sets the comment of the field.
func (b *stringBuilder) Comment(c string) *stringBuilder {
	b.desc.Comment = c
	return b
}

// Annotations adds a list of annotations to the field object to be used by
// codegen extensions.
func (b *stringBuilder) Annotations(annotations ...schema.Annotation) *stringBuilder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Descriptor implements the relm.Field interface by returning its descriptor.
func (b *stringBuilder) Descriptor() *Descriptor {
	b.desc.checkName()
	return b.desc
}

// valueBuilder is the builder for bool, time, bytes and uuid fields.
type valueBuilder struct {
	desc *Descriptor
}

// PrimaryKey marks the field as part of the primary key of its table.
func (b *valueBuilder) PrimaryKey() *valueBuilder {
	b.desc.PrimaryKey = true
	return b
}

// StorageKey sets the column name of the field in the database.
func (b *valueBuilder) StorageKey(key string) *valueBuilder {
	b.desc.StorageKey = key
	return b
}

// Nillable indicates that this field is a nullable column.
func (b *valueBuilder) Nillable() *valueBuilder {
	b.desc.Nillable = true
	return b
}

// Unique makes the field unique within all vertices of this type.
func (b *valueBuilder) Unique() *valueBuilder {
	b.desc.Unique = true
	return b
}

// Comment sets the comment of the field.
func (b *valueBuilder) Comment(c string) *valueBuilder {
	b.desc.Comment = c
	return b
}

// Annotations adds a list of annotations to the field object to be used by
// codegen extensions.
func (b *valueBuilder) Annotations(annotations ...schema.Annotation) *valueBuilder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Descriptor implements the relm.Field interface by returning its descriptor.
func (b *valueBuilder) Descriptor() *Descriptor {
	b.desc.checkName()
	return b.desc
}
