package schema

import (
	"errors"
	"fmt"
	"slices"

	"github.com/syssam/relm/schema/field"
)

// ReferenceOption for constraint actions.
type ReferenceOption string

// Reference options.
const (
	NoAction   ReferenceOption = "NO ACTION"
	Restrict   ReferenceOption = "RESTRICT"
	Cascade    ReferenceOption = "CASCADE"
	SetNull    ReferenceOption = "SET NULL"
	SetDefault ReferenceOption = "SET DEFAULT"
)

// ConstName returns the constant name of a reference option. It's used by
// the code generator to reference the option.
func (r ReferenceOption) ConstName() string {
	switch r {
	case NoAction:
		return "NoAction"
	case Restrict:
		return "Restrict"
	case Cascade:
		return "Cascade"
	case SetNull:
		return "SetNull"
	case SetDefault:
		return "SetDefault"
	default:
		return ""
	}
}

// Column schema definition for SQL dialects.
type Column struct {
	Name       string     // column name.
	Type       field.Type // column type.
	SchemaType string     // custom column type, parsed by the dialect.
	Size       int64      // max size parameter for string and bytes.
	Nullable   bool       // null or not null attribute.
	Increment  bool       // auto increment attribute.
	Unique     bool       // column with unique constraint.
	Comment    string     // column comment.
}

// Table schema definition for SQL dialects.
type Table struct {
	Name        string
	Schema      string // database schema (namespace), empty for the default.
	Comment     string
	Columns     []*Column
	columns     map[string]*Column
	PrimaryKey  []*Column
	ForeignKeys []*ForeignKey
	// Association marks tables synthesized for many-to-many relationships.
	Association bool
}

// NewTable returns a new table with the given name.
func NewTable(name string) *Table {
	return &Table{
		Name:    name,
		columns: make(map[string]*Column),
	}
}

// SetSchema sets the database schema of the table.
func (t *Table) SetSchema(s string) *Table {
	t.Schema = s
	return t
}

// SetComment sets the table comment.
func (t *Table) SetComment(c string) *Table {
	t.Comment = c
	return t
}

// AddColumn adds a new column to the table.
func (t *Table) AddColumn(c *Column) *Table {
	if t.columns == nil {
		t.columns = make(map[string]*Column)
	}
	t.columns[c.Name] = c
	t.Columns = append(t.Columns, c)
	return t
}

// AddPrimary adds a new primary key column to the table. The column is
// added to the table columns if it is not already there.
func (t *Table) AddPrimary(c *Column) *Table {
	c.Nullable = false
	if !t.HasColumn(c.Name) {
		t.AddColumn(c)
	}
	t.PrimaryKey = append(t.PrimaryKey, c)
	return t
}

// AddForeignKey adds a foreign-key constraint to the table.
func (t *Table) AddForeignKey(fk *ForeignKey) *Table {
	t.ForeignKeys = append(t.ForeignKeys, fk)
	return t
}

// HasColumn reports if the table contains a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Column returns the column that matches the given name.
func (t *Table) Column(name string) (*Column, bool) {
	if c, ok := t.columns[name]; ok {
		return c, true
	}
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// IsPrimary reports if the column is part of the table primary key.
func (t *Table) IsPrimary(c *Column) bool {
	return slices.Contains(t.PrimaryKey, c)
}

// QualifiedName returns the schema-qualified table name.
func (t *Table) QualifiedName() string {
	return Key(t.Schema, t.Name)
}

// ForeignKey definition for creation.
type ForeignKey struct {
	Symbol     string          // foreign-key name. Generated if empty.
	Columns    []*Column       // table column
	RefTable   *Table          // referenced table.
	RefColumns []*Column       // referenced columns.
	OnUpdate   ReferenceOption // action on update.
	OnDelete   ReferenceOption // action on delete.
}

// Key returns the metadata key of a table: its name, qualified with the
// schema when set.
func Key(schema, name string) string {
	if schema == "" {
		return name
	}
	return schema + "." + name
}

// ErrTableExists is returned when a table is added twice to the metadata.
var ErrTableExists = errors.New("schema: table already exists")

// MetaData is the collection of tables of a registry, keyed by their
// schema-qualified name and kept in insertion order.
type MetaData struct {
	tables map[string]*Table
	order  []*Table
}

// NewMetaData returns an empty metadata.
func NewMetaData() *MetaData {
	return &MetaData{tables: make(map[string]*Table)}
}

// AddTable adds a table to the metadata.
func (m *MetaData) AddTable(t *Table) error {
	key := t.QualifiedName()
	if _, ok := m.tables[key]; ok {
		return fmt.Errorf("%w: %q", ErrTableExists, key)
	}
	m.tables[key] = t
	m.order = append(m.order, t)
	return nil
}

// Table returns the table stored under the given key. See Key.
func (m *MetaData) Table(key string) (*Table, bool) {
	t, ok := m.tables[key]
	return t, ok
}

// Lookup returns the table with the given name in the given schema.
func (m *MetaData) Lookup(schema, name string) (*Table, bool) {
	return m.Table(Key(schema, name))
}

// Tables returns the tables in insertion order.
func (m *MetaData) Tables() []*Table {
	return slices.Clone(m.order)
}

// Len returns the number of tables.
func (m *MetaData) Len() int {
	return len(m.order)
}

// SortedTables returns the tables ordered so that every table comes after
// the tables it references. Reference cycles keep the insertion order.
func (m *MetaData) SortedTables() []*Table {
	var (
		sorted  = make([]*Table, 0, len(m.order))
		visited = make(map[*Table]bool, len(m.order))
		visit   func(*Table)
	)
	visit = func(t *Table) {
		if _, ok := visited[t]; ok {
			return
		}
		// Mark as in progress to break cycles.
		visited[t] = false
		for _, fk := range t.ForeignKeys {
			if ref := fk.RefTable; ref != nil && ref != t && m.tables[ref.QualifiedName()] == ref {
				visit(ref)
			}
		}
		visited[t] = true
		sorted = append(sorted, t)
	}
	for _, t := range m.order {
		visit(t)
	}
	return sorted
}
