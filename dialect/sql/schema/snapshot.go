package schema

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/relm/schema/field"
)

// Snapshot is the serializable form of a MetaData. It is used to cache the
// schema between runs and to detect changes.
type Snapshot struct {
	Tables []*TableSnapshot `msgpack:"tables"`
}

// TableSnapshot is the serializable form of a Table.
type TableSnapshot struct {
	Name        string                `msgpack:"name"`
	Schema      string                `msgpack:"schema,omitempty"`
	Comment     string                `msgpack:"comment,omitempty"`
	Association bool                  `msgpack:"association,omitempty"`
	Columns     []*ColumnSnapshot     `msgpack:"columns"`
	PrimaryKey  []string              `msgpack:"primary_key,omitempty"`
	ForeignKeys []*ForeignKeySnapshot `msgpack:"foreign_keys,omitempty"`
}

// ColumnSnapshot is the serializable form of a Column.
type ColumnSnapshot struct {
	Name       string     `msgpack:"name"`
	Type       field.Type `msgpack:"type"`
	SchemaType string     `msgpack:"schema_type,omitempty"`
	Size       int64      `msgpack:"size,omitempty"`
	Nullable   bool       `msgpack:"nullable,omitempty"`
	Increment  bool       `msgpack:"increment,omitempty"`
	Unique     bool       `msgpack:"unique,omitempty"`
	Comment    string     `msgpack:"comment,omitempty"`
}

// ForeignKeySnapshot is the serializable form of a ForeignKey. The
// referenced table is stored by its qualified name.
type ForeignKeySnapshot struct {
	Symbol     string          `msgpack:"symbol,omitempty"`
	Columns    []string        `msgpack:"columns"`
	RefTable   string          `msgpack:"ref_table"`
	RefColumns []string        `msgpack:"ref_columns"`
	OnDelete   ReferenceOption `msgpack:"on_delete,omitempty"`
	OnUpdate   ReferenceOption `msgpack:"on_update,omitempty"`
}

// NewSnapshot returns the snapshot of the given metadata.
func NewSnapshot(md *MetaData) *Snapshot {
	s := &Snapshot{}
	for _, t := range md.Tables() {
		ts := &TableSnapshot{
			Name:        t.Name,
			Schema:      t.Schema,
			Comment:     t.Comment,
			Association: t.Association,
			PrimaryKey:  columnNames(t.PrimaryKey),
		}
		for _, c := range t.Columns {
			ts.Columns = append(ts.Columns, &ColumnSnapshot{
				Name:       c.Name,
				Type:       c.Type,
				SchemaType: c.SchemaType,
				Size:       c.Size,
				Nullable:   c.Nullable,
				Increment:  c.Increment,
				Unique:     c.Unique,
				Comment:    c.Comment,
			})
		}
		for _, fk := range t.ForeignKeys {
			ts.ForeignKeys = append(ts.ForeignKeys, &ForeignKeySnapshot{
				Symbol:     fk.Symbol,
				Columns:    columnNames(fk.Columns),
				RefTable:   fk.RefTable.QualifiedName(),
				RefColumns: columnNames(fk.RefColumns),
				OnDelete:   fk.OnDelete,
				OnUpdate:   fk.OnUpdate,
			})
		}
		s.Tables = append(s.Tables, ts)
	}
	return s
}

// MetaData rebuilds the metadata stored in the snapshot.
func (s *Snapshot) MetaData() (*MetaData, error) {
	md := NewMetaData()
	for _, ts := range s.Tables {
		t := NewTable(ts.Name).SetSchema(ts.Schema).SetComment(ts.Comment)
		t.Association = ts.Association
		for _, cs := range ts.Columns {
			t.AddColumn(&Column{
				Name:       cs.Name,
				Type:       cs.Type,
				SchemaType: cs.SchemaType,
				Size:       cs.Size,
				Nullable:   cs.Nullable,
				Increment:  cs.Increment,
				Unique:     cs.Unique,
				Comment:    cs.Comment,
			})
		}
		pk, err := lookupColumns(t, ts.PrimaryKey)
		if err != nil {
			return nil, err
		}
		t.PrimaryKey = pk
		if err := md.AddTable(t); err != nil {
			return nil, err
		}
	}
	// Foreign keys are linked once all tables exist.
	for _, ts := range s.Tables {
		t, _ := md.Lookup(ts.Schema, ts.Name)
		for _, fs := range ts.ForeignKeys {
			ref, ok := md.Table(fs.RefTable)
			if !ok {
				return nil, fmt.Errorf("schema: snapshot table %q references unknown table %q", t.Name, fs.RefTable)
			}
			cols, err := lookupColumns(t, fs.Columns)
			if err != nil {
				return nil, err
			}
			refs, err := lookupColumns(ref, fs.RefColumns)
			if err != nil {
				return nil, err
			}
			t.AddForeignKey(&ForeignKey{
				Symbol:     fs.Symbol,
				Columns:    cols,
				RefTable:   ref,
				RefColumns: refs,
				OnDelete:   fs.OnDelete,
				OnUpdate:   fs.OnUpdate,
			})
		}
	}
	return md, nil
}

// EncodeSnapshot returns the msgpack encoding of the metadata snapshot.
func EncodeSnapshot(md *MetaData) ([]byte, error) {
	b, err := msgpack.Marshal(NewSnapshot(md))
	if err != nil {
		return nil, fmt.Errorf("schema: encode snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot decodes a snapshot encoded by EncodeSnapshot.
func DecodeSnapshot(b []byte) (*MetaData, error) {
	s := &Snapshot{}
	if err := msgpack.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("schema: decode snapshot: %w", err)
	}
	return s.MetaData()
}

func columnNames(columns []*Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

func lookupColumns(t *Table, names []string) ([]*Column, error) {
	columns := make([]*Column, len(names))
	for i, name := range names {
		c, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("schema: snapshot table %q has no column %q", t.Name, name)
		}
		columns[i] = c
	}
	return columns, nil
}
