package schema

import (
	"context"
	"errors"
	"fmt"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/relm/dialect"
	"github.com/syssam/relm/dialect/sql"
	"github.com/syssam/relm/schema/field"
)

// converter holds the dialect specific parts of the atlas bridge.
type converter struct {
	plan      migrate.PlanApplier
	open      func(schema.ExecQuerier) (migrate.Driver, error)
	parse     func(string) (schema.Type, error)
	typ       func(*Column) schema.Type
	increment func() schema.Attr
	// namespaces reports if the dialect can create database schemas.
	namespaces bool
}

var converters = map[string]*converter{
	dialect.SQLite: {
		plan:      sqlite.DefaultPlan,
		open:      sqlite.Open,
		parse:     sqlite.ParseType,
		typ:       sqliteType,
		increment: func() schema.Attr { return &sqlite.AutoIncrement{} },
	},
	dialect.MySQL: {
		plan:       mysql.DefaultPlan,
		open:       mysql.Open,
		parse:      mysql.ParseType,
		typ:        mysqlType,
		increment:  func() schema.Attr { return &mysql.AutoIncrement{} },
		namespaces: true,
	},
	dialect.Postgres: {
		plan:       postgres.DefaultPlan,
		open:       postgres.Open,
		parse:      postgres.ParseType,
		typ:        postgresType,
		increment:  func() schema.Attr { return &postgres.Identity{Generation: "BY DEFAULT"} },
		namespaces: true,
	},
}

func converterFor(name string) (*converter, error) {
	c, ok := converters[name]
	if !ok {
		return nil, dialect.Check(name)
	}
	return c, nil
}

// Atlas converts the given tables to an atlas realm for the given dialect.
// Tables are grouped by their database schema; tables without one are
// placed in an unnamed schema and rendered unqualified.
func Atlas(name string, tables []*Table) (*schema.Realm, error) {
	conv, err := converterFor(name)
	if err != nil {
		return nil, err
	}
	realm, _, err := conv.realm(tables)
	return realm, err
}

func (conv *converter) realm(tables []*Table) (*schema.Realm, map[*Table]*schema.Table, error) {
	var (
		realm   = schema.NewRealm()
		schemas = make(map[string]*schema.Schema)
		ts      = make(map[*Table]*schema.Table, len(tables))
	)
	for _, t := range tables {
		s, ok := schemas[t.Schema]
		if !ok {
			s = schema.New(t.Schema)
			schemas[t.Schema] = s
			realm.AddSchemas(s)
		}
		at, err := conv.table(t)
		if err != nil {
			return nil, nil, err
		}
		s.AddTables(at)
		ts[t] = at
	}
	for _, t := range tables {
		if err := conv.foreignKeys(t, ts); err != nil {
			return nil, nil, err
		}
	}
	return realm, ts, nil
}

func (conv *converter) table(t *Table) (*schema.Table, error) {
	at := schema.NewTable(t.Name)
	if t.Comment != "" {
		at.SetComment(t.Comment)
	}
	for _, c := range t.Columns {
		ac, err := conv.column(c)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", t.Name, err)
		}
		// Auto-increment is only rendered on single column keys.
		if c.Increment && len(t.PrimaryKey) == 1 && t.PrimaryKey[0] == c {
			ac.AddAttrs(conv.increment())
		}
		at.AddColumns(ac)
	}
	if len(t.PrimaryKey) > 0 {
		pk := make([]*schema.Column, len(t.PrimaryKey))
		for i, c := range t.PrimaryKey {
			ac, ok := at.Column(c.Name)
			if !ok {
				return nil, fmt.Errorf("table %q: primary key column %q is not a table column", t.Name, c.Name)
			}
			pk[i] = ac
		}
		at.SetPrimaryKey(schema.NewPrimaryKey(pk...))
	}
	// Unique columns get a single column unique index.
	for _, c := range t.Columns {
		if !c.Unique || (len(t.PrimaryKey) == 1 && t.PrimaryKey[0] == c) {
			continue
		}
		ac, _ := at.Column(c.Name)
		at.AddIndexes(schema.NewUniqueIndex(uniqueIndexName(t, c)).AddColumns(ac))
	}
	return at, nil
}

// uniqueIndexName returns the name of the unique index of a column,
// following the postgres "<table>_<column>_key" convention.
func uniqueIndexName(t *Table, c *Column) string {
	return t.Name + "_" + c.Name + "_key"
}

func (conv *converter) column(c *Column) (*schema.Column, error) {
	var (
		typ schema.Type
		err error
	)
	if c.SchemaType != "" {
		if typ, err = conv.parse(c.SchemaType); err != nil {
			return nil, fmt.Errorf("column %q: parse type %q: %w", c.Name, c.SchemaType, err)
		}
	} else if typ = conv.typ(c); typ == nil {
		return nil, fmt.Errorf("column %q: %w %s", c.Name, ErrUnsupportedType, c.Type)
	}
	ac := schema.NewColumn(c.Name).
		SetType(typ).
		SetNull(c.Nullable)
	if c.Comment != "" {
		ac.SetComment(c.Comment)
	}
	return ac, nil
}

func (conv *converter) foreignKeys(t *Table, ts map[*Table]*schema.Table) error {
	at := ts[t]
	for _, fk := range t.ForeignKeys {
		ref, ok := ts[fk.RefTable]
		if !ok {
			return fmt.Errorf("table %q: foreign key %q references table %q which is not part of the schema", t.Name, fk.Symbol, fk.RefTable.Name)
		}
		afk := schema.NewForeignKey(fk.Symbol).
			SetTable(at).
			SetRefTable(ref).
			SetOnDelete(schema.ReferenceOption(fk.OnDelete)).
			SetOnUpdate(schema.ReferenceOption(fk.OnUpdate))
		for _, c := range fk.Columns {
			ac, ok := at.Column(c.Name)
			if !ok {
				return fmt.Errorf("table %q: foreign key column %q is not a table column", t.Name, c.Name)
			}
			afk.AddColumns(ac)
		}
		for _, c := range fk.RefColumns {
			ac, ok := ref.Column(c.Name)
			if !ok {
				return fmt.Errorf("table %q: referenced column %q is not a column of %q", t.Name, c.Name, ref.Name)
			}
			afk.AddRefColumns(ac)
		}
		at.AddForeignKeys(afk)
	}
	return nil
}

// DDL renders the CREATE statements of the metadata tables for the given
// dialect, without connecting to a database. Tables are ordered so that
// referenced tables are created first.
func DDL(ctx context.Context, name string, md *MetaData) ([]string, error) {
	conv, err := converterFor(name)
	if err != nil {
		return nil, err
	}
	tables := md.SortedTables()
	realm, ts, err := conv.realm(tables)
	if err != nil {
		return nil, err
	}
	var changes []schema.Change
	if conv.namespaces {
		for _, s := range realm.Schemas {
			if s.Name != "" {
				changes = append(changes, &schema.AddSchema{S: s, Extra: []schema.Clause{&schema.IfNotExists{}}})
			}
		}
	}
	for _, t := range tables {
		changes = append(changes, &schema.AddTable{T: ts[t]})
	}
	if len(changes) == 0 {
		return nil, nil
	}
	plan, err := conv.plan.PlanChanges(ctx, "create", changes)
	if err != nil {
		return nil, fmt.Errorf("schema: plan %s changes: %w", name, err)
	}
	stmts := make([]string, 0, len(plan.Changes))
	for _, c := range plan.Changes {
		stmts = append(stmts, c.Cmd)
	}
	return stmts, nil
}

// Create creates the metadata tables that do not exist in the database
// behind drv. Existing tables are left untouched; Create does not diff or
// alter them.
func Create(ctx context.Context, drv *sql.Driver, md *MetaData) error {
	conv, err := converterFor(drv.Dialect())
	if err != nil {
		return err
	}
	adrv, err := conv.open(drv.DB())
	if err != nil {
		return fmt.Errorf("schema: open atlas driver: %w", err)
	}
	tables := md.SortedTables()
	realm, ts, err := conv.realm(tables)
	if err != nil {
		return err
	}
	var (
		changes []schema.Change
		exists  = make(map[string]bool)
	)
	for _, s := range realm.Schemas {
		current, err := adrv.InspectSchema(ctx, s.Name, &schema.InspectOptions{Mode: schema.InspectTables})
		switch {
		case schema.IsNotExistError(err) && conv.namespaces && s.Name != "":
			changes = append(changes, &schema.AddSchema{S: s, Extra: []schema.Clause{&schema.IfNotExists{}}})
		case err != nil:
			return fmt.Errorf("schema: inspect schema %q: %w", s.Name, err)
		default:
			for _, t := range current.Tables {
				exists[Key(s.Name, t.Name)] = true
			}
		}
	}
	for _, t := range tables {
		if !exists[t.QualifiedName()] {
			changes = append(changes, &schema.AddTable{T: ts[t]})
		}
	}
	if len(changes) == 0 {
		return nil
	}
	if err := adrv.ApplyChanges(ctx, changes); err != nil {
		return fmt.Errorf("schema: create tables: %w", err)
	}
	return nil
}

// ErrUnsupportedType is returned for columns without an atlas mapping.
var ErrUnsupportedType = errors.New("schema: unsupported column type")

func sqliteType(c *Column) schema.Type {
	switch c.Type {
	case field.TypeBool:
		return &schema.BoolType{T: "bool"}
	case field.TypeTime:
		return &schema.TimeType{T: "datetime"}
	case field.TypeUUID:
		return &schema.UUIDType{T: "uuid"}
	case field.TypeBytes:
		return &schema.BinaryType{T: "blob"}
	case field.TypeString:
		return &schema.StringType{T: "text", Size: sizeOf(c)}
	case field.TypeInt32, field.TypeInt, field.TypeInt64:
		return &schema.IntegerType{T: "integer"}
	case field.TypeFloat64:
		return &schema.FloatType{T: "real"}
	}
	return nil
}

func mysqlType(c *Column) schema.Type {
	switch c.Type {
	case field.TypeBool:
		return &schema.BoolType{T: "bool"}
	case field.TypeTime:
		return &schema.TimeType{T: "timestamp"}
	case field.TypeUUID:
		return &schema.StringType{T: "char", Size: 36}
	case field.TypeBytes:
		return &schema.BinaryType{T: "blob"}
	case field.TypeString:
		switch size := sizeOf(c); {
		case size == 0:
			return &schema.StringType{T: "varchar", Size: 255}
		case size > maxVarchar:
			return &schema.StringType{T: "longtext"}
		default:
			return &schema.StringType{T: "varchar", Size: size}
		}
	case field.TypeInt32:
		return &schema.IntegerType{T: "int"}
	case field.TypeInt, field.TypeInt64:
		return &schema.IntegerType{T: "bigint"}
	case field.TypeFloat64:
		return &schema.FloatType{T: "double"}
	}
	return nil
}

func postgresType(c *Column) schema.Type {
	switch c.Type {
	case field.TypeBool:
		return &schema.BoolType{T: "boolean"}
	case field.TypeTime:
		return &schema.TimeType{T: "timestamp with time zone"}
	case field.TypeUUID:
		return &schema.UUIDType{T: "uuid"}
	case field.TypeBytes:
		return &schema.BinaryType{T: "bytea"}
	case field.TypeString:
		if size := sizeOf(c); size > 0 && size <= maxVarchar {
			return &schema.StringType{T: "character varying", Size: size}
		}
		return &schema.StringType{T: "text"}
	case field.TypeInt32:
		return &schema.IntegerType{T: "integer"}
	case field.TypeInt, field.TypeInt64:
		return &schema.IntegerType{T: "bigint"}
	case field.TypeFloat64:
		return &schema.FloatType{T: "double precision"}
	}
	return nil
}

// maxVarchar is the largest size rendered as a varchar column.
const maxVarchar = 65535

func sizeOf(c *Column) int {
	if c.Size > maxVarchar {
		return maxVarchar + 1
	}
	return int(c.Size)
}
