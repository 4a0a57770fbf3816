package load_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/syssam/relm"
	"github.com/syssam/relm/compiler/load"
	dbschema "github.com/syssam/relm/dialect/sql/schema"
	"github.com/syssam/relm/dialect/sqlschema"
	"github.com/syssam/relm/schema"
	"github.com/syssam/relm/schema/edge"
	"github.com/syssam/relm/schema/field"
	"github.com/syssam/relm/schema/mixin"
)

func TestLoad(t *testing.T) {
	schemas, err := load.Load("testdata/blog.yaml")
	require.NoError(t, err)
	require.Len(t, schemas, 3)
	assert.Equal(t, "User", relm.ModelName(schemas[0]))
	assert.Equal(t, "Post", relm.ModelName(schemas[1]))
	assert.Equal(t, "Tag", relm.ModelName(schemas[2]))

	decl, ok := load.Declaration(schemas[1])
	require.True(t, ok)
	assert.Equal(t, "testdata/blog.yaml:19", decl.Pos)
	assert.Equal(t, "Blog posts.", schemas[1].Config().Comment)
	assert.Equal(t, relm.Config{Table: "labels", Schema: "main"}, schemas[2].Config())

	reg := relm.NewRegistry()
	require.NoError(t, reg.Register(schemas...))
	require.NoError(t, reg.Configure())
	md := reg.MetaData()

	users, ok := md.Table("users")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "created_at", "updated_at", "name", "email"}, columnNames(users))
	email, _ := users.Column("email")
	assert.Equal(t, int64(255), email.Size)
	assert.True(t, email.Unique)

	posts, ok := md.Table("posts")
	require.True(t, ok)
	assert.Equal(t, "Blog posts.", posts.Comment)
	assert.Equal(t, []string{"id", "title", "body", "author_id"}, columnNames(posts))
	authorID, _ := posts.Column("author_id")
	assert.Equal(t, field.TypeInt64, authorID.Type)
	require.Len(t, posts.ForeignKeys, 1)
	assert.Equal(t, "posts_author_id", posts.ForeignKeys[0].Symbol)
	assert.Equal(t, dbschema.Cascade, posts.ForeignKeys[0].OnDelete)

	labels, ok := md.Lookup("main", "labels")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name"}, columnNames(labels))

	assoc, ok := md.Table("post_tags")
	require.True(t, ok)
	assert.True(t, assoc.Association)
	require.Len(t, assoc.ForeignKeys, 2)
	assert.Same(t, labels, assoc.ForeignKeys[1].RefTable)

	post, ok := reg.Model("Post")
	require.True(t, ok)
	author, ok := post.Relationship("author")
	require.True(t, ok)
	assert.Equal(t, edge.M2O, author.Direction)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := load.Load("testdata/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load:")
}

func TestParse_Empty(t *testing.T) {
	schemas, err := load.Parse(strings.NewReader(""), "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, schemas)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "UnknownKey",
			doc:  "models:\n  - name: User\n    colour: red\n",
			want: "field colour not found",
		},
		{
			name: "MissingName",
			doc:  "models:\n  - table: users\n",
			want: "x.yaml:2: model without name",
		},
		{
			name: "Duplicate",
			doc:  "models:\n  - name: User\n  - name: User\n",
			want: `x.yaml:3: model "User" declared twice`,
		},
		{
			name: "UnknownMixin",
			doc:  "models:\n  - name: User\n    mixins: [audit]\n",
			want: `model "User": unknown mixin "audit"`,
		},
		{
			name: "UnknownFieldType",
			doc:  "models:\n  - name: User\n    fields:\n      - {name: age, type: uint}\n",
			want: `model "User": field "age": unknown type "uint"`,
		},
		{
			name: "AutoIncrementString",
			doc:  "models:\n  - name: User\n    fields:\n      - {name: code, type: string, auto_increment: true}\n",
			want: "auto_increment requires an integer type",
		},
		{
			name: "AutoIncrementFloat",
			doc:  "models:\n  - name: User\n    fields:\n      - {name: score, type: float64, auto_increment: true}\n",
			want: "AutoIncrement is not supported",
		},
		{
			name: "SizeOnInteger",
			doc:  "models:\n  - name: User\n    fields:\n      - {name: age, type: int, size: 4}\n",
			want: "size is not supported by int fields",
		},
		{
			name: "InvalidFieldName",
			doc:  "models:\n  - name: User\n    fields:\n      - {name: first name, type: string}\n",
			want: "invalid field name",
		},
		{
			name: "UnknownRelationType",
			doc:  "models:\n  - name: User\n    relations:\n      - {name: posts, type: o2o, target: Post}\n",
			want: `relation "posts": unknown relation type "o2o"`,
		},
		{
			name: "MissingAssociation",
			doc:  "models:\n  - name: Post\n    relations:\n      - {name: tags, type: m2m, target: Tag}\n",
			want: edge.ErrMissingAssociation.Error(),
		},
		{
			name: "InvalidAction",
			doc:  "models:\n  - name: User\n    relations:\n      - {name: posts, type: o2m, target: Post, foreign_key: {on_delete: DROP}}\n",
			want: `invalid ON DELETE action "DROP"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load.Parse(strings.NewReader(tt.doc), "x.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_Relation(t *testing.T) {
	doc := `
models:
  - name: Comment
    relations:
      - name: parent
        type: m2o
        target: Comment
        backref: replies
        struct_tag: 'json:"parent,omitempty"'
        comment: Parent comment.
        info: {lazy: select}
        foreign_key: {key: reply_to, prefix: "", nullable: false, name: fk_reply, on_update: CASCADE}
`
	schemas, err := load.Parse(strings.NewReader(doc), "x.yaml")
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	rels := schemas[0].Relations()
	require.Len(t, rels, 1)
	d := rels[0].Descriptor()
	require.NoError(t, d.Err)
	assert.Equal(t, edge.M2O, d.Direction)
	assert.Equal(t, "Comment", d.Type)
	assert.Equal(t, "replies", d.Backref)
	assert.Equal(t, "Parent comment.", d.Comment)
	assert.Equal(t, map[string]any{"lazy": "select"}, d.Info)
	assert.Equal(t, "reply_to", d.FK.Key)
	require.NotNil(t, d.FK.Prefix)
	assert.Empty(t, *d.FK.Prefix)
	require.NotNil(t, d.FK.Nullable)
	assert.False(t, *d.FK.Nullable)
	assert.Equal(t, "fk_reply", d.FK.Name)
	assert.Equal(t, sqlschema.Cascade, d.FK.OnUpdate)
	assert.Contains(t, d.Annotations, edge.Annotation{StructTag: `json:"parent,omitempty"`})

	reg := relm.NewRegistry()
	require.NoError(t, reg.Register(schemas...))
	require.NoError(t, reg.Configure())
	comment, _ := reg.Model("Comment")
	replyTo, ok := comment.Property("reply_to_id")
	require.True(t, ok)
	assert.False(t, replyTo.Column.Nullable)
}

func TestParse_Fields(t *testing.T) {
	doc := `
models:
  - name: Device
    with_comments: false
    fields:
      - {name: id, type: uuid, primary_key: true}
      - {name: serial, type: string, storage_key: serial_no, comment: Serial number.}
      - {name: firmware, type: bytes, size: 1024}
      - {name: seen, type: time, nillable: true}
      - {name: active, type: bool}
      - {name: meta, type: string, column_type: JSON}
`
	schemas, err := load.Parse(strings.NewReader(doc), "x.yaml")
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	ant, ok := sqlschema.Lookup(schemas[0].Annotations())
	require.True(t, ok)
	assert.False(t, ant.StoreComments())

	fields := schemas[0].Fields()
	require.Len(t, fields, 6)
	id := fields[0].Descriptor()
	assert.Equal(t, field.TypeUUID, id.Info.Type)
	assert.Equal(t, "uuid.UUID", id.Info.Ident)
	assert.True(t, id.PrimaryKey)

	serial := fields[1].Descriptor()
	assert.Equal(t, "serial_no", serial.Column())
	assert.Equal(t, "Serial number.", serial.Comment)

	fw, ok := sqlschema.Lookup(fields[2].Descriptor().Annotations)
	require.True(t, ok)
	assert.Equal(t, int64(1024), fw.Size)

	assert.True(t, fields[3].Descriptor().Nillable)
	assert.Equal(t, field.TypeBool, fields[4].Descriptor().Info.Type)

	meta, ok := sqlschema.Lookup(fields[5].Descriptor().Annotations)
	require.True(t, ok)
	assert.Equal(t, "JSON", meta.ColumnType)
}

// Account, Order and Item mirror a declaration file in Go.
type (
	Account struct{ relm.Schema }
	Order   struct{ relm.Schema }
	Item    struct{ relm.Schema }
)

func (Account) Mixin() []relm.Mixin {
	return []relm.Mixin{mixin.UUIDID{}, mixin.Time{}}
}

func (Account) Fields() []relm.Field {
	return []relm.Field{
		field.String("email").Size(200).Unique(),
	}
}

func (Account) Relations() []relm.Relation {
	return []relm.Relation{
		edge.OneToMany("orders", Order.Type).
			Backref("account").
			OnDelete(sqlschema.Cascade),
	}
}

func (Order) Config() relm.Config {
	return relm.Config{Table: "purchase_orders", Comment: "Orders."}
}

func (Order) Fields() []relm.Field {
	return []relm.Field{
		field.Float64("total"),
		field.Text("note").Nillable(),
	}
}

func (Order) Relations() []relm.Relation {
	return []relm.Relation{
		edge.ManyToMany("items", Item.Type).
			Table("order_items").
			FKName("oi"),
	}
}

func (Item) Annotations() []schema.Annotation {
	return []schema.Annotation{sqlschema.Table("catalog_items")}
}

func (Item) Fields() []relm.Field {
	return []relm.Field{
		field.String("sku").StorageKey("sku_code"),
		field.Bytes("image").Nillable(),
	}
}

func TestMarshalSchema(t *testing.T) {
	b, err := load.MarshalSchema(Order{})
	require.NoError(t, err)
	s := &load.Schema{}
	require.NoError(t, yaml.Unmarshal(b, s))
	assert.Equal(t, "Order", s.Name)
	assert.Equal(t, "purchase_orders", s.Table)
	assert.Equal(t, []*load.Field{
		{Name: "total", Type: load.TypeFloat64},
		{Name: "note", Type: load.TypeText, Nillable: true},
	}, s.Fields)
	require.Len(t, s.Relations, 1)
	assert.Equal(t, &load.Relation{
		Name:   "items",
		Type:   load.ManyToMany,
		Target: "Item",
		Table:  "order_items",
		FK:     &load.ForeignKey{Name: "oi"},
	}, s.Relations[0])

	s, err = load.FromInterface(Item{})
	require.NoError(t, err)
	assert.Equal(t, "catalog_items", s.Table)

	s, err = load.FromInterface(Account{})
	require.NoError(t, err)
	require.Len(t, s.Fields, 4, "mixed-in fields are inlined")
	assert.Equal(t, "id", s.Fields[0].Name)
	assert.Equal(t, load.TypeUUID, s.Fields[0].Type)
	assert.Equal(t, "CASCADE", s.Relations[0].FK.OnDelete)
}

func TestMarshalSchema_RoundTrip(t *testing.T) {
	var file load.File
	for _, s := range []relm.Interface{Account{}, Order{}, Item{}} {
		ls, err := load.FromInterface(s)
		require.NoError(t, err)
		file.Models = append(file.Models, ls)
	}
	b, err := yaml.Marshal(file)
	require.NoError(t, err)
	loaded, err := load.Parse(strings.NewReader(string(b)), "roundtrip.yaml")
	require.NoError(t, err)

	want := snapshot(t, Account{}, Order{}, Item{})
	got := snapshot(t, loaded...)
	assert.Equal(t, want, got)
}

func TestMarshalSchema_Errors(t *testing.T) {
	_, err := load.MarshalSchema(panicking{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fields panics")

	_, err = load.MarshalSchema(invalid{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `schema "invalid": relation "":`)
}

type panicking struct{ relm.Schema }

func (panicking) Fields() []relm.Field { panic("boom") }

type invalid struct{ relm.Schema }

func (invalid) Relations() []relm.Relation {
	return []relm.Relation{edge.OneToMany("", Order.Type)}
}

func snapshot(t *testing.T, schemas ...relm.Interface) string {
	t.Helper()
	reg := relm.NewRegistry()
	require.NoError(t, reg.Register(schemas...))
	require.NoError(t, reg.Configure())
	b, err := dbschema.EncodeSnapshot(reg.MetaData())
	require.NoError(t, err)
	return string(b)
}

func columnNames(t *dbschema.Table) []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
