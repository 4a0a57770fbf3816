package relm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/relm"
	"github.com/syssam/relm/schema"
	"github.com/syssam/relm/schema/edge"
	"github.com/syssam/relm/schema/field"
)

// User, Post and Tag declare a small blog.
type (
	User struct{ relm.Schema }
	Post struct{ relm.Schema }
	Tag  struct{ relm.Schema }
)

func (User) Fields() []relm.Field {
	return []relm.Field{
		field.String("name"),
	}
}

func (User) Relations() []relm.Relation {
	return []relm.Relation{
		edge.OneToMany("posts", Post.Type).Backref("author"),
	}
}

func (Post) Fields() []relm.Field {
	return []relm.Field{
		field.String("title").Size(120),
		field.Text("body").Nillable(),
	}
}

func (Post) Relations() []relm.Relation {
	return []relm.Relation{
		edge.ManyToMany("tags", Tag.Type).Table("post_tags").Backref("posts"),
	}
}

func (Tag) Fields() []relm.Field {
	return []relm.Field{
		field.String("name").Unique(),
	}
}

// model is a schema assembled in tests.
type model struct {
	relm.Schema
	name      string
	fields    []relm.Field
	relations []relm.Relation
	mixins    []relm.Mixin
	config    relm.Config
	ants      []schema.Annotation
}

func (m model) Name() string                     { return m.name }
func (m model) Fields() []relm.Field             { return m.fields }
func (m model) Relations() []relm.Relation       { return m.relations }
func (m model) Mixin() []relm.Mixin              { return m.mixins }
func (m model) Config() relm.Config              { return m.config }
func (m model) Annotations() []schema.Annotation { return m.ants }

// configure registers the schemas in a new registry and configures it.
func configure(t *testing.T, schemas ...relm.Interface) *relm.Registry {
	t.Helper()
	reg := relm.NewRegistry()
	require.NoError(t, reg.Register(schemas...))
	require.NoError(t, reg.Configure())
	return reg
}

func mustModel(t *testing.T, reg *relm.Registry, name string) *relm.Model {
	t.Helper()
	m, ok := reg.Model(name)
	require.True(t, ok, "model %s", name)
	return m
}

func mustRelationship(t *testing.T, m *relm.Model, key string) *relm.Relationship {
	t.Helper()
	r, ok := m.Relationship(key)
	require.True(t, ok, "relationship %s.%s", m.Name, key)
	return r
}

func columnNames(t *testing.T, reg *relm.Registry, table string) []string {
	t.Helper()
	tb, ok := reg.MetaData().Table(table)
	require.True(t, ok, "table %s", table)
	names := make([]string, len(tb.Columns))
	for i, c := range tb.Columns {
		names[i] = c.Name
	}
	return names
}
