package relm

import (
	"io"
	"slices"
	"sync"

	"github.com/go-openapi/inflect"
	"github.com/sirupsen/logrus"

	"github.com/syssam/relm/dialect/sql/schema"
	"github.com/syssam/relm/dialect/sqlschema"
	rschema "github.com/syssam/relm/schema"
	"github.com/syssam/relm/schema/field"
)

// Registry holds the declared models and the metadata of their tables.
// Relationships are recorded when a model is registered and resolved by
// Configure.
type Registry struct {
	mu     sync.Mutex
	cfgMu  sync.Mutex // serializes Configure.
	log    logrus.FieldLogger
	md     *schema.MetaData
	models map[string]*Model
	order  []*Model
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger of the registry. Synthesized columns,
// constraints and tables are logged at debug level.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Registry) {
		r.log = l
	}
}

// WithMetaData sets the metadata the model tables are added to. Tables that
// already exist in it can be used as secondary tables.
func WithMetaData(md *schema.MetaData) Option {
	return func(r *Registry) {
		r.md = md
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		models: make(map[string]*Model),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		r.log = l
	}
	if r.md == nil {
		r.md = schema.NewMetaData()
	}
	return r
}

// Logger returns the registry logger.
func (r *Registry) Logger() logrus.FieldLogger {
	return r.log
}

// MetaData returns the metadata holding the model and association tables.
func (r *Registry) MetaData() *schema.MetaData {
	return r.md
}

// Model returns the model registered under the given name.
func (r *Registry) Model(name string) (*Model, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.models[name]
	return m, ok
}

// Models returns the registered models in registration order.
func (r *Registry) Models() []*Model {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Register declares the given schemas. Each schema is mapped to a table of
// the metadata and its relationships are recorded as pending. A schema that
// fails to declare is not registered; the errors of all schemas are
// returned together.
func (r *Registry) Register(schemas ...Interface) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for _, s := range schemas {
		m, err := r.declare(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		r.models[m.Name] = m
		r.order = append(r.order, m)
		r.log.WithFields(logrus.Fields{
			"model": m.Name,
			"table": m.Table.QualifiedName(),
		}).Debug("relm: model declared")
	}
	return NewAggregateError(errs...)
}

// MustRegister is like Register but panics if a schema fails to declare.
func (r *Registry) MustRegister(schemas ...Interface) {
	if err := r.Register(schemas...); err != nil {
		panic(err)
	}
}

// Configure resolves the pending relationships of all models. DeclareFirst
// is sent for every model in registration order, then the secondary tables
// named by many-to-many relationships are bound, then DeclareLast is sent.
// It can be called any number of times: resolved relationships are not
// pending anymore, and models registered after a pass are resolved by the
// next one. The registry is not locked while the signals are sent, so
// receivers may use it.
func (r *Registry) Configure() error {
	r.cfgMu.Lock()
	defer r.cfgMu.Unlock()
	var (
		errs   []error
		models = r.Models()
	)
	for _, m := range models {
		if err := DeclareFirst.Send(m); err != nil {
			errs = append(errs, err)
		}
	}
	for _, m := range models {
		if err := resolveSecondaryTables(m); err != nil {
			errs = append(errs, err)
		}
	}
	for _, m := range models {
		if err := DeclareLast.Send(m); err != nil {
			errs = append(errs, err)
		}
	}
	return NewAggregateError(errs...)
}

func (r *Registry) declare(s Interface) (*Model, error) {
	name := ModelName(s)
	if name == "" {
		return nil, NewArgumentError("", "", "schema %T has no model name", s)
	}
	if _, ok := r.models[name]; ok {
		return nil, NewArgumentError(name, "", "model already registered")
	}
	var (
		mixins = s.Mixin()
		ants   []rschema.Annotation
		fields []*field.Descriptor
		rels   []Relation
		errs   []error
	)
	for _, mx := range mixins {
		ants = append(ants, mx.Annotations()...)
		for _, f := range mx.Fields() {
			fields = append(fields, f.Descriptor())
		}
		rels = append(rels, mx.Relations()...)
	}
	ants = append(ants, s.Annotations()...)
	for _, f := range s.Fields() {
		fields = append(fields, f.Descriptor())
	}
	rels = append(rels, s.Relations()...)

	cfg := s.Config()
	sqlAnt, _ := sqlschema.Lookup(ants)
	t := schema.NewTable(tableName(name, cfg, sqlAnt))
	t.SetSchema(cfg.Schema)
	if sqlAnt.Schema != "" {
		t.SetSchema(sqlAnt.Schema)
	}
	m := newModel(r, name, s, t)
	m.Comment = cfg.Comment
	for _, at := range ants {
		if c, ok := at.(*rschema.CommentAnnotation); ok && c != nil {
			m.Comment = c.Text
		}
	}
	if sqlAnt.StoreComments() {
		t.SetComment(m.Comment)
	}

	// Fields marked as primary key, or else the "id" field, key the table.
	// Without both, an auto-increment id column is added.
	hasPK := slices.ContainsFunc(fields, func(d *field.Descriptor) bool { return d.PrimaryKey })
	if !hasPK && !slices.ContainsFunc(fields, func(d *field.Descriptor) bool { return d.Name == "id" }) {
		fields = append([]*field.Descriptor{field.Int("id").AutoIncrement().Descriptor()}, fields...)
	}
	for _, d := range fields {
		if d.Err != nil {
			errs = append(errs, wrapArgumentError(name, d.Name, d.Err))
			continue
		}
		if t.HasColumn(d.Column()) {
			errs = append(errs, NewArgumentError(name, d.Name, "duplicate column %q", d.Column()))
			continue
		}
		c := column(d, sqlAnt.StoreComments())
		p := &Property{Key: d.Name, Column: c, Info: d.Info, Comment: d.Comment}
		if err := m.addProperty(p); err != nil {
			errs = append(errs, err)
			continue
		}
		if d.PrimaryKey || (!hasPK && d.Name == "id") {
			t.AddPrimary(c)
		} else {
			t.AddColumn(c)
		}
	}
	for _, rel := range rels {
		d := rel.Descriptor()
		if d.Err != nil {
			errs = append(errs, wrapArgumentError(name, d.Name, d.Err))
			continue
		}
		rl := newRelationship(m, d)
		if err := m.addRelationship(rl); err != nil {
			errs = append(errs, err)
			continue
		}
		m.pending = append(m.pending, rl)
	}
	if err := NewAggregateError(errs...); err != nil {
		return nil, err
	}
	if err := r.md.AddTable(t); err != nil {
		return nil, wrapArgumentError(name, "", err)
	}
	return m, nil
}

// tableName returns the table of a model: the sqlschema annotation, the
// schema config or the plural snake case of the model name.
func tableName(name string, cfg Config, ant sqlschema.Annotation) string {
	switch {
	case ant.Table != "":
		return ant.Table
	case cfg.Table != "":
		return cfg.Table
	default:
		return inflect.Pluralize(inflect.Underscore(name))
	}
}

func column(d *field.Descriptor, comments bool) *schema.Column {
	c := &schema.Column{
		Name:      d.Column(),
		Type:      d.Info.Type,
		Size:      d.Size,
		Nullable:  d.Nillable && !d.PrimaryKey,
		Increment: d.Increment,
		Unique:    d.Unique,
	}
	if comments {
		c.Comment = d.Comment
	}
	if ant, ok := sqlschema.Lookup(d.Annotations); ok {
		if ant.Size != 0 {
			c.Size = ant.Size
		}
		c.SchemaType = ant.ColumnType
	}
	return c
}
