package relm

import (
	"slices"

	"github.com/syssam/relm/dialect/sql/schema"
	"github.com/syssam/relm/schema/field"
)

// Model is a declared schema mapped to a table of the registry metadata.
type Model struct {
	// Name of the model, as used in relationship targets.
	Name string
	// Table the model is mapped to.
	Table *schema.Table
	// Schema the model was declared from.
	Schema Interface
	// Comment of the model.
	Comment string

	registry  *Registry
	props     map[string]*Property
	propOrder []*Property
	rels      map[string]*Relationship
	relOrder  []*Relationship
	pending   []*Relationship
}

// Property maps a model attribute to a table column.
type Property struct {
	Key    string
	Column *schema.Column
	// Info is the Go type of the property. Synthesized foreign key
	// properties carry the type of the primary key they reference.
	Info *field.TypeInfo
	// Synthesized reports if the property was added by a relationship.
	Synthesized bool
	// Comment of the property.
	Comment string
}

func newModel(r *Registry, name string, s Interface, t *schema.Table) *Model {
	return &Model{
		Name:     name,
		Table:    t,
		Schema:   s,
		registry: r,
		props:    make(map[string]*Property),
		rels:     make(map[string]*Relationship),
	}
}

// Registry returns the registry the model is declared in.
func (m *Model) Registry() *Registry {
	return m.registry
}

// Property returns the property with the given key.
func (m *Model) Property(key string) (*Property, bool) {
	p, ok := m.props[key]
	return p, ok
}

// Properties returns the model properties in declaration order. Properties
// synthesized for relationships come after the declared ones.
func (m *Model) Properties() []*Property {
	return slices.Clone(m.propOrder)
}

// PropertyByColumn returns the property mapped to the given column.
func (m *Model) PropertyByColumn(c *schema.Column) (*Property, bool) {
	for _, p := range m.propOrder {
		if p.Column == c {
			return p, true
		}
	}
	return nil, false
}

// HasProperty reports if the model has an attribute with the given key,
// either a property or a relationship.
func (m *Model) HasProperty(key string) bool {
	_, isProp := m.props[key]
	_, isRel := m.rels[key]
	return isProp || isRel
}

// Relationship returns the relationship with the given key.
func (m *Model) Relationship(key string) (*Relationship, bool) {
	r, ok := m.rels[key]
	return r, ok
}

// Relationships returns the model relationships, including the ones created
// by backrefs of other models.
func (m *Model) Relationships() []*Relationship {
	return slices.Clone(m.relOrder)
}

// Pending returns the relationships that were not resolved yet.
func (m *Model) Pending() []*Relationship {
	return slices.Clone(m.pending)
}

// PrimaryKey returns the properties mapped to the table primary key, in key
// order.
func (m *Model) PrimaryKey() []*Property {
	pk := make([]*Property, 0, len(m.Table.PrimaryKey))
	for _, c := range m.Table.PrimaryKey {
		if p, ok := m.PropertyByColumn(c); ok {
			pk = append(pk, p)
		}
	}
	return pk
}

func (m *Model) addProperty(p *Property) error {
	if m.HasProperty(p.Key) {
		return NewArgumentError(m.Name, p.Key, "duplicate property name")
	}
	m.props[p.Key] = p
	m.propOrder = append(m.propOrder, p)
	return nil
}

func (m *Model) addRelationship(r *Relationship) error {
	if m.HasProperty(r.Key) {
		return NewArgumentError(m.Name, r.Key, "relationship name conflicts with an existing property")
	}
	m.rels[r.Key] = r
	m.relOrder = append(m.relOrder, r)
	return nil
}
