package relm

import (
	"github.com/syssam/relm/dialect/sql/schema"
	"github.com/syssam/relm/schema/edge"
)

// Relationship is a relationship between two models. Its foreign keys or
// association table are resolved when the registry is configured.
type Relationship struct {
	// Key is the attribute name of the relationship on its owner.
	Key string
	// Direction of the relationship, seen from the owner.
	Direction edge.Direction
	// Owner is the model declaring the relationship.
	Owner *Model
	// Target is the related model. Nil until resolved.
	Target *Model
	// TargetName is the name of the related model.
	TargetName string
	// Backref is the name of the reverse relationship created on the target.
	Backref string
	// BackPopulates is the name of the reverse relationship declared on the
	// target.
	BackPopulates string
	// Reverse is the linked counterpart on the target, if any.
	Reverse *Relationship
	// ForeignKeys are the columns of a one-to-many or many-to-one
	// relationship referencing the parent primary key, in key order.
	ForeignKeys []*schema.Column
	// Secondary is the association table of a many-to-many relationship.
	Secondary *schema.Table
	// Comment of the relationship.
	Comment string
	// Info holds user values set on the relationship builder.
	Info map[string]any
	// Descriptor the relationship was declared from. Nil for relationships
	// created by a backref.
	Descriptor *edge.Descriptor
}

func newRelationship(owner *Model, d *edge.Descriptor) *Relationship {
	r := &Relationship{
		Key:           d.Name,
		Direction:     d.Direction,
		Owner:         owner,
		TargetName:    d.Type,
		Backref:       d.Backref,
		BackPopulates: d.BackPopulates,
		Comment:       d.Comment,
		Descriptor:    d,
	}
	if len(d.Info) > 0 {
		r.Info = make(map[string]any, len(d.Info))
		for k, v := range d.Info {
			r.Info[k] = v
		}
	}
	return r
}

// UseList reports if the relationship holds a collection of targets.
func (r *Relationship) UseList() bool {
	return r.Direction.UseList()
}

// Resolved reports if the foreign keys or the association table of the
// relationship are set.
func (r *Relationship) Resolved() bool {
	if r.Direction == edge.M2M {
		return r.Secondary != nil
	}
	return len(r.ForeignKeys) > 0
}

// FromBackref reports if the relationship was created by a backref of its
// counterpart.
func (r *Relationship) FromBackref() bool {
	return r.Descriptor == nil
}

// Parent returns the model referenced by the foreign keys of a one-to-many
// or many-to-one relationship.
func (r *Relationship) Parent() *Model {
	if r.Direction == edge.O2M {
		return r.Owner
	}
	return r.Target
}

// Child returns the model holding the foreign keys of a one-to-many or
// many-to-one relationship.
func (r *Relationship) Child() *Model {
	if r.Direction == edge.O2M {
		return r.Target
	}
	return r.Owner
}
