// Package mixin provides mixins that contribute relationships to the models
// using them.
//
// These mixins are OPTIONAL and provided as convenient starting points.
// Every model using one gets its own copy of the relationships, so the
// foreign key columns and constraints are synthesized on each model table.
//
// Available mixins:
//   - Tenant: Adds a required many-to-one relationship to a tenant model
//   - Audit: Adds created_by and updated_by relationships to a user model
//
// Usage:
//
//	import "github.com/syssam/relm/contrib/mixin"
//
//	func (Invoice) Mixin() []relm.Mixin {
//	    return []relm.Mixin{
//	        mixin.Tenant{},
//	        mixin.Audit{},
//	    }
//	}
package mixin

import (
	"github.com/syssam/relm"
	"github.com/syssam/relm/dialect/sqlschema"
	"github.com/syssam/relm/schema/edge"
	"github.com/syssam/relm/schema/mixin"
)

// Tenant adds a tenant relationship to a schema. The tenant_id column is
// NOT NULL and rows are removed with their tenant.
//
// Generated column:
//
//	tenant_id <tenant pk type> NOT NULL REFERENCES tenants ON DELETE CASCADE
//
// Model is the name of the tenant model, "Tenant" when empty. Backref names
// the reverse one-to-many relationship on the tenant model; leave it empty
// when more than one model uses the mixin, or set it per model.
type Tenant struct {
	mixin.Schema
	Model   string
	Backref string
}

// Relations of the tenant mixin.
func (t Tenant) Relations() []relm.Relation {
	model := t.Model
	if model == "" {
		model = "Tenant"
	}
	b := edge.ManyToOne("tenant", model).
		FKNullable(false).
		OnDelete(sqlschema.Cascade).
		Comment("Tenant owning the row.")
	if t.Backref != "" {
		b.Backref(t.Backref)
	}
	return []relm.Relation{b}
}

// tenant mixin must implement `Mixin` interface.
var _ relm.Mixin = (*Tenant)(nil)

// Audit adds created_by and updated_by relationships to a schema. Both
// columns are nullable and set to NULL when the user is deleted.
//
// Generated columns:
//
//	created_by_id <user pk type> NULL REFERENCES users ON DELETE SET NULL
//	updated_by_id <user pk type> NULL REFERENCES users ON DELETE SET NULL
//
// Model is the name of the user model, "User" when empty.
type Audit struct {
	mixin.Schema
	Model string
}

// Relations of the audit mixin.
func (a Audit) Relations() []relm.Relation {
	model := a.Model
	if model == "" {
		model = "User"
	}
	rels := make([]relm.Relation, 0, 2)
	for _, name := range []string{"created_by", "updated_by"} {
		rels = append(rels, edge.ManyToOne(name, model).OnDelete(sqlschema.SetNull))
	}
	return rels
}

// audit mixin must implement `Mixin` interface.
var _ relm.Mixin = (*Audit)(nil)
