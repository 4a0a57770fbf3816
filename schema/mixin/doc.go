// Package mixin provides the base mixin implementation for relm schemas.
//
// A mixin is a reusable set of fields, relationships and annotations that
// can be embedded in multiple schema definitions. Mixin fields come before
// the schema's own fields in the table.
//
// To create a custom mixin, embed Schema and override the methods you need:
//
//	type OwnedMixin struct {
//	    mixin.Schema
//	}
//
//	func (OwnedMixin) Relations() []relm.Relation {
//	    return []relm.Relation{
//	        edge.ManyToOne("owner", "User"),
//	    }
//	}
//
// Using Mixins:
//
//	func (Post) Mixin() []relm.Mixin {
//	    return []relm.Mixin{
//	        mixin.ID{},
//	        mixin.Time{},
//	        OwnedMixin{},
//	    }
//	}
package mixin
