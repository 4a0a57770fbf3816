// Package edge provides fluent builders for declaring relationships between
// relm models.
//
// A relationship is declared on one model and names its target with a model
// name or a method expression:
//
//	// One-to-Many: the target table gets the foreign key columns
//	edge.OneToMany("posts", Post.Type)
//
//	// Many-to-One: the declaring table gets the foreign key columns
//	edge.ManyToOne("author", User.Type)
//
//	// Many-to-Many: an association table holds both primary keys
//	edge.ManyToMany("tags", Tag.Type).Table("post_tags")
//
// The builders return descriptors only. Columns, constraints and association
// tables are synthesized once every model of a registry is declared, so
// targets may be declared after the models referencing them.
//
// # Reverse Relationships
//
// Backref creates the reverse relationship on the target:
//
//	edge.OneToMany("posts", Post.Type).Backref("author") // Post.author is M2O
//
// BackPopulates links two relationships declared on both sides. Many-to-many
// pairs must name the same association table:
//
//	// User
//	edge.ManyToMany("groups", Group.Type).Table("memberships").BackPopulates("users")
//	// Group
//	edge.ManyToMany("users", User.Type).Table("memberships").BackPopulates("groups")
//
// # Foreign Key Options
//
//	edge.ManyToOne("owner", User.Type).
//	    FKKey("user").          // column user_pk, property _user_pk
//	    FKPrefix("fk_").        // property fk_user_pk
//	    FKNullable(false).      // NOT NULL columns
//	    FKName("pets_owner_fk"). // constraint symbol
//	    OnDelete(sqlschema.Cascade)
//
// The foreign key actions may also be set with sqlschema annotations; the
// builder options take precedence:
//
//	edge.OneToMany("posts", Post.Type).
//	    Annotations(sqlschema.OnDelete(sqlschema.Cascade))
//
// # Self-Referential Relationships
//
//	edge.ManyToMany("friends", User.Type).Table("friendships")
//
// The target side columns of a self-referential association table are named
// after the relationship ("friends_id") instead of the table.
package edge
