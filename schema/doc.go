// Package schema provides the building blocks for declaring relm models.
//
// This package serves as the entry point for schema definition; the builders
// live in its subpackages:
//
//   - [field]: Column-backed fields
//   - [edge]: Relationship builders (one-to-many, many-to-one, many-to-many)
//   - [mixin]: Reusable schema components
//
// # Quick Start
//
// Declare a model by embedding relm.Schema and implementing the methods you
// need:
//
//	type User struct{ relm.Schema }
//
//	func (User) Fields() []relm.Field {
//	    return []relm.Field{
//	        field.Int("pk").PrimaryKey().AutoIncrement(),
//	        field.String("email").Unique().Size(255),
//	    }
//	}
//
//	func (User) Relations() []relm.Relation {
//	    return []relm.Relation{
//	        edge.OneToMany("posts", Post.Type).Backref("author"),
//	    }
//	}
//
//	type Post struct{ relm.Schema }
//
//	func (Post) Fields() []relm.Field {
//	    return []relm.Field{
//	        field.Int("pk").PrimaryKey().AutoIncrement(),
//	        field.String("title"),
//	    }
//	}
//
// Registering both models and configuring the registry adds the column
// posts.author_pk (mapped to the property "_author_pk") together with a
// foreign-key constraint referencing users.pk:
//
//	reg := relm.NewRegistry()
//	if err := reg.Register(User{}, Post{}); err != nil {
//	    return err
//	}
//	if err := reg.Configure(); err != nil {
//	    return err
//	}
//
// # Relationships
//
//	// One-to-Many: foreign key on the remote table
//	edge.OneToMany("posts", Post.Type)
//
//	// Many-to-One: foreign key on the declaring table
//	edge.ManyToOne("author", User.Type)
//
//	// Many-to-Many: association table synthesized from both primary keys
//	edge.ManyToMany("tags", Tag.Type).Table("post_tags")
//
// # Annotations
//
// SQL annotations customize the synthesized schema:
//
//	sqlschema.OnDelete(sqlschema.Cascade) // FK action
//	sqlschema.Size(64)                    // column size
//	sqlschema.Table("people")             // table name
package schema
