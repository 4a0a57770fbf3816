// Package relm declares models and the relationships between them, and
// synthesizes the foreign key columns, foreign key constraints and
// association tables the relationships imply.
//
// Schemas are Go types embedding relm.Schema:
//
//	type User struct {
//		relm.Schema
//	}
//
//	func (User) Fields() []relm.Field {
//		return []relm.Field{
//			field.String("name"),
//		}
//	}
//
//	func (User) Relations() []relm.Relation {
//		return []relm.Relation{
//			edge.OneToMany("posts", Post.Type).Backref("author"),
//		}
//	}
//
// Relationships are resolved after all models are declared, so a model can
// reference models declared after it:
//
//	reg := relm.NewRegistry()
//	if err := reg.Register(User{}, Post{}); err != nil {
//		return err
//	}
//	if err := reg.Configure(); err != nil {
//		return err
//	}
//
// Configure sends the DeclareFirst signal for every model, which adds the
// "author_id" column and its foreign key to the posts table, and creates the
// "author" relationship on Post. Many-to-many relationships naming an
// existing Secondary table are bound after DeclareFirst was sent for every
// model, and DeclareLast then links the BackPopulates pairs.
package relm
