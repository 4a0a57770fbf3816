// Package field provides fluent builders for the column-backed fields of
// relm models.
//
// The field name is the property key of the model. The column name defaults
// to the field name and can be changed with StorageKey:
//
//	field.Int("owner").StorageKey("owner_id") // property: owner, column: owner_id
//
// # Field Types
//
//	field.String("name")
//	field.Text("description")
//	field.Int("count")
//	field.Int32("rank")
//	field.Int64("big_number")
//	field.Float64("price")
//	field.Bool("is_active")
//	field.Time("created_at")
//	field.UUID("id", uuid.UUID{})
//	field.Bytes("data")
//
// # Field Options
//
//	field.Int("pk").
//	    PrimaryKey().     // part of the primary key
//	    AutoIncrement()   // integer keys only
//
//	field.String("email").
//	    Unique().         // unique constraint
//	    Nillable().       // nullable column, pointer in Go
//	    Size(255).        // VARCHAR(255)
//	    Comment("Login")  // database comment
//
// Columns are NOT NULL unless the field is Nillable. Primary key columns are
// never nullable.
//
// The primary key columns of a model are the ones referenced by the foreign
// keys and association tables synthesized for its relationships, so their
// type and size carry over to the generated columns.
package field
