// Package schema holds the table metadata synthesized by a relm registry
// and bridges it to atlas for rendering and applying DDL.
//
//	md := reg.MetaData()
//
//	// CREATE statements, no database needed.
//	stmts, err := schema.DDL(ctx, dialect.Postgres, md)
//
//	// Create the missing tables in a live database.
//	err = schema.Create(ctx, drv, md)
//
//	// Integrity checks.
//	if res := schema.Validate(md); res.HasErrors() {
//	    log.Fatal(res)
//	}
package schema
