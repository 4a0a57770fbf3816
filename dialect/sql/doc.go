// Package sql wraps database/sql connections with the dialect they speak.
//
// The schema tooling in dialect/sql/schema inspects and changes databases
// through a Driver:
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db?_pragma=foreign_keys(1)")
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//	if err := schema.Create(ctx, drv, reg.MetaData()); err != nil {
//	    return err
//	}
//
// An existing *sql.DB is wrapped with OpenDB:
//
//	drv := sql.OpenDB(dialect.Postgres, db)
package sql
