// Package dialect defines the SQL dialects relm renders schemas for.
//
// # Supported Dialects
//
//   - Postgres: PostgreSQL database
//   - MySQL: MySQL/MariaDB database
//   - SQLite: SQLite database
//
// Each dialect is identified by a constant string that is also the name of
// the database/sql driver registered for it:
//
//	dialect.Postgres = "postgres" // github.com/lib/pq
//	dialect.MySQL    = "mysql"    // github.com/go-sql-driver/mysql
//	dialect.SQLite   = "sqlite"   // modernc.org/sqlite
//
// # Usage
//
//	import (
//	    "github.com/syssam/relm/dialect"
//	    "github.com/syssam/relm/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db?_pragma=foreign_keys(1)")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// # Sub-packages
//
//   - dialect/sql: database/sql driver wrapper
//   - dialect/sql/schema: table metadata, DDL rendering and table creation
//   - dialect/sqlschema: SQL annotations for models, fields and relations
package dialect
