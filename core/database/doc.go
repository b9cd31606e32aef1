// Package database handles database connections and schema discovery.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly configure
// MySQL and SQLite connections based on the application's configuration.
//
// # Connect
//
// The generic Connect function establishes a connection to the database. The merge
// engine itself runs on the plain database/sql handle obtained from the GORM
// connection (db.DB()), because it needs explicit connection/transaction pairs.
//
// # Schema Discovery
//
// The package includes tools to inspect the database schema. Describe builds the
// table descriptor the merge engine needs: ordered columns with exact SQL types
// and the single primary key column, via SHOW COLUMNS (MySQL) or PRAGMA
// table_info (SQLite).
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	target, err := database.Describe(db, "records")
package database
