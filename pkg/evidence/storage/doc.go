// Package storage provides the evidence stores.
//
//   - MemoryStorage keeps records for the life of the process.
//   - SQLiteStorage persists records through database/sql with either
//     modernc.org/sqlite (driver "sqlite", pure Go, the default) or
//     github.com/mattn/go-sqlite3 (driver "sqlite3", needs cgo).
//
// Journal mode and busy timeout are passed in the DSN so that every pooled
// connection gets them:
//
//	evidence:
//	  backend: sqlite
//	  sqlite:
//	    driver: sqlite
//	    path: data/evidence.db
//	    journal_mode: WAL
//	    busy_timeout: 5s
package storage
