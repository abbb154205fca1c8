package sqlite

import (
	"database/sql"
	"path/filepath"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/database"
	// import sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

// InMemory opens a private in memory database
const InMemory = ":memory:"

// Connect opens a connection to a sqlite database file relative to dataPath
func Connect(inst *database.Instance, dataPath string, cfg *database.Config) error {
	if cfg == nil || cfg.Database == "" {
		return database.ErrNoDatabaseProvided
	}
	location := cfg.Database
	if location != InMemory {
		location = filepath.Join(dataPath, cfg.Database)
	}
	dbConn, err := sql.Open(database.DBSQLite3, location)
	if err != nil {
		return err
	}
	if err := inst.SetConfig(cfg); err != nil {
		return err
	}
	return inst.SetSQLiteConnection(dbConn)
}
