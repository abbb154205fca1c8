package postgres

import (
	"database/sql"
	"fmt"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/database"
	// import postgres driver
	_ "github.com/lib/pq"
)

// DSN builds a lib/pq connection string
func DSN(cfg *database.Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		sslMode)
}

// Connect opens and verifies a postgres connection
func Connect(inst *database.Instance, cfg *database.Config) error {
	if cfg == nil || cfg.Database == "" {
		return database.ErrNoDatabaseProvided
	}
	dbConn, err := sql.Open(database.DBPostgreSQL, DSN(cfg))
	if err != nil {
		return err
	}
	if err := inst.SetConfig(cfg); err != nil {
		return err
	}
	if err := inst.SetPostgresConnection(dbConn); err != nil {
		if errClose := dbConn.Close(); errClose != nil {
			return fmt.Errorf("%w, close: %v", err, errClose)
		}
		return err
	}
	return nil
}
