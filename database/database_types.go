package database

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
)

// Supported drivers
const (
	DBSQLite3    = "sqlite3"
	DBPostgreSQL = "postgres"
)

var (
	// Database is the database sub-logger
	Database = log.MustNewSubLogger("DATABASE")

	// ErrDatabaseSupportDisabled is returned when no connection has been made
	ErrDatabaseSupportDisabled = errors.New("database support is disabled")
	// ErrNoDatabaseProvided is returned when a connection lacks a database name
	ErrNoDatabaseProvided = errors.New("no database provided")
	// ErrUnsupportedDriver is returned for drivers other than sqlite3 and postgres
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	errNilInstance = errors.New("database instance is nil")
	errNilConfig   = errors.New("database config is nil")
	errNilSQL      = errors.New("database SQL connection is nil")
)

// Config holds the connection settings
type Config struct {
	Enabled           bool   `json:"enabled"`
	Verbose           bool   `json:"verbose"`
	Driver            string `json:"driver"`
	ConnectionDetails `json:"connection-details"`
}

// ConnectionDetails are the driver specific fields. Database is the file
// path for sqlite3
type ConnectionDetails struct {
	Host     string `json:"host"`
	Port     uint16 `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

// Instance holds a database connection and the dialect it speaks
type Instance struct {
	SQL       *sql.DB
	config    *Config
	dialect   string
	connected bool
	m         sync.RWMutex
}

type pool struct {
	maxOpen  int
	maxIdle  int
	lifetime time.Duration
	ping     bool
}
