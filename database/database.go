package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
)

// pool limits applied per dialect. sqlite serialises writers so a single
// connection avoids SQLITE_BUSY during candle imports
var pools = map[string]pool{
	DBSQLite3:    {maxOpen: 1},
	DBPostgreSQL: {maxOpen: 2, maxIdle: 1, lifetime: time.Hour, ping: true},
}

// SetConfig sets the connection settings the instance reports
func (i *Instance) SetConfig(cfg *Config) error {
	if i == nil {
		return errNilInstance
	}
	if cfg == nil {
		return errNilConfig
	}
	i.m.Lock()
	i.config = cfg
	i.m.Unlock()
	return nil
}

// SetSQLiteConnection attaches an opened sqlite3 handle
func (i *Instance) SetSQLiteConnection(con *sql.DB) error {
	return i.setConnection(con, DBSQLite3)
}

// SetPostgresConnection attaches an opened postgres handle once it answers a ping
func (i *Instance) SetPostgresConnection(con *sql.DB) error {
	return i.setConnection(con, DBPostgreSQL)
}

func (i *Instance) setConnection(con *sql.DB, dialect string) error {
	if i == nil {
		return errNilInstance
	}
	if con == nil {
		return errNilSQL
	}
	p := pools[dialect]
	if p.ping {
		if err := con.Ping(); err != nil {
			return fmt.Errorf("%s: %w", dialect, err)
		}
	}
	con.SetMaxOpenConns(p.maxOpen)
	if p.maxIdle > 0 {
		con.SetMaxIdleConns(p.maxIdle)
	}
	if p.lifetime > 0 {
		con.SetConnMaxLifetime(p.lifetime)
	}
	i.m.Lock()
	i.SQL = con
	i.dialect = dialect
	i.connected = true
	i.m.Unlock()
	log.Debugf(Database, "%s connection established", dialect)
	return nil
}

// CloseConnection disconnects the instance
func (i *Instance) CloseConnection() error {
	if i == nil {
		return errNilInstance
	}
	i.m.Lock()
	defer i.m.Unlock()
	if i.SQL == nil {
		return errNilSQL
	}
	i.connected = false
	return i.SQL.Close()
}

// IsConnected reports whether a connection is attached and open
func (i *Instance) IsConnected() bool {
	if i == nil {
		return false
	}
	i.m.RLock()
	defer i.m.RUnlock()
	return i.connected
}

// Dialect returns the driver the connection speaks
func (i *Instance) Dialect() string {
	i.m.RLock()
	defer i.m.RUnlock()
	return i.dialect
}

func (i *Instance) Ping() error {
	if i == nil {
		return errNilInstance
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if i.SQL == nil {
		return errNilSQL
	}
	return i.SQL.Ping()
}

// GetSQL returns the connection or ErrDatabaseSupportDisabled when there is none
func (i *Instance) GetSQL() (*sql.DB, error) {
	if i == nil {
		return nil, errNilInstance
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if !i.connected || i.SQL == nil {
		return nil, ErrDatabaseSupportDisabled
	}
	return i.SQL, nil
}

// LogQuery sends a query and its arguments to the database sub-logger when
// the connection is configured as verbose
func (i *Instance) LogQuery(query string, args ...any) {
	i.m.RLock()
	verbose := i.config != nil && i.config.Verbose
	i.m.RUnlock()
	if !verbose {
		return
	}
	log.Debugf(Database, "%s %v", strings.Join(strings.Fields(query), " "), args)
}
