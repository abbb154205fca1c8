package candle

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/database"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
	"github.com/gofrs/uuid"
)

var schema = map[string]string{
	database.DBSQLite3: `CREATE TABLE IF NOT EXISTS candle (
		id text NOT NULL PRIMARY KEY,
		symbol text NOT NULL,
		interval integer NOT NULL,
		timestamp integer NOT NULL,
		open real NOT NULL,
		high real NOT NULL,
		low real NOT NULL,
		close real NOT NULL,
		volume real NOT NULL,
		volatility real,
		bids text NOT NULL DEFAULT '',
		asks text NOT NULL DEFAULT '',
		book_timestamp integer,
		UNIQUE(symbol, interval, timestamp)
	);`,
	database.DBPostgreSQL: `CREATE TABLE IF NOT EXISTS candle (
		id uuid NOT NULL PRIMARY KEY,
		symbol varchar(64) NOT NULL,
		interval bigint NOT NULL,
		timestamp bigint NOT NULL,
		open double precision NOT NULL,
		high double precision NOT NULL,
		low double precision NOT NULL,
		close double precision NOT NULL,
		volume double precision NOT NULL,
		volatility double precision,
		bids text NOT NULL DEFAULT '',
		asks text NOT NULL DEFAULT '',
		book_timestamp bigint,
		UNIQUE(symbol, interval, timestamp)
	);`,
}

const upsert = `INSERT INTO candle
	(id, symbol, interval, timestamp, open, high, low, close, volume, volatility, bids, asks, book_timestamp)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (symbol, interval, timestamp) DO UPDATE SET
	open = excluded.open, high = excluded.high, low = excluded.low, close = excluded.close,
	volume = excluded.volume, volatility = excluded.volatility, bids = excluded.bids,
	asks = excluded.asks, book_timestamp = excluded.book_timestamp`

const series = `SELECT timestamp, open, high, low, close, volume, volatility, bids, asks, book_timestamp
	FROM candle WHERE symbol = $1 AND interval = $2 AND timestamp BETWEEN $3 AND $4
	ORDER BY timestamp`

// CreateSchema creates the candle table for the connection's dialect
func CreateSchema(ctx context.Context, inst *database.Instance) error {
	db, err := inst.GetSQL()
	if err != nil {
		return err
	}
	query, ok := schema[inst.Dialect()]
	if !ok {
		return fmt.Errorf("%w '%v'", database.ErrUnsupportedDriver, inst.Dialect())
	}
	inst.LogQuery(query)
	_, err = db.ExecContext(ctx, query)
	return err
}

// Series returns candles for a symbol and interval between start and end inclusive
func Series(ctx context.Context, inst *database.Instance, symbol string, interval int64, start, end time.Time) (out Item, err error) {
	if symbol == "" || interval <= 0 || start.IsZero() || end.IsZero() {
		return out, errInvalidInput
	}
	db, err := inst.GetSQL()
	if err != nil {
		return out, err
	}
	args := []any{strings.ToUpper(symbol), interval, start.UTC().Unix(), end.UTC().Unix()}
	inst.LogQuery(series, args...)
	rows, err := db.QueryContext(ctx, series, args...)
	if err != nil {
		return out, err
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Errorln(database.Database, errClose)
		}
	}()
	for rows.Next() {
		var (
			c             Candle
			ts            int64
			volatility    sql.NullFloat64
			bookTimestamp sql.NullInt64
		)
		if err = rows.Scan(&ts, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &volatility, &c.Bids, &c.Asks, &bookTimestamp); err != nil {
			return out, err
		}
		c.Timestamp = time.Unix(ts, 0).UTC()
		if volatility.Valid {
			c.Volatility = &volatility.Float64
		}
		if bookTimestamp.Valid {
			bt := time.Unix(bookTimestamp.Int64, 0).UTC()
			c.BookTimestamp = &bt
		}
		out.Candles = append(out.Candles, c)
	}
	if err = rows.Err(); err != nil {
		return out, err
	}
	if len(out.Candles) < 1 {
		return out, fmt.Errorf("%w: %s %v", ErrNoCandleDataFound, symbol, interval)
	}
	out.Symbol = strings.ToUpper(symbol)
	out.Interval = interval
	return out, nil
}

// Insert upserts a series of candles in a single transaction
func Insert(ctx context.Context, inst *database.Instance, in *Item) (uint64, error) {
	if in == nil || len(in.Candles) < 1 {
		return 0, errNoCandleData
	}
	if in.Symbol == "" || in.Interval <= 0 {
		return 0, errInvalidInput
	}
	db, err := inst.GetSQL()
	if err != nil {
		return 0, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	totalInserted, err := insert(ctx, inst, tx, in)
	if err != nil {
		errRB := tx.Rollback()
		if errRB != nil {
			log.Errorln(database.Database, errRB)
		}
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return totalInserted, nil
}

func insert(ctx context.Context, inst *database.Instance, tx *sql.Tx, in *Item) (uint64, error) {
	inst.LogQuery(upsert, in.Symbol, in.Interval, len(in.Candles))
	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return 0, err
	}
	defer func() {
		if errClose := stmt.Close(); errClose != nil {
			log.Errorln(database.Database, errClose)
		}
	}()
	var totalInserted uint64
	for x := range in.Candles {
		tempUUID, err := uuid.NewV4()
		if err != nil {
			return 0, err
		}
		var volatility sql.NullFloat64
		if in.Candles[x].Volatility != nil {
			volatility = sql.NullFloat64{Float64: *in.Candles[x].Volatility, Valid: true}
		}
		var bookTimestamp sql.NullInt64
		if in.Candles[x].BookTimestamp != nil {
			bookTimestamp = sql.NullInt64{Int64: in.Candles[x].BookTimestamp.UTC().Unix(), Valid: true}
		}
		_, err = stmt.ExecContext(ctx,
			tempUUID.String(),
			strings.ToUpper(in.Symbol),
			in.Interval,
			in.Candles[x].Timestamp.UTC().Unix(),
			in.Candles[x].Open,
			in.Candles[x].High,
			in.Candles[x].Low,
			in.Candles[x].Close,
			in.Candles[x].Volume,
			volatility,
			in.Candles[x].Bids,
			in.Candles[x].Asks,
			bookTimestamp)
		if err != nil {
			return 0, err
		}
		if totalInserted < math.MaxUint64 {
			totalInserted++
		}
	}
	return totalInserted, nil
}
