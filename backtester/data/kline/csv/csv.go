package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/event"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	errMissingColumn = errors.New("missing required column")
	errNoRows        = errors.New("no rows found")
	errBadTimestamp  = errors.New("invalid timestamp")
)

// Column names. Volatility, bids, asks and book-timestamp are optional
const (
	ColumnTimestamp     = "timestamp"
	ColumnOpen          = "open"
	ColumnHigh          = "high"
	ColumnLow           = "low"
	ColumnClose         = "close"
	ColumnVolume        = "volume"
	ColumnVolatility    = "volatility"
	ColumnBids          = "bids"
	ColumnAsks          = "asks"
	ColumnBookTimestamp = "book-timestamp"
)

var required = []string{ColumnTimestamp, ColumnOpen, ColumnHigh, ColumnLow, ColumnClose, ColumnVolume}

// LoadData reads bars from a csv file with a header row
func LoadData(path string) ([]*kline.Kline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Errorln(common.Data, err)
		}
	}()
	resp, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	log.Infof(common.Data, "loaded %v bars from %v", len(resp), path)
	return resp, nil
}

// Parse reads bars from csv with a header row. Timestamps are unix seconds
// or RFC3339. Book sides use "price:amount;price:amount". UTF-8 is assumed
// unless a byte order mark says otherwise
func Parse(r io.Reader) ([]*kline.Kline, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errNoRows
		}
		return nil, err
	}
	columns := make(map[string]int, len(header))
	for i := range header {
		columns[strings.ToLower(strings.TrimSpace(header[i]))] = i
	}
	for i := range required {
		if _, ok := columns[required[i]]; !ok {
			return nil, fmt.Errorf("%w '%v'", errMissingColumn, required[i])
		}
	}

	var resp []*kline.Kline
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		k, err := parseRow(row, columns)
		if err != nil {
			return nil, fmt.Errorf("line %v: %w", line, err)
		}
		k.SetOffset(int64(len(resp) + 1))
		resp = append(resp, k)
	}
	if len(resp) == 0 {
		return nil, errNoRows
	}
	return resp, nil
}

func parseRow(row []string, columns map[string]int) (*kline.Kline, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	ts, err := ParseTimestamp(field(ColumnTimestamp))
	if err != nil {
		return nil, err
	}
	k := &kline.Kline{Base: event.Base{Time: ts}}
	for _, c := range []struct {
		name string
		dst  *decimal.Decimal
	}{
		{ColumnOpen, &k.Open},
		{ColumnHigh, &k.High},
		{ColumnLow, &k.Low},
		{ColumnClose, &k.Close},
		{ColumnVolume, &k.Volume},
	} {
		*c.dst, err = decimal.NewFromString(field(c.name))
		if err != nil {
			return nil, fmt.Errorf("%v: %w", c.name, err)
		}
	}
	if v := field(ColumnVolatility); v != "" {
		vol, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", ColumnVolatility, err)
		}
		k.Volatility = &vol
	}
	bids, asks := field(ColumnBids), field(ColumnAsks)
	if bids != "" || asks != "" {
		book := &kline.Book{Time: ts}
		if book.Bids, err = kline.ParseLevels(bids); err != nil {
			return nil, fmt.Errorf("%v: %w", ColumnBids, err)
		}
		if book.Asks, err = kline.ParseLevels(asks); err != nil {
			return nil, fmt.Errorf("%v: %w", ColumnAsks, err)
		}
		if bt := field(ColumnBookTimestamp); bt != "" {
			if book.Time, err = ParseTimestamp(bt); err != nil {
				return nil, fmt.Errorf("%v: %w", ColumnBookTimestamp, err)
			}
		}
		book.Sort()
		k.Book = book
	}
	return k, k.Validate()
}

// ParseTimestamp accepts unix seconds or RFC3339 and returns UTC
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errBadTimestamp
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(v, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w '%v'", errBadTimestamp, s)
	}
	return t.UTC(), nil
}

// Write encodes bars in the format read by Parse
func Write(w io.Writer, bars []*kline.Kline) error {
	writer := csv.NewWriter(w)
	header := append(append([]string{}, required...), ColumnVolatility, ColumnBids, ColumnAsks, ColumnBookTimestamp)
	if err := writer.Write(header); err != nil {
		return err
	}
	for i := range bars {
		row := []string{
			strconv.FormatInt(bars[i].Time.Unix(), 10),
			bars[i].Open.String(),
			bars[i].High.String(),
			bars[i].Low.String(),
			bars[i].Close.String(),
			bars[i].Volume.String(),
			"", "", "", "",
		}
		if bars[i].Volatility != nil {
			row[6] = bars[i].Volatility.String()
		}
		if bars[i].Book != nil {
			row[7] = kline.FormatLevels(bars[i].Book.Bids)
			row[8] = kline.FormatLevels(bars[i].Book.Asks)
			row[9] = strconv.FormatInt(bars[i].Book.Time.Unix(), 10)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
