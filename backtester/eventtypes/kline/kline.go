package kline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// Validate ensures the bar prices are coherent
func (k *Kline) Validate() error {
	if !k.Low.IsPositive() || k.High.LessThan(k.Low) ||
		k.Open.GreaterThan(k.High) || k.Open.LessThan(k.Low) ||
		k.Close.GreaterThan(k.High) || k.Close.LessThan(k.Low) {
		return fmt.Errorf("%w at %v: o %v h %v l %v c %v", errInvalidOHLC, k.Time, k.Open, k.High, k.Low, k.Close)
	}
	if k.Volume.IsNegative() {
		return fmt.Errorf("%w at %v: negative volume %v", errInvalidOHLC, k.Time, k.Volume)
	}
	return nil
}

// Touches returns whether the price lies within the bar range
func (k *Kline) Touches(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(k.Low) && price.LessThanOrEqual(k.High)
}

// BookState returns nil when the snapshot can be used for execution at the
// bar, otherwise the reason it cannot
func (k *Kline) BookState(maxAge time.Duration) error {
	if k.Book == nil {
		return ErrBookMissing
	}
	return k.Book.Validate(k.Time, maxAge)
}

// Validate ensures the snapshot is fresh relative to at, has depth on both
// sides and is not crossed. A zero maxAge disables the staleness check
func (b *Book) Validate(at time.Time, maxAge time.Duration) error {
	if maxAge > 0 && !b.Time.IsZero() && at.Sub(b.Time) > maxAge {
		return fmt.Errorf("%w: snapshot %v is %v older than bar %v", ErrBookStale, b.Time, at.Sub(b.Time), at)
	}
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return ErrBookEmptySide
	}
	if b.Bids[0].Price.GreaterThanOrEqual(b.Asks[0].Price) {
		return fmt.Errorf("%w: bid %v ask %v", ErrBookCrossed, b.Bids[0].Price, b.Asks[0].Price)
	}
	return nil
}

// Mid returns the midpoint between the best bid and ask
func (b *Book) Mid() decimal.Decimal {
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return decimal.Zero
	}
	return b.Bids[0].Price.Add(b.Asks[0].Price).Div(two)
}

// SpreadBPS returns the quoted spread relative to the mid in basis points
func (b *Book) SpreadBPS() decimal.Decimal {
	mid := b.Mid()
	if mid.IsZero() {
		return decimal.Zero
	}
	return b.Asks[0].Price.Sub(b.Bids[0].Price).Div(mid).Mul(decimal.NewFromInt(10000))
}

// Sort orders both sides best first
func (b *Book) Sort() {
	sort.SliceStable(b.Bids, func(i, j int) bool {
		return b.Bids[i].Price.GreaterThan(b.Bids[j].Price)
	})
	sort.SliceStable(b.Asks, func(i, j int) bool {
		return b.Asks[i].Price.LessThan(b.Asks[j].Price)
	})
}

// TotalDepth returns the summed amount on one side
func TotalDepth(levels []Level) decimal.Decimal {
	total := decimal.Zero
	for i := range levels {
		total = total.Add(levels[i].Amount)
	}
	return total
}

// ParseLevels decodes depth encoded as "price:amount;price:amount". An empty
// string is an empty side
func ParseLevels(s string) ([]Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ";")
	resp := make([]Level, 0, len(parts))
	for i := range parts {
		if strings.TrimSpace(parts[i]) == "" {
			continue
		}
		price, amount, ok := strings.Cut(parts[i], ":")
		if !ok {
			return nil, fmt.Errorf("%w '%v'", errInvalidLevel, parts[i])
		}
		p, err := decimal.NewFromString(strings.TrimSpace(price))
		if err != nil {
			return nil, fmt.Errorf("%w '%v': %v", errInvalidLevel, parts[i], err)
		}
		a, err := decimal.NewFromString(strings.TrimSpace(amount))
		if err != nil {
			return nil, fmt.Errorf("%w '%v': %v", errInvalidLevel, parts[i], err)
		}
		if !p.IsPositive() || !a.IsPositive() {
			return nil, fmt.Errorf("%w '%v': price and amount must be positive", errInvalidLevel, parts[i])
		}
		resp = append(resp, Level{Price: p, Amount: a})
	}
	return resp, nil
}

// FormatLevels encodes depth in the format read by ParseLevels
func FormatLevels(levels []Level) string {
	var sb strings.Builder
	for i := range levels {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(levels[i].Price.String())
		sb.WriteByte(':')
		sb.WriteString(levels[i].Amount.String())
	}
	return sb.String()
}
