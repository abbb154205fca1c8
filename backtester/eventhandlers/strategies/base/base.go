package base

import (
	"fmt"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/shopspring/decimal"
)

// Validate ensures the context carries a bar
func (c *Context) Validate() error {
	if c == nil || c.Bar == nil {
		return common.ErrNilEvent
	}
	return nil
}

// IsFlat returns whether no position is open
func (c *Context) IsFlat() bool {
	return c.Position == nil || c.Position.IsClosed()
}

// Closes returns the close of every bar in the history for indicator use
func (c *Context) Closes() []float64 {
	resp := make([]float64, len(c.History))
	for i := range c.History {
		resp[i] = c.History[i].Close.InexactFloat64()
	}
	return resp
}

// PositiveDecimal parses a positive custom setting value. JSON numbers
// arrive as float64, environment and flag values as strings
func PositiveDecimal(key string, v any) (decimal.Decimal, error) {
	var d decimal.Decimal
	switch val := v.(type) {
	case float64:
		d = decimal.NewFromFloat(val)
	case int:
		d = decimal.NewFromInt(int64(val))
	case string:
		var err error
		d, err = decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w provided %v value could not be parsed: %v", ErrInvalidCustomSettings, key, v)
		}
	default:
		return decimal.Zero, fmt.Errorf("%w provided %v value could not be parsed: %v", ErrInvalidCustomSettings, key, v)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w provided %v value must be positive: %v", ErrInvalidCustomSettings, key, v)
	}
	return d, nil
}
