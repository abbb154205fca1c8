package common

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var bpsMultiplier = decimal.NewFromInt(10000)

// BPSToRatio converts basis points into a ratio, eg 25 bps becomes 0.0025
func BPSToRatio(bps decimal.Decimal) decimal.Decimal {
	return bps.Div(bpsMultiplier)
}

// RatioToBPS converts a ratio into basis points, eg 0.0025 becomes 25 bps
func RatioToBPS(ratio decimal.Decimal) decimal.Decimal {
	return ratio.Mul(bpsMultiplier)
}

// DataSourceIsValid ensures the config value is a supported bar source
func DataSourceIsValid(source string) error {
	switch strings.ToLower(source) {
	case CSVDataSource, DatabaseDataSource:
		return nil
	default:
		return fmt.Errorf("%w: unrecognised data source '%v'", ErrInvalidDataType, source)
	}
}
