package base

import (
	"errors"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/position"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/shopspring/decimal"
)

var (
	// ErrCustomSettingsUnsupported used when custom settings are found in the config when they shouldn't be
	ErrCustomSettingsUnsupported = errors.New("custom settings not supported")
	// ErrStrategyNotFound used when the strategy named in the config does not exist
	ErrStrategyNotFound = errors.New("not found. Please ensure the strategy-settings field 'name' is spelled properly in your config")
	// ErrInvalidCustomSettings used when bad custom settings are found in the config
	ErrInvalidCustomSettings = errors.New("invalid custom settings in config")
)

// Context is everything a strategy may look at when deciding on a bar. It
// only ever holds information available at the close of Bar
type Context struct {
	Bar *kline.Kline
	// History holds every bar up to and including Bar
	History []*kline.Kline
	// Position is a copy of the open position, nil when flat
	Position   *position.Position
	Equity     decimal.Decimal
	Cash       decimal.Decimal
	Volatility decimal.Decimal
}
