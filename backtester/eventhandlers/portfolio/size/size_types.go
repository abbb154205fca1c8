package size

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	errZeroCapital        = errors.New("capital must be positive")
	errInvalidEntryPrice  = errors.New("entry price must be positive")
	errStopEqualsEntry    = errors.New("stop price cannot equal entry price")
	errInvalidWinRate     = errors.New("win rate must be between 0 and 1")
	errInvalidPayoffRatio = errors.New("payoff ratio must be positive")
	errInvalidSetting     = errors.New("invalid sizing setting")
)

// Kelly bounds. Kelly sizing never allocates more than half of full Kelly
// nor more than a quarter of capital
var (
	MaximumKellyFraction = decimal.NewFromFloat(0.5)
	MaximumKellyCap      = decimal.NewFromFloat(0.25)
)

// Volatility scaling bounds
var (
	MinimumVolatilityScale = decimal.NewFromFloat(0.5)
	MaximumVolatilityScale = decimal.NewFromInt(2)
)

// Settings holds the sizing limits for a run
type Settings struct {
	// RiskBudgetPercent is the ratio of capital risked per trade between
	// entry and stop, eg 0.01
	RiskBudgetPercent decimal.Decimal
	// KellyFraction truncates full Kelly, eg 0.25 for quarter Kelly. Zero
	// means half Kelly, the largest fraction accepted
	KellyFraction decimal.Decimal
	// KellyCap is the largest ratio of capital Kelly sizing may allocate.
	// Zero means MaximumKellyCap
	KellyCap decimal.Decimal
	// TargetVolatility is the volatility the position is scaled towards.
	// Zero disables volatility targeting
	TargetVolatility decimal.Decimal
	// DrawdownCeiling is the drawdown ratio at which the risk budget reaches zero.
	// Zero disables the throttle
	DrawdownCeiling decimal.Decimal
	// MaxLeverage caps notional at capital multiplied by leverage. Zero disables the cap
	MaxLeverage decimal.Decimal
	MinimumSize decimal.Decimal
	MaximumSize decimal.Decimal
}

// Sizer runs the sizing pipeline
type Sizer struct {
	Settings
}

// Request is everything known about a prospective entry
type Request struct {
	Capital    decimal.Decimal
	EntryPrice decimal.Decimal
	StopPrice  decimal.Decimal
	// WinRate and PayoffRatio enable Kelly sizing when both are set
	WinRate            decimal.NullDecimal
	PayoffRatio        decimal.NullDecimal
	RealizedVolatility decimal.NullDecimal
	CurrentDrawdown    decimal.NullDecimal
}

// Result is the sized position and how it was reached
type Result struct {
	Units          decimal.Decimal `json:"units"`
	Notional       decimal.Decimal `json:"notional"`
	RiskAmount     decimal.Decimal `json:"risk-amount"`
	RiskPercentage decimal.Decimal `json:"risk-percentage"`
	Explanation    []string        `json:"explanation"`
}
