package exchange

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	errOrderNotActive     = errors.New("order is not active")
	errNegativeSetting    = errors.New("setting cannot be negative")
	errInvalidImpactModel = errors.New("invalid market impact model")
)

// Settings defines the friction model of the simulated venue. Fees are
// ratios of notional, all other rates are basis points
type Settings struct {
	MakerFee              decimal.Decimal
	TakerFee              decimal.Decimal
	BaseSlippageBPS       decimal.Decimal
	VolatilityCoefficient decimal.Decimal
	ImpactModel           string
	ImpactCoefficientBPS  decimal.Decimal
	ImpactExponent        decimal.Decimal
	// FallbackSpreadBPS is the quoted spread assumed when no usable order
	// book is available. Takers pay half of it
	FallbackSpreadBPS decimal.Decimal
	// GapPenaltyBPS is added to stops filled at a gapped open
	GapPenaltyBPS decimal.Decimal
	// MaxVolumeParticipation caps fallback fills to a share of bar volume.
	// Zero disables the cap
	MaxVolumeParticipation decimal.Decimal
	// MaxBookAge is how old a snapshot can be relative to its bar. Zero
	// disables the staleness check
	MaxBookAge time.Duration
}

// Exchange simulates order execution against bars for a single run
type Exchange struct {
	Settings
	fallbackCount int64
	lastFallback  time.Time
	hasFallback   bool
}

// ExitTrigger names which protective level resolved a bar
type ExitTrigger string

// ExitTrigger values
const (
	ExitNone       ExitTrigger = "NONE"
	ExitStopLoss   ExitTrigger = "STOP_LOSS"
	ExitTakeProfit ExitTrigger = "TAKE_PROFIT"
)

// Exit is the protective level a bar resolves to
type Exit struct {
	Trigger ExitTrigger
	// Gap is set when the bar opened through the stop level
	Gap bool
}
