package config

import (
	"errors"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/database"
	"github.com/shopspring/decimal"
)

// EnvPrefix prefixes environment overrides, eg OST_RUN_SETTINGS_INITIAL_FUNDS
const EnvPrefix = "OST"

var (
	errFileNotFound        = errors.New("file not found")
	errNoStrategy          = errors.New("no strategy set")
	errSizeLessThanZero    = errors.New("received less than zero")
	errRatioOutOfRange     = errors.New("ratio must be between 0 and 1")
	errKellyAboveLimit     = errors.New("exceeds the kelly limit of")
	errBadInitialFunds     = errors.New("initial funds must be positive")
	errBadInterval         = errors.New("interval must be positive")
	errBadDivergencePolicy = errors.New("divergence policy must be warn or fatal")
	errBadImpactModel      = errors.New("impact model must be linear or power")
	errBadDataSource       = errors.New("invalid data source")
	errStartAfterEnd       = errors.New("start date after end date")
	errMissingPath         = errors.New("csv path required")
	errMissingSymbol       = errors.New("symbol required for database data")
)

// Config defines everything needed to run a backtest
type Config struct {
	Nickname          string            `json:"nickname"`
	Goal              string            `json:"goal"`
	StrategySettings  StrategySettings  `json:"strategy-settings"`
	RunSettings       RunSettings       `json:"run-settings"`
	ExecutionSettings ExecutionSettings `json:"execution-settings"`
	SizingSettings    SizingSettings    `json:"sizing-settings"`
	RuinSettings      RuinSettings      `json:"ruin-settings"`
	DataSettings      DataSettings      `json:"data-settings"`
}

// StrategySettings selects a strategy and its parameters
type StrategySettings struct {
	Name           string         `json:"name"`
	CustomSettings map[string]any `json:"custom-settings,omitempty"`
}

// RunSettings controls the bar loop and the equity ledger
type RunSettings struct {
	RunID        string          `json:"run-id"`
	InitialFunds decimal.Decimal `json:"initial-funds"`
	// Interval is the expected spacing between bars
	Interval      time.Duration   `json:"interval"`
	GapMultiplier decimal.Decimal `json:"gap-multiplier"`
	MaxGapRatio   decimal.Decimal `json:"max-gap-ratio"`

	DivergenceTolerance decimal.Decimal `json:"divergence-tolerance"`
	DivergencePolicy    string          `json:"divergence-policy"`

	TrackingErrorInterval  int64   `json:"tracking-error-interval"`
	TrackingErrorCeiling   float64 `json:"tracking-error-ceiling"`
	DivergenceThresholdBPS float64 `json:"divergence-threshold-bps"`
	BarsPerYear            float64 `json:"bars-per-year"`
	RiskFreeRate           float64 `json:"risk-free-rate"`

	VolatilityLookback int   `json:"volatility-lookback"`
	OrderExpiryBars    int64 `json:"order-expiry-bars"`
	MinTradesForKelly  int64 `json:"min-trades-for-kelly"`
}

// ExecutionSettings holds the friction model
type ExecutionSettings struct {
	MakerFee               decimal.Decimal `json:"maker-fee"`
	TakerFee               decimal.Decimal `json:"taker-fee"`
	BaseSlippageBPS        decimal.Decimal `json:"base-slippage-bps"`
	VolatilityCoefficient  decimal.Decimal `json:"volatility-coefficient"`
	ImpactModel            string          `json:"impact-model"`
	ImpactCoefficientBPS   decimal.Decimal `json:"impact-coefficient-bps"`
	ImpactExponent         decimal.Decimal `json:"impact-exponent"`
	FallbackSpreadBPS      decimal.Decimal `json:"fallback-spread-bps"`
	GapPenaltyBPS          decimal.Decimal `json:"gap-penalty-bps"`
	MaxVolumeParticipation decimal.Decimal `json:"max-volume-participation"`
	MaxBookAge             time.Duration   `json:"max-book-age"`
}

// SizingSettings holds the position sizing pipeline limits
type SizingSettings struct {
	RiskBudgetPercent decimal.Decimal `json:"risk-budget-percent"`
	KellyFraction     decimal.Decimal `json:"kelly-fraction"`
	KellyCap          decimal.Decimal `json:"kelly-cap"`
	TargetVolatility  decimal.Decimal `json:"target-volatility"`
	DrawdownCeiling   decimal.Decimal `json:"drawdown-ceiling"`
	MaxLeverage       decimal.Decimal `json:"max-leverage"`
	MinimumSize       decimal.Decimal `json:"minimum-size"`
	MaximumSize       decimal.Decimal `json:"maximum-size"`
}

// RuinSettings controls the end of run ruin estimate. Zero trials disables it
type RuinSettings struct {
	Trials        int     `json:"trials"`
	HorizonTrades int     `json:"horizon-trades"`
	Threshold     float64 `json:"threshold"`
	Seed          uint64  `json:"seed"`
	Workers       int     `json:"workers"`
	// RiskFraction defaults to the sizing risk budget when zero
	RiskFraction float64 `json:"risk-fraction"`
}

// DataSettings selects where bars come from
type DataSettings struct {
	Source    string          `json:"source"`
	Symbol    string          `json:"symbol"`
	CSVPath   string          `json:"csv-path"`
	StartDate time.Time       `json:"start-date"`
	EndDate   time.Time       `json:"end-date"`
	DataPath  string          `json:"data-path"`
	Database  database.Config `json:"database"`
}
