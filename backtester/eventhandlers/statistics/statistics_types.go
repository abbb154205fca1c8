package statistics

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	errReceivedNoData     = errors.New("received no data")
	errNotEnoughAligned   = errors.New("not enough time aligned points")
	errInvalidBarsPerYear = errors.New("bars per year must be positive")
	errInvalidRuinParams  = errors.New("invalid ruin parameters")
)

// Settings configures the end of run analytics
type Settings struct {
	// BarsPerYear annualises per bar figures, eg 8760 for hourly bars
	BarsPerYear float64
	// DivergenceThresholdBPS is the per bar divergence counted as excessive
	DivergenceThresholdBPS float64
	RiskFreeRate           float64
}

// Statistic holds all statistical information for a run
type Statistic struct {
	TrackingError       *TrackingErrorSummary `json:"tracking-error,omitempty"`
	TheoreticalDrawdown Swing                 `json:"theoretical-max-drawdown"`
	RealisticDrawdown   Swing                 `json:"realistic-max-drawdown"`
	Ratios              Ratios                `json:"realistic-ratios"`
	Trades              TradeStatistics       `json:"trade-statistics"`
	Ruin                *RuinEstimate         `json:"ruin,omitempty"`
}

// Ratios stores the performance ratios of the realistic curve
type Ratios struct {
	SharpeRatio              float64 `json:"sharpe-ratio"`
	SortinoRatio             float64 `json:"sortino-ratio"`
	CalmarRatio              float64 `json:"calmar-ratio"`
	CompoundAnnualGrowthRate float64 `json:"compound-annual-growth-rate"`
}

// Swing holds a drawdown
type Swing struct {
	Highest          ValueAtTime     `json:"highest"`
	Lowest           ValueAtTime     `json:"lowest"`
	DrawdownPercent  decimal.Decimal `json:"drawdown"`
	IntervalDuration int64           `json:"interval-duration"`
}

// ValueAtTime is an individual iteration of value at a time
type ValueAtTime struct {
	Time  time.Time       `json:"time"`
	Value decimal.Decimal `json:"value"`
	Set   bool            `json:"-"`
}

// TradeStatistics summarises closed trades. PayoffRatio is zero until at
// least one winning and one losing trade exist
type TradeStatistics struct {
	Trades      int64           `json:"trades"`
	Wins        int64           `json:"wins"`
	Losses      int64           `json:"losses"`
	WinRate     float64         `json:"win-rate"`
	PayoffRatio float64         `json:"payoff-ratio"`
	TotalPNL    decimal.Decimal `json:"total-pnl"`
	TotalFees   decimal.Decimal `json:"total-fees"`
	GapExits    int64           `json:"gap-exits"`
}

// CurvePoint is one timestamped value of an equity curve
type CurvePoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// TrackingErrorOptions controls annualisation and the divergence threshold
type TrackingErrorOptions struct {
	BarsPerYear  float64
	ThresholdBPS float64
}

// TrackingErrorSummary compares the realistic curve against the theoretical curve
type TrackingErrorSummary struct {
	Start                   time.Time `json:"start"`
	End                     time.Time `json:"end"`
	Points                  int       `json:"points"`
	RMSE                    float64   `json:"rmse"`
	AnnualizedTrackingError float64   `json:"annualized-tracking-error"`
	MeanDivergenceBPS       float64   `json:"mean-divergence-bps"`
	MaxDivergenceBPS        float64   `json:"max-divergence-bps"`
	PctBarsAboveThreshold   float64   `json:"pct-bars-above-threshold"`
	Correlation             float64   `json:"correlation"`
}

// RuinParams describes a repeated bet. Each outcome wins PayoffRatio times
// the risked fraction with probability WinRate, otherwise loses the risked
// fraction. A path is ruined once equity falls to Threshold of its start
type RuinParams struct {
	WinRate       float64 `json:"win-rate"`
	PayoffRatio   float64 `json:"payoff-ratio"`
	RiskFraction  float64 `json:"risk-fraction"`
	HorizonTrades int     `json:"horizon-trades"`
	Threshold     float64 `json:"threshold"`
	Trials        int     `json:"trials"`
	Seed          uint64  `json:"seed"`
	// Workers defaults to one per CPU and does not change the result
	Workers int `json:"-"`
}

// RuinEstimate is the Monte Carlo ruin probability with a 95% interval
type RuinEstimate struct {
	Params         RuinParams `json:"params"`
	Ruined         int        `json:"ruined"`
	Probability    float64    `json:"probability"`
	StandardError  float64    `json:"standard-error"`
	ConfidenceLow  float64    `json:"confidence-low"`
	ConfidenceHigh float64    `json:"confidence-high"`
}
