package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/data"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/exchange"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/holdings"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/ledger"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/position"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/size"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/statistics"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/strategies"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/fill"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// ErrTemporalOrder is wrapped by TemporalOrderError
var ErrTemporalOrder = errors.New("bar timestamps are not strictly increasing")

var (
	errNilStrategy  = errors.New("backtest has no strategy")
	errNilStream    = errors.New("backtest has no bar stream")
	errNoJobs       = errors.New("no backtest jobs provided")
	errCannotSize   = errors.New("enter signal has no amount and cannot be sized")
	errSizedToZero  = errors.New("sizer returned zero units")
	errNoPosition   = errors.New("no open position")
	errPositionOpen = errors.New("position or resting entry already open")
)

// RunStatus is the terminal state of a run
type RunStatus string

// RunStatus values
const (
	StatusCompleted                RunStatus = "COMPLETED"
	StatusFailedTemporalOrder      RunStatus = "FAILED_TEMPORAL_ORDER"
	StatusFailedTemporalValidation RunStatus = "FAILED_TEMPORAL_VALIDATION"
	StatusFailedEquityDivergence   RunStatus = "FAILED_EQUITY_DIVERGENCE"
	StatusCancelled                RunStatus = "CANCELLED"
	StatusFailed                   RunStatus = "FAILED"
)

// TemporalOrderError aborts a run when a bar does not move forward in time
type TemporalOrderError struct {
	Offset   int64
	Previous time.Time
	Current  time.Time
}

// Error implements error
func (e *TemporalOrderError) Error() string {
	return fmt.Sprintf("%v: bar %v at %v does not follow %v", ErrTemporalOrder, e.Offset, e.Current, e.Previous)
}

// Unwrap returns ErrTemporalOrder
func (e *TemporalOrderError) Unwrap() error {
	return ErrTemporalOrder
}

// RiskSizer sizes enter signals which carry no amount
type RiskSizer interface {
	Size(size.Request) (*size.Result, error)
}

// RuinSettings enables the end of run ruin estimate when Trials is positive
type RuinSettings struct {
	Trials        int
	HorizonTrades int
	Threshold     float64
	Seed          uint64
	Workers       int
	// RiskFraction is the ratio of equity risked per trade
	RiskFraction float64
}

// Settings holds everything a run needs besides its strategy and data
type Settings struct {
	// RunID seeds deterministic order IDs. Runs sharing an ID and inputs
	// produce identical results
	RunID        string
	InitialFunds decimal.Decimal
	// Interval is the expected bar spacing. Zero disables gap detection
	Interval      time.Duration
	GapMultiplier decimal.Decimal
	// MaxGapRatio is the share of gapped bar intervals tolerated before the
	// run fails temporal validation. Zero disables the check
	MaxGapRatio decimal.Decimal
	// TrackingErrorInterval appends a tracking error snapshot every N bars
	TrackingErrorInterval int64
	TrackingErrorCeiling  float64
	VolatilityLookback    int
	// OrderExpiryBars cancels resting entries after N bars. Zero never expires
	OrderExpiryBars int64
	// MinTradesForKelly is how many trades must close before the run's own
	// win rate and payoff feed Kelly sizing
	MinTradesForKelly int64

	Exchange   exchange.Settings
	Ledger     ledger.Settings
	Statistics statistics.Settings
	Ruin       RuinSettings
}

// BackTest is a reusable run definition. Every call to Run builds fresh
// per run state so a BackTest can be run repeatedly
type BackTest struct {
	Settings
	Strategy strategies.Handler
	// Sizer is optional, enter signals without an amount are invalid without it
	Sizer RiskSizer
}

// Job pairs a backtest with the stream it runs over. Streams are consumed
// so each job needs its own
type Job struct {
	BackTest *BackTest
	Stream   data.Streamer
}

// Gap is a bar which arrived later than the expected interval allows
type Gap struct {
	Offset   int64         `json:"offset"`
	Time     time.Time     `json:"timestamp"`
	Duration time.Duration `json:"duration"`
}

// TemporalValidation summarises bar spacing
type TemporalValidation struct {
	Status   RunStatus       `json:"status"`
	Bars     int64           `json:"bars"`
	GapCount int64           `json:"gap-count"`
	GapRatio decimal.Decimal `json:"gap-ratio"`
	Gaps     []Gap           `json:"gaps,omitempty"`
}

// ExecutionStats counts the recoverable outcomes of a run
type ExecutionStats struct {
	Orders            int64 `json:"orders"`
	Fills             int64 `json:"fills"`
	PartialFills      int64 `json:"partial-fills"`
	RejectedOrders    int64 `json:"rejected-orders"`
	CancelledOrders   int64 `json:"cancelled-orders"`
	ExpiredOrders     int64 `json:"expired-orders"`
	OrderbookFallback int64 `json:"orderbook-fallback"`
	InvalidSignals    int64 `json:"invalid-signals"`
	StrategyErrors    int64 `json:"strategy-errors"`
	GapExits          int64 `json:"gap-exits"`
	Divergences       int64 `json:"equity-divergences"`
	InvalidBars       int64 `json:"invalid-bars"`
}

// TrackingErrorSnapshot is the tracking error of the curves up to a bar
type TrackingErrorSnapshot struct {
	Offset  int64                            `json:"offset"`
	Time    time.Time                        `json:"timestamp"`
	Summary *statistics.TrackingErrorSummary `json:"summary"`
}

// PeriodicReturns holds calendar returns of both curves
type PeriodicReturns struct {
	Daily   []ledger.PeriodReturn `json:"daily"`
	Weekly  []ledger.PeriodReturn `json:"weekly"`
	Monthly []ledger.PeriodReturn `json:"monthly"`
}

// Result is everything a run produced. Aborted runs return the partial
// result up to the last valid bar along with the failure reason
type Result struct {
	RunID    string    `json:"run-id"`
	Strategy string    `json:"strategy"`
	Status   RunStatus `json:"status"`
	Reason   string    `json:"reason,omitempty"`

	InitialFunds     decimal.Decimal `json:"initial-funds"`
	FinalTheoretical decimal.Decimal `json:"final-equity-theoretical"`
	FinalRealistic   decimal.Decimal `json:"final-equity-realistic"`

	Trades      []position.Trade     `json:"trades"`
	EquityCurve []ledger.EquityPoint `json:"equity-curve"`
	Fills       []fill.Fill          `json:"fills"`
	// OpenPosition is set when the run ended with a position still open
	OpenPosition *position.Position `json:"open-position,omitempty"`

	TemporalValidation     TemporalValidation               `json:"temporal-validation"`
	ExecutionStats         ExecutionStats                   `json:"execution-stats"`
	TrackingError          *statistics.TrackingErrorSummary `json:"tracking-error,omitempty"`
	TrackingErrorSnapshots []TrackingErrorSnapshot          `json:"tracking-error-snapshots,omitempty"`
	ReturnsPerPeriod       PeriodicReturns                  `json:"returns-per-period"`

	MaxDrawdownTheoretical decimal.Decimal          `json:"max-drawdown-theoretical"`
	MaxDrawdownRealistic   decimal.Decimal          `json:"max-drawdown-realistic"`
	Statistics             *statistics.Statistic    `json:"statistics,omitempty"`
	Ruin                   *statistics.RuinEstimate `json:"ruin,omitempty"`
}

// protection holds the levels an entry order applies once it fills
type protection struct {
	stopLoss   decimal.Decimal
	takeProfit decimal.Decimal
}

// run is the private mutable state of a single Run call
type run struct {
	bt        *BackTest
	stream    data.Streamer
	exchange  *exchange.Exchange
	holding   *holdings.Holding
	ledger    *ledger.Ledger
	position  *position.Position
	namespace uuid.UUID
	sequence  uint64
	result    *Result

	previous *kline.Kline
	bars     int64

	// validBars excludes skipped bars and feeds the volatility estimate
	validBars []*kline.Kline

	// entries are resting entry orders, stop and takeProfit protect the position
	entries    []*order.Order
	protect    map[string]protection
	stop       *order.Order
	takeProfit *order.Order
}
