package common

import (
	"errors"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
)

const (
	// CSVDataSource is a config readable data source to load bars from a csv file
	CSVDataSource = "csv"
	// DatabaseDataSource is a config readable data source to load bars from the candle table
	DatabaseDataSource = "database"

	// DivergencePolicyWarn logs an equity divergence and continues the run
	DivergencePolicyWarn = "warn"
	// DivergencePolicyFatal aborts the run on an equity divergence
	DivergencePolicyFatal = "fatal"

	// ImpactLinear scales market impact linearly with participation
	ImpactLinear = "linear"
	// ImpactPower scales market impact with participation raised to an exponent
	ImpactPower = "power"
)

var (
	// ErrNilArguments is a common error response to highlight that nils were passed in
	// when they should not have been
	ErrNilArguments = errors.New("received nil argument(s)")
	// ErrNilEvent is a common error for whenever a nil event occurs when it shouldn't have
	ErrNilEvent = errors.New("nil event received")
	// ErrNilPointer is returned when a required pointer is nil
	ErrNilPointer = errors.New("nil pointer")
	// ErrInvalidDataType occurs when an invalid data type is defined in the config
	ErrInvalidDataType = errors.New("invalid datatype received")
)

// sub loggers for the backtester
var (
	Backtester = log.MustNewSubLogger("Backtester")
	Setup      = log.MustNewSubLogger("Setup")
	Simulator  = log.MustNewSubLogger("Simulator")
	Ledger     = log.MustNewSubLogger("Ledger")
	Sizing     = log.MustNewSubLogger("Sizing")
	Statistics = log.MustNewSubLogger("Statistics")
	Strategy   = log.MustNewSubLogger("Strategy")
	Data       = log.MustNewSubLogger("Data")
	Config     = log.MustNewSubLogger("Config")
)
