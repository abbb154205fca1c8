package dollarcostaverage

import (
	"fmt"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/strategies/base"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/order"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/signal"
	"github.com/shopspring/decimal"
)

const (
	// Name is the strategy name
	Name         = "dollarcostaverage"
	amountKey    = "amount"
	everyBarsKey = "every-bars"
	description  = `Dollar-cost averaging (DCA) is an investment strategy in which an investor divides up the total amount to be invested across periodic purchases of a target asset in an effort to reduce the impact of volatility on the overall purchase. This version buys a fixed amount every N bars, growing the position through adjust signals`
)

// Strategy is an implementation of the Handler interface
type Strategy struct {
	amount    decimal.Decimal
	everyBars int64
}

// Name returns the name
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
// be it definition of terms or to highlight its purpose
func (s *Strategy) Description() string {
	return description
}

// OnBar buys the configured amount on every Nth bar. The first purchase
// opens the position, later ones resize it
func (s *Strategy) OnBar(c *base.Context) (signal.Signal, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if (int64(len(c.History))-1)%s.everyBars != 0 {
		return signal.Hold{}, nil
	}
	if c.IsFlat() {
		return signal.Enter{
			Side:       order.Buy,
			EntryPrice: c.Bar.Close,
			Amount:     s.amount,
		}, nil
	}
	return signal.Adjust{Amount: c.Position.Amount.Add(s.amount)}, nil
}

// SetCustomSettings sets the purchase amount and cadence
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	for k, v := range customSettings {
		d, err := base.PositiveDecimal(k, v)
		if err != nil {
			return err
		}
		switch k {
		case amountKey:
			s.amount = d
		case everyBarsKey:
			if !d.Equal(d.Floor()) {
				return fmt.Errorf("%w %v must be a whole number of bars: %v", base.ErrInvalidCustomSettings, k, v)
			}
			s.everyBars = d.IntPart()
		default:
			return fmt.Errorf("%w unrecognised custom setting key %v with value %v. Cannot apply", base.ErrInvalidCustomSettings, k, v)
		}
	}
	return nil
}

// SetDefaults buys one unit every bar
func (s *Strategy) SetDefaults() {
	s.amount = decimal.NewFromInt(1)
	s.everyBars = 1
}
