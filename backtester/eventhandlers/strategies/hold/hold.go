package hold

import (
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/strategies/base"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/signal"
)

const (
	// Name is the strategy name
	Name        = "hold"
	description = `Never trades. Useful as a baseline, both equity curves stay at the initial funds`
)

// Strategy is an implementation of the Handler interface
type Strategy struct{}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// OnBar always holds
func (s *Strategy) OnBar(c *base.Context) (signal.Signal, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return signal.Hold{}, nil
}

// SetCustomSettings not supported
func (s *Strategy) SetCustomSettings(map[string]any) error {
	return base.ErrCustomSettingsUnsupported
}

// SetDefaults not required
func (s *Strategy) SetDefaults() {}
