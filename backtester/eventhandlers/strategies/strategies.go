package strategies

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/strategies/base"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/strategies/dollarcostaverage"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/strategies/hold"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/strategies/rsi"
)

// LoadStrategyByName returns a freshly constructed strategy with its defaults
// applied and any custom settings on top
func LoadStrategyByName(name string, customSettings map[string]any) (Handler, error) {
	strats := GetStrategies()
	for i := range strats {
		if !strings.EqualFold(name, strats[i].Name()) {
			continue
		}
		strats[i].SetDefaults()
		if len(customSettings) > 0 {
			if err := strats[i].SetCustomSettings(customSettings); err != nil && !errors.Is(err, base.ErrCustomSettingsUnsupported) {
				return nil, fmt.Errorf("strategy '%v': %w", name, err)
			}
		}
		return strats[i], nil
	}
	return nil, fmt.Errorf("strategy '%v' %w", name, base.ErrStrategyNotFound)
}

// GetStrategies returns a new instance of every supported strategy
func GetStrategies() []Strategy {
	return []Strategy{
		new(hold.Strategy),
		new(rsi.Strategy),
		new(dollarcostaverage.Strategy),
	}
}
