package strategies

import (
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/strategies/base"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/signal"
)

// Context is the read only view of a run handed to a strategy on each bar
type Context = base.Context

// Handler is the strategy interface the driver calls once per bar
type Handler interface {
	Name() string
	OnBar(*Context) (signal.Signal, error)
}

// Strategy is a Handler which can be loaded by name from a config
type Strategy interface {
	Handler
	Description() string
	SetCustomSettings(map[string]any) error
	SetDefaults()
}
