package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/config"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/data"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/data/kline/csv"
	klinedatabase "github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/data/kline/database"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/exchange"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/ledger"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/size"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/statistics"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/strategies"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventtypes/kline"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/database"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/database/drivers/postgres"
	sqlite "github.com/LautaroIbanez/One-Smart-Trade-sub000/database/drivers/sqlite3"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
)

// NewFromConfig validates the config and builds a backtest from it
func NewFromConfig(cfg *config.Config) (*BackTest, error) {
	if cfg == nil {
		return nil, common.ErrNilArguments
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, err := strategies.LoadStrategyByName(cfg.StrategySettings.Name, cfg.StrategySettings.CustomSettings)
	if err != nil {
		return nil, err
	}
	sizer, err := size.New(SizeSettingsFromConfig(&cfg.SizingSettings))
	if err != nil {
		return nil, err
	}
	s := SettingsFromConfig(cfg)
	return New(&s, strategy, sizer)
}

// SettingsFromConfig maps the config sections onto run settings
func SettingsFromConfig(cfg *config.Config) Settings {
	run := &cfg.RunSettings
	ex := &cfg.ExecutionSettings
	riskFraction := cfg.RuinSettings.RiskFraction
	if riskFraction == 0 {
		riskFraction = cfg.SizingSettings.RiskBudgetPercent.InexactFloat64()
	}
	return Settings{
		RunID:                 run.RunID,
		InitialFunds:          run.InitialFunds,
		Interval:              run.Interval,
		GapMultiplier:         run.GapMultiplier,
		MaxGapRatio:           run.MaxGapRatio,
		TrackingErrorInterval: run.TrackingErrorInterval,
		TrackingErrorCeiling:  run.TrackingErrorCeiling,
		VolatilityLookback:    run.VolatilityLookback,
		OrderExpiryBars:       run.OrderExpiryBars,
		MinTradesForKelly:     run.MinTradesForKelly,
		Exchange: exchange.Settings{
			MakerFee:               ex.MakerFee,
			TakerFee:               ex.TakerFee,
			BaseSlippageBPS:        ex.BaseSlippageBPS,
			VolatilityCoefficient:  ex.VolatilityCoefficient,
			ImpactModel:            ex.ImpactModel,
			ImpactCoefficientBPS:   ex.ImpactCoefficientBPS,
			ImpactExponent:         ex.ImpactExponent,
			FallbackSpreadBPS:      ex.FallbackSpreadBPS,
			GapPenaltyBPS:          ex.GapPenaltyBPS,
			MaxVolumeParticipation: ex.MaxVolumeParticipation,
			MaxBookAge:             ex.MaxBookAge,
		},
		Ledger: ledger.Settings{
			DivergenceTolerance: run.DivergenceTolerance,
			DivergencePolicy:    strings.ToLower(run.DivergencePolicy),
		},
		Statistics: statistics.Settings{
			BarsPerYear:            run.BarsPerYear,
			DivergenceThresholdBPS: run.DivergenceThresholdBPS,
			RiskFreeRate:           run.RiskFreeRate,
		},
		Ruin: RuinSettings{
			Trials:        cfg.RuinSettings.Trials,
			HorizonTrades: cfg.RuinSettings.HorizonTrades,
			Threshold:     cfg.RuinSettings.Threshold,
			Seed:          cfg.RuinSettings.Seed,
			Workers:       cfg.RuinSettings.Workers,
			RiskFraction:  riskFraction,
		},
	}
}

// SizeSettingsFromConfig maps the sizing section onto sizer settings
func SizeSettingsFromConfig(s *config.SizingSettings) size.Settings {
	return size.Settings{
		RiskBudgetPercent: s.RiskBudgetPercent,
		KellyFraction:     s.KellyFraction,
		KellyCap:          s.KellyCap,
		TargetVolatility:  s.TargetVolatility,
		DrawdownCeiling:   s.DrawdownCeiling,
		MaxLeverage:       s.MaxLeverage,
		MinimumSize:       s.MinimumSize,
		MaximumSize:       s.MaximumSize,
	}
}

// LoadStream loads the configured bars into a fresh stream
func LoadStream(ctx context.Context, cfg *config.Config) (*data.Stream, error) {
	if cfg == nil {
		return nil, common.ErrNilArguments
	}
	d := &cfg.DataSettings
	var bars []*kline.Kline
	var err error
	switch strings.ToLower(d.Source) {
	case common.CSVDataSource:
		bars, err = csv.LoadData(d.CSVPath)
		if err != nil {
			return nil, err
		}
		bars = withinDates(bars, d)
	case common.DatabaseDataSource:
		inst := &database.Instance{}
		if err = ConnectDatabase(inst, d); err != nil {
			return nil, err
		}
		defer func() {
			if closeErr := inst.CloseConnection(); closeErr != nil {
				log.Errorln(common.Data, closeErr)
			}
		}()
		bars, err = klinedatabase.LoadData(ctx, inst, d.Symbol, cfg.RunSettings.Interval, d.StartDate, d.EndDate)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w %q", common.ErrInvalidDataType, d.Source)
	}
	return data.NewStream(bars...)
}

// ConnectDatabase opens the configured driver on inst
func ConnectDatabase(inst *database.Instance, d *config.DataSettings) error {
	if inst == nil || d == nil {
		return common.ErrNilArguments
	}
	switch strings.ToLower(d.Database.Driver) {
	case database.DBSQLite3:
		return sqlite.Connect(inst, d.DataPath, &d.Database)
	case database.DBPostgreSQL:
		return postgres.Connect(inst, &d.Database)
	default:
		return fmt.Errorf("%w %q", database.ErrUnsupportedDriver, d.Database.Driver)
	}
}

// withinDates keeps bars inside the optional date range, renumbering offsets
func withinDates(bars []*kline.Kline, d *config.DataSettings) []*kline.Kline {
	if d.StartDate.IsZero() && d.EndDate.IsZero() {
		return bars
	}
	resp := make([]*kline.Kline, 0, len(bars))
	for _, k := range bars {
		if k == nil {
			continue
		}
		if !d.StartDate.IsZero() && k.Time.Before(d.StartDate) {
			continue
		}
		if !d.EndDate.IsZero() && k.Time.After(d.EndDate) {
			continue
		}
		k.SetOffset(int64(len(resp) + 1))
		resp = append(resp, k)
	}
	return resp
}
