package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/size"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/common/file"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Default returns a config which runs out of the box against a csv file
func Default() *Config {
	return &Config{
		Nickname: "default",
		Goal:     "replay a strategy with realistic execution",
		StrategySettings: StrategySettings{
			Name: "rsi",
		},
		RunSettings: RunSettings{
			InitialFunds:           decimal.NewFromInt(10000),
			Interval:               time.Hour,
			GapMultiplier:          decimal.NewFromFloat(1.5),
			MaxGapRatio:            decimal.NewFromFloat(0.1),
			DivergenceTolerance:    decimal.NewFromFloat(0.001),
			DivergencePolicy:       common.DivergencePolicyWarn,
			TrackingErrorInterval:  24,
			TrackingErrorCeiling:   0.03,
			DivergenceThresholdBPS: 50,
			BarsPerYear:            8760,
			VolatilityLookback:     14,
			OrderExpiryBars:        24,
			MinTradesForKelly:      20,
		},
		ExecutionSettings: ExecutionSettings{
			MakerFee:               decimal.NewFromFloat(0.0002),
			TakerFee:               decimal.NewFromFloat(0.001),
			BaseSlippageBPS:        decimal.NewFromInt(5),
			VolatilityCoefficient:  decimal.NewFromFloat(0.1),
			ImpactModel:            common.ImpactLinear,
			ImpactCoefficientBPS:   decimal.NewFromInt(10),
			ImpactExponent:         decimal.NewFromFloat(0.5),
			FallbackSpreadBPS:      decimal.NewFromInt(10),
			GapPenaltyBPS:          decimal.NewFromInt(5),
			MaxVolumeParticipation: decimal.NewFromFloat(0.1),
			MaxBookAge:             5 * time.Minute,
		},
		SizingSettings: SizingSettings{
			RiskBudgetPercent: decimal.NewFromFloat(0.01),
			KellyFraction:     decimal.NewFromFloat(0.5),
			KellyCap:          decimal.NewFromFloat(0.25),
			TargetVolatility:  decimal.NewFromFloat(0.02),
			DrawdownCeiling:   decimal.NewFromFloat(0.25),
			MaxLeverage:       decimal.NewFromInt(1),
		},
		RuinSettings: RuinSettings{
			Trials:        10000,
			HorizonTrades: 100,
			Threshold:     0.5,
			Seed:          1,
		},
		DataSettings: DataSettings{
			Source: common.CSVDataSource,
			Symbol: "BTCUSDT",
		},
	}
}

// ReadConfigFromFile layers a json config file and OST_ prefixed environment
// variables over Default. An empty path loads defaults and the environment only
func ReadConfigFromFile(path string) (*Config, error) {
	if path != "" && !file.Exists(path) {
		return nil, fmt.Errorf("%w: %v", errFileNotFound, path)
	}
	v := viper.New()
	v.SetConfigType("json")
	defaults, err := json.Marshal(Default())
	if err != nil {
		return nil, err
	}
	if err = v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err = v.MergeInConfig(); err != nil {
			return nil, err
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return decode(v)
}

// LoadConfig decodes json bytes layered over Default
func LoadConfig(data []byte) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	defaults, err := json.Marshal(Default())
	if err != nil {
		return nil, err
	}
	if err = v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, err
	}
	if err = v.MergeConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	resp := &Config{}
	err := v.Unmarshal(resp, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "json"
		dc.WeaklyTypedInput = true
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			decimalHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func decimalHook(_, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch d := data.(type) {
	case string:
		return decimal.NewFromString(d)
	case float64:
		return decimal.NewFromFloat(d), nil
	case int:
		return decimal.NewFromInt(int64(d)), nil
	case int64:
		return decimal.NewFromInt(d), nil
	}
	return data, nil
}

// Write saves the config as indented json
func (c *Config) Write(path string) error {
	data, err := json.MarshalIndent(c, "", " ")
	if err != nil {
		return err
	}
	return file.Write(path, data)
}

// Validate checks all config settings
func (c *Config) Validate() error {
	if c == nil {
		return common.ErrNilArguments
	}
	if c.StrategySettings.Name == "" {
		return errNoStrategy
	}
	for _, fn := range []func() error{
		c.RunSettings.validate,
		c.ExecutionSettings.validate,
		c.SizingSettings.validate,
		c.RuinSettings.validate,
		c.DataSettings.validate,
	} {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

func (r *RunSettings) validate() error {
	if !r.InitialFunds.IsPositive() {
		return errBadInitialFunds
	}
	if r.Interval <= 0 {
		return errBadInterval
	}
	if r.GapMultiplier.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("gap multiplier %v must be at least 1", r.GapMultiplier)
	}
	if err := checkRatio("max gap ratio", r.MaxGapRatio); err != nil {
		return err
	}
	if r.DivergenceTolerance.IsNegative() {
		return fmt.Errorf("divergence tolerance %w", errSizeLessThanZero)
	}
	if r.DivergencePolicy != common.DivergencePolicyWarn && r.DivergencePolicy != common.DivergencePolicyFatal {
		return fmt.Errorf("%w, received '%v'", errBadDivergencePolicy, r.DivergencePolicy)
	}
	if r.TrackingErrorInterval < 0 || r.VolatilityLookback < 0 || r.OrderExpiryBars < 0 || r.MinTradesForKelly < 0 {
		return fmt.Errorf("bar counts %w", errSizeLessThanZero)
	}
	if r.BarsPerYear <= 0 {
		return fmt.Errorf("bars per year %v must be positive", r.BarsPerYear)
	}
	return nil
}

func (e *ExecutionSettings) validate() error {
	for name, v := range map[string]decimal.Decimal{
		"maker fee":                e.MakerFee,
		"taker fee":                e.TakerFee,
		"base slippage":            e.BaseSlippageBPS,
		"volatility coefficient":   e.VolatilityCoefficient,
		"impact coefficient":       e.ImpactCoefficientBPS,
		"impact exponent":          e.ImpactExponent,
		"fallback spread":          e.FallbackSpreadBPS,
		"gap penalty":              e.GapPenaltyBPS,
		"max volume participation": e.MaxVolumeParticipation,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%v %w", name, errSizeLessThanZero)
		}
	}
	if err := checkRatio("maker fee", e.MakerFee); err != nil {
		return err
	}
	if err := checkRatio("taker fee", e.TakerFee); err != nil {
		return err
	}
	if err := checkRatio("max volume participation", e.MaxVolumeParticipation); err != nil {
		return err
	}
	if e.ImpactModel != common.ImpactLinear && e.ImpactModel != common.ImpactPower {
		return fmt.Errorf("%w, received '%v'", errBadImpactModel, e.ImpactModel)
	}
	if e.MaxBookAge < 0 {
		return fmt.Errorf("max book age %w", errSizeLessThanZero)
	}
	return nil
}

func (s *SizingSettings) validate() error {
	for name, v := range map[string]decimal.Decimal{
		"risk budget":    s.RiskBudgetPercent,
		"kelly fraction": s.KellyFraction,
		"kelly cap":      s.KellyCap,
	} {
		if err := checkRatio(name, v); err != nil {
			return err
		}
	}
	if s.KellyFraction.GreaterThan(size.MaximumKellyFraction) {
		return fmt.Errorf("kelly fraction %v %w %v", s.KellyFraction, errKellyAboveLimit, size.MaximumKellyFraction)
	}
	if s.KellyCap.GreaterThan(size.MaximumKellyCap) {
		return fmt.Errorf("kelly cap %v %w %v", s.KellyCap, errKellyAboveLimit, size.MaximumKellyCap)
	}
	for name, v := range map[string]decimal.Decimal{
		"target volatility": s.TargetVolatility,
		"drawdown ceiling":  s.DrawdownCeiling,
		"max leverage":      s.MaxLeverage,
		"minimum size":      s.MinimumSize,
		"maximum size":      s.MaximumSize,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%v %w", name, errSizeLessThanZero)
		}
	}
	return nil
}

func (r *RuinSettings) validate() error {
	if r.Trials < 0 || r.Workers < 0 {
		return fmt.Errorf("ruin trials and workers %w", errSizeLessThanZero)
	}
	if r.Trials == 0 {
		return nil
	}
	if r.HorizonTrades <= 0 {
		return fmt.Errorf("ruin horizon %v must be positive", r.HorizonTrades)
	}
	if r.Threshold <= 0 || r.Threshold >= 1 {
		return fmt.Errorf("ruin threshold %v %w", r.Threshold, errRatioOutOfRange)
	}
	if r.RiskFraction < 0 || r.RiskFraction >= 1 {
		return fmt.Errorf("ruin risk fraction %v %w", r.RiskFraction, errRatioOutOfRange)
	}
	return nil
}

func (d *DataSettings) validate() error {
	if err := common.DataSourceIsValid(d.Source); err != nil {
		return fmt.Errorf("%w: %w", errBadDataSource, err)
	}
	if !d.StartDate.IsZero() && !d.EndDate.IsZero() && d.StartDate.After(d.EndDate) {
		return fmt.Errorf("%w: %v after %v", errStartAfterEnd, d.StartDate, d.EndDate)
	}
	switch strings.ToLower(d.Source) {
	case common.CSVDataSource:
		if d.CSVPath == "" {
			return errMissingPath
		}
	case common.DatabaseDataSource:
		if d.Symbol == "" {
			return errMissingSymbol
		}
	}
	return nil
}

func checkRatio(name string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%v %v %w", name, v, errRatioOutOfRange)
	}
	return nil
}

// PrintSetting logs the config in a readable layout
func (c *Config) PrintSetting() {
	log.Info(common.Config, "------------------Backtester Settings------------------------")
	log.Infof(common.Config, "Nickname: %v", c.Nickname)
	log.Infof(common.Config, "Goal: %v", c.Goal)
	log.Info(common.Config, "------------------Strategy Settings--------------------------")
	log.Infof(common.Config, "Strategy: %s", c.StrategySettings.Name)
	if len(c.StrategySettings.CustomSettings) > 0 {
		log.Info(common.Config, "Custom strategy variables:")
		for k, v := range c.StrategySettings.CustomSettings {
			log.Infof(common.Config, "%s: %v", k, v)
		}
	} else {
		log.Info(common.Config, "Custom strategy variables: unset")
	}
	log.Info(common.Config, "------------------Run Settings-------------------------------")
	log.Infof(common.Config, "Initial funds: %v", c.RunSettings.InitialFunds)
	log.Infof(common.Config, "Interval: %v", c.RunSettings.Interval)
	log.Infof(common.Config, "Gap multiplier: %v max gap ratio: %v", c.RunSettings.GapMultiplier, c.RunSettings.MaxGapRatio)
	log.Infof(common.Config, "Divergence tolerance: %v policy: %v", c.RunSettings.DivergenceTolerance, c.RunSettings.DivergencePolicy)
	log.Infof(common.Config, "Tracking error interval: %v bars ceiling: %v", c.RunSettings.TrackingErrorInterval, c.RunSettings.TrackingErrorCeiling)
	log.Info(common.Config, "------------------Execution Settings-------------------------")
	log.Infof(common.Config, "Maker fee: %v taker fee: %v", c.ExecutionSettings.MakerFee, c.ExecutionSettings.TakerFee)
	log.Infof(common.Config, "Base slippage: %v bps volatility coefficient: %v", c.ExecutionSettings.BaseSlippageBPS, c.ExecutionSettings.VolatilityCoefficient)
	log.Infof(common.Config, "Impact: %v coefficient %v bps exponent %v", c.ExecutionSettings.ImpactModel, c.ExecutionSettings.ImpactCoefficientBPS, c.ExecutionSettings.ImpactExponent)
	log.Infof(common.Config, "Fallback spread: %v bps gap penalty: %v bps", c.ExecutionSettings.FallbackSpreadBPS, c.ExecutionSettings.GapPenaltyBPS)
	log.Infof(common.Config, "Max volume participation: %v max book age: %v", c.ExecutionSettings.MaxVolumeParticipation, c.ExecutionSettings.MaxBookAge)
	log.Info(common.Config, "------------------Sizing Settings----------------------------")
	log.Infof(common.Config, "Risk budget: %v kelly fraction: %v kelly cap: %v", c.SizingSettings.RiskBudgetPercent, c.SizingSettings.KellyFraction, c.SizingSettings.KellyCap)
	log.Infof(common.Config, "Target volatility: %v drawdown ceiling: %v max leverage: %v", c.SizingSettings.TargetVolatility, c.SizingSettings.DrawdownCeiling, c.SizingSettings.MaxLeverage)
	if c.RuinSettings.Trials > 0 {
		log.Info(common.Config, "------------------Ruin Settings------------------------------")
		log.Infof(common.Config, "Trials: %v horizon: %v threshold: %v seed: %v", c.RuinSettings.Trials, c.RuinSettings.HorizonTrades, c.RuinSettings.Threshold, c.RuinSettings.Seed)
	}
	log.Info(common.Config, "------------------Data Settings------------------------------")
	log.Infof(common.Config, "Source: %v symbol: %v", c.DataSettings.Source, c.DataSettings.Symbol)
	if c.DataSettings.CSVPath != "" {
		log.Infof(common.Config, "CSV path: %v", c.DataSettings.CSVPath)
	}
	if !c.DataSettings.StartDate.IsZero() {
		log.Infof(common.Config, "Start date: %v", c.DataSettings.StartDate)
	}
	if !c.DataSettings.EndDate.IsZero() {
		log.Infof(common.Config, "End date: %v", c.DataSettings.EndDate)
	}
}
