package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/config"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/data/kline/csv"
	klinedatabase "github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/data/kline/database"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/engine"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/size"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/statistics"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/strategies"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/database"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/database/repository/candle"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var errMissingFlag = errors.New("missing required flag")

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "path to a json config, defaults and OST_ environment overrides apply when empty",
}

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "runs a backtest from a config file",
	Flags: []cli.Flag{
		configFlag,
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "writes the full result as json to this path",
		},
		&cli.StringFlag{
			Name:  "runid",
			Usage: "overrides the run id which seeds order ids",
		},
		&cli.BoolFlag{
			Name:  "printconfig",
			Usage: "logs the loaded config before running",
		},
	},
	Action: runBacktest,
}

var sizeCommand = &cli.Command{
	Name:  "size",
	Usage: "sizes a single entry with the configured sizing pipeline",
	Flags: []cli.Flag{
		configFlag,
		&cli.StringFlag{Name: "capital", Usage: "10000", Required: true},
		&cli.StringFlag{Name: "entry", Usage: "50000", Required: true},
		&cli.StringFlag{Name: "stop", Usage: "49000", Required: true},
		&cli.StringFlag{Name: "winrate", Usage: "0.55 - enables kelly sizing alongside payoff"},
		&cli.StringFlag{Name: "payoff", Usage: "1.5 - average win over average loss"},
		&cli.StringFlag{Name: "volatility", Usage: "0.02 - realised volatility for volatility targeting"},
		&cli.StringFlag{Name: "drawdown", Usage: "0.1 - current drawdown for the drawdown throttle"},
	},
	Action: sizePosition,
}

var ruinCommand = &cli.Command{
	Name:  "ruin",
	Usage: "estimates the probability of ruin for a trade distribution",
	Flags: []cli.Flag{
		&cli.Float64Flag{Name: "winrate", Usage: "probability of a winning trade", Required: true},
		&cli.Float64Flag{Name: "payoff", Usage: "average win over average loss", Required: true},
		&cli.Float64Flag{Name: "risk", Value: 0.01, Usage: "ratio of equity risked per trade"},
		&cli.IntFlag{Name: "horizon", Value: 100, Usage: "number of trades per trial"},
		&cli.Float64Flag{Name: "threshold", Value: 0.5, Usage: "equity ratio at or below which a trial is ruined"},
		&cli.IntFlag{Name: "trials", Value: 10000, Usage: "monte carlo trials"},
		&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "random seed, equal seeds give equal estimates"},
		&cli.IntFlag{Name: "workers", Usage: "parallel workers, defaults to one per cpu"},
		&cli.BoolFlag{Name: "exact", Usage: "also computes the exact lattice probability"},
	},
	Action: estimateRuin,
}

var importCommand = &cli.Command{
	Name:  "import",
	Usage: "imports csv bars into the candle database configured in data-settings",
	Flags: []cli.Flag{
		configFlag,
		&cli.StringFlag{Name: "csv", Usage: "path to the csv to import", Required: true},
		&cli.StringFlag{Name: "symbol", Usage: "overrides the configured symbol"},
	},
	Action: importCSV,
}

var strategiesCommand = &cli.Command{
	Name:   "strategies",
	Usage:  "lists the available strategies",
	Action: listStrategies,
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.ReadConfigFromFile(c.String(configFlag.Name))
}

func runBacktest(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if id := c.String("runid"); id != "" {
		cfg.RunSettings.RunID = id
	}
	if c.Bool("printconfig") {
		cfg.PrintSetting()
	}
	bt, err := engine.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	stream, err := engine.LoadStream(c.Context, cfg)
	if err != nil {
		return err
	}
	res, runErr := bt.Run(c.Context, stream)
	if res != nil {
		printSummary(c.App.Writer, res)
		if path := c.String("output"); path != "" {
			if err = engine.WriteResultToFile(path, res); err != nil {
				return errors.Join(runErr, err)
			}
		}
	}
	return runErr
}

func sizePosition(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	sizer, err := size.New(engine.SizeSettingsFromConfig(&cfg.SizingSettings))
	if err != nil {
		return err
	}
	req, err := sizeRequestFromFlags(c)
	if err != nil {
		return err
	}
	res, err := sizer.Size(req)
	if err != nil {
		return err
	}
	return jsonOutput(c.App.Writer, res)
}

func sizeRequestFromFlags(c *cli.Context) (size.Request, error) {
	var req size.Request
	for _, f := range []struct {
		name string
		dst  *decimal.Decimal
	}{
		{"capital", &req.Capital},
		{"entry", &req.EntryPrice},
		{"stop", &req.StopPrice},
	} {
		v, err := decimalFlag(c, f.name)
		if err != nil {
			return req, err
		}
		if !v.Valid {
			return req, fmt.Errorf("%w '%v'", errMissingFlag, f.name)
		}
		*f.dst = v.Decimal
	}
	for _, f := range []struct {
		name string
		dst  *decimal.NullDecimal
	}{
		{"winrate", &req.WinRate},
		{"payoff", &req.PayoffRatio},
		{"volatility", &req.RealizedVolatility},
		{"drawdown", &req.CurrentDrawdown},
	} {
		v, err := decimalFlag(c, f.name)
		if err != nil {
			return req, err
		}
		*f.dst = v
	}
	return req, nil
}

func decimalFlag(c *cli.Context, name string) (decimal.NullDecimal, error) {
	s := c.String(name)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%v: %w", name, err)
	}
	return decimal.NewNullDecimal(d), nil
}

func estimateRuin(c *cli.Context) error {
	params := statistics.RuinParams{
		WinRate:       c.Float64("winrate"),
		PayoffRatio:   c.Float64("payoff"),
		RiskFraction:  c.Float64("risk"),
		HorizonTrades: c.Int("horizon"),
		Threshold:     c.Float64("threshold"),
		Trials:        c.Int("trials"),
		Seed:          c.Uint64("seed"),
		Workers:       c.Int("workers"),
	}
	est, err := statistics.SimulateRuin(c.Context, params)
	if err != nil {
		return err
	}
	p := message.NewPrinter(language.English)
	p.Fprintf(c.App.Writer, "ruined %d of %d trials\n", est.Ruined, params.Trials)
	p.Fprintf(c.App.Writer, "probability of ruin %.4f (95%% interval %.4f to %.4f)\n", est.Probability, est.ConfidenceLow, est.ConfidenceHigh)
	if c.Bool("exact") {
		exact, err := statistics.ExactRuinProbability(params)
		if err != nil {
			return err
		}
		p.Fprintf(c.App.Writer, "exact probability of ruin %.4f\n", exact)
	}
	return nil
}

func importCSV(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	symbol := c.String("symbol")
	if symbol == "" {
		symbol = cfg.DataSettings.Symbol
	}
	if symbol == "" {
		return fmt.Errorf("%w 'symbol'", errMissingFlag)
	}
	bars, err := csv.LoadData(c.String("csv"))
	if err != nil {
		return err
	}
	inst := &database.Instance{}
	if err = engine.ConnectDatabase(inst, &cfg.DataSettings); err != nil {
		return err
	}
	defer func() {
		if closeErr := inst.CloseConnection(); closeErr != nil {
			fmt.Fprintln(os.Stderr, closeErr)
		}
	}()
	if err = candle.CreateSchema(c.Context, inst); err != nil {
		return err
	}
	inserted, err := klinedatabase.Save(c.Context, inst, symbol, cfg.RunSettings.Interval, bars)
	if err != nil {
		return err
	}
	message.NewPrinter(language.English).Fprintf(c.App.Writer, "imported %d %s bars\n", inserted, symbol)
	return nil
}

func listStrategies(c *cli.Context) error {
	for _, s := range strategies.GetStrategies() {
		fmt.Fprintf(c.App.Writer, "%s\n\t%s\n", s.Name(), s.Description())
	}
	return nil
}

// printSummary writes the headline figures of a run with locale separators
func printSummary(w io.Writer, res *engine.Result) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "run %s %s: %s\n", res.RunID, res.Strategy, res.Status)
	if res.Reason != "" {
		p.Fprintf(w, "reason: %s\n", res.Reason)
	}
	p.Fprintf(w, "initial funds       %.2f\n", res.InitialFunds.InexactFloat64())
	p.Fprintf(w, "final theoretical   %.2f\n", res.FinalTheoretical.InexactFloat64())
	p.Fprintf(w, "final realistic     %.2f\n", res.FinalRealistic.InexactFloat64())
	p.Fprintf(w, "max drawdown        %.2f%% theoretical, %.2f%% realistic\n",
		res.MaxDrawdownTheoretical.InexactFloat64()*100, res.MaxDrawdownRealistic.InexactFloat64()*100)
	stats := res.ExecutionStats
	p.Fprintf(w, "bars %d, trades %d, fills %d, partial %d, rejected %d, cancelled %d, expired %d\n",
		res.TemporalValidation.Bars, len(res.Trades), stats.Fills, stats.PartialFills,
		stats.RejectedOrders, stats.CancelledOrders, stats.ExpiredOrders)
	p.Fprintf(w, "orderbook fallbacks %d, gap exits %d, invalid signals %d, strategy errors %d\n",
		stats.OrderbookFallback, stats.GapExits, stats.InvalidSignals, stats.StrategyErrors)
	if te := res.TrackingError; te != nil {
		p.Fprintf(w, "tracking error %.4f annualised, mean divergence %.2f bps\n", te.AnnualizedTrackingError, te.MeanDivergenceBPS)
	}
	if res.Ruin != nil {
		p.Fprintf(w, "risk of ruin %.4f\n", res.Ruin.Probability)
	}
}

func jsonOutput(w io.Writer, in any) error {
	j, err := json.MarshalIndent(in, "", " ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(j))
	return err
}
