package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/common"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/config"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/engine"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/backtester/eventhandlers/portfolio/size"
	"github.com/LautaroIbanez/One-Smart-Trade-sub000/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bars = `timestamp,open,high,low,close,volume
2024-01-01T00:00:00Z,100,101,99,100,1000
2024-01-01T01:00:00Z,100,102,99,101,1000
2024-01-01T02:00:00Z,101,103,100,102,1000
2024-01-01T03:00:00Z,102,103,101,101,1000
2024-01-01T04:00:00Z,101,102,100,100,1000
`

// run executes the cli in process. Commands share flag definitions so
// these tests do not run in parallel
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var buf bytes.Buffer
	app.Writer = &buf
	err := app.Run(append([]string{appName}, args...))
	return buf.String(), err
}

func writeFixtures(t *testing.T, cfg *config.Config) (cfgPath, csvPath string) {
	t.Helper()
	dir := t.TempDir()
	csvPath = filepath.Join(dir, "bars.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(bars), 0o600))
	cfg.DataSettings.CSVPath = csvPath
	cfgPath = filepath.Join(dir, "config.json")
	require.NoError(t, cfg.Write(cfgPath))
	return cfgPath, csvPath
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	printSummary(&buf, &engine.Result{
		RunID:            "summary",
		Strategy:         "hold",
		Status:           engine.StatusFailedTemporalValidation,
		Reason:           "gap ratio too high",
		InitialFunds:     decimal.NewFromInt(10000),
		FinalTheoretical: decimal.RequireFromString("12345.678"),
		FinalRealistic:   decimal.RequireFromString("12001.5"),
	})
	out := buf.String()
	assert.Contains(t, out, "run summary hold: FAILED_TEMPORAL_VALIDATION")
	assert.Contains(t, out, "reason: gap ratio too high")
	assert.Contains(t, out, "10,000.00")
	assert.Contains(t, out, "12,345.68")
	assert.Contains(t, out, "12,001.50")
}

func TestRunCommand(t *testing.T) {
	cfg := config.Default()
	cfg.StrategySettings.Name = "hold"
	cfgPath, _ := writeFixtures(t, cfg)
	output := filepath.Join(filepath.Dir(cfgPath), "result.json")

	out, err := run(t, "run", "--config", cfgPath, "--runid", "cli-run", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "run cli-run hold: COMPLETED")

	contents, err := os.ReadFile(output)
	require.NoError(t, err)
	var res engine.Result
	require.NoError(t, json.Unmarshal(contents, &res))
	assert.Equal(t, "cli-run", res.RunID)
	assert.Len(t, res.EquityCurve, 5)

	_, err = run(t, "run", "--config", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSizeCommand(t *testing.T) {
	out, err := run(t, "size", "--capital", "10000", "--entry", "100", "--stop", "95")
	require.NoError(t, err)
	var res size.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Units.IsPositive(), res.Units)

	_, err = run(t, "size", "--capital", "10000", "--entry", "100", "--stop", "ninety")
	assert.Error(t, err)
}

func TestRuinCommand(t *testing.T) {
	out, err := run(t, "ruin", "--winrate", "0.5", "--payoff", "1", "--risk", "0.1",
		"--horizon", "20", "--trials", "200", "--exact")
	require.NoError(t, err)
	assert.Contains(t, out, "ruined")
	assert.Contains(t, out, "of 200 trials")
	assert.Contains(t, out, "exact probability of ruin")

	_, err = run(t, "ruin", "--winrate", "1.5", "--payoff", "1")
	assert.Error(t, err)
}

func TestImportCommand(t *testing.T) {
	cfg := config.Default()
	cfg.DataSettings.Source = common.DatabaseDataSource
	cfg.DataSettings.Database = database.Config{
		Driver:            database.DBSQLite3,
		ConnectionDetails: database.ConnectionDetails{Database: "candles.db"},
	}
	cfg.DataSettings.DataPath = t.TempDir()
	cfgPath, csvPath := writeFixtures(t, cfg)

	out, err := run(t, "import", "--config", cfgPath, "--csv", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 5 BTCUSDT bars")
}

func TestStrategiesCommand(t *testing.T) {
	out, err := run(t, "strategies")
	require.NoError(t, err)
	assert.Contains(t, out, "hold")
	assert.Contains(t, out, "rsi")
	assert.Contains(t, out, "dollarcostaverage")
}
