package main

import (
	"fmt"
	"os"

	"github.com/LautaroIbanez/One-Smart-Trade-sub000/log"
	"github.com/urfave/cli/v2"
)

const appName = "backtester"

var verbose bool

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Usage = "bar by bar backtests with realistic execution, position sizing and risk of ruin"
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "enables debug logging",
			Destination: &verbose,
		},
	}
	app.Before = setupLogger
	app.After = func(*cli.Context) error {
		return log.CloseLogger()
	}
	app.Commands = []*cli.Command{
		runCommand,
		sizeCommand,
		ruinCommand,
		importCommand,
		strategiesCommand,
	}
	return app
}

func setupLogger(*cli.Context) error {
	cfg := log.GenDefaultSettings()
	if verbose {
		cfg.Level = "INFO|WARN|DEBUG|ERROR"
	}
	return log.SetupGlobalLogger(cfg)
}
