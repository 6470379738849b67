package main

import (
	"fmt"
	"os"

	"github.com/emoji-connoisseur/connoisseur/config"
	"github.com/urfave/cli/v2"
)

const version = "v0.1.0"

var configFile string

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "connoisseur"
	app.Version = version
	app.EnableBashCompletion = true
	app.Usage = "emoji connoisseur bot and emote database tooling"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Value:       config.DefaultFilePath(),
			Usage:       "config file to load",
			Destination: &configFile,
		},
	}
	app.Commands = []*cli.Command{
		runCommand,
		lookupCommand,
		listCommand,
		expandCommand,
		translateCommand,
		configCommand,
		otpCommand,
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
