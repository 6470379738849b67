package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/emoji-connoisseur/connoisseur/common"
	"github.com/emoji-connoisseur/connoisseur/common/table"
	"github.com/emoji-connoisseur/connoisseur/config"
	"github.com/emoji-connoisseur/connoisseur/database/repository/emote"
	"github.com/emoji-connoisseur/connoisseur/engine"
	"github.com/emoji-connoisseur/connoisseur/i18n"
	"github.com/emoji-connoisseur/connoisseur/log"
	"github.com/emoji-connoisseur/connoisseur/signaler"
	"github.com/emoji-connoisseur/connoisseur/subsystems/apiserver"
	"github.com/urfave/cli/v2"
)

const defaultOTPIssuer = "Emoji Connoisseur"

var (
	errDatabaseUnavailable = errors.New("emote database is unavailable")
	errNoOTPSecret         = errors.New("no OTP secret supplied or configured")

	// overrideFlags are the run flags which win over the config file when set
	overrideFlags = []string{"datadir", "database", "comms", "emotelog", "apiserver", "cachecapacity", "locale"}
)

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "starts the bot and its enabled subsystems until interrupted",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "datadir", Usage: "data directory override, implies dry run"},
		&cli.BoolFlag{Name: "dryrun", Usage: "dry runs the bot without saving config changes"},
		&cli.BoolFlag{Name: "database", Usage: "enables the database manager"},
		&cli.BoolFlag{Name: "migrate", Usage: "applies pending database migrations on start"},
		&cli.StringFlag{Name: "migrationdir", Usage: "override migration folder"},
		&cli.BoolFlag{Name: "comms", Usage: "enables the communications relayers"},
		&cli.BoolFlag{Name: "emotelog", Usage: "enables the emote log"},
		&cli.BoolFlag{Name: "apiserver", Usage: "enables the API server"},
		&cli.Uint64Flag{Name: "cachecapacity", Usage: "amount of emotes kept in the lookup cache"},
		&cli.StringFlag{Name: "locale", Usage: "default locale, e.g. en_US"},
		&cli.BoolFlag{Name: "verbose", Usage: "increases logging verbosity"},
	},
	Action: runBot,
}

var lookupCommand = &cli.Command{
	Name:      "lookup",
	Usage:     "looks up an emote by name",
	ArgsUsage: "<name>",
	Action:    lookupEmote,
}

var listCommand = &cli.Command{
	Name:   "list",
	Usage:  "lists every emote as a table",
	Action: listEmotes,
}

var expandCommand = &cli.Command{
	Name:      "expand",
	Usage:     "expands the first {a,b} group of each argument",
	ArgsUsage: "<pattern> [pattern...]",
	Action:    expand,
}

var translateCommand = &cli.Command{
	Name:      "translate",
	Usage:     "translates a message key",
	ArgsUsage: "<key> [args...]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "locale", Value: i18n.DefaultLocale, Usage: "locale to translate to"},
		&cli.StringFlag{Name: "dir", Value: i18n.DefaultDirectory, Usage: "locale directory"},
	},
	Action: translate,
}

var configCommand = &cli.Command{
	Name:   "config",
	Usage:  "prints the default config",
	Action: printDefaultConfig,
}

var otpCommand = &cli.Command{
	Name:  "otp",
	Usage: "manages the one-time passwords guarding API writes",
	Subcommands: []*cli.Command{
		{
			Name:  "generate",
			Usage: "generates a new OTP secret",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "issuer", Value: defaultOTPIssuer, Usage: "issuer shown by authenticator apps"},
				&cli.StringFlag{Name: "account", Required: true, Usage: "account name shown by authenticator apps"},
			},
			Action: generateOTPSecret,
		},
		{
			Name:  "code",
			Usage: "prints the current OTP code",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "secret", Usage: "OTP secret, defaults to the configured API server secret"},
			},
			Action: printOTPCode,
		},
	},
}

func jsonOutput(c *cli.Context, in any) error {
	j, err := json.MarshalIndent(in, "", " ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(j))
	return err
}

func runBot(c *cli.Context) error {
	settings := &engine.Settings{
		ConfigFile:            configFile,
		DataDir:               c.String("datadir"),
		MigrationDir:          c.String("migrationdir"),
		EnableDryRun:          c.Bool("dryrun"),
		EnableDatabaseManager: c.Bool("database"),
		EnableMigrations:      c.Bool("migrate"),
		EnableCommsRelayer:    c.Bool("comms"),
		EnableEmoteLog:        c.Bool("emotelog"),
		EnableAPIServer:       c.Bool("apiserver"),
		CacheCapacity:         c.Uint64("cachecapacity"),
		Locale:                c.String("locale"),
		Verbose:               c.Bool("verbose"),
	}
	flagSet := make(map[string]bool, len(overrideFlags))
	for _, name := range overrideFlags {
		flagSet[name] = c.IsSet(name)
	}

	bot, err := engine.NewFromSettings(settings, flagSet)
	if err != nil {
		return err
	}
	engine.PrintSettings(&bot.Settings)
	if err := bot.Start(); err != nil {
		return err
	}

	log.Infoln(log.Global, "Press CTRL-C to shut down.")
	interrupt := <-signaler.WaitForInterrupt()
	log.Infof(log.Global, "Captured %v, shutdown requested.\n", interrupt)
	bot.Stop()
	return nil
}

// startStore starts an engine running only the database manager
func startStore() (*engine.Engine, error) {
	bot, err := engine.NewFromSettings(&engine.Settings{
		ConfigFile:            configFile,
		EnableDryRun:          true,
		EnableDatabaseManager: true,
	}, map[string]bool{
		"database":  true,
		"comms":     true,
		"emotelog":  true,
		"apiserver": true,
	})
	if err != nil {
		return nil, err
	}
	if err := bot.Start(); err != nil {
		return nil, err
	}
	if !bot.DatabaseManager.IsRunning() {
		bot.Stop()
		return nil, errDatabaseUnavailable
	}
	return bot, nil
}

func lookupEmote(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowSubcommandHelp(c)
	}
	bot, err := startStore()
	if err != nil {
		return err
	}
	defer bot.Stop()

	ctx := bot.Context(c.Context)
	d, err := emote.One(ctx, c.Args().First())
	if errors.Is(err, emote.ErrNoEmoteFound) {
		_, err = fmt.Fprintln(c.App.Writer, bot.Bundle.Sprintf(ctx, "Emote %s not found.", c.Args().First()))
		return err
	}
	if err != nil {
		return err
	}
	return jsonOutput(c, apiserver.EmoteResponse{Details: d, Markup: d.String(), URL: d.URL()})
}

func listEmotes(c *cli.Context) error {
	bot, err := startStore()
	if err != nil {
		return err
	}
	defer bot.Stop()

	ctx := bot.Context(c.Context)
	emotes, err := emote.All(ctx)
	if err != nil {
		return err
	}
	tbl, err := table.FromRecords(emote.Records(emotes))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(c.App.Writer, bot.Bundle.Sprintf(ctx, "There are %d emotes.", len(emotes))); err != nil {
		return err
	}
	if tbl.Len() == 0 {
		return nil
	}
	_, err = fmt.Fprintln(c.App.Writer, tbl.String())
	return err
}

func expand(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowSubcommandHelp(c)
	}
	for _, arg := range c.Args().Slice() {
		first, second := common.ExpandCartesianProduct(arg)
		if _, err := fmt.Fprintln(c.App.Writer, first); err != nil {
			return err
		}
		if second == "" {
			continue
		}
		if _, err := fmt.Fprintln(c.App.Writer, second); err != nil {
			return err
		}
	}
	return nil
}

func translate(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowSubcommandHelp(c)
	}
	tag, err := i18n.ParseLocale(c.String("locale"))
	if err != nil {
		return err
	}
	bundle, err := i18n.Load(c.String("dir"), i18n.SourceLanguage)
	if err != nil {
		return err
	}
	args := make([]any, 0, c.NArg()-1)
	for _, a := range c.Args().Tail() {
		args = append(args, a)
	}
	ctx := i18n.WithLocale(c.Context, tag)
	_, err = fmt.Fprintln(c.App.Writer, bundle.Sprintf(ctx, c.Args().First(), args...))
	return err
}

func printDefaultConfig(c *cli.Context) error {
	return jsonOutput(c, config.Default())
}

func generateOTPSecret(c *cli.Context) error {
	key, err := apiserver.GenerateOTPKey(c.String("issuer"), c.String("account"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "Secret: %s\nURL: %s\n", key.Secret(), key.URL())
	return err
}

func printOTPCode(c *cli.Context) error {
	secret := c.String("secret")
	if secret == "" {
		var cfg config.Config
		if err := cfg.LoadConfig(configFile, true); err != nil {
			return err
		}
		secret = cfg.APIServer.OTPSecret
	}
	if secret == "" {
		return errNoOTPSecret
	}
	code, err := apiserver.GenerateOTPCode(secret, time.Now())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, code)
	return err
}
