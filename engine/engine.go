// Package engine wires the configuration and every subsystem of the bot
// together
package engine

import (
	"context"
	"fmt"
	stdlog "log"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/emoji-connoisseur/connoisseur/config"
	"github.com/emoji-connoisseur/connoisseur/database"
	"github.com/emoji-connoisseur/connoisseur/database/repository"
	"github.com/emoji-connoisseur/connoisseur/database/repository/emote"
	"github.com/emoji-connoisseur/connoisseur/emotelog"
	"github.com/emoji-connoisseur/connoisseur/i18n"
	"github.com/emoji-connoisseur/connoisseur/log"
	"github.com/emoji-connoisseur/connoisseur/subsystems/apiserver"
	"github.com/emoji-connoisseur/connoisseur/subsystems/communicationmanager"
	"github.com/emoji-connoisseur/connoisseur/subsystems/databaseconnection"
	"github.com/thrasher-corp/goose"
	"golang.org/x/text/language"
)

// NewFromSettings starts a new engine based on supplied settings
func NewFromSettings(settings *Settings, flagSet map[string]bool) (*Engine, error) {
	if settings == nil {
		return nil, errNilSettings
	}
	cfg, err := loadConfigWithSettings(settings, flagSet)
	if err != nil {
		return nil, fmt.Errorf("failed to load config. Err: %w", err)
	}
	return NewFromConfig(cfg, settings, flagSet)
}

// NewFromConfig returns an engine for an already loaded and checked config
func NewFromConfig(cfg *config.Config, settings *Settings, flagSet map[string]bool) (*Engine, error) {
	newEngineMutex.Lock()
	defer newEngineMutex.Unlock()
	if cfg == nil {
		return nil, errNilConfig
	}
	if settings == nil {
		return nil, errNilSettings
	}

	b := &Engine{Config: cfg}
	if cfg.Logging.Enabled != nil && *cfg.Logging.Enabled {
		if err := log.SetGlobalLogConfig(&cfg.Logging); err != nil {
			return nil, err
		}
		if err := log.SetupGlobalLogger(); err != nil {
			return nil, fmt.Errorf("failed to setup logger. Err: %w", err)
		}
		log.Infoln(log.Global, "Logger initialised.")
	}

	b.Settings.ConfigFile = settings.ConfigFile
	b.Settings.DataDir = cfg.GetDataPath()
	validateSettings(b, settings, flagSet)

	var err error
	b.locale, err = i18n.ParseLocale(cfg.I18n.Locale)
	if err != nil {
		log.Warnf(log.I18n, "Invalid locale %q, using %s: %v", cfg.I18n.Locale, i18n.DefaultLocale, err)
		b.locale = i18n.SourceLanguage
	}
	return b, nil
}

// loadConfigWithSettings creates configuration based on the provided settings
func loadConfigWithSettings(settings *Settings, flagSet map[string]bool) (*config.Config, error) {
	filePath, _, err := config.GetFilePath(settings.ConfigFile)
	if err != nil {
		return nil, err
	}
	stdlog.Printf("Loading config file %s..\n", filePath)

	conf := &config.Config{}
	if err := conf.ReadConfigFromFile(filePath, settings.EnableDryRun); err != nil {
		return nil, fmt.Errorf(config.ErrFailureOpeningConfig, filePath, err)
	}
	if flagSet["datadir"] {
		if !settings.EnableDryRun {
			stdlog.Println("Command line argument '-datadir' induces dry run mode.")
		}
		settings.EnableDryRun = true
		conf.DataDirectory = settings.DataDir
	}
	return conf, conf.CheckConfig()
}

// validateSettings validates and sets all bot settings. Flags the user set
// explicitly win over the config file
func validateSettings(b *Engine, s *Settings, flagSet map[string]bool) {
	b.Settings.Verbose = s.Verbose
	b.Settings.EnableDryRun = s.EnableDryRun
	b.Settings.EnableMigrations = s.EnableMigrations
	b.Settings.MigrationDir = s.MigrationDir
	if b.Settings.MigrationDir == "" {
		b.Settings.MigrationDir = database.MigrationDir
	}

	if flagSet["database"] {
		b.Settings.EnableDatabaseManager = s.EnableDatabaseManager
	} else {
		b.Settings.EnableDatabaseManager = b.Config.Database.Enabled
	}

	if flagSet["comms"] {
		b.Settings.EnableCommsRelayer = s.EnableCommsRelayer
	} else {
		b.Settings.EnableCommsRelayer = b.Config.Communications.IsAnyEnabled()
	}

	if flagSet["emotelog"] {
		b.Settings.EnableEmoteLog = s.EnableEmoteLog
	} else {
		b.Settings.EnableEmoteLog = b.Config.EmoteLog.Channel != ""
	}

	if flagSet["apiserver"] {
		b.Settings.EnableAPIServer = s.EnableAPIServer
	} else {
		b.Settings.EnableAPIServer = b.Config.APIServer.Enabled
	}

	if flagSet["cachecapacity"] && s.CacheCapacity > 0 {
		b.Config.Cache.Capacity = s.CacheCapacity
	}
	b.Settings.CacheCapacity = b.Config.Cache.Capacity

	if flagSet["locale"] && s.Locale != "" {
		if _, err := i18n.ParseLocale(s.Locale); err != nil {
			log.Warnf(log.Global, "-locale %q invalid, keeping %s: %v", s.Locale, b.Config.I18n.Locale, err)
		} else {
			b.Config.I18n.Locale = s.Locale
		}
	}
	b.Settings.Locale = b.Config.I18n.Locale
}

// PrintSettings returns the engine settings
func PrintSettings(s *Settings) {
	log.Debugln(log.Global)
	log.Debugf(log.Global, "ENGINE SETTINGS")
	log.Debugf(log.Global, "- CORE SETTINGS:")
	log.Debugf(log.Global, "\t Verbose mode: %v", s.Verbose)
	log.Debugf(log.Global, "\t Enable dry run mode: %v", s.EnableDryRun)
	log.Debugf(log.Global, "\t Enable database manager: %v", s.EnableDatabaseManager)
	log.Debugf(log.Global, "\t Enable database migrations: %v", s.EnableMigrations)
	log.Debugf(log.Global, "\t Enable comms relayer: %v", s.EnableCommsRelayer)
	log.Debugf(log.Global, "\t Enable emote log: %v", s.EnableEmoteLog)
	log.Debugf(log.Global, "\t Enable API server: %v", s.EnableAPIServer)
	log.Debugf(log.Global, "- EMOTE SETTINGS:")
	log.Debugf(log.Global, "\t Emote cache capacity: %d", s.CacheCapacity)
	log.Debugf(log.Global, "\t Default locale: %s", s.Locale)
	log.Debugln(log.Global)
}

// Start starts the engine
func (bot *Engine) Start() error {
	if bot == nil {
		return errNilEngine
	}

	newEngineMutex.Lock()
	defer newEngineMutex.Unlock()

	if bot.Settings.EnableDatabaseManager {
		if err := bot.startDatabase(); err != nil {
			log.Errorf(log.Global, "Database manager unable to start: %v", err)
		}
	}

	if err := emote.SetCacheSize(bot.Config.Cache.Capacity); err != nil {
		return err
	}

	bot.Bundle = loadBundle(bot.Config.I18n.Directory, bot.locale)

	if bot.Settings.EnableCommsRelayer {
		if err := bot.startComms(); err != nil {
			log.Errorf(log.Global, "Communications manager unable to start: %v", err)
		}
	}

	if bot.Settings.EnableEmoteLog {
		if err := bot.setupEmoteLog(); err != nil {
			log.Errorf(log.EmoteLog, "Emote log unavailable: %v", err)
		}
	}

	if bot.Settings.EnableAPIServer {
		if err := bot.startAPIServer(); err != nil {
			log.Errorf(log.Global, "API server unable to start: %v", err)
		}
	}

	bot.Uptime = time.Now()
	log.Debugf(log.Global, "Bot '%s' started.\n", bot.Config.Name)
	log.Debugf(log.Global, "Using data dir: %s\n", bot.Settings.DataDir)
	if bot.Config.Logging.Enabled != nil && *bot.Config.Logging.Enabled &&
		strings.Contains(bot.Config.Logging.Output, "file") &&
		bot.Config.Logging.LoggerFileConfig != nil {
		log.Debugf(log.Global, "Using log file: %s\n",
			filepath.Join(log.GetLogPath(), bot.Config.Logging.LoggerFileConfig.FileName))
	}
	log.Debugf(log.Global,
		"Using %d out of %d logical processors for runtime performance\n",
		runtime.GOMAXPROCS(-1), runtime.NumCPU())
	return nil
}

// Stop shuts down every running subsystem in reverse start order
func (bot *Engine) Stop() {
	if bot == nil {
		return
	}
	newEngineMutex.Lock()
	defer newEngineMutex.Unlock()

	log.Debugln(log.Global, "Engine shutting down..")

	if bot.APIServer.IsRunning() {
		if err := bot.APIServer.Stop(); err != nil {
			log.Errorf(log.Global, "API server unable to stop. Error: %v", err)
		}
	}
	if bot.CommsManager.IsRunning() {
		if err := bot.CommsManager.Stop(); err != nil {
			log.Errorf(log.Global, "Communication manager unable to stop. Error: %v", err)
		}
	}
	if bot.DatabaseManager.IsRunning() {
		if err := bot.DatabaseManager.Stop(); err != nil {
			log.Errorf(log.Global, "Database manager unable to stop. Error: %v", err)
		}
	}

	bot.ServicesWG.Wait()
	log.Debugln(log.Global, "Exiting.")
}

func (bot *Engine) startDatabase() error {
	var err error
	bot.DatabaseManager, err = databaseconnection.Setup(&bot.Config.Database)
	if err != nil {
		return err
	}
	if err = bot.DatabaseManager.Start(&bot.ServicesWG); err != nil {
		return err
	}
	if !bot.Settings.EnableMigrations {
		return nil
	}
	sqlDB, err := database.DB.GetSQL()
	if err != nil {
		return err
	}
	log.Debugf(log.DatabaseMgr, "Applying migrations from %s", bot.Settings.MigrationDir)
	return goose.Run("up", sqlDB, repository.GetSQLDialect(), bot.Settings.MigrationDir, "")
}

func (bot *Engine) startComms() error {
	var err error
	bot.CommsManager, err = communicationmanager.Setup(&bot.Config.Communications)
	if err != nil {
		return err
	}
	return bot.CommsManager.Start()
}

func (bot *Engine) setupEmoteLog() error {
	if !bot.CommsManager.IsRunning() {
		return errNoPublisher
	}
	var err error
	bot.EmoteLogger, err = emotelog.New(&bot.Config.EmoteLog, bot.CommsManager, bot.Bundle, nil)
	return err
}

func (bot *Engine) startAPIServer() error {
	var (
		status apiserver.StatusProvider
		feed   = bot.CommsManager.FeedHandler()
	)
	if bot.CommsManager.IsRunning() {
		status = bot.CommsManager
	}
	var err error
	bot.APIServer, err = apiserver.Setup(&bot.Config.APIServer,
		apiserver.RepositoryStore{},
		status,
		bot.Bundle,
		feed,
		bot.locale)
	if err != nil {
		return err
	}
	return bot.APIServer.Start()
}

func loadBundle(dir string, fallback language.Tag) *i18n.Bundle {
	b, err := i18n.Load(dir, fallback)
	if err != nil {
		log.Warnf(log.I18n, "Unable to load translations from %s, using source strings: %v", dir, err)
		return i18n.NewBundle(fallback)
	}
	return b
}

// Context returns ctx carrying the configured default locale unless it
// already carries one
func (bot *Engine) Context(ctx context.Context) context.Context {
	if i18n.HasLocale(ctx) {
		return ctx
	}
	return i18n.WithLocale(ctx, bot.locale)
}

// AddEmote stores a new emote and logs the addition
func (bot *Engine) AddEmote(ctx context.Context, d emote.Details) error {
	if !database.DB.IsConnected() {
		return errNoDatabase
	}
	if err := emote.Insert(ctx, d); err != nil {
		return err
	}
	stored, err := emote.One(ctx, d.Name)
	if err != nil {
		return err
	}
	return bot.LogEmoteAction(ctx, ActionAdd, &stored)
}

// RemoveEmote deletes an emote and logs the removal. forced marks removals
// made by a moderator rather than the emote's owner
func (bot *Engine) RemoveEmote(ctx context.Context, name string, forced bool) error {
	action := ActionRemove
	if forced {
		action = ActionForceRemove
	}
	return bot.deleteEmote(ctx, name, action)
}

// DecayEmote deletes an emote which has gone unused and logs the decay
func (bot *Engine) DecayEmote(ctx context.Context, name string) error {
	return bot.deleteEmote(ctx, name, ActionDecay)
}

func (bot *Engine) deleteEmote(ctx context.Context, name string, action Action) error {
	if !database.DB.IsConnected() {
		return errNoDatabase
	}
	d, err := emote.One(ctx, name)
	if err != nil {
		return err
	}
	if err := emote.Delete(ctx, d.Name); err != nil {
		return err
	}
	return bot.LogEmoteAction(ctx, action, &d)
}

// LogEmoteAction sends an emote change to the emote log. It is a no-op when
// the emote log is unavailable
func (bot *Engine) LogEmoteAction(ctx context.Context, action Action, d *emote.Details) error {
	if bot.EmoteLogger == nil {
		return nil
	}
	ctx = bot.Context(ctx)
	switch action {
	case ActionAdd:
		return bot.EmoteLogger.OnEmoteAdd(ctx, d)
	case ActionRemove:
		return bot.EmoteLogger.OnEmoteRemove(ctx, d)
	case ActionForceRemove:
		return bot.EmoteLogger.OnEmoteForceRemove(ctx, d)
	case ActionDecay:
		return bot.EmoteLogger.OnEmoteDecay(ctx, d)
	default:
		return fmt.Errorf("%w: %d", errUnknownAction, action)
	}
}
