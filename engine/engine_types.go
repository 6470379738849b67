package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/emoji-connoisseur/connoisseur/config"
	"github.com/emoji-connoisseur/connoisseur/emotelog"
	"github.com/emoji-connoisseur/connoisseur/i18n"
	"github.com/emoji-connoisseur/connoisseur/subsystems/apiserver"
	"github.com/emoji-connoisseur/connoisseur/subsystems/communicationmanager"
	"github.com/emoji-connoisseur/connoisseur/subsystems/databaseconnection"
	"golang.org/x/text/language"
)

var (
	errNilSettings   = errors.New("engine: settings is nil")
	errNilEngine     = errors.New("engine instance is nil")
	errNilConfig     = errors.New("engine: config is nil")
	errNoDatabase    = errors.New("emote database is not connected")
	errUnknownAction = errors.New("unknown emote action")
	errNoPublisher   = errors.New("no communications relayer is running")

	newEngineMutex sync.Mutex
)

// Action is a change to an emote which may be logged
type Action uint8

// Emote actions
const (
	ActionAdd Action = iota
	ActionRemove
	ActionForceRemove
	ActionDecay
)

// Settings stores engine params
type Settings struct {
	ConfigFile   string
	DataDir      string
	MigrationDir string

	// Core settings
	EnableDryRun          bool
	EnableDatabaseManager bool
	EnableMigrations      bool
	EnableCommsRelayer    bool
	EnableEmoteLog        bool
	EnableAPIServer       bool
	Verbose               bool

	// Overrides
	CacheCapacity uint64
	Locale        string
}

// Engine contains the configuration and every running subsystem of the bot
type Engine struct {
	Config          *config.Config
	DatabaseManager *databaseconnection.Manager
	CommsManager    *communicationmanager.Manager
	EmoteLogger     *emotelog.Logger
	APIServer       *apiserver.Manager
	Bundle          *i18n.Bundle
	Settings        Settings
	Uptime          time.Time
	ServicesWG      sync.WaitGroup

	locale language.Tag
}
