package config

import (
	"errors"
	"sync"
	"time"

	"github.com/emoji-connoisseur/connoisseur/communications/base"
	"github.com/emoji-connoisseur/connoisseur/database"
	"github.com/emoji-connoisseur/connoisseur/emotelog"
	"github.com/emoji-connoisseur/connoisseur/log"
)

// Constants declared here are filename strings and defaults
const (
	EncryptedFile                   = "config.dat"
	File                            = "config.json"
	fileEncryptionPrompt            = 0
	fileEncryptionEnabled           = 1
	fileEncryptionDisabled          = -1
	maxAuthFailures                 = 3
	defaultName                     = "Emoji Connoisseur"
	defaultLocale                   = "en_US"
	defaultLocaleDir                = "locale"
	defaultAPIListenAddress         = "localhost:9053"
	defaultAPIMaxConnections        = 64
	defaultAPIReadTimeout           = 15 * time.Second
	defaultWebhookName              = "Webhook"
	defaultWebhookRequests          = 5
	defaultWebhookInterval          = 2 * time.Second
	defaultFeedName                 = "Feed"
	defaultFeedMaxClients           = 32
	defaultCacheCapacity     uint64 = 128
)

// Constants here hold some messages
const (
	ErrFailureOpeningConfig = "fatal error opening %s file. Error: %w"
	ErrCheckingConfigValues = "fatal error checking config values. Error: %w"
)

// Variables here are used for configuration
var (
	Cfg Config
	m   sync.Mutex

	errDecryptFailed        = errors.New("failed to decrypt config after 3 attempts")
	errNoPrefix             = errors.New("data does not start with the encryption prefix")
	errAESBlockSize         = errors.New("config file data is too small for the AES required block size")
	errKeyIsEmpty           = errors.New("key is empty")
	errUserInput            = errors.New("error getting user input")
	errConfigFileNotFound   = errors.New("config file not found")
	errUnsupportedDriver    = errors.New("unsupported database driver")
	errWebhookURLNotSet     = errors.New("webhook URL not set")
	errInvalidLocale        = errors.New("invalid locale")
	errInvalidListenAddress = errors.New("invalid listen address")
)

// Config is the overarching object that holds all the information for the
// emote cache, its database, the emote log and the API server
type Config struct {
	Version        uint16                    `json:"version"`
	Name           string                    `json:"name"`
	DataDirectory  string                    `json:"dataDirectory"`
	EncryptConfig  int                       `json:"encryptConfig"`
	Logging        log.Config                `json:"logging"`
	Database       database.Config           `json:"database"`
	Cache          CacheConfig               `json:"cache"`
	I18n           I18nConfig                `json:"i18n"`
	EmoteLog       emotelog.Config           `json:"emoteLog"`
	Communications base.CommunicationsConfig `json:"communications"`
	APIServer      APIServerConfig           `json:"apiServer"`

	// encryption session values
	storedSalt []byte
	sessionDK  []byte
}

// CacheConfig holds the emote lookup cache settings
type CacheConfig struct {
	Capacity uint64 `json:"capacity"`
}

// I18nConfig holds the default locale and where the catalogs live
type I18nConfig struct {
	Locale    string `json:"locale"`
	Directory string `json:"directory"`
}

// APIServerConfig holds the HTTP API settings
type APIServerConfig struct {
	Enabled        bool          `json:"enabled"`
	ListenAddress  string        `json:"listenAddress"`
	MaxConnections int           `json:"maxConnections"`
	ReadTimeout    time.Duration `json:"readTimeout"`
	// OTPSecret is the base32 TOTP secret guarding write endpoints. Writes are
	// refused when it is empty
	OTPSecret string `json:"otpSecret,omitempty"`
}
