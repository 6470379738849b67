package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/emoji-connoisseur/connoisseur/common"
	"github.com/emoji-connoisseur/connoisseur/common/convert"
	"github.com/emoji-connoisseur/connoisseur/common/file"
	"github.com/emoji-connoisseur/connoisseur/communications/base"
	"github.com/emoji-connoisseur/connoisseur/config/versions"
	"github.com/emoji-connoisseur/connoisseur/database"
	"github.com/emoji-connoisseur/connoisseur/i18n"
	"github.com/emoji-connoisseur/connoisseur/log"
)

// GetConfig returns a pointer to a configuration object
func GetConfig() *Config {
	return &Cfg
}

// Default returns a config with every default filled in. Unlike CheckConfig
// it does not touch the logger, the database or the filesystem
func Default() *Config {
	c := &Config{
		Name:    defaultName,
		Logging: log.GenDefaultSettings(),
		Database: database.Config{
			Driver: database.DBSQLite3,
		},
	}
	c.Database.Database = database.DefaultSQLiteDatabase
	if latest, err := versions.Manager.Latest(); err == nil {
		c.Version = latest
	}
	c.CheckCacheConfig()
	if err := c.CheckI18nConfig(); err != nil {
		log.Errorf(log.ConfigMgr, "Default locale invalid: %v", err)
	}
	c.CheckEmoteLogConfig()
	c.CheckCommunicationsConfig()
	c.CheckAPIServerConfig()
	return c
}

// GetCommunicationsConfig returns the communications configuration
func (c *Config) GetCommunicationsConfig() base.CommunicationsConfig {
	m.Lock()
	defer m.Unlock()
	return c.Communications
}

// UpdateCommunicationsConfig sets a new updated version of a Communications
// configuration
func (c *Config) UpdateCommunicationsConfig(cfg *base.CommunicationsConfig) {
	m.Lock()
	c.Communications = *cfg
	m.Unlock()
}

// CheckCommunicationsConfig checks to see if the variables are set correctly
// from config.json
func (c *Config) CheckCommunicationsConfig() {
	m.Lock()
	defer m.Unlock()

	w := &c.Communications.WebhookConfig
	if w.Name == "" {
		w.Name = defaultWebhookName
	}
	if w.RequestsPerInterval <= 0 {
		w.RequestsPerInterval = defaultWebhookRequests
	}
	if w.Interval <= 0 {
		w.Interval = defaultWebhookInterval
	}
	if w.Enabled && w.URL == "" {
		log.Warnf(log.ConfigMgr, "%s %v, disabling", w.Name, errWebhookURLNotSet)
		w.Enabled = false
	}

	f := &c.Communications.FeedConfig
	if f.Name == "" {
		f.Name = defaultFeedName
	}
	if f.MaxClients <= 0 {
		f.MaxClients = defaultFeedMaxClients
	}
}

// CheckCacheConfig sets the emote cache capacity when it is unset
func (c *Config) CheckCacheConfig() {
	m.Lock()
	defer m.Unlock()
	if c.Cache.Capacity == 0 {
		c.Cache.Capacity = defaultCacheCapacity
	}
}

// CheckI18nConfig validates the default locale, falling back to en_US
func (c *Config) CheckI18nConfig() error {
	m.Lock()
	defer m.Unlock()
	if c.I18n.Directory == "" {
		c.I18n.Directory = defaultLocaleDir
	}
	if c.I18n.Locale == "" {
		c.I18n.Locale = defaultLocale
		return nil
	}
	if _, err := i18n.ParseLocale(c.I18n.Locale); err != nil {
		bad := c.I18n.Locale
		c.I18n.Locale = defaultLocale
		return fmt.Errorf("%w %q, defaulting to %s: %w", errInvalidLocale, bad, defaultLocale, err)
	}
	return nil
}

// CheckEmoteLogConfig warns when actions are logged without a channel to log
// them to
func (c *Config) CheckEmoteLogConfig() {
	m.Lock()
	defer m.Unlock()
	s := c.EmoteLog.Settings
	if c.EmoteLog.Channel == "" && (s.Add || s.Remove || s.ForceRemove || s.Decay) {
		log.Warnln(log.ConfigMgr, "Emote log settings are enabled but no channel is set, emote actions will not be logged")
	}
}

// CheckAPIServerConfig fills in the API server defaults
func (c *Config) CheckAPIServerConfig() {
	m.Lock()
	defer m.Unlock()
	a := &c.APIServer
	if a.ListenAddress == "" {
		a.ListenAddress = defaultAPIListenAddress
	} else if _, _, err := net.SplitHostPort(a.ListenAddress); err != nil {
		log.Warnf(log.ConfigMgr, "API server %v %q, defaulting to %s", errInvalidListenAddress, a.ListenAddress, defaultAPIListenAddress)
		a.ListenAddress = defaultAPIListenAddress
	}
	if a.MaxConnections <= 0 {
		a.MaxConnections = defaultAPIMaxConnections
	}
	if a.ReadTimeout <= 0 {
		a.ReadTimeout = defaultAPIReadTimeout
	}
	if a.Enabled && a.OTPSecret == "" {
		log.Warnln(log.ConfigMgr, "API server OTP secret not set, write endpoints are disabled")
	}
}

// CheckLoggerConfig checks to see logger values are present and sets the
// global logger config
func (c *Config) CheckLoggerConfig() error {
	m.Lock()
	defer m.Unlock()

	if c.Logging.Enabled == nil || c.Logging.Output == "" {
		c.Logging = log.GenDefaultSettings()
	}

	if c.Logging.AdvancedSettings.ShowLogSystemName == nil {
		c.Logging.AdvancedSettings.ShowLogSystemName = convert.BoolPtr(false)
	}

	if c.Logging.LoggerFileConfig != nil {
		if c.Logging.LoggerFileConfig.FileName == "" {
			c.Logging.LoggerFileConfig.FileName = "log.txt"
		}
		if c.Logging.LoggerFileConfig.Rotate == nil {
			c.Logging.LoggerFileConfig.Rotate = convert.BoolPtr(false)
		}
		if c.Logging.LoggerFileConfig.MaxSize <= 0 {
			log.Warnf(log.ConfigMgr, "Logger rotation size invalid, defaulting to %v", log.DefaultMaxFileSize)
			c.Logging.LoggerFileConfig.MaxSize = log.DefaultMaxFileSize
		}
		log.SetFileLoggingState(true)
	}
	if err := log.SetGlobalLogConfig(&c.Logging); err != nil {
		return err
	}

	logPath := c.GetDataPath("logs")
	if err := common.CreateDir(logPath); err != nil {
		return err
	}
	log.SetLogPath(logPath)
	return nil
}

func (c *Config) checkDatabaseConfig() error {
	m.Lock()
	defer m.Unlock()

	if (c.Database == database.Config{}) {
		c.Database.Driver = database.DBSQLite3
		c.Database.Database = database.DefaultSQLiteDatabase
	}

	if !c.Database.Enabled {
		return nil
	}

	if !slices.Contains(database.SupportedDrivers, c.Database.Driver) {
		c.Database.Enabled = false
		return fmt.Errorf("%w %v, database disabled", errUnsupportedDriver, c.Database.Driver)
	}

	if c.Database.Driver == database.DBSQLite || c.Database.Driver == database.DBSQLite3 {
		databaseDir := c.GetDataPath("database")
		if err := common.CreateDir(databaseDir); err != nil {
			return err
		}
		database.DB.DataPath = databaseDir
	}

	return database.DB.SetConfig(&c.Database)
}

// DefaultFilePath returns the default config file path
// MacOS/Linux: $HOME/.connoisseur/config.json or config.dat
// Windows: %APPDATA%\Connoisseur\config.json or config.dat
// Helpful for printing application usage
func DefaultFilePath() string {
	foundConfig, _, err := GetFilePath("")
	if err != nil {
		// If there was no config file, show default location for .json
		return filepath.Join(common.GetDefaultDataDir(runtime.GOOS), File)
	}
	return foundConfig
}

// GetFilePath returns the desired config file or the default config file name
// and whether it was loaded from a default location (rather than explicitly specified)
func GetFilePath(configFile string) (configPath string, isImplicitDefaultPath bool, err error) {
	if configFile != "" {
		return configFile, false, nil
	}

	dataDir := common.GetDefaultDataDir(runtime.GOOS)
	var defaultPaths []string
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		defaultPaths = append(defaultPaths, filepath.Join(exeDir, File), filepath.Join(exeDir, EncryptedFile))
	}
	defaultPaths = append(defaultPaths, filepath.Join(dataDir, File), filepath.Join(dataDir, EncryptedFile))

	for _, p := range defaultPaths {
		if file.Exists(p) {
			return p, true, nil
		}
	}
	return "", false, fmt.Errorf("%w in %s, run `connoisseur config > %s` to generate one", errConfigFileNotFound, dataDir, filepath.Join(dataDir, File))
}

// ReadConfigFromFile reads the configuration from the given file
// if target file is encrypted, prompts for encryption key
// Also - if not in dryrun mode - it checks if the configuration needs to be encrypted
// and stores the file as encrypted, if necessary (prompting for encryption key)
func (c *Config) ReadConfigFromFile(configPath string, dryrun bool) error {
	defaultPath, _, err := GetFilePath(configPath)
	if err != nil {
		return err
	}
	confFile, err := os.Open(defaultPath)
	if err != nil {
		return err
	}
	defer confFile.Close()
	result, wasEncrypted, err := ReadConfig(confFile, func() ([]byte, error) { return PromptForConfigKey(false) })
	if err != nil {
		return fmt.Errorf("error reading config %w", err)
	}
	// Override values in the current config
	m.Lock()
	*c = *result
	m.Unlock()

	if dryrun || wasEncrypted || c.EncryptConfig == fileEncryptionDisabled {
		return nil
	}

	if c.EncryptConfig == fileEncryptionPrompt {
		confirm, err := promptForConfigEncryption()
		if err != nil {
			log.Errorf(log.ConfigMgr, "The encryption prompt failed, ignoring for now, next time we will prompt again. Error: %s\n", err)
			return nil
		}
		if confirm {
			c.EncryptConfig = fileEncryptionEnabled
			return c.SaveConfigToFile(defaultPath)
		}

		c.EncryptConfig = fileEncryptionDisabled
		if err := c.SaveConfigToFile(defaultPath); err != nil {
			log.Errorf(log.ConfigMgr, "Cannot save config. Error: %s\n", err)
		}
	}
	return nil
}

// ReadConfig verifies and checks for encryption and loads the config from a JSON object.
// Prompts for decryption key, if target data is encrypted.
// The config is upgraded to the latest version before decoding.
// Returns the loaded configuration and whether it was encrypted.
func ReadConfig(configReader io.Reader, keyProvider func() ([]byte, error)) (*Config, bool, error) {
	j, err := io.ReadAll(configReader)
	if err != nil {
		return nil, false, err
	}

	c := &Config{}
	wasEncrypted := IsEncrypted(j)
	if wasEncrypted {
		if j, err = c.decryptWithKeyProvider(j, keyProvider); err != nil {
			return nil, true, err
		}
	}

	if j, err = versions.Manager.Deploy(context.Background(), j, versions.UseLatestVersion); err != nil {
		return nil, wasEncrypted, err
	}

	if err := json.Unmarshal(j, c); err != nil {
		return nil, wasEncrypted, err
	}
	return c, wasEncrypted, nil
}

// decryptWithKeyProvider asks the key provider for a key until the data
// decrypts or maxAuthFailures is reached
func (c *Config) decryptWithKeyProvider(data []byte, keyProvider func() ([]byte, error)) ([]byte, error) {
	for range maxAuthFailures {
		key, err := keyProvider()
		if err != nil {
			log.Errorf(log.ConfigMgr, "PromptForConfigKey err: %s", err)
			continue
		}
		plain, err := c.decryptConfigData(bytes.NewReader(data), key)
		if err != nil {
			log.Errorln(log.ConfigMgr, "Could not decrypt and deserialise data with given key. Invalid password?", err)
			continue
		}
		return plain, nil
	}
	return nil, errDecryptFailed
}

// SaveConfigToFile saves your configuration to your desired path as a JSON object.
// The function encrypts the data and prompts for encryption key, if necessary
func (c *Config) SaveConfigToFile(configPath string) error {
	defaultPath, _, err := GetFilePath(configPath)
	if err != nil {
		return err
	}
	var writer *os.File
	provider := func() (io.Writer, error) {
		writer, err = file.Writer(defaultPath)
		return writer, err
	}
	defer func() {
		if writer != nil {
			if err := writer.Close(); err != nil {
				log.Errorln(log.ConfigMgr, err)
			}
		}
	}()
	return c.Save(provider, func() ([]byte, error) { return PromptForConfigKey(true) })
}

// Save saves your configuration to the writer as a JSON object
// with encryption, if configured
// If there is an error when preparing the data to store, the writer is never requested
func (c *Config) Save(writerProvider func() (io.Writer, error), keyProvider func() ([]byte, error)) error {
	payload, err := json.MarshalIndent(c, "", " ")
	if err != nil {
		return err
	}

	if c.EncryptConfig == fileEncryptionEnabled {
		// Ensure we have the key from session or from user
		if len(c.sessionDK) == 0 {
			var key []byte
			key, err = keyProvider()
			if err != nil {
				return err
			}
			var sessionDK, storedSalt []byte
			sessionDK, storedSalt, err = makeNewSessionDK(key)
			if err != nil {
				return err
			}
			c.sessionDK, c.storedSalt = sessionDK, storedSalt
		}
		payload, err = c.encryptConfigFile(payload)
		if err != nil {
			return err
		}
	}
	configWriter, err := writerProvider()
	if err != nil {
		return err
	}
	_, err = io.Copy(configWriter, bytes.NewReader(payload))
	return err
}

// CheckConfig checks all config settings
func (c *Config) CheckConfig() error {
	if err := c.CheckLoggerConfig(); err != nil {
		log.Errorf(log.ConfigMgr,
			"Failed to configure logger, some logging features unavailable: %s\n",
			err)
	}

	if err := c.checkDatabaseConfig(); err != nil {
		log.Errorf(log.DatabaseMgr,
			"Failed to configure database: %v",
			err)
	}

	if c.Name == "" {
		c.Name = defaultName
	}

	if err := c.CheckI18nConfig(); err != nil {
		log.Warnln(log.ConfigMgr, err)
	}

	c.CheckCacheConfig()
	c.CheckEmoteLogConfig()
	c.CheckCommunicationsConfig()
	c.CheckAPIServerConfig()
	return nil
}

// LoadConfig loads your configuration file into your configuration object
func (c *Config) LoadConfig(configPath string, dryrun bool) error {
	if err := c.ReadConfigFromFile(configPath, dryrun); err != nil {
		return fmt.Errorf(ErrFailureOpeningConfig, configPath, err)
	}
	if err := c.CheckConfig(); err != nil {
		return fmt.Errorf(ErrCheckingConfigValues, err)
	}
	return nil
}

// GetDataPath gets the data path for the given subpath
func (c *Config) GetDataPath(elem ...string) string {
	var baseDir string
	if c.DataDirectory != "" {
		baseDir = c.DataDirectory
	} else {
		baseDir = common.GetDefaultDataDir(runtime.GOOS)
	}
	return filepath.Join(append([]string{baseDir}, elem...)...)
}

// IsDefaultPathError reports whether err came from a missing default config
func IsDefaultPathError(err error) bool {
	return errors.Is(err, errConfigFileNotFound)
}
