package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emoji-connoisseur/connoisseur/communications/base"
	"github.com/emoji-connoisseur/connoisseur/database"
	"github.com/emoji-connoisseur/connoisseur/emotelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errKeyProvider = errors.New("no key for you")

const legacyConfig = `{
	"name": "legacy bot",
	"logs": {"emotes": {"channel": 407904336291151872, "settings": {"add": true, "force_remove": true}}},
	"cache": {"capacity": 16}
}`

func TestDefault(t *testing.T) {
	t.Parallel()
	c := Default()
	assert.Equal(t, defaultName, c.Name)
	assert.Equal(t, uint16(1), c.Version)
	assert.Equal(t, defaultCacheCapacity, c.Cache.Capacity)
	assert.Equal(t, defaultLocale, c.I18n.Locale)
	assert.Equal(t, defaultLocaleDir, c.I18n.Directory)
	assert.Equal(t, database.DBSQLite3, c.Database.Driver)
	assert.Equal(t, database.DefaultSQLiteDatabase, c.Database.Database)
	assert.Equal(t, emotelog.Settings{}, c.EmoteLog.Settings, "emote log actions default to off")
	assert.Equal(t, defaultAPIListenAddress, c.APIServer.ListenAddress)
	assert.Equal(t, defaultAPIMaxConnections, c.APIServer.MaxConnections)
	assert.Equal(t, defaultWebhookRequests, c.Communications.WebhookConfig.RequestsPerInterval)
	assert.Equal(t, defaultFeedMaxClients, c.Communications.FeedConfig.MaxClients)
	require.NotNil(t, c.Logging.Enabled)
	assert.True(t, *c.Logging.Enabled)
}

func TestReadConfigUpgradesLegacyLayout(t *testing.T) {
	t.Parallel()
	c, wasEncrypted, err := ReadConfig(strings.NewReader(legacyConfig), nil)
	require.NoError(t, err)
	assert.False(t, wasEncrypted)
	assert.Equal(t, uint16(1), c.Version)
	assert.Equal(t, "legacy bot", c.Name)
	assert.Equal(t, uint64(16), c.Cache.Capacity)
	assert.Equal(t, "407904336291151872", c.EmoteLog.Channel)
	assert.Equal(t, emotelog.Settings{Add: true, ForceRemove: true}, c.EmoteLog.Settings)
}

func TestReadConfigErrors(t *testing.T) {
	t.Parallel()
	_, _, err := ReadConfig(strings.NewReader(`{"version":"one"}`), nil)
	assert.Error(t, err)

	_, _, err = ReadConfig(strings.NewReader(`{"cache":{"capacity":-1}}`), nil)
	assert.Error(t, err, "negative capacity must not decode")
}

func TestReadEncryptedConfig(t *testing.T) {
	t.Parallel()
	encrypted, err := EncryptConfigFile([]byte(`{"version":1,"name":"secret bot"}`), []byte("key"))
	require.NoError(t, err)

	c, wasEncrypted, err := ReadConfig(bytes.NewReader(encrypted), func() ([]byte, error) { return []byte("key"), nil })
	require.NoError(t, err)
	assert.True(t, wasEncrypted)
	assert.Equal(t, "secret bot", c.Name)
	assert.NotEmpty(t, c.sessionDK, "session key must be kept for saving")

	var attempts int
	_, _, err = ReadConfig(bytes.NewReader(encrypted), func() ([]byte, error) {
		attempts++
		if attempts == 1 {
			return nil, errKeyProvider
		}
		return []byte("wrong"), nil
	})
	assert.ErrorIs(t, err, errDecryptFailed)
	assert.Equal(t, maxAuthFailures, attempts)
}

func TestSaveAndRead(t *testing.T) {
	t.Parallel()
	c := Default()
	c.Name = "saved"
	c.EncryptConfig = fileEncryptionDisabled

	var buf bytes.Buffer
	require.NoError(t, c.Save(func() (io.Writer, error) { return &buf, nil }, nil))
	assert.False(t, IsEncrypted(buf.Bytes()))

	loaded, _, err := ReadConfig(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, "saved", loaded.Name)
	assert.Equal(t, c.APIServer, loaded.APIServer)
}

func TestSaveEncrypted(t *testing.T) {
	t.Parallel()
	c := Default()
	c.EncryptConfig = fileEncryptionEnabled

	err := c.Save(func() (io.Writer, error) { return io.Discard, nil }, func() ([]byte, error) { return nil, errKeyProvider })
	require.ErrorIs(t, err, errKeyProvider)

	var buf bytes.Buffer
	require.NoError(t, c.Save(func() (io.Writer, error) { return &buf, nil }, func() ([]byte, error) { return []byte("key"), nil }))
	assert.True(t, IsEncrypted(buf.Bytes()))

	loaded, wasEncrypted, err := ReadConfig(&buf, func() ([]byte, error) { return []byte("key"), nil })
	require.NoError(t, err)
	assert.True(t, wasEncrypted)
	assert.Equal(t, c.Name, loaded.Name)
}

func TestLoadAndSaveConfigFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, File)
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,"name":"file bot","encryptConfig":-1,"dataDirectory":`+jsonString(dir)+`}`), 0o600))

	c := &Config{}
	require.NoError(t, c.LoadConfig(path, true))
	assert.Equal(t, "file bot", c.Name)
	assert.Equal(t, defaultCacheCapacity, c.Cache.Capacity)
	assert.DirExists(t, filepath.Join(dir, "logs"))

	c.Cache.Capacity = 42
	require.NoError(t, c.SaveConfigToFile(path))
	reloaded := &Config{}
	require.NoError(t, reloaded.ReadConfigFromFile(path, true))
	assert.Equal(t, uint64(42), reloaded.Cache.Capacity)

	err := c.LoadConfig(filepath.Join(dir, "missing.json"), true)
	assert.Error(t, err)
}

func TestCheckCommunicationsConfig(t *testing.T) {
	t.Parallel()
	c := &Config{Communications: base.CommunicationsConfig{
		WebhookConfig: base.WebhookConfig{Enabled: true},
		FeedConfig:    base.FeedConfig{Enabled: true, MaxClients: 4},
	}}
	c.CheckCommunicationsConfig()
	assert.False(t, c.Communications.WebhookConfig.Enabled, "webhook without URL must be disabled")
	assert.Equal(t, defaultWebhookName, c.Communications.WebhookConfig.Name)
	assert.Equal(t, defaultWebhookInterval, c.Communications.WebhookConfig.Interval)
	assert.Equal(t, 4, c.Communications.FeedConfig.MaxClients)
	assert.Equal(t, defaultFeedName, c.Communications.FeedConfig.Name)
	assert.Equal(t, c.Communications, c.GetCommunicationsConfig())

	c.UpdateCommunicationsConfig(&base.CommunicationsConfig{FeedConfig: base.FeedConfig{Name: "x"}})
	assert.Equal(t, "x", c.GetCommunicationsConfig().FeedConfig.Name)
}

func TestCheckI18nConfig(t *testing.T) {
	t.Parallel()
	c := &Config{I18n: I18nConfig{Locale: "de_DE"}}
	require.NoError(t, c.CheckI18nConfig())
	assert.Equal(t, "de_DE", c.I18n.Locale)
	assert.Equal(t, defaultLocaleDir, c.I18n.Directory)

	c.I18n.Locale = "not a locale!"
	assert.ErrorIs(t, c.CheckI18nConfig(), errInvalidLocale)
	assert.Equal(t, defaultLocale, c.I18n.Locale)
}

func TestCheckAPIServerConfig(t *testing.T) {
	t.Parallel()
	c := &Config{APIServer: APIServerConfig{ListenAddress: "no port", MaxConnections: -1}}
	c.CheckAPIServerConfig()
	assert.Equal(t, defaultAPIListenAddress, c.APIServer.ListenAddress)
	assert.Equal(t, defaultAPIMaxConnections, c.APIServer.MaxConnections)
	assert.Equal(t, defaultAPIReadTimeout, c.APIServer.ReadTimeout)

	c.APIServer.ListenAddress = ":8080"
	c.CheckAPIServerConfig()
	assert.Equal(t, ":8080", c.APIServer.ListenAddress)
}

func TestCheckDatabaseConfig(t *testing.T) {
	t.Parallel()
	c := &Config{DataDirectory: t.TempDir()}
	require.NoError(t, c.checkDatabaseConfig())
	assert.Equal(t, database.DBSQLite3, c.Database.Driver)
	assert.False(t, c.Database.Enabled)

	c.Database.Enabled = true
	c.Database.Driver = "mongo"
	assert.ErrorIs(t, c.checkDatabaseConfig(), errUnsupportedDriver)
	assert.False(t, c.Database.Enabled)
}

func TestGetFilePath(t *testing.T) {
	t.Parallel()
	p, isDefault, err := GetFilePath("custom.json")
	require.NoError(t, err)
	assert.Equal(t, "custom.json", p)
	assert.False(t, isDefault)
	assert.NotEmpty(t, DefaultFilePath())
}

func TestGetDataPath(t *testing.T) {
	t.Parallel()
	c := &Config{DataDirectory: "/data"}
	assert.Equal(t, filepath.Join("/data", "logs"), c.GetDataPath("logs"))
	c.DataDirectory = ""
	assert.Contains(t, c.GetDataPath("logs"), "onnoisseur")
}

func jsonString(s string) string {
	return `"` + strings.ReplaceAll(s, `\`, `\\`) + `"`
}
