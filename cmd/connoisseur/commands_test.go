package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/emoji-connoisseur/connoisseur/common/convert"
	"github.com/emoji-connoisseur/connoisseur/config"
	"github.com/emoji-connoisseur/connoisseur/database"
	"github.com/emoji-connoisseur/connoisseur/database/drivers"
	"github.com/emoji-connoisseur/connoisseur/database/repository/emote"
	"github.com/emoji-connoisseur/connoisseur/database/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"connoisseur"}, args...))
	return out.String(), err
}

func TestExpand(t *testing.T) {
	out, err := run(t, "expand", "foo{bar,baz}", "plain", "{foo,bar,baz}")
	require.NoError(t, err)
	assert.Equal(t, "foobar\nfoobaz\nplain\nfoo,bar\nbaz\n", out)
}

func TestPrintDefaultConfig(t *testing.T) {
	out, err := run(t, "config")
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "Emoji Connoisseur", cfg.Name)
	assert.Equal(t, uint64(128), cfg.Cache.Capacity)
	assert.Equal(t, "en_US", cfg.I18n.Locale)
	assert.NotZero(t, cfg.Version)
}

func TestTranslate(t *testing.T) {
	localeDir := filepath.Join("..", "..", "locale")
	out, err := run(t, "translate", "--locale", "de_DE", "--dir", localeDir, "Remove")
	require.NoError(t, err)
	assert.Equal(t, "Entfernt\n", out)

	out, err = run(t, "translate", "--locale", "fr_FR", "--dir", localeDir, "Emote %s not found.", "blobfire")
	require.NoError(t, err)
	assert.Equal(t, "Emote blobfire introuvable.\n", out)

	_, err = run(t, "translate", "--locale", "not a locale", "--dir", localeDir, "Remove")
	assert.Error(t, err)
}

func TestOTP(t *testing.T) {
	out, err := run(t, "otp", "generate", "--account", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Secret: ")
	assert.Contains(t, out, "otpauth://totp/")

	out, err = run(t, "otp", "code", "--secret", "JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}\n$`), out)

	missing := filepath.Join(t.TempDir(), "config.json")
	_, err = run(t, "--config", missing, "otp", "code")
	assert.Error(t, err)
}

func TestLookupAndList(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "emotes.db")
	dbCfg := database.Config{
		Enabled:           true,
		Driver:            database.DBSQLite3,
		ConnectionDetails: drivers.ConnectionDetails{Database: dbPath},
	}

	testhelpers.MigrationDir = filepath.Join("..", "..", "database", "migrations")
	conn, err := testhelpers.ConnectToDatabase(&dbCfg)
	require.NoError(t, err)
	require.NoError(t, emote.Insert(t.Context(), emote.Details{ID: 478355211236048896, Name: "blobfire", AuthorID: 140516693242937345}))
	require.NoError(t, emote.Insert(t.Context(), emote.Details{ID: 478355211236048897, Name: "Think", AuthorID: 140516693242937345, Animated: true}))
	require.NoError(t, testhelpers.CloseDatabase(conn))

	cfg := config.Default()
	cfg.DataDirectory = dir
	cfg.EncryptConfig = -1
	cfg.Logging.Enabled = convert.BoolPtr(false)
	cfg.Database = dbCfg
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, cfg.SaveConfigToFile(cfgPath))

	out, err := run(t, "--config", cfgPath, "lookup", "THINK")
	require.NoError(t, err)
	var resp struct {
		Name   string `json:"name"`
		Markup string `json:"markup"`
		URL    string `json:"url"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "Think", resp.Name)
	assert.Equal(t, "<a:Think:478355211236048897>", resp.Markup)
	assert.Equal(t, "https://cdn.discordapp.com/emojis/478355211236048897.gif", resp.URL)

	out, err = run(t, "--config", cfgPath, "lookup", "nope")
	require.NoError(t, err)
	assert.Equal(t, "Emote nope not found.\n", out)

	out, err = run(t, "--config", cfgPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "There are 2 emotes.\n")
	assert.Contains(t, out, "│ blobfire │")
	assert.Contains(t, out, "│ Think    │")
}
