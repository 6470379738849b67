package testhelpers

import (
	"os"
	"testing"

	"github.com/emoji-connoisseur/connoisseur/database"
	"github.com/emoji-connoisseur/connoisseur/database/drivers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	MigrationDir = "../migrations"
	os.Exit(m.Run())
}

func TestDatabaseConnect(t *testing.T) {
	TempDir = t.TempDir()
	testCases := []struct {
		name   string
		config *database.Config
		err    error
	}{
		{
			name: "SQLite",
			config: &database.Config{
				Driver:            database.DBSQLite3,
				ConnectionDetails: drivers.ConnectionDetails{Database: "testdb.db"},
			},
		},
		{
			name: "SQliteNoDatabase",
			config: &database.Config{
				Driver:            database.DBSQLite3,
				ConnectionDetails: drivers.ConnectionDetails{Host: "localhost"},
			},
			err: database.ErrNoDatabaseProvided,
		},
		{
			name:   "Postgres",
			config: GetConnectionDetails(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if !CheckValidConfig(&tc.config.ConnectionDetails) {
				t.Skip("database not configured skipping test")
			}
			dbConn, err := ConnectToDatabase(tc.config)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.True(t, dbConn.IsConnected())
			var count int
			require.NoError(t, dbConn.SQL.QueryRow("SELECT COUNT(*) FROM emote").Scan(&count), "emote migration must be applied")
			assert.Zero(t, count)
			require.NoError(t, ResetDatabase(dbConn))
			require.NoError(t, dbConn.SQL.QueryRow("SELECT COUNT(*) FROM emote").Scan(&count), "emote migration must be reapplied")
			assert.NoError(t, CloseDatabase(dbConn))
		})
	}
}

func TestCheckValidConfig(t *testing.T) {
	t.Parallel()
	assert.False(t, CheckValidConfig(nil))
	assert.False(t, CheckValidConfig(&drivers.ConnectionDetails{}))
	assert.True(t, CheckValidConfig(&drivers.ConnectionDetails{Database: "x.db"}))
}
