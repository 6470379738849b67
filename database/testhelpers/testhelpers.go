// Package testhelpers connects and migrates throwaway databases for
// repository tests
package testhelpers

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/emoji-connoisseur/connoisseur/database"
	"github.com/emoji-connoisseur/connoisseur/database/drivers"
	psqlConn "github.com/emoji-connoisseur/connoisseur/database/drivers/postgres"
	sqliteConn "github.com/emoji-connoisseur/connoisseur/database/drivers/sqlite3"
	"github.com/emoji-connoisseur/connoisseur/database/repository"
	"github.com/thrasher-corp/goose"
)

var (
	// TempDir temp folder for sqlite database
	TempDir string
	// PostgresTestDatabase postgresql database config details
	PostgresTestDatabase *database.Config
	// MigrationDir default folder for migration's
	MigrationDir = filepath.Join("..", "..", "migrations")
)

// GetConnectionDetails returns connection details for CI or test db instances
func GetConnectionDetails() *database.Config {
	port, _ := strconv.ParseUint(os.Getenv("PSQL_PORT"), 10, 16)
	return &database.Config{
		Enabled: true,
		Driver:  database.DBPostgreSQL,
		ConnectionDetails: drivers.ConnectionDetails{
			Host:     os.Getenv("PSQL_HOST"),
			Port:     uint16(port),
			Username: os.Getenv("PSQL_USER"),
			Password: os.Getenv("PSQL_PASS"),
			Database: os.Getenv("PSQL_DBNAME"),
			SSLMode:  os.Getenv("PSQL_SSLMODE"),
		},
	}
}

// ConnectToDatabase opens connection to database and runs the migrations
func ConnectToDatabase(conn *database.Config) (dbConn *database.Instance, err error) {
	if err = database.DB.SetConfig(conn); err != nil {
		return nil, err
	}
	switch conn.Driver {
	case database.DBPostgreSQL:
		dbConn, err = psqlConn.Connect(conn)
	case database.DBSQLite3, database.DBSQLite:
		database.DB.DataPath = TempDir
		dbConn, err = sqliteConn.Connect(conn.Database)
	default:
		return nil, database.ErrNoDatabaseProvided
	}
	if err != nil {
		return nil, err
	}

	if err = goose.Run("up", dbConn.SQL, repository.GetSQLDialect(), MigrationDir, ""); err != nil {
		return nil, err
	}
	dbConn.SetConnected(true)
	return dbConn, nil
}

// ResetDatabase rolls back and reapplies every migration
func ResetDatabase(dbConn *database.Instance) error {
	if err := goose.Run("reset", dbConn.SQL, repository.GetSQLDialect(), MigrationDir, ""); err != nil {
		return err
	}
	return goose.Run("up", dbConn.SQL, repository.GetSQLDialect(), MigrationDir, "")
}

// CloseDatabase closes database connection
func CloseDatabase(conn *database.Instance) (err error) {
	if conn != nil {
		return conn.CloseConnection()
	}
	return nil
}

// CheckValidConfig checks if database connection details are empty
func CheckValidConfig(config *drivers.ConnectionDetails) bool {
	return config != nil && *config != (drivers.ConnectionDetails{})
}
