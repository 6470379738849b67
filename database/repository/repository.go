package repository

import (
	"github.com/emoji-connoisseur/connoisseur/database"
)

// GetSQLDialect returns current SQL Dialect based on enabled driver
func GetSQLDialect() string {
	cfg := database.DB.GetConfig()
	if cfg == nil {
		return database.DBInvalidDriver
	}
	switch cfg.Driver {
	case "sqlite", "sqlite3":
		return database.DBSQLite3
	case "psql", "postgres", "postgresql":
		return database.DBPostgreSQL
	}
	return database.DBInvalidDriver
}
