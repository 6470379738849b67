package databaseconnection

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emoji-connoisseur/connoisseur/database"
	dbpsql "github.com/emoji-connoisseur/connoisseur/database/drivers/postgres"
	dbsqlite3 "github.com/emoji-connoisseur/connoisseur/database/drivers/sqlite3"
	"github.com/emoji-connoisseur/connoisseur/log"
	"github.com/emoji-connoisseur/connoisseur/subsystems"
)

// Name is an exported subsystem name
const Name = "database"

// DefaultCheckInterval is how often the connection is pinged
const DefaultCheckInterval = 2 * time.Second

var (
	errNilConfig        = errors.New("received nil database config")
	errDatabaseDisabled = errors.New("database support disabled")
)

// Manager holds the database connection and its status
type Manager struct {
	started       int32
	shutdown      chan struct{}
	enabled       bool
	verbose       bool
	host          string
	database      string
	driver        string
	checkInterval time.Duration
	cfg           *database.Config
	dbConn        *database.Instance
}

// IsRunning returns whether the database connection manager is running
func (m *Manager) IsRunning() bool {
	if m == nil {
		return false
	}
	return atomic.LoadInt32(&m.started) == 1
}

// Setup creates a new database connection manager
func Setup(cfg *database.Config) (*Manager, error) {
	if cfg == nil {
		return nil, errNilConfig
	}
	m := &Manager{
		shutdown:      make(chan struct{}),
		enabled:       cfg.Enabled,
		verbose:       cfg.Verbose,
		host:          cfg.Host,
		database:      cfg.Database,
		driver:        cfg.Driver,
		checkInterval: DefaultCheckInterval,
		cfg:           cfg,
	}
	if err := database.DB.SetConfig(cfg); err != nil {
		return nil, err
	}
	return m, nil
}

// Start sets up the database connection manager to maintain a SQL connection
func (m *Manager) Start(wg *sync.WaitGroup) (err error) {
	if m == nil {
		return subsystems.ErrNilSubsystem
	}
	if !atomic.CompareAndSwapInt32(&m.started, 0, 1) {
		return fmt.Errorf("database manager %w", subsystems.ErrSubSystemAlreadyStarted)
	}
	defer func() {
		if err != nil {
			atomic.CompareAndSwapInt32(&m.started, 1, 0)
		}
	}()

	log.Debugln(log.DatabaseMgr, "Database manager starting...")

	if !m.enabled {
		return errDatabaseDisabled
	}

	m.shutdown = make(chan struct{})
	switch m.driver {
	case database.DBPostgreSQL:
		log.Debugf(log.DatabaseMgr,
			"Attempting to establish database connection to host %s/%s utilising %s driver\n",
			m.host,
			m.database,
			m.driver)
		m.dbConn, err = dbpsql.Connect(m.cfg)
	case database.DBSQLite,
		database.DBSQLite3:
		log.Debugf(log.DatabaseMgr,
			"Attempting to establish database connection to %s utilising %s driver\n",
			m.database,
			m.driver)
		m.dbConn, err = dbsqlite3.Connect(m.database)
	default:
		return database.ErrNoDatabaseProvided
	}
	if err != nil {
		return fmt.Errorf("%w: %v Some features that utilise a database will be unavailable", database.ErrFailedToConnect, err)
	}
	m.dbConn.SetConnected(true)
	wg.Add(1)
	go m.run(wg)
	return nil
}

// Stop stops the database manager and closes the connection
func (m *Manager) Stop() error {
	if m == nil {
		return subsystems.ErrNilSubsystem
	}
	if atomic.LoadInt32(&m.started) == 0 {
		return fmt.Errorf("%s %w", Name, subsystems.ErrSubSystemNotStarted)
	}
	defer func() {
		atomic.CompareAndSwapInt32(&m.started, 1, 0)
	}()

	close(m.shutdown)
	err := m.dbConn.CloseConnection()
	if err != nil {
		log.Errorf(log.DatabaseMgr, "Failed to close database: %v", err)
	}
	return nil
}

func (m *Manager) run(wg *sync.WaitGroup) {
	log.Debugln(log.DatabaseMgr, "Database manager started.")
	t := time.NewTicker(m.checkInterval)

	defer func() {
		t.Stop()
		wg.Done()
		log.Debugln(log.DatabaseMgr, "Database manager shutdown.")
	}()

	for {
		select {
		case <-m.shutdown:
			return
		case <-t.C:
			if err := m.checkConnection(); err != nil {
				log.Errorln(log.DatabaseMgr, "Database connection error:", err)
			}
		}
	}
}

func (m *Manager) checkConnection() error {
	if m == nil {
		return subsystems.ErrNilSubsystem
	}
	if atomic.LoadInt32(&m.started) == 0 {
		return fmt.Errorf("%s %w", Name, subsystems.ErrSubSystemNotStarted)
	}
	if !m.enabled {
		return database.ErrDatabaseSupportDisabled
	}
	if m.dbConn == nil {
		return database.ErrNoDatabaseProvided
	}

	reestablished, err := m.dbConn.CheckConnection()
	if err != nil {
		return err
	}
	if reestablished {
		log.Infoln(log.DatabaseMgr, "Database connection reestablished")
	}
	return nil
}
