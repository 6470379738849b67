package communicationmanager

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/emoji-connoisseur/connoisseur/communications"
	"github.com/emoji-connoisseur/connoisseur/communications/base"
	"github.com/emoji-connoisseur/connoisseur/log"
	"github.com/emoji-connoisseur/connoisseur/subsystems"
)

// Name is an exported subsystem name
const Name = "communications"

const relayBuffer = 64

// Manager ensures operations of communications
type Manager struct {
	started  int32
	shutdown chan struct{}
	done     chan struct{}
	relayMsg chan base.Event
	comms    *communications.Communications
}

var (
	errNilConfig   = errors.New("received nil communications config")
	errRelayIsFull = errors.New("communications relay is full")
)

// Setup creates a communications manager
func Setup(cfg *base.CommunicationsConfig) (*Manager, error) {
	if cfg == nil {
		return nil, errNilConfig
	}
	manager := &Manager{
		shutdown: make(chan struct{}),
		relayMsg: make(chan base.Event, relayBuffer),
	}
	var err error
	manager.comms, err = communications.NewComm(cfg)
	if err != nil {
		return nil, err
	}
	return manager, nil
}

// IsRunning safely checks whether the subsystem is running
func (m *Manager) IsRunning() bool {
	if m == nil {
		return false
	}
	return atomic.LoadInt32(&m.started) == 1
}

// Start runs the subsystem
func (m *Manager) Start() error {
	if m == nil {
		return fmt.Errorf("communications manager server %w", subsystems.ErrNilSubsystem)
	}
	if !atomic.CompareAndSwapInt32(&m.started, 0, 1) {
		return fmt.Errorf("communications manager %w", subsystems.ErrSubSystemAlreadyStarted)
	}
	log.Debugf(log.CommunicationMgr, "Communications manager %s", subsystems.MsgSubSystemStarting)
	m.shutdown = make(chan struct{})
	m.done = make(chan struct{})
	go m.run()
	return nil
}

// GetStatus returns the status of communications
func (m *Manager) GetStatus() (map[string]base.CommsStatus, error) {
	if !m.IsRunning() {
		return nil, fmt.Errorf("communications manager %w", subsystems.ErrSubSystemNotStarted)
	}
	return m.comms.GetStatus(), nil
}

// FeedHandler returns the websocket event feed, nil when disabled
func (m *Manager) FeedHandler() http.Handler {
	if m == nil {
		return nil
	}
	return m.comms.FeedHandler()
}

// Stop attempts to shutdown the subsystem. Queued events are relayed before
// it returns
func (m *Manager) Stop() error {
	if m == nil {
		return fmt.Errorf("communications manager server %w", subsystems.ErrNilSubsystem)
	}
	if !atomic.CompareAndSwapInt32(&m.started, 1, 0) {
		return fmt.Errorf("communications manager %w", subsystems.ErrSubSystemNotStarted)
	}
	close(m.shutdown)
	<-m.done
	m.comms.Shutdown()
	log.Debugf(log.CommunicationMgr, "Communications manager %s", subsystems.MsgSubSystemShuttingDown)
	return nil
}

// PushEvent pushes an event to the communications relay
func (m *Manager) PushEvent(evt base.Event) error {
	if !m.IsRunning() {
		return fmt.Errorf("communications manager %w", subsystems.ErrSubSystemNotStarted)
	}
	select {
	case m.relayMsg <- evt:
		return nil
	default:
		log.Errorf(log.CommunicationMgr, "Failed to send, no receiver when pushing event [%v]", evt.Type)
		return errRelayIsFull
	}
}

// run takes awaiting messages and pushes them to be handled by communications
func (m *Manager) run() {
	log.Debugf(log.CommunicationMgr, "Communications manager %s", subsystems.MsgSubSystemStarted)
	defer func() {
		close(m.done)
		log.Debugf(log.CommunicationMgr, "Communications manager %s", subsystems.MsgSubSystemShutdown)
	}()

	for {
		select {
		case msg := <-m.relayMsg:
			m.comms.PushEvent(msg)
		case <-m.shutdown:
			for {
				select {
				case msg := <-m.relayMsg:
					m.comms.PushEvent(msg)
				default:
					return
				}
			}
		}
	}
}
