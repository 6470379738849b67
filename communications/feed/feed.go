// Package feed broadcasts events to websocket subscribers
package feed

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/emoji-connoisseur/connoisseur/communications/base"
	"github.com/emoji-connoisseur/connoisseur/log"
	"github.com/gorilla/websocket"
)

const (
	defaultMaxClients = 32
	writeWait         = 10 * time.Second
)

var (
	errTooManyClients = errors.New("too many feed clients")
	errNotConnected   = errors.New("feed is not accepting clients")
)

// Feed relays events to every connected websocket client
type Feed struct {
	base.Base
	MaxClients int

	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Setup takes in the feed configuration
func (f *Feed) Setup(cfg *base.CommunicationsConfig) {
	c := cfg.FeedConfig
	f.Name = c.Name
	if f.Name == "" {
		f.Name = "Feed"
	}
	f.Enabled = c.Enabled
	f.Verbose = c.Verbose
	f.MaxClients = c.MaxClients
	if f.MaxClients <= 0 {
		f.MaxClients = defaultMaxClients
	}
	f.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// Connect starts accepting websocket clients
func (f *Feed) Connect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clients == nil {
		f.clients = make(map[*client]struct{})
	}
	f.Connected = true
	return nil
}

// Clients returns the amount of connected subscribers
func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// PushEvent writes the event to every subscriber. Subscribers that fail to
// receive it are disconnected
func (f *Feed) PushEvent(e base.Event) error {
	f.mu.Lock()
	targets := make([]*client, 0, len(f.clients))
	for c := range f.clients {
		targets = append(targets, c)
	}
	f.mu.Unlock()

	var errs error
	for _, c := range targets {
		if err := c.write(e); err != nil {
			errs = errors.Join(errs, err)
			f.remove(c)
		}
	}
	return errs
}

// ServeHTTP upgrades the request to a websocket subscription
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := f.admit(); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf(log.CommunicationMgr, "%s: websocket upgrade failed: %v", f.Name, err)
		return
	}

	c := &client{conn: conn}
	if err := f.register(c); err != nil {
		code := websocket.CloseTryAgainLater
		if errors.Is(err, errNotConnected) {
			code = websocket.CloseGoingAway
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, err.Error()),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	if f.Verbose {
		log.Debugf(log.CommunicationMgr, "%s: client %s subscribed", f.Name, r.RemoteAddr)
	}

	// Subscribers only listen, reading drives control frames and notices
	// disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	f.remove(c)
}

func (f *Feed) admit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.Connected || f.clients == nil {
		return errNotConnected
	}
	if len(f.clients) >= f.MaxClients {
		return fmt.Errorf("%w: limit %d", errTooManyClients, f.MaxClients)
	}
	return nil
}

// register adds c to the subscribers. Shutdown may run while the connection
// is being upgraded so admission is checked again under the lock
func (f *Feed) register(c *client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.Connected || f.clients == nil {
		return errNotConnected
	}
	if len(f.clients) >= f.MaxClients {
		return fmt.Errorf("%w: limit %d", errTooManyClients, f.MaxClients)
	}
	f.clients[c] = struct{}{}
	return nil
}

func (f *Feed) remove(c *client) {
	f.mu.Lock()
	_, ok := f.clients[c]
	delete(f.clients, c)
	f.mu.Unlock()
	if ok {
		_ = c.conn.Close()
	}
}

// Shutdown disconnects every subscriber
func (f *Feed) Shutdown() {
	f.mu.Lock()
	targets := f.clients
	f.clients = nil
	f.Connected = false
	f.mu.Unlock()
	for c := range targets {
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		c.mu.Unlock()
		_ = c.conn.Close()
	}
}

func (c *client) write(e base.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(e)
}
