package communications

import (
	"errors"
	"net/http"

	"github.com/emoji-connoisseur/connoisseur/communications/base"
	"github.com/emoji-connoisseur/connoisseur/communications/feed"
	"github.com/emoji-connoisseur/connoisseur/communications/webhook"
)

var errNoRelayersEnabled = errors.New("no communication relayers enabled")

// Communications is the overarching type across the communications packages
type Communications struct {
	base.IComm
	feed *feed.Feed
}

// NewComm sets up and returns a pointer to a Communications object
func NewComm(cfg *base.CommunicationsConfig) (*Communications, error) {
	if !cfg.IsAnyEnabled() {
		return nil, errNoRelayersEnabled
	}

	var comm Communications
	if cfg.WebhookConfig.Enabled {
		Webhook := new(webhook.Webhook)
		Webhook.Setup(cfg)
		comm.IComm = append(comm.IComm, Webhook)
	}

	if cfg.FeedConfig.Enabled {
		Feed := new(feed.Feed)
		Feed.Setup(cfg)
		comm.IComm = append(comm.IComm, Feed)
		comm.feed = Feed
	}

	comm.Setup()
	return &comm, nil
}

// FeedHandler returns the websocket event feed handler, or nil when the feed
// is disabled
func (c *Communications) FeedHandler() http.Handler {
	if c == nil || c.feed == nil {
		return nil
	}
	return c.feed
}

// Shutdown closes relayers holding open connections
func (c *Communications) Shutdown() {
	if c != nil && c.feed != nil {
		c.feed.Shutdown()
	}
}
