package base

import (
	"time"

	"github.com/gofrs/uuid"
)

// Event types pushed through the communication relayers
const (
	EventEmoteAdd         = "emote_add"
	EventEmoteRemove      = "emote_remove"
	EventEmoteForceRemove = "emote_force_remove"
	EventEmoteDecay       = "emote_decay"
)

// Base enforces standard variables across communication packages
type Base struct {
	Name           string
	Enabled        bool
	Verbose        bool
	Connected      bool
	ServiceStarted time.Time
}

// Event is a generalise event type
type Event struct {
	ID      uuid.UUID `json:"id"`
	Type    string    `json:"type"`
	Message string    `json:"message,omitempty"`
	Embed   *Embed    `json:"embed,omitempty"`
}

// Embed is a rich message rendered by the chat client
type Embed struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Colour      int       `json:"color"`
	Timestamp   time.Time `json:"timestamp"`
	Footer      string    `json:"footer,omitempty"`
}

// CommsStatus stores the status of a comms relayer
type CommsStatus struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// CommunicationsConfig holds all the information needed for each
// enabled communication package
type CommunicationsConfig struct {
	WebhookConfig WebhookConfig `json:"webhook"`
	FeedConfig    FeedConfig    `json:"feed"`
}

// WebhookConfig holds the chat webhook the emote log is posted to
type WebhookConfig struct {
	Name                string        `json:"name"`
	Enabled             bool          `json:"enabled"`
	Verbose             bool          `json:"verbose"`
	URL                 string        `json:"url"`
	Username            string        `json:"username,omitempty"`
	AvatarURL           string        `json:"avatarURL,omitempty"`
	SigningSecret       string        `json:"signingSecret,omitempty"`
	RequestsPerInterval int           `json:"requestsPerInterval"`
	Interval            time.Duration `json:"interval"`
}

// FeedConfig holds the websocket event feed settings
type FeedConfig struct {
	Name       string `json:"name"`
	Enabled    bool   `json:"enabled"`
	Verbose    bool   `json:"verbose"`
	MaxClients int    `json:"maxClients"`
}

// IsAnyEnabled returns whether any comms relayers are enabled
func (c *CommunicationsConfig) IsAnyEnabled() bool {
	return c.WebhookConfig.Enabled || c.FeedConfig.Enabled
}
