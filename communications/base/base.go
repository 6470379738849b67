package base

import (
	"time"

	"github.com/gofrs/uuid"
)

// NewEvent returns an event stamped with a fresh ID
func NewEvent(eventType, message string, embed *Embed) Event {
	return Event{
		ID:      uuid.Must(uuid.NewV4()),
		Type:    eventType,
		Message: message,
		Embed:   embed,
	}
}

// IsEnabled returns if the comms package has been enabled in the configuration
func (b *Base) IsEnabled() bool {
	return b.Enabled
}

// IsConnected returns if the package is connected to a server and/or ready to
// send
func (b *Base) IsConnected() bool {
	return b.Connected
}

// GetName returns a package name
func (b *Base) GetName() string {
	return b.Name
}

// GetStatus returns status data
func (b *Base) GetStatus() string {
	return `
	Connoisseur Service: Online
	Service Started: ` + b.ServiceStarted.String()
}

// SetServiceStarted sets the time the service started
func (b *Base) SetServiceStarted(t time.Time) {
	b.ServiceStarted = t
}
