package emotelog

import (
	"context"
	"errors"
	"time"

	"github.com/emoji-connoisseur/connoisseur/common"
	"github.com/emoji-connoisseur/connoisseur/communications/base"
)

// Log colours, as produced from the HSV triples the log has always used
var (
	ColourAdd         = HSVToColour(86, 144, 175)
	ColourRemove      = HSVToColour(2, 198, 244)
	ColourForceRemove = ColourRemove
	ColourDecay       = HSVToColour(141, 78, 139)
)

// Action titles. They double as translation keys
const (
	TitleAdd         = "Add"
	TitleRemove      = "Remove"
	TitleDecay       = "Decay"
	TitleForceRemove = "Removal by a moderator"

	descriptionFormat = "%s - :%s:\nOwner: %s"
)

var errNilPublisher = errors.New("emote log publisher is nil")

// Config holds where the emote log is sent and which actions are logged
type Config struct {
	Channel  string   `json:"channel"`
	Settings Settings `json:"settings"`
}

// Settings toggles logging of each emote action. Everything is off by default
type Settings struct {
	Add         bool `json:"add"`
	Remove      bool `json:"remove"`
	ForceRemove bool `json:"force_remove"`
	Decay       bool `json:"decay"`
}

// Publisher accepts events for delivery
type Publisher interface {
	PushEvent(base.Event) error
}

// Translator localises messages for the locale carried in ctx
type Translator interface {
	Sprint(ctx context.Context, key string) string
	Sprintf(ctx context.Context, key string, args ...any) string
}

// Logger posts emote actions to the configured log channel
type Logger struct {
	channel    string
	settings   Settings
	publisher  Publisher
	translator Translator
	users      common.UserResolver
	now        func() time.Time
}
