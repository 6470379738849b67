// Package emotelog records emote additions, removals and decays in a log
// channel
package emotelog

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/emoji-connoisseur/connoisseur/common"
	"github.com/emoji-connoisseur/connoisseur/communications/base"
	"github.com/emoji-connoisseur/connoisseur/database/repository/emote"
	"github.com/emoji-connoisseur/connoisseur/log"
)

// New returns an emote logger. translator and users may be nil
func New(cfg *Config, publisher Publisher, translator Translator, users common.UserResolver) (*Logger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("emote log config %w", common.ErrNilPointer)
	}
	if publisher == nil {
		return nil, errNilPublisher
	}
	return &Logger{
		channel:    cfg.Channel,
		settings:   cfg.Settings,
		publisher:  publisher,
		translator: translator,
		users:      users,
		now:        time.Now,
	}, nil
}

// Settings returns which actions are logged
func (l *Logger) Settings() Settings {
	return l.settings
}

// OnEmoteAdd logs a newly added emote
func (l *Logger) OnEmoteAdd(ctx context.Context, e *emote.Details) error {
	if !l.settings.Add {
		return nil
	}
	return l.logEmoteAction(ctx, base.EventEmoteAdd, e, TitleAdd, ColourAdd)
}

// OnEmoteRemove logs an emote removed by its owner
func (l *Logger) OnEmoteRemove(ctx context.Context, e *emote.Details) error {
	if !l.settings.Remove {
		return nil
	}
	return l.logEmoteAction(ctx, base.EventEmoteRemove, e, TitleRemove, ColourRemove)
}

// OnEmoteDecay logs an emote removed for lack of use
func (l *Logger) OnEmoteDecay(ctx context.Context, e *emote.Details) error {
	if !l.settings.Decay {
		return nil
	}
	return l.logEmoteAction(ctx, base.EventEmoteDecay, e, TitleDecay, ColourDecay)
}

// OnEmoteForceRemove logs an emote removed by a moderator
func (l *Logger) OnEmoteForceRemove(ctx context.Context, e *emote.Details) error {
	if !l.settings.ForceRemove {
		return nil
	}
	return l.logEmoteAction(ctx, base.EventEmoteForceRemove, e, TitleForceRemove, ColourForceRemove)
}

func (l *Logger) logEmoteAction(ctx context.Context, eventType string, e *emote.Details, action string, colour int) error {
	if l.channel == "" {
		return nil
	}
	if e == nil {
		return fmt.Errorf("emote %w", common.ErrNilPointer)
	}
	owner := common.FormatUser(l.users, e.AuthorID, true)
	embed := &base.Embed{
		Title:       l.sprint(ctx, action),
		Description: l.sprintf(ctx, descriptionFormat, e.String(), e.Name, owner),
		Colour:      colour,
		Timestamp:   l.now().UTC(),
	}
	evt := base.NewEvent(eventType, l.channel, embed)
	if err := l.publisher.PushEvent(evt); err != nil {
		log.Errorf(log.EmoteLog, "Failed to log %s of emote %s: %v", eventType, e.Name, err)
		return err
	}
	log.Debugf(log.EmoteLog, "Logged %s of emote %s to %s", eventType, e.Name, l.channel)
	return nil
}

func (l *Logger) sprint(ctx context.Context, key string) string {
	if l.translator == nil {
		return key
	}
	return l.translator.Sprint(ctx, key)
}

func (l *Logger) sprintf(ctx context.Context, format string, args ...any) string {
	if l.translator == nil {
		return fmt.Sprintf(format, args...)
	}
	return l.translator.Sprintf(ctx, format, args...)
}

// HSVToColour converts hue and saturation in 0-255 and an unscaled value into
// a packed 0xRRGGBB colour. Channels are truncated toward zero
func HSVToColour(h, s, v float64) int {
	r, g, b := hsvToRGB(h/255, s/255, v)
	return int(r)<<16 | int(g)<<8 | int(b)
}

func hsvToRGB(h, s, v float64) (r, g, b float64) {
	if s == 0 {
		return v, v, v
	}
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
