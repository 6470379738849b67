// Package i18n translates user facing strings. The locale travels in the
// request context so concurrent requests can use different languages
package i18n

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/buger/jsonparser"
	"github.com/emoji-connoisseur/connoisseur/common"
	"github.com/emoji-connoisseur/connoisseur/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	// DefaultLocale is the locale of the source strings
	DefaultLocale = "en_US"
	// DefaultDirectory is where locale directories are looked up
	DefaultDirectory = "locale"
	// MessagesFile is the catalog file inside each locale directory
	MessagesFile = "messages.json"
)

var (
	// SourceLanguage is the language every key is written in
	SourceLanguage = language.AmericanEnglish

	errEmptyLocale      = errors.New("locale is empty")
	errInvalidLocale    = errors.New("invalid locale")
	errMessageNotString = errors.New("message value is not a string")
)

type localeKey struct{}

// WithLocale returns a context carrying the locale
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeKey{}, tag)
}

// Locale returns the locale carried by ctx, or the source language when none
// is set
func Locale(ctx context.Context) language.Tag {
	if ctx != nil {
		if tag, ok := ctx.Value(localeKey{}).(language.Tag); ok {
			return tag
		}
	}
	return SourceLanguage
}

// HasLocale reports whether ctx carries a locale
func HasLocale(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	_, ok := ctx.Value(localeKey{}).(language.Tag)
	return ok
}

// ParseLocale parses locale names such as en_US or de-DE
func ParseLocale(s string) (language.Tag, error) {
	if s == "" {
		return language.Und, errEmptyLocale
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("%w %q: %w", errInvalidLocale, s, err)
	}
	return tag, nil
}

// FormatLocale returns the directory style name of a locale, e.g. en_US
func FormatLocale(tag language.Tag) string {
	return strings.ReplaceAll(tag.String(), "-", "_")
}

// Bundle holds the translations of every loaded locale
type Bundle struct {
	fallback language.Tag

	mu        sync.RWMutex
	builder   *catalog.Builder
	keys      map[language.Tag]map[string]struct{}
	locales   []language.Tag
	supported []language.Tag
	matcher   language.Matcher
	printers  map[language.Tag]*message.Printer
}

// NewBundle returns a bundle that only knows the source language. Lookups for
// locales that are not loaded use fallback
func NewBundle(fallback language.Tag) *Bundle {
	b := &Bundle{
		fallback: fallback,
		builder:  catalog.NewBuilder(catalog.Fallback(fallback)),
		keys:     make(map[language.Tag]map[string]struct{}),
		locales:  []language.Tag{SourceLanguage},
	}
	if fallback != SourceLanguage {
		b.locales = append(b.locales, fallback)
	}
	b.rebuild()
	return b
}

// Load reads <dir>/<locale>/messages.json for every locale directory in dir
func Load(dir string, fallback language.Tag) (*Bundle, error) {
	b := NewBundle(fallback)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var errs error
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		tag, err := ParseLocale(e.Name())
		if err != nil {
			log.Warnf(log.I18n, "Skipping locale directory %s: %v", e.Name(), err)
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name(), MessagesFile))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			errs = common.AppendError(errs, err)
			continue
		}
		n, err := b.AddMessages(tag, data)
		if err != nil {
			errs = common.AppendError(errs, fmt.Errorf("%s: %w", e.Name(), err))
			continue
		}
		log.Debugf(log.I18n, "Loaded %d messages for locale %s", n, FormatLocale(tag))
	}
	return b, errs
}

// AddMessages adds a flat JSON object of key to translation pairs for tag and
// returns how many were added
func (b *Bundle) AddMessages(tag language.Tag, data []byte) (int, error) {
	type pair struct{ key, value string }
	var (
		pairs []pair
		errs  error
	)
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		k, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}
		if dataType != jsonparser.String {
			errs = common.AppendError(errs, fmt.Errorf("%w: %q", errMessageNotString, k))
			return nil
		}
		v, err := jsonparser.ParseString(value)
		if err != nil {
			return err
		}
		pairs = append(pairs, pair{k, v})
		return nil
	})
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	keys, ok := b.keys[tag]
	if !ok {
		keys = make(map[string]struct{}, len(pairs))
		b.keys[tag] = keys
	}
	for _, p := range pairs {
		if err := b.builder.SetString(tag, p.key, p.value); err != nil {
			return 0, err
		}
		keys[p.key] = struct{}{}
	}
	if !slices.Contains(b.locales, tag) {
		b.locales = append(b.locales, tag)
	}
	b.rebuild()
	return len(pairs), errs
}

// rebuild refreshes the matcher and drops cached printers. Callers must hold
// the write lock
func (b *Bundle) rebuild() {
	supported := make([]language.Tag, 0, len(b.locales))
	supported = append(supported, b.fallback)
	for _, t := range b.locales {
		if t != b.fallback {
			supported = append(supported, t)
		}
	}
	b.supported = supported
	b.matcher = language.NewMatcher(supported)
	b.printers = make(map[language.Tag]*message.Printer)
}

// Locales returns the loaded locales
func (b *Bundle) Locales() []language.Tag {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.locales)
}

// Match returns the best loaded locale for tag, or the fallback when nothing
// is close enough
func (b *Bundle) Match(tag language.Tag) language.Tag {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.match(tag)
}

func (b *Bundle) match(tag language.Tag) language.Tag {
	if slices.Contains(b.locales, tag) {
		return tag
	}
	_, idx, conf := b.matcher.Match(tag)
	if conf == language.No {
		return b.fallback
	}
	if idx >= 0 && idx < len(b.supported) {
		return b.supported[idx]
	}
	return b.fallback
}

// Sprintf translates key into the locale carried by ctx and formats it.
// Keys missing from that locale use the fallback locale, keys missing
// everywhere are formatted as is
func (b *Bundle) Sprintf(ctx context.Context, key string, args ...any) string {
	return b.printer(b.resolve(Locale(ctx), key)).Sprintf(key, args...)
}

// Sprint translates key without formatting arguments
func (b *Bundle) Sprint(ctx context.Context, key string) string {
	return b.Sprintf(ctx, key)
}

func (b *Bundle) resolve(requested language.Tag, key string) language.Tag {
	b.mu.RLock()
	defer b.mu.RUnlock()
	tag := b.match(requested)
	if _, ok := b.keys[tag][key]; ok {
		return tag
	}
	if _, ok := b.keys[b.fallback][key]; ok {
		return b.fallback
	}
	return SourceLanguage
}

func (b *Bundle) printer(tag language.Tag) *message.Printer {
	b.mu.RLock()
	p, ok := b.printers[tag]
	b.mu.RUnlock()
	if ok {
		return p
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok = b.printers[tag]; ok {
		return p
	}
	p = message.NewPrinter(tag, message.Catalog(b.builder))
	b.printers[tag] = p
	return p
}
