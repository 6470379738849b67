package emote

import (
	"errors"
	"strconv"
	"time"

	"github.com/emoji-connoisseur/connoisseur/common/cache"
	"github.com/emoji-connoisseur/connoisseur/common/table"
)

// DefaultCacheSize is the amount of emotes memoised when no size is configured
const DefaultCacheSize uint64 = 128

var (
	emoteCache = newCache(DefaultCacheSize)
	// ErrNoEmoteFound is a basic predefined error
	ErrNoEmoteFound = errors.New("emote not found")

	errEmptyName = errors.New("emote name cannot be empty")
	errInvalidID = errors.New("emote id is not a snowflake")
)

// Details holds a single emote row
type Details struct {
	ID          uint64    `json:"id,string"`
	Name        string    `json:"name"`
	AuthorID    uint64    `json:"author,string"`
	Animated    bool      `json:"animated"`
	Description string    `json:"description,omitempty"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Preserve    bool      `json:"preserve"`
}

// String returns the chat markup which renders the emote
func (d *Details) String() string {
	prefix := "<:"
	if d.Animated {
		prefix = "<a:"
	}
	return prefix + d.Name + ":" + strconv.FormatUint(d.ID, 10) + ">"
}

// URL returns the CDN link of the emote image
func (d *Details) URL() string {
	ext := ".png"
	if d.Animated {
		ext = ".gif"
	}
	return "https://cdn.discordapp.com/emojis/" + strconv.FormatUint(d.ID, 10) + ext
}

// Records converts emotes into table records
func Records(ds []Details) []table.Record {
	records := make([]table.Record, len(ds))
	for i := range ds {
		records[i] = table.Record{
			{Name: "name", Value: ds[i].Name},
			{Name: "id", Value: ds[i].ID},
			{Name: "author", Value: ds[i].AuthorID},
			{Name: "animated", Value: ds[i].Animated},
			{Name: "created", Value: ds[i].Created},
		}
	}
	return records
}

func newCache(capacity uint64) *cache.LRUCache {
	c, err := cache.New(capacity)
	if err != nil {
		panic(err)
	}
	return c
}
