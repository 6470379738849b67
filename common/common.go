package common

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/emoji-connoisseur/connoisseur/common/file"
)

const (
	// SmallestSnowflake is the ID of one of the earliest chat accounts. Any
	// number above it is probably a snowflake
	SmallestSnowflake uint64 = 21154535154122752

	zeroWidthSpace = "\u200b"
	codeFence      = "```"

	// SimpleTimeFormat is the human readable format used in embeds and tables
	SimpleTimeFormat = "2006-01-02 15:04:05 MST"
)

// Common errors shared between packages
var (
	ErrNilPointer      = errors.New("nil pointer")
	ErrGettingField    = errors.New("error getting field")
	ErrSettingField    = errors.New("error setting field")
	ErrNegativeInteger = errors.New("cannot encode negative integer")
)

var (
	cartesianProduct = regexp.MustCompile(`{([^{}]*),([^{}]*)}`)
	massMentions     = regexp.MustCompile(`@(everyone|here|[!&]?[0-9]{17,21})`)
	markdownEscaper  = strings.NewReplacer(
		`*`, `\*`,
		"`", "\\`",
		`_`, `\_`,
		`~`, `\~`,
		`\`, `\\`,
	)
)

// User is the minimal view of a chat user needed for display
type User struct {
	ID            uint64
	Name          string
	Discriminator string
}

// String returns the name#discriminator form
func (u User) String() string {
	if u.Discriminator == "" {
		return u.Name
	}
	return u.Name + "#" + u.Discriminator
}

// Mention returns the markup that pings the user
func (u User) Mention() string {
	return fmt.Sprintf("<@%d>", u.ID)
}

// UserResolver looks up users known to the bot
type UserResolver interface {
	GetUser(id uint64) (User, bool)
}

// AppendError appends an error to a list of existing errors
// Either argument may be:
// * A vanilla error
// * An error implementing `Unwrap() []error` e.g. fmt.Errorf("%w: %w")
// * nil
// The result will be an error which may be a multiError if multipleErrors were found
func AppendError(original, incoming error) error {
	if incoming == nil {
		return original
	}
	if original == nil {
		return incoming
	}
	return errors.Join(original, incoming)
}

// IsSnowflake reports whether id is plausibly a snowflake
func IsSnowflake(id uint64) bool {
	return id > SmallestSnowflake
}

// Codeblock wraps message in a fenced code block, neutralising any fences the
// message already contains
func Codeblock(message, lang string) string {
	cleaned := strings.ReplaceAll(message, codeFence, "`"+zeroWidthSpace+"`"+zeroWidthSpace+"`")
	return codeFence + lang + "\n" + cleaned + codeFence
}

// FixFirstLine prevents the first line of a multi-line message from being
// misaligned by the author's name in compact display mode
func FixFirstLine(message string) string {
	if strings.Contains(message, "\n") {
		return zeroWidthSpace + "\n" + message
	}
	return message
}

// FormatTime formats a time like '2018-02-22 22:38:12 UTC'
func FormatTime(t time.Time) string {
	return t.UTC().Format(SimpleTimeFormat)
}

// StripAngleBrackets strips a leading < and trailing > from a string. Users
// wrap links in them to avoid embeds
func StripAngleBrackets(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		return s[1 : len(s)-1]
	}
	return s
}

// ExpandCartesianProduct expands the first non-nested {a,b} group in s into
// two strings. Without a group the second string is empty
//
//	foo{bar,baz}  -> foobar, foobaz
//	{old,new}     -> old, new
//	{foo,bar,baz} -> foo,bar, baz
func ExpandCartesianProduct(s string) (first, second string) {
	m := cartesianProduct.FindStringSubmatchIndex(s)
	if m == nil {
		return s, ""
	}
	prefix, suffix := s[:m[0]], s[m[1]:]
	return prefix + s[m[2]:m[3]] + suffix, prefix + s[m[4]:m[5]] + suffix
}

// BytesToInt decodes big-endian bytes into an integer
func BytesToInt(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// IntToBytes encodes n as big-endian bytes using the fewest bytes possible.
// Zero encodes to an empty slice
func IntToBytes(n *big.Int) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: integer", ErrNilPointer)
	}
	if n.Sign() < 0 {
		return nil, ErrNegativeInteger
	}
	return n.Bytes(), nil
}

// FormatUser formats a user ID for human readable display
//
//	not mention: @null byte#8191 (140516693242937345)
//	mention: <@140516693242937345> (@null byte#8191)
func FormatUser(r UserResolver, id uint64, mention bool) string {
	var (
		u     User
		found bool
	)
	if r != nil {
		u, found = r.GetUser(id)
	}
	if !found {
		return fmt.Sprintf("Unknown user with ID %d", id)
	}
	if mention {
		return fmt.Sprintf("%s (@%s)", u.Mention(), u)
	}
	return fmt.Sprintf("@%s (%d)", u, u.ID)
}

// EscapeMarkdown escapes the markdown control characters in s
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// ScrubMentions defuses mass mentions and raw user, role and channel mentions
// by inserting a zero width space after the @
func ScrubMentions(s string) string {
	return massMentions.ReplaceAllString(s, "@"+zeroWidthSpace+"$1")
}

// GetDefaultDataDir returns the default data directory
// Windows - C:\Users\%USER%\AppData\Roaming\Connoisseur
// Linux/Unix or OSX - $HOME/.connoisseur
func GetDefaultDataDir(env string) string {
	if env == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "Connoisseur")
	}

	usr, err := user.Current()
	if err == nil {
		return filepath.Join(usr.HomeDir, ".connoisseur")
	}

	dir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, ".connoisseur")
}

// CreateDir creates a directory based on the supplied parameter
func CreateDir(dir string) error {
	if file.Exists(dir) {
		return nil
	}
	return os.MkdirAll(dir, file.DefaultPermissionOctal)
}
