package common

import (
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver map[uint64]User

func (f fakeResolver) GetUser(id uint64) (User, bool) {
	u, ok := f[id]
	return u, ok
}

func TestAppendError(t *testing.T) {
	t.Parallel()
	errA := errors.New("a")
	errB := errors.New("b")
	assert.Nil(t, AppendError(nil, nil))
	assert.Equal(t, errA, AppendError(errA, nil))
	assert.Equal(t, errB, AppendError(nil, errB))
	err := AppendError(errA, errB)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestIsSnowflake(t *testing.T) {
	t.Parallel()
	assert.True(t, IsSnowflake(140516693242937345))
	assert.False(t, IsSnowflake(SmallestSnowflake))
	assert.False(t, IsSnowflake(42))
}

func TestCodeblock(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "```py\nprint(1)```", Codeblock("print(1)", "py"))
	assert.Equal(t, "```\na`\u200b`\u200b`b```", Codeblock("a```b", ""))
}

func TestFixFirstLine(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "one line", FixFirstLine("one line"))
	assert.Equal(t, "\u200b\nfirst\nsecond", FixFirstLine("first\nsecond"))
}

func TestFormatTime(t *testing.T) {
	t.Parallel()
	tm := time.Date(2018, 2, 22, 22, 38, 12, 0, time.UTC)
	assert.Equal(t, "2018-02-22 22:38:12 UTC", FormatTime(tm))
	assert.Equal(t, "2018-02-22 22:38:12 UTC", FormatTime(tm.In(time.FixedZone("AEST", 10*60*60))))
}

func TestStripAngleBrackets(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "https://example.com", StripAngleBrackets("<https://example.com>"))
	assert.Equal(t, "<https://example.com", StripAngleBrackets("<https://example.com"))
	assert.Equal(t, "plain", StripAngleBrackets("plain"))
	assert.Equal(t, "<", StripAngleBrackets("<"))
	assert.Empty(t, StripAngleBrackets("<>"))
}

func TestExpandCartesianProduct(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		in, first, second string
	}{
		{"foo{bar,baz}", "foobar", "foobaz"},
		{"{old,new}", "old", "new"},
		{"uninteresting", "uninteresting", ""},
		{"{foo,bar,baz}", "foo,bar", "baz"},
		{"pre{a,b}post", "preapost", "prebpost"},
		{"{a,b}{c,d}", "a{c,d}", "b{c,d}"},
	} {
		first, second := ExpandCartesianProduct(tc.in)
		assert.Equal(t, tc.first, first, tc.in)
		assert.Equal(t, tc.second, second, tc.in)
	}
}

func TestIntBytesRoundTrip(t *testing.T) {
	t.Parallel()
	b, err := IntToBytes(big.NewInt(0x0102))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, b)
	assert.Equal(t, int64(0x0102), BytesToInt(b).Int64())

	b, err = IntToBytes(big.NewInt(0))
	require.NoError(t, err)
	assert.Empty(t, b)

	_, err = IntToBytes(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrNegativeInteger)
	_, err = IntToBytes(nil)
	assert.ErrorIs(t, err, ErrNilPointer)
}

func TestFormatUser(t *testing.T) {
	t.Parallel()
	r := fakeResolver{140516693242937345: {ID: 140516693242937345, Name: "null byte", Discriminator: "8191"}}
	assert.Equal(t, "@null byte#8191 (140516693242937345)", FormatUser(r, 140516693242937345, false))
	assert.Equal(t, "<@140516693242937345> (@null byte#8191)", FormatUser(r, 140516693242937345, true))
	assert.Equal(t, "Unknown user with ID 1", FormatUser(r, 1, true))
	assert.Equal(t, "Unknown user with ID 1", FormatUser(nil, 1, false))
}

func TestEscapeMarkdown(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `\*bold\* \_it\_ \~\~s\~\~ \`+"`code\\`"+` \\`, EscapeMarkdown("*bold* _it_ ~~s~~ `code` \\"))
}

func TestScrubMentions(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "hi @\u200beveryone and @\u200bhere", ScrubMentions("hi @everyone and @here"))
	assert.Equal(t, "<@\u200b!140516693242937345>", ScrubMentions("<@!140516693242937345>"))
	assert.Equal(t, "<@\u200b&140516693242937345>", ScrubMentions("<@&140516693242937345>"))
	assert.Equal(t, "@someone", ScrubMentions("@someone"))
}

func TestGetDefaultDataDir(t *testing.T) {
	t.Parallel()
	assert.Contains(t, GetDefaultDataDir("linux"), ".connoisseur")
	assert.Contains(t, GetDefaultDataDir("windows"), "Connoisseur")
}

func TestCreateDir(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, CreateDir(dir))
	require.NoError(t, CreateDir(dir), "existing directories are left alone")
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
