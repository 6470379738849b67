package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/emoji-connoisseur/connoisseur/communications/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestWebhook(t *testing.T, h http.HandlerFunc) *Webhook {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	w := &Webhook{}
	w.Setup(&base.CommunicationsConfig{WebhookConfig: base.WebhookConfig{
		Enabled:  true,
		URL:      srv.URL,
		Username: "Emoji Connoisseur",
	}})
	require.NoError(t, w.Connect())
	return w
}

func TestSetup(t *testing.T) {
	t.Parallel()
	w := &Webhook{}
	w.Setup(&base.CommunicationsConfig{WebhookConfig: base.WebhookConfig{Enabled: true}})
	assert.Equal(t, "Webhook", w.GetName())
	assert.True(t, w.IsEnabled())
	assert.InDelta(t, 2.5, float64(w.limiter.Limit()), 0.0001, "default limit is 5 requests per 2 seconds")

	assert.ErrorIs(t, w.Connect(), errURLNotSet)
	w.URL = "ftp://example.com"
	assert.ErrorIs(t, w.Connect(), errInvalidScheme)
	assert.False(t, w.IsConnected())
}

func TestNewRateLimit(t *testing.T) {
	t.Parallel()
	assert.Equal(t, rate.Inf, NewRateLimit(0, 0).Limit())
	assert.InDelta(t, 10.0, float64(NewRateLimit(time.Second, 10).Limit()), 0.0001)
}

func TestPushEvent(t *testing.T) {
	t.Parallel()
	var got payload
	w := newTestWebhook(t, func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(b, &got))
		rw.WriteHeader(http.StatusNoContent)
	})

	ts := time.Date(2018, 2, 22, 22, 38, 12, 0, time.UTC)
	err := w.PushEvent(base.NewEvent(base.EventEmoteAdd, "", &base.Embed{
		Title:       "Add",
		Description: "<:blobfire:478355211236048896> - :blobfire:\nOwner: null byte",
		Colour:      0x7e8faf,
		Timestamp:   ts,
		Footer:      "ID: 478355211236048896",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Emoji Connoisseur", got.Username)
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "Add", got.Embeds[0].Title)
	assert.Equal(t, 0x7e8faf, got.Embeds[0].Colour)
	assert.Equal(t, "2018-02-22T22:38:12Z", got.Embeds[0].Timestamp)
	require.NotNil(t, got.Embeds[0].Footer)
	assert.Equal(t, "ID: 478355211236048896", got.Embeds[0].Footer.Text)

	assert.ErrorIs(t, w.PushEvent(base.Event{}), errEmptyEvent)
}

func TestPushEventErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	w := newTestWebhook(t, func(rw http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			rw.Header().Set("Retry-After", "1")
			rw.WriteHeader(http.StatusTooManyRequests)
			return
		}
		http.Error(rw, "unknown webhook", http.StatusNotFound)
	})
	w.limiter = NewRateLimit(0, 0)

	err := w.PushEvent(base.NewEvent(base.EventEmoteDecay, "decayed", nil))
	assert.ErrorIs(t, err, errRateLimited)
	err = w.PushEvent(base.NewEvent(base.EventEmoteDecay, "decayed", nil))
	assert.ErrorIs(t, err, errBadStatus)
	assert.ErrorContains(t, err, "unknown webhook")
}

func TestSendHonoursRateLimit(t *testing.T) {
	t.Parallel()
	w := newTestWebhook(t, func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusNoContent)
	})
	w.limiter = NewRateLimit(time.Hour, 1)
	require.NoError(t, w.Send(t.Context(), base.NewEvent(base.EventEmoteAdd, "first", nil)))

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, w.Send(ctx, base.NewEvent(base.EventEmoteAdd, "second", nil)), "second request must wait beyond the deadline")
}

func TestSignedRequests(t *testing.T) {
	t.Parallel()
	var (
		gotSig  string
		gotBody []byte
	)
	w := newTestWebhook(t, func(rw http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		var err error
		gotBody, err = io.ReadAll(r.Body)
		assert.NoError(t, err)
		rw.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, w.PushEvent(base.NewEvent(base.EventEmoteDecay, "decayed", nil)))
	assert.Empty(t, gotSig, "unsigned without a secret")

	w.SigningSecret = "hunter2"
	require.NoError(t, w.PushEvent(base.NewEvent(base.EventEmoteDecay, "decayed", nil)))
	assert.Equal(t, `{"username":"Emoji Connoisseur","content":"decayed"}`, string(gotBody))
	assert.Equal(t, "sha256=af4f3b7976f6e001b6470734bd4a190716f2bf952768c399b96a76e775376f0f", gotSig)
}
