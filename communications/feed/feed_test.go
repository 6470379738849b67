package feed

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emoji-connoisseur/connoisseur/communications/base"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeed(t *testing.T, maxClients int) (*Feed, string) {
	t.Helper()
	f := &Feed{}
	f.Setup(&base.CommunicationsConfig{FeedConfig: base.FeedConfig{Enabled: true, MaxClients: maxClients}})
	require.NoError(t, f.Connect())
	srv := httptest.NewServer(f)
	t.Cleanup(func() {
		f.Shutdown()
		srv.Close()
	})
	return f, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSetup(t *testing.T) {
	t.Parallel()
	f := &Feed{}
	f.Setup(&base.CommunicationsConfig{})
	assert.Equal(t, "Feed", f.GetName())
	assert.Equal(t, defaultMaxClients, f.MaxClients)
	assert.False(t, f.IsConnected())

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPushEvent(t *testing.T) {
	t.Parallel()
	f, url := newTestFeed(t, 2)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return f.Clients() == 1 }, time.Second, 5*time.Millisecond)

	sent := base.NewEvent(base.EventEmoteRemove, "", &base.Embed{Title: "Remove"})
	require.NoError(t, f.PushEvent(sent))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var got base.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, base.EventEmoteRemove, got.Type)
	require.NotNil(t, got.Embed)
	assert.Equal(t, "Remove", got.Embed.Title)
}

func TestMaxClients(t *testing.T) {
	t.Parallel()
	f, url := newTestFeed(t, 1)
	dial(t, url)
	require.Eventually(t, func() bool { return f.Clients() == 1 }, time.Second, 5*time.Millisecond)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestDisconnectedClientIsRemoved(t *testing.T) {
	t.Parallel()
	f, url := newTestFeed(t, 2)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return f.Clients() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return f.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestRegisterAfterShutdown(t *testing.T) {
	t.Parallel()
	f := &Feed{}
	f.Setup(&base.CommunicationsConfig{FeedConfig: base.FeedConfig{Enabled: true, MaxClients: 1}})
	require.NoError(t, f.Connect())
	first := &client{}
	require.NoError(t, f.register(first))
	assert.ErrorIs(t, f.register(&client{}), errTooManyClients)
	f.mu.Lock()
	delete(f.clients, first)
	f.mu.Unlock()

	f.Shutdown()
	assert.NotPanics(t, func() {
		assert.ErrorIs(t, f.register(&client{}), errNotConnected)
	})
	assert.Zero(t, f.Clients())
}
