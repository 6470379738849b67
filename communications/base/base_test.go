package base

import (
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPush = errors.New("push failed")

type CommunicationProvider struct {
	ICommunicate

	isEnabled       bool
	isConnected     bool
	pushErr         error
	ConnectCalled   bool
	PushEventCalled bool
}

func (p *CommunicationProvider) IsEnabled() bool {
	return p.isEnabled
}

func (p *CommunicationProvider) IsConnected() bool {
	return p.isConnected
}

func (p *CommunicationProvider) Connect() error {
	p.ConnectCalled = true
	return nil
}

func (p *CommunicationProvider) PushEvent(Event) error {
	p.PushEventCalled = true
	return p.pushErr
}

func (p *CommunicationProvider) GetName() string {
	return "someTestProvider"
}

func (p *CommunicationProvider) SetServiceStarted(_ time.Time) {}

func TestBase(t *testing.T) {
	t.Parallel()
	b := Base{Name: "test", Enabled: true, Connected: true}
	assert.True(t, b.IsEnabled())
	assert.True(t, b.IsConnected())
	assert.Equal(t, "test", b.GetName())
	assert.Contains(t, b.GetStatus(), "Online")
}

func TestNewEvent(t *testing.T) {
	t.Parallel()
	e := NewEvent(EventEmoteAdd, "hi", &Embed{Title: "Add"})
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, EventEmoteAdd, e.Type)
	assert.Equal(t, "Add", e.Embed.Title)
	assert.NotEqual(t, e.ID, NewEvent(EventEmoteAdd, "", nil).ID)
}

func TestSetup(t *testing.T) {
	t.Parallel()
	testConfigs := []struct {
		isEnabled, isConnected, shouldConnectCalled bool
	}{
		{false, true, false},
		{false, false, false},
		{true, true, false},
		{true, false, true},
	}
	var ic IComm
	for _, tc := range testConfigs {
		ic = append(ic, &CommunicationProvider{isEnabled: tc.isEnabled, isConnected: tc.isConnected})
	}
	ic.Setup()
	for idx, provider := range ic {
		p, ok := provider.(*CommunicationProvider)
		require.True(t, ok)
		assert.Equal(t, testConfigs[idx].shouldConnectCalled, p.ConnectCalled, "provider %d", idx)
	}
}

func TestPushEvent(t *testing.T) {
	t.Parallel()
	testConfigs := []struct {
		enabled, connected, pushEventCalled bool
	}{
		{false, true, false},
		{false, false, false},
		{true, false, false},
		{true, true, true},
	}
	var ic IComm
	for _, tc := range testConfigs {
		ic = append(ic, &CommunicationProvider{isEnabled: tc.enabled, isConnected: tc.connected, pushErr: errPush})
	}
	ic.PushEvent(Event{})
	for idx, provider := range ic {
		p, ok := provider.(*CommunicationProvider)
		require.True(t, ok)
		assert.Equal(t, testConfigs[idx].pushEventCalled, p.PushEventCalled, "provider %d", idx)
	}
}

func TestGetStatus(t *testing.T) {
	t.Parallel()
	ic := IComm{&CommunicationProvider{isEnabled: true}}
	assert.Equal(t, map[string]CommsStatus{"someTestProvider": {Enabled: true}}, ic.GetStatus())
	assert.ErrorIs(t, ic.GetEnabledCommunicationMediums(), errNoMediumsEnabled)

	ic = IComm{&CommunicationProvider{isEnabled: true, isConnected: true}}
	assert.NoError(t, ic.GetEnabledCommunicationMediums())
}

func TestIsAnyEnabled(t *testing.T) {
	t.Parallel()
	c := &CommunicationsConfig{}
	assert.False(t, c.IsAnyEnabled())
	c.FeedConfig.Enabled = true
	assert.True(t, c.IsAnyEnabled())
}
