package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/emoji-connoisseur/connoisseur/communications/base"
	"github.com/emoji-connoisseur/connoisseur/config"
	"github.com/emoji-connoisseur/connoisseur/database/repository/emote"
	"github.com/emoji-connoisseur/connoisseur/i18n"
	"golang.org/x/text/language"
)

// Name is an exported subsystem name
const Name = "api_server"

const (
	// OTPHeader carries the one-time password for write endpoints
	OTPHeader      = "X-OTP"
	shutdownWait   = 5 * time.Second
	maxBodyBytes   = 1 << 16
	contentTypeKey = "Content-Type"
	contentJSON    = "application/json; charset=UTF-8"
	contentText    = "text/plain; charset=UTF-8"
)

var (
	errNilAPIConfig    = errors.New("received nil api server config")
	errNilEmoteStore   = errors.New("received nil emote store")
	errNilBundle       = errors.New("received nil translation bundle")
	errServerDisabled  = errors.New("api server is disabled")
	errWritesDisabled  = errors.New("write endpoints are disabled")
	errInvalidOTP      = errors.New("invalid one-time password")
	errMissingOTP      = errors.New("one-time password missing")
	errStatusUnavail   = errors.New("communications status unavailable")
	errMalformedBody   = errors.New("malformed request body")
	errDescriptionSize = errors.New("description too long")
)

// maxDescriptionLength is the longest description accepted
const maxDescriptionLength = 500

// EmoteStore looks up and updates emotes
type EmoteStore interface {
	One(ctx context.Context, name string) (emote.Details, error)
	All(ctx context.Context) ([]emote.Details, error)
	Count(ctx context.Context) (int64, error)
	SetDescription(ctx context.Context, name, description string) (emote.Details, error)
}

// StatusProvider reports the state of the communication relayers
type StatusProvider interface {
	GetStatus() (map[string]base.CommsStatus, error)
}

// Manager serves the HTTP API
type Manager struct {
	started       int32
	cfg           config.APIServerConfig
	store         EmoteStore
	comms         StatusProvider
	bundle        *i18n.Bundle
	feed          http.Handler
	defaultLocale language.Tag
	now           func() time.Time

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	done     chan struct{}
}

// Route is a single API endpoint
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

// EmoteResponse is an emote with its markup and image link
type EmoteResponse struct {
	emote.Details
	Markup string `json:"markup"`
	URL    string `json:"url"`
}

// TranslationResponse is the result of a translation probe
type TranslationResponse struct {
	Locale string `json:"locale"`
	Key    string `json:"key"`
	Text   string `json:"text"`
}

// DescriptionRequest is the body of a description update
type DescriptionRequest struct {
	Description string `json:"description"`
}

// ErrorResponse is returned for any failed request
type ErrorResponse struct {
	Error string `json:"error"`
}
