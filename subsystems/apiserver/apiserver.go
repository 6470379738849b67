// Package apiserver exposes the emote cache, translations and the event feed
// over HTTP
package apiserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/emoji-connoisseur/connoisseur/common/table"
	"github.com/emoji-connoisseur/connoisseur/config"
	"github.com/emoji-connoisseur/connoisseur/database/repository/emote"
	"github.com/emoji-connoisseur/connoisseur/i18n"
	"github.com/emoji-connoisseur/connoisseur/log"
	"github.com/emoji-connoisseur/connoisseur/subsystems"
	"github.com/gorilla/mux"
	"golang.org/x/net/netutil"
	"golang.org/x/text/language"
)

// Setup creates an API server manager. comms and feed may be nil
func Setup(cfg *config.APIServerConfig, store EmoteStore, comms StatusProvider, bundle *i18n.Bundle, feed http.Handler, defaultLocale language.Tag) (*Manager, error) {
	if cfg == nil {
		return nil, errNilAPIConfig
	}
	if store == nil {
		return nil, errNilEmoteStore
	}
	if bundle == nil {
		return nil, errNilBundle
	}
	return &Manager{
		cfg:           *cfg,
		store:         store,
		comms:         comms,
		bundle:        bundle,
		feed:          feed,
		defaultLocale: defaultLocale,
		now:           time.Now,
	}, nil
}

// IsRunning safely checks whether the subsystem is running
func (m *Manager) IsRunning() bool {
	if m == nil {
		return false
	}
	return atomic.LoadInt32(&m.started) == 1
}

// Start listens on the configured address and serves the API in the
// background
func (m *Manager) Start() error {
	if m == nil {
		return fmt.Errorf("api server %w", subsystems.ErrNilSubsystem)
	}
	if !m.cfg.Enabled {
		return errServerDisabled
	}
	if !atomic.CompareAndSwapInt32(&m.started, 0, 1) {
		return fmt.Errorf("api server %w", subsystems.ErrSubSystemAlreadyStarted)
	}
	log.Debugf(log.APIServerMgr, "API server %s", subsystems.MsgSubSystemStarting)

	listener, err := net.Listen("tcp", m.cfg.ListenAddress)
	if err != nil {
		atomic.StoreInt32(&m.started, 0)
		return err
	}
	listener = netutil.LimitListener(listener, m.cfg.MaxConnections)

	m.mu.Lock()
	m.listener = listener
	m.server = &http.Server{
		Handler:           m.newRouter(),
		ReadHeaderTimeout: m.cfg.ReadTimeout,
		ReadTimeout:       m.cfg.ReadTimeout,
	}
	m.done = make(chan struct{})
	server, done := m.server, m.done
	m.mu.Unlock()

	go func() {
		defer close(done)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf(log.APIServerMgr, "API server failed: %v", err)
		}
	}()
	log.Infof(log.APIServerMgr, "API server %s Listen URL: http://%s", subsystems.MsgSubSystemStarted, listener.Addr())
	return nil
}

// Addr returns the address the server listens on
func (m *Manager) Addr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}

// Stop gracefully shuts the server down
func (m *Manager) Stop() error {
	if m == nil {
		return fmt.Errorf("api server %w", subsystems.ErrNilSubsystem)
	}
	if !atomic.CompareAndSwapInt32(&m.started, 1, 0) {
		return fmt.Errorf("api server %w", subsystems.ErrSubSystemNotStarted)
	}
	log.Debugf(log.APIServerMgr, "API server %s", subsystems.MsgSubSystemShuttingDown)
	m.mu.Lock()
	server, done := m.server, m.done
	m.server, m.listener = nil, nil
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	err := server.Shutdown(ctx)
	<-done
	log.Debugf(log.APIServerMgr, "API server %s", subsystems.MsgSubSystemShutdown)
	return err
}

// Handler returns the API router without listening
func (m *Manager) Handler() http.Handler {
	return m.newRouter()
}

func (m *Manager) routes() []Route {
	routes := []Route{
		{"Index", http.MethodGet, "/", m.getIndex},
		{"Emotes", http.MethodGet, "/emotes", m.getEmotes},
		{"Emote", http.MethodGet, "/emotes/{name}", m.getEmote},
		{"SetDescription", http.MethodPut, "/emotes/{name}/description", m.putDescription},
		{"Status", http.MethodGet, "/status", m.getStatus},
		{"Translate", http.MethodGet, "/translate/{key}", m.getTranslation},
	}
	if m.feed != nil {
		routes = append(routes, Route{"Events", http.MethodGet, "/events", m.feed.ServeHTTP})
	}
	return routes
}

// newRouter returns a new multiplexor router
func (m *Manager) newRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	for _, route := range m.routes() {
		var handler http.Handler = route.HandlerFunc
		handler = m.withLocale(handler)
		handler = restLogger(handler, route.Name)

		router.
			Methods(route.Method).
			Path(route.Pattern).
			Name(route.Name).
			Handler(handler)
	}
	return router
}

// restLogger logs the requests internally
func restLogger(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inner.ServeHTTP(w, r)
		log.Debugf(log.APIServerMgr,
			"%s\t%s\t%s\t%s",
			r.Method,
			r.RequestURI,
			name,
			time.Since(start),
		)
	})
}

// withLocale stores the request locale in the request context. The locale
// query parameter wins over the Accept-Language header
func (m *Manager) withLocale(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := m.requestLocale(r)
		inner.ServeHTTP(w, r.WithContext(i18n.WithLocale(r.Context(), tag)))
	})
}

func (m *Manager) requestLocale(r *http.Request) language.Tag {
	if q := r.URL.Query().Get("locale"); q != "" {
		if tag, err := i18n.ParseLocale(q); err == nil {
			return m.bundle.Match(tag)
		}
	}
	if h := r.Header.Get("Accept-Language"); h != "" {
		if tags, _, err := language.ParseAcceptLanguage(h); err == nil && len(tags) > 0 {
			return m.bundle.Match(tags[0])
		}
	}
	return m.bundle.Match(m.defaultLocale)
}

// restfulJSONResponse outputs a JSON response of the response interface
func restfulJSONResponse(w http.ResponseWriter, status int, response any) error {
	w.Header().Set(contentTypeKey, contentJSON)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(response)
}

// restfulError replies with a JSON error and logs failures to write it
func restfulError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if err := restfulJSONResponse(w, status, ErrorResponse{Error: msg}); err != nil {
		log.Errorf(log.APIServerMgr, "RESTful %s: server failed to send JSON response. Error %s", r.Method, err)
	}
}

func (m *Manager) getIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(contentTypeKey, contentText)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Emoji Connoisseur API")
}

func (m *Manager) getEmote(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	e, err := m.store.One(r.Context(), name)
	switch {
	case errors.Is(err, emote.ErrNoEmoteFound):
		restfulError(w, r, http.StatusNotFound, m.bundle.Sprintf(r.Context(), "Emote %s not found.", name))
		return
	case err != nil:
		restfulError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if err := restfulJSONResponse(w, http.StatusOK, newEmoteResponse(e)); err != nil {
		log.Errorf(log.APIServerMgr, "RESTful %s: server failed to send JSON response. Error %s", r.Method, err)
	}
}

func newEmoteResponse(e emote.Details) EmoteResponse {
	return EmoteResponse{Details: e, Markup: e.String(), URL: e.URL()}
}

// getEmotes renders every emote as a text table headed by the emote count
func (m *Manager) getEmotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emotes, err := m.store.All(ctx)
	if err != nil {
		restfulError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	count, err := m.store.Count(ctx)
	if err != nil {
		restfulError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	tbl, err := table.FromRecords(emote.Records(emotes))
	if err != nil {
		restfulError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	var sb strings.Builder
	sb.WriteString(m.bundle.Sprintf(ctx, "There are %d emotes.", count))
	if tbl.Len() > 0 {
		sb.WriteByte('\n')
		sb.WriteString(tbl.String())
	}
	sb.WriteByte('\n')
	w.Header().Set(contentTypeKey, contentText)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(sb.String())); err != nil {
		log.Errorf(log.APIServerMgr, "RESTful %s: failed to write emote table. Error %s", r.Method, err)
	}
}

func (m *Manager) putDescription(w http.ResponseWriter, r *http.Request) {
	if err := m.checkOTP(r); err != nil {
		status := http.StatusUnauthorized
		msg := m.bundle.Sprint(r.Context(), "Invalid one-time password.")
		if errors.Is(err, errWritesDisabled) {
			status, msg = http.StatusForbidden, err.Error()
		}
		restfulError(w, r, status, msg)
		return
	}

	var req DescriptionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		restfulError(w, r, http.StatusBadRequest, fmt.Errorf("%w: %w", errMalformedBody, err).Error())
		return
	}
	if len([]rune(req.Description)) > maxDescriptionLength {
		restfulError(w, r, http.StatusBadRequest, fmt.Sprintf("%v: max %d characters", errDescriptionSize, maxDescriptionLength))
		return
	}

	name := mux.Vars(r)["name"]
	e, err := m.store.SetDescription(r.Context(), name, req.Description)
	switch {
	case errors.Is(err, emote.ErrNoEmoteFound):
		restfulError(w, r, http.StatusNotFound, m.bundle.Sprintf(r.Context(), "Emote %s not found.", name))
		return
	case err != nil:
		restfulError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	log.Infof(log.APIServerMgr, "Description of emote %s updated", e.Name)
	if err := restfulJSONResponse(w, http.StatusOK, newEmoteResponse(e)); err != nil {
		log.Errorf(log.APIServerMgr, "RESTful %s: server failed to send JSON response. Error %s", r.Method, err)
	}
}

func (m *Manager) getStatus(w http.ResponseWriter, r *http.Request) {
	if m.comms == nil {
		restfulError(w, r, http.StatusServiceUnavailable, errStatusUnavail.Error())
		return
	}
	status, err := m.comms.GetStatus()
	if err != nil {
		restfulError(w, r, http.StatusServiceUnavailable, fmt.Errorf("%w: %w", errStatusUnavail, err).Error())
		return
	}
	if err := restfulJSONResponse(w, http.StatusOK, status); err != nil {
		log.Errorf(log.APIServerMgr, "RESTful %s: server failed to send JSON response. Error %s", r.Method, err)
	}
}

func (m *Manager) getTranslation(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	resp := TranslationResponse{
		Locale: i18n.FormatLocale(i18n.Locale(r.Context())),
		Key:    key,
		Text:   m.bundle.Sprint(r.Context(), key),
	}
	if err := restfulJSONResponse(w, http.StatusOK, resp); err != nil {
		log.Errorf(log.APIServerMgr, "RESTful %s: server failed to send JSON response. Error %s", r.Method, err)
	}
}
