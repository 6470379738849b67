// Package webhook posts events to a chat webhook. Embeds are sent as rich
// messages and requests are rate limited to stay under the chat service's
// per webhook limits
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/emoji-connoisseur/connoisseur/common/crypto"
	"github.com/emoji-connoisseur/connoisseur/communications/base"
	"github.com/emoji-connoisseur/connoisseur/log"
	"golang.org/x/time/rate"
)

var (
	errURLNotSet     = errors.New("webhook url not set")
	errInvalidScheme = errors.New("webhook url must use http or https")
	errRateLimited   = errors.New("webhook rate limited")
	errBadStatus     = errors.New("unexpected webhook response status")
	errEmptyEvent    = errors.New("event has no message or embed")
)

// Webhook is a chat webhook relayer
type Webhook struct {
	base.Base
	URL       string
	Username  string
	AvatarURL string
	// SigningSecret, when set, signs every request body with HMAC-SHA256
	SigningSecret string

	client  *http.Client
	limiter *rate.Limiter
}

// NewRateLimit creates a new rate limit based on interval and actions allowed
// within that interval
func NewRateLimit(interval time.Duration, actions int) *rate.Limiter {
	if actions <= 0 || interval <= 0 {
		// Returns an un-restricted rate limiter
		return rate.NewLimiter(rate.Inf, 1)
	}

	i := 1 / interval.Seconds()
	rps := i * float64(actions)
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// Setup takes in a webhook configuration and sets the target URL and rate
// limit
func (w *Webhook) Setup(cfg *base.CommunicationsConfig) {
	c := cfg.WebhookConfig
	w.Name = c.Name
	if w.Name == "" {
		w.Name = "Webhook"
	}
	w.Enabled = c.Enabled
	w.Verbose = c.Verbose
	w.URL = c.URL
	w.Username = c.Username
	w.AvatarURL = c.AvatarURL
	w.SigningSecret = c.SigningSecret

	requests, interval := c.RequestsPerInterval, c.Interval
	if requests == 0 && interval == 0 {
		requests, interval = defaultRequestsPerInterval, defaultInterval
	}
	w.limiter = NewRateLimit(interval, requests)
	if w.client == nil {
		w.client = &http.Client{Timeout: defaultTimeout}
	}
}

// Connect validates the webhook URL. Webhooks are stateless so there is no
// connection to hold open
func (w *Webhook) Connect() error {
	if w.URL == "" {
		return errURLNotSet
	}
	u, err := url.Parse(w.URL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q", errInvalidScheme, u.Scheme)
	}
	w.Connected = true
	return nil
}

// PushEvent posts an event to the webhook
func (w *Webhook) PushEvent(e base.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return w.Send(ctx, e)
}

// Send posts an event to the webhook, waiting on the rate limiter first
func (w *Webhook) Send(ctx context.Context, e base.Event) error {
	if e.Message == "" && e.Embed == nil {
		return errEmptyEvent
	}
	body, err := json.Marshal(w.buildPayload(e))
	if err != nil {
		return err
	}

	if w.limiter != nil {
		if err = w.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.SigningSecret != "" {
		sig, err := crypto.GetHMAC(crypto.HashSHA256, body, []byte(w.SigningSecret))
		if err != nil {
			return err
		}
		req.Header.Set(SignatureHeader, signaturePrefix+crypto.HexEncodeToString(sig))
	}

	client := w.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if w.Verbose {
		log.Debugf(log.CommunicationMgr, "%s: event %s %s delivered with status %d", w.Name, e.ID, e.Type, resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: retry after %s", errRateLimited, resp.Header.Get("Retry-After"))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w %d: %s", errBadStatus, resp.StatusCode, msg)
	}
	return nil
}

func (w *Webhook) buildPayload(e base.Event) *payload {
	p := &payload{
		Username:  w.Username,
		AvatarURL: w.AvatarURL,
		Content:   e.Message,
	}
	if e.Embed != nil {
		em := embed{
			Title:       e.Embed.Title,
			Description: e.Embed.Description,
			Colour:      e.Embed.Colour,
		}
		if !e.Embed.Timestamp.IsZero() {
			em.Timestamp = e.Embed.Timestamp.UTC().Format(time.RFC3339)
		}
		if e.Embed.Footer != "" {
			em.Footer = &footer{Text: e.Embed.Footer}
		}
		p.Embeds = []embed{em}
	}
	return p
}
