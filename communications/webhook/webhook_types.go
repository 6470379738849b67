package webhook

import "time"

// SignatureHeader carries the HMAC-SHA256 of the request body when a signing
// secret is configured
const SignatureHeader = "X-Connoisseur-Signature"

const (
	signaturePrefix = "sha256="

	defaultRequestsPerInterval = 5
	defaultInterval            = 2 * time.Second
	defaultTimeout             = 15 * time.Second
)

type payload struct {
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Content   string  `json:"content,omitempty"`
	Embeds    []embed `json:"embeds,omitempty"`
}

type embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Colour      int     `json:"color"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Footer      *footer `json:"footer,omitempty"`
}

type footer struct {
	Text string `json:"text"`
}
