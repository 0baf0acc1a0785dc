package mail

import (
	"context"
	"io"
)

// Message is a provider-agnostic email payload.
type Message struct {
	// From overrides the configured sender when set.
	From string
	// To lists the recipients.
	To []string
	// Cc lists carbon copy recipients.
	Cc []string
	// Bcc lists blind carbon copy recipients.
	Bcc []string
	// Subject is the subject line.
	Subject string
	// TextBody is the plain-text body, used as the fallback part when
	// HTMLBody is also set.
	TextBody string
	// HTMLBody is the optional HTML body.
	HTMLBody string
}

// Mail sends email through some delivery backend.
type Mail interface {
	io.Closer
	// Send dispatches msg.
	Send(ctx context.Context, msg Message) error
}
