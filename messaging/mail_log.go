package messaging

import (
	"context"
	"encoding/json"

	"github.com/dustin/go-humanize"
)

// Subscriber is the inbound half of a Client.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler func(payload []byte)) error
}

// LogMail subscribes to the mail topic and prints each login link instead of
// delivering it. It stands in for a real mailer during development.
func LogMail(ctx context.Context, sub Subscriber, topic string, logFn LogFunc) error {
	return sub.Subscribe(ctx, topic, func(payload []byte) {
		logFn("%s", describeLoginEmail(payload))
	})
}

func describeLoginEmail(payload []byte) string {
	var m LoginEmail
	if err := json.Unmarshal(payload, &m); err != nil || m.To == "" {
		return "mail: unreadable message: " + string(payload)
	}
	kind := "login"
	if m.NewUser {
		kind = "welcome"
	}
	return "mail: " + kind + " link for " + m.To + " (expires " + humanize.Time(m.ExpiresAt) + "): " + m.Link
}
