package messaging

import "time"

// Outbox message types.
const (
	TypeLoginEmail = "login_email"
)

// LoginEmail asks the external mailer to deliver a sign-in link.
type LoginEmail struct {
	To        string    `json:"to"`
	Link      string    `json:"link"`
	NewUser   bool      `json:"new_user"`
	ExpiresAt time.Time `json:"expires_at"`
}
