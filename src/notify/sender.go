package notify

//go:generate mockgen -source=sender.go -destination=sender_mock.go -package=notify

import "context"

type Email struct {
	To      []string
	Subject string
	HTML    string
}

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, email Email) error
}
