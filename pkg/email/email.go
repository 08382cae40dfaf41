package email

import "context"

// Message is a plain transactional email
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	TextBody  string
}

// Sender delivers transactional email. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
