package notify

import "context"

// Notifier delivers email to customers.
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}
