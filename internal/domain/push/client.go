package push

import "context"

// Notification is the user-visible part of a push message.
type Notification struct {
	Title string
	Body  string
}

// SendReport is the outcome of one multicast attempt, partitioned per token.
// InvalidTokens holds only tokens the provider reported as permanently
// unregistered; transient per-token failures are counted but not listed.
type SendReport struct {
	SuccessCount  int
	FailureCount  int
	InvalidTokens []string
}

// Client defines an interface for multicast push delivery. It decouples the
// application logic from the concrete messaging provider (FCM in production).
type Client interface {
	SendMulticast(ctx context.Context, tokens []string, n Notification, data map[string]string) (*SendReport, error)
}
