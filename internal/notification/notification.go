// Package notification delivers monitoring events to an external sink.
// Delivery is best effort: the monitor logs a failed notification and keeps
// going, so a sink outage never blocks the evaluation cycle.
package notification

import "context"

// Severity classifies a notification for the receiving channel.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier is the outbound notification sink.
type Notifier interface {
	// Notify delivers a single message. Implementations must honor the
	// context deadline.
	Notify(ctx context.Context, severity Severity, title, message string) error
}

// NopNotifier discards all notifications. Used when notifications are disabled.
type NopNotifier struct{}

// NewNopNotifier creates a notifier that does nothing.
func NewNopNotifier() *NopNotifier {
	return &NopNotifier{}
}

// Notify implements Notifier.
func (n *NopNotifier) Notify(_ context.Context, _ Severity, _, _ string) error {
	return nil
}
