// Package notify abstracts outbound client notifications. The SMS gateway
// itself is an external collaborator; this package only defines the contract
// the reminder jobs call into.
package notify

import (
	"context"
	"log/slog"
)

// Notifier delivers a text message to a phone number.
type Notifier interface {
	SendSMS(ctx context.Context, phone, message string) error
}

// LogNotifier writes notifications to the log instead of a gateway. Used in
// development and tests.
type LogNotifier struct {
	Logger *slog.Logger
}

// SendSMS logs the outbound message.
func (n LogNotifier) SendSMS(ctx context.Context, phone, message string) error {
	if n.Logger != nil {
		n.Logger.Info("sms notification",
			slog.String("phone", phone),
			slog.String("message", message))
	}
	return nil
}

var _ Notifier = LogNotifier{}
