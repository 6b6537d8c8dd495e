package accounts

import "context"

// Notification templates the downstream service knows how to render.
const (
	TemplateOTPVerification   = "otp-verification"
	TemplatePasswordResetOTP  = "password-reset-otp"
	TemplatePasswordChanged   = "password-changed"
	TemplateUserDetailsUpdate = "user-details-updated"
)

// Notification is a templated message for a single recipient.
type Notification struct {
	Type      string         `json:"type"`
	Template  string         `json:"template"`
	Recipient string         `json:"recipient"`
	Content   map[string]any `json:"content"`
}

// NewEmailNotification builds an email notification for the given template.
func NewEmailNotification(template, recipient string, content map[string]any) Notification {
	return Notification{
		Type:      "email",
		Template:  template,
		Recipient: recipient,
		Content:   content,
	}
}

// Notifier delivers notifications to users. Delivery happens after the
// owning transaction commits, a failed delivery never rolls back state.
type Notifier interface {
	Send(ctx context.Context, notification Notification) error
}

// NoopNotifier drops every notification. Useful in tests and in deployments
// without a delivery channel.
type NoopNotifier struct{}

func (NoopNotifier) Send(ctx context.Context, notification Notification) error {
	return nil
}

var _ Notifier = NoopNotifier{}
