package messaging

import "context"

// Mailer dispatches rendered notifications to the email transport.
type Mailer interface {
	SendNotificationEvent(ctx context.Context, payload NotificationPayload) error
}

type EmailClient struct {
	bus Bus
}

func NewEmailClient(bus Bus) *EmailClient {
	return &EmailClient{bus: bus}
}

func (c *EmailClient) SendNotificationEvent(ctx context.Context, payload NotificationPayload) error {
	return c.bus.Emit(ctx, PatternSendNotification, payload)
}
