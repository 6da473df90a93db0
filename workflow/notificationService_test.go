package workflow

import (
	"testing"

	"bitbucket.org/flact/governance_backend/models"
)

func TestMessageStatusSuppressedSmsWhileFlagOff(t *testing.T) {
	t.Setenv("SMS_DELIVERY_ENABLED", "false")

	if got := messageStatus(models.MessageDeliverySms); got != models.MessageStatusSuppressed {
		t.Fatalf("suppressed SMS must be recorded as %s, got %s", models.MessageStatusSuppressed, got)
	}
	if got := messageStatus(models.MessageDeliveryEmail); got != models.MessageStatusSent {
		t.Fatalf("email is never suppressed by the SMS flag, got %s", got)
	}
}

func TestMessageStatusSentSmsWhileFlagOn(t *testing.T) {
	t.Setenv("SMS_DELIVERY_ENABLED", "true")

	if got := messageStatus(models.MessageDeliverySms); got != models.MessageStatusSent {
		t.Fatalf("delivered SMS must be recorded as %s, got %s", models.MessageStatusSent, got)
	}
}
