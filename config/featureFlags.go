package config

import (
	"os"
	"strings"
)

// SmsDeliveryEnabled gates actual SMS sending. While it is off, SMS
// message-history rows are still written, marked SUPPRESSED. Flip the env
// var when the SMS transport goes live.
//
// Set via env:
// - SMS_DELIVERY_ENABLED=true
func SmsDeliveryEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("SMS_DELIVERY_ENABLED")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// ClientName identifies the deployment's alliance for system-originated
// activity (status-change handlers run with no human principal).
func ClientName() string {
	return strings.TrimSpace(os.Getenv("CLIENT_NAME"))
}

// FrontendURL is the base for resolution deep links embedded in notifications.
func FrontendURL() string {
	return strings.TrimRight(strings.TrimSpace(os.Getenv("FRONTEND_URL")), "/")
}
