package workflow

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/messaging"
	"bitbucket.org/flact/governance_backend/models"
	"bitbucket.org/flact/governance_backend/utils"
)

type recordingMailer struct {
	payloads []messaging.NotificationPayload
}

func (m *recordingMailer) SendNotificationEvent(ctx context.Context, payload messaging.NotificationPayload) error {
	m.payloads = append(m.payloads, payload)
	return nil
}

// rewritingShortener simulates the shortening service producing a new short
// link for a stored long one.
type rewritingShortener struct {
	short string
}

func (s rewritingShortener) Shorten(ctx context.Context, longURL string) string { return s.short }

func TestResendUnchangedLinkTouchesWithoutDuplicating(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires MySQL, DB_* env)")
	}

	config.ConnectDatabaseWithRetry()
	if err := models.MigrateTable(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db := config.GetDB()

	alliance := models.Alliance{Name: "message-resend-" + time.Now().Format("150405.000")}
	if err := db.Create(&alliance).Error; err != nil {
		t.Fatalf("create alliance: %v", err)
	}

	ctx := utils.SetAllianceIdInContext(context.Background(), alliance.ID)
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")

	user := models.User{AllianceId: alliance.ID, Role: models.UserRoleCoSignatory, Email: "resend@test.local"}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	pref := models.UserNotification{UserId: user.ID, Delivery: models.MessageDeliveryEmail, Enabled: true, Event: true}
	if err := db.WithContext(ctx).Create(&pref).Error; err != nil {
		t.Fatalf("create preference: %v", err)
	}

	longLink := "https://gov.test.local/resolutions/42"
	templateJSON, err := json.Marshal(models.NotificationTemplates[models.EventNewResolutionCreated])
	if err != nil {
		t.Fatalf("marshal template: %v", err)
	}
	contextJSON, err := json.Marshal(map[string]string{"link": longLink, "longLink": longLink})
	if err != nil {
		t.Fatalf("marshal context: %v", err)
	}
	message := models.Message{
		AllianceId:   alliance.ID,
		UserId:       &user.ID,
		Type:         models.MessageTypeNewApprovalRequest,
		Delivery:     models.MessageDeliveryEmail,
		Destination:  user.Email,
		Text:         "stored notification",
		ContextJSON:  contextJSON,
		TemplateJSON: templateJSON,
		Status:       models.MessageStatusSent,
	}
	if err := db.WithContext(ctx).Create(&message).Error; err != nil {
		t.Fatalf("create message: %v", err)
	}
	var original models.Message
	if err := db.WithContext(ctx).First(&original, message.ID).Error; err != nil {
		t.Fatalf("reload message: %v", err)
	}

	mailer := &recordingMailer{}
	notifications := NewNotificationService(testLogger(), mailer)
	service := NewMessageService(testLogger(), notifications, rewritingShortener{short: longLink})

	// The timestamp column is second-precision; make the touch observable.
	time.Sleep(1100 * time.Millisecond)

	if _, err := service.ResendUserMessage(ctx, user.ID, message.ID); err != nil {
		t.Fatalf("resend: %v", err)
	}
	if len(mailer.payloads) != 1 {
		t.Fatalf("deliveries after unchanged-link resend: got %d, want 1", len(mailer.payloads))
	}

	messages, err := models.GetUserMessages(ctx, user.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("history rows after unchanged-link resend: got %d, want 1", len(messages))
	}
	if !messages[0].UpdatedAt.After(original.UpdatedAt) {
		t.Fatalf("resend must bump updated_at: was %v, still %v", original.UpdatedAt, messages[0].UpdatedAt)
	}

	// A changed short link is a substantive change and appends a new row.
	service = NewMessageService(testLogger(), notifications, rewritingShortener{short: "https://sho.rt/x1"})
	if _, err := service.ResendUserMessage(ctx, user.ID, message.ID); err != nil {
		t.Fatalf("resend with changed link: %v", err)
	}
	if len(mailer.payloads) != 2 {
		t.Fatalf("deliveries after changed-link resend: got %d, want 2", len(mailer.payloads))
	}
	messages, err = models.GetUserMessages(ctx, user.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("history rows after changed-link resend: got %d, want 2", len(messages))
	}
}
