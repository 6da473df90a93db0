package workflow

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/messaging"
	"bitbucket.org/flact/governance_backend/models"
	"bitbucket.org/flact/governance_backend/utils"
)

// NotificationData is the per-recipient payload for one notification:
// destination contacts plus the template substitution context.
type NotificationData struct {
	Email       string
	PhoneNumber string
	Context     map[string]string
}

// NotificationService renders templates, dispatches them over the configured
// delivery channel and records message history.
type NotificationService struct {
	logger *logrus.Logger
	mailer messaging.Mailer
}

func NewNotificationService(logger *logrus.Logger, mailer messaging.Mailer) *NotificationService {
	return &NotificationService{logger: logger, mailer: mailer}
}

// SendDirectNotification delivers over one explicit channel, bypassing the
// user's event-notification preferences.
func (s *NotificationService) SendDirectNotification(ctx context.Context, userId int, template models.NotificationTemplate, data NotificationData, delivery models.MessageDelivery) error {
	return s.SendNotification(ctx, template, data, userId, delivery)
}

// SendEventNotifications fans out to every enabled, event-triggered
// preference row of the user; each row selects its own channel.
func (s *NotificationService) SendEventNotifications(ctx context.Context, userId int, template models.NotificationTemplate, data NotificationData) error {
	prefs, err := models.GetUserNotificationPreferences(ctx, userId)
	if err != nil {
		return err
	}

	for _, pref := range prefs {
		if err := s.SendNotification(ctx, template, data, userId, pref.Delivery); err != nil {
			config.LogError(s.logger, "notificationService.go", "SendEventNotifications", template.Event, userId, err)
			return err
		}
	}
	return nil
}

func (s *NotificationService) SendNotification(ctx context.Context, template models.NotificationTemplate, data NotificationData, userId int, delivery models.MessageDelivery) error {
	switch delivery {
	case models.MessageDeliveryEmail:
		if err := s.sendEmail(ctx, template, data); err != nil {
			return err
		}
	case models.MessageDeliverySms:
		if err := s.sendSms(ctx, template, data); err != nil {
			return err
		}
	}
	_, err := s.SaveToMessageHistory(ctx, template, data, userId, delivery)
	return err
}

// Dispatch delivers without recording history. The resend path uses it when
// the message row itself already holds the history.
func (s *NotificationService) Dispatch(ctx context.Context, template models.NotificationTemplate, data NotificationData, delivery models.MessageDelivery) error {
	if delivery == models.MessageDeliverySms {
		return s.sendSms(ctx, template, data)
	}
	return s.sendEmail(ctx, template, data)
}

func (s *NotificationService) sendEmail(ctx context.Context, template models.NotificationTemplate, data NotificationData) error {
	return s.mailer.SendNotificationEvent(ctx, messaging.NotificationPayload{
		Email:       data.Email,
		PhoneNumber: data.PhoneNumber,
		Template:    template.Event,
		Subject:     template.Subject,
		Context:     data.Context,
	})
}

func (s *NotificationService) sendSms(ctx context.Context, template models.NotificationTemplate, data NotificationData) error {
	// SMS delivery is suppressed until the feature flag flips.
	if !config.SmsDeliveryEnabled() {
		return nil
	}
	return s.mailer.SendNotificationEvent(ctx, messaging.NotificationPayload{
		PhoneNumber: data.PhoneNumber,
		Template:    template.Event,
		Context:     data.Context,
	})
}

// SaveToMessageHistory persists a rendered message. SMS rows written while
// the channel is suppressed are recorded with the SUPPRESSED status so the
// history shows what was withheld. Invite and password-reset messages store
// neither context nor template snapshot.
func (s *NotificationService) SaveToMessageHistory(ctx context.Context, template models.NotificationTemplate, data NotificationData, userId int, delivery models.MessageDelivery) (*models.Message, error) {
	saveSnapshots := template.Event != models.EventInviteUser && template.Event != models.EventResetPassword

	allianceId, _ := utils.GetAllianceIdFromContext(ctx)
	message := models.Message{
		AllianceId:  allianceId,
		UserId:      &userId,
		Type:        template.Type,
		Delivery:    delivery,
		Destination: data.Email,
		Subject:     models.FillTemplate(template.Subject, data.Context),
		Text:        models.FillTemplate(template.Text, data.Context),
		Status:      messageStatus(delivery),
	}
	if delivery == models.MessageDeliverySms {
		message.Destination = data.PhoneNumber
	}
	if saveSnapshots {
		contextJSON, err := json.Marshal(data.Context)
		if err != nil {
			return nil, err
		}
		templateJSON, err := json.Marshal(template)
		if err != nil {
			return nil, err
		}
		message.ContextJSON = contextJSON
		message.TemplateJSON = templateJSON
	}

	if err := models.InsertMessage(config.GetDB(), ctx, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// messageStatus marks SMS history rows written while the channel flag is off
// as suppressed; everything else counts as sent.
func messageStatus(delivery models.MessageDelivery) models.MessageStatus {
	if delivery == models.MessageDeliverySms && !config.SmsDeliveryEnabled() {
		return models.MessageStatusSuppressed
	}
	return models.MessageStatusSent
}
