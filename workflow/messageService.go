package workflow

import (
	"context"

	"github.com/sirupsen/logrus"

	"bitbucket.org/flact/governance_backend/apperr"
	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/models"
	"bitbucket.org/flact/governance_backend/shortener"
)

// MessageService serves the notification history and its resend path.
type MessageService struct {
	logger        *logrus.Logger
	notifications *NotificationService
	shortener     shortener.Shortener
}

func NewMessageService(logger *logrus.Logger, notifications *NotificationService, shortener shortener.Shortener) *MessageService {
	return &MessageService{logger: logger, notifications: notifications, shortener: shortener}
}

// ResendUserMessage re-delivers a stored message. The stored long link is
// shortened afresh; a changed short link is a substantive change and goes
// through the full notification path (new history row), while an unchanged
// one only bumps the existing row's timestamp.
func (s *MessageService) ResendUserMessage(ctx context.Context, userId, messageId int) (*models.Message, error) {
	message, err := models.GetUserMessage(ctx, messageId, userId)
	if err != nil {
		return nil, apperr.NotFound("", models.ErrMessageNotFound)
	}
	if !message.Resendable() {
		return nil, apperr.Unprocessable("", models.ErrMessageNotResendable)
	}

	enabled := false
	if message.User != nil {
		for _, pref := range message.User.Notifications {
			if pref.Delivery == message.Delivery && pref.Enabled && pref.Event {
				enabled = true
				break
			}
		}
	}
	if !enabled {
		return nil, apperr.Unprocessable("", models.ErrNotificationsDisabled)
	}

	template, err := message.Template()
	if err != nil || template == nil {
		return nil, apperr.Unprocessable("", models.ErrMessageNotResendable)
	}
	msgContext, err := message.Context()
	if err != nil {
		return nil, apperr.Unprocessable("", models.ErrMessageNotResendable)
	}

	linkUpdated := false
	if longLink := msgContext["longLink"]; longLink != "" {
		link := s.shortener.Shorten(ctx, longLink)
		if link != msgContext["link"] {
			s.logger.WithFields(logrus.Fields{
				"messageId": messageId,
				"oldLink":   msgContext["link"],
				"newLink":   link,
			}).Debug("resend link updated")
			linkUpdated = true
		}
		msgContext["link"] = link
	}

	data := NotificationData{
		Email:       message.User.Email,
		PhoneNumber: message.User.PhoneNumber,
		Context:     msgContext,
	}

	if linkUpdated {
		if err := s.notifications.SendNotification(ctx, *template, data, userId, message.Delivery); err != nil {
			return nil, err
		}
		return message, nil
	}

	if err := s.notifications.Dispatch(ctx, *template, data, message.Delivery); err != nil {
		config.LogError(s.logger, "messageService.go", "ResendUserMessage", "dispatch", messageId, err)
		return nil, err
	}
	if err := models.TouchMessage(ctx, message.ID); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *MessageService) GetUserMessages(ctx context.Context, userId int) ([]models.Message, error) {
	return models.GetUserMessages(ctx, userId)
}
