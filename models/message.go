package models

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/utils"
)

type MessageStatus string

const (
	MessageStatusSent       MessageStatus = "SENT"
	MessageStatusSuppressed MessageStatus = "SUPPRESSED"
)

// Message is one delivered notification. ContextJSON and TemplateJSON are
// snapshots kept for resending; they are withheld for invite and
// password-reset messages so one-time-use payloads never persist.
type Message struct {
	ID           int             `gorm:"primary_key" json:"id"`
	AllianceId   int             `gorm:"index;not null" json:"alliance_id"`
	UserId       *int            `gorm:"index" json:"user_id"`
	Type         MessageType     `gorm:"size:40;not null" json:"type"`
	Delivery     MessageDelivery `gorm:"size:10;not null" json:"delivery"`
	Destination  string          `gorm:"size:255;not null" json:"destination"`
	Subject      string          `gorm:"size:255" json:"subject"`
	Text         string          `gorm:"type:text;not null" json:"text"`
	ContextJSON  []byte          `gorm:"type:json" json:"context"`
	TemplateJSON []byte          `gorm:"type:json" json:"template"`
	Status       MessageStatus   `gorm:"size:15;not null;default:'SENT'" json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	User *User `gorm:"foreignKey:UserId" json:"user,omitempty"`
}

// Resendable reports whether the message can go through the resend path.
// Reminders are one-shot, and messages saved without snapshots cannot be
// rebuilt.
func (m Message) Resendable() bool {
	return m.Type != MessageTypeReminder && len(m.ContextJSON) > 0 && len(m.TemplateJSON) > 0
}

func (m Message) Context() (map[string]string, error) {
	context := map[string]string{}
	if len(m.ContextJSON) == 0 {
		return context, nil
	}
	err := json.Unmarshal(m.ContextJSON, &context)
	return context, err
}

func (m Message) Template() (*NotificationTemplate, error) {
	if len(m.TemplateJSON) == 0 {
		return nil, nil
	}
	var template NotificationTemplate
	if err := json.Unmarshal(m.TemplateJSON, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

func GetUserMessage(ctx context.Context, messageId, userId int) (*Message, error) {
	db := config.GetDB()
	var message Message

	err := db.WithContext(ctx).
		Preload("User").
		Preload("User.Notifications").
		Where("id = ? AND user_id = ?", messageId, userId).
		First(&message).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &message, nil
}

func GetUserMessages(ctx context.Context, userId int) ([]Message, error) {
	db := config.GetDB()
	var messages []Message

	err := db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at DESC, id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func InsertMessage(db *gorm.DB, ctx context.Context, message *Message) error {
	return db.WithContext(ctx).Create(message).Error
}

// TouchMessage bumps updated_at without rewriting the row, used when a
// resend produced no substantive change.
func TouchMessage(ctx context.Context, id int) error {
	db := config.GetDB()
	return db.WithContext(ctx).
		Model(&Message{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}
