package models_test

import (
	"testing"

	"bitbucket.org/flact/governance_backend/models"
)

func TestMessageResendable(t *testing.T) {
	snapshot := []byte(`{}`)

	resendable := models.Message{
		Type:         models.MessageTypeNewApprovalRequest,
		ContextJSON:  snapshot,
		TemplateJSON: snapshot,
	}
	if !resendable.Resendable() {
		t.Fatal("message with snapshots must be resendable")
	}

	reminder := resendable
	reminder.Type = models.MessageTypeReminder
	if reminder.Resendable() {
		t.Fatal("reminders are never resendable")
	}

	withoutSnapshots := resendable
	withoutSnapshots.ContextJSON = nil
	if withoutSnapshots.Resendable() {
		t.Fatal("a message without a context snapshot cannot be rebuilt")
	}

	withoutTemplate := resendable
	withoutTemplate.TemplateJSON = nil
	if withoutTemplate.Resendable() {
		t.Fatal("a message without a template snapshot cannot be rebuilt")
	}
}
