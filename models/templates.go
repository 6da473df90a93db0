package models

import "strings"

// NotificationTemplate pairs a message type with the subject and body used
// when delivering it. Bodies use {{placeholder}} markers filled from a
// per-notification context.
type NotificationTemplate struct {
	Type    MessageType
	Event   string
	Subject string
	Text    string
}

const (
	EventNewResolutionCreated     = "NEW_RESOLUTION_CREATED"
	EventResolutionCanceled       = "RESOLUTION_CANCELED"
	EventStatusAccepted           = "STATUS_ACCEPTED"
	EventStatusRejected           = "STATUS_REJECTED"
	EventCosignatoryLeftComment   = "COSIGNATORY_LEFT_COMMENT"
	EventCosignatoryUpdateComment = "COSIGNATORY_UPDATE_COMMENT"
	EventCosignatoryDeleteComment = "COSIGNATORY_DELETE_COMMENT"
	EventInviteUser               = "INVITE_USER"
	EventResetPassword            = "RESET_PASSWORD"
	EventIncorporationDate        = "INCORPORATION_DATE"
	EventFinancialYearEndCosec    = "FINANCIAL_YEAR_END_DATE_COSEC"
	EventFinancialYearEndCosign   = "FINANCIAL_YEAR_END_DATE_COSIGN"
	EventAnniversaryOfLastAgmDate = "ANNIVERSARY_OF_LAST_AGM_DATE"
)

var NotificationTemplates = map[string]NotificationTemplate{
	EventNewResolutionCreated: {
		Type:    MessageTypeNewApprovalRequest,
		Event:   EventNewResolutionCreated,
		Subject: "New resolution requires your vote",
		Text:    "A new resolution \"{{resolutionTitle}}\" was created for {{companyName}}. Voting runs from {{votingStartDate}} to {{votingEndDate}}.",
	},
	EventResolutionCanceled: {
		Type:    MessageTypeDocumentCancelled,
		Event:   EventResolutionCanceled,
		Subject: "Resolution cancelled",
		Text:    "The resolution \"{{resolutionTitle}}\" for {{companyName}} has been cancelled.",
	},
	EventStatusAccepted: {
		Type:    MessageTypeDocumentAccepted,
		Event:   EventStatusAccepted,
		Subject: "Resolution accepted",
		Text:    "The resolution \"{{resolutionTitle}}\" for {{companyName}} has been accepted.",
	},
	EventStatusRejected: {
		Type:    MessageTypeDocumentRejected,
		Event:   EventStatusRejected,
		Subject: "Resolution rejected",
		Text:    "The resolution \"{{resolutionTitle}}\" for {{companyName}} has been rejected.",
	},
	EventCosignatoryLeftComment: {
		Type:    MessageTypeNewApprovalRequest,
		Event:   EventCosignatoryLeftComment,
		Subject: "New comment on resolution",
		Text:    "{{userName}} left a comment on the resolution \"{{resolutionTitle}}\".",
	},
	EventCosignatoryUpdateComment: {
		Type:    MessageTypeNewApprovalRequest,
		Event:   EventCosignatoryUpdateComment,
		Subject: "Comment updated on resolution",
		Text:    "{{userName}} updated their comment on the resolution \"{{resolutionTitle}}\".",
	},
	EventCosignatoryDeleteComment: {
		Type:    MessageTypeNewApprovalRequest,
		Event:   EventCosignatoryDeleteComment,
		Subject: "Comment removed from resolution",
		Text:    "{{userName}} removed their comment from the resolution \"{{resolutionTitle}}\".",
	},
	EventInviteUser: {
		Type:    MessageTypeInvite,
		Event:   EventInviteUser,
		Subject: "You have been invited to {{clientName}}",
		Text:    "{{userName}}, you have been invited to join {{clientName}}. Follow {{link}} to complete your registration.",
	},
	EventResetPassword: {
		Type:    MessageTypeResetPassword,
		Event:   EventResetPassword,
		Subject: "Password reset",
		Text:    "{{userName}}, follow {{link}} to reset your password.",
	},
	EventIncorporationDate: {
		Type:    MessageTypeCalendarEvent,
		Event:   EventIncorporationDate,
		Subject: "Upcoming incorporation anniversary",
		Text:    "The incorporation anniversary of {{company}} is in {{daysCount}} days.",
	},
	EventFinancialYearEndCosec: {
		Type:    MessageTypeCalendarEvent,
		Event:   EventFinancialYearEndCosec,
		Subject: "Financial year end approaching",
		Text:    "The financial year end of {{company}} is in {{daysCount}} days. Annual filings may be due.",
	},
	EventFinancialYearEndCosign: {
		Type:    MessageTypeCalendarEvent,
		Event:   EventFinancialYearEndCosign,
		Subject: "Financial year end approaching",
		Text:    "The financial year end of {{company}} is in {{daysCount}} days.",
	},
	EventAnniversaryOfLastAgmDate: {
		Type:    MessageTypeCalendarEvent,
		Event:   EventAnniversaryOfLastAgmDate,
		Subject: "AGM anniversary approaching",
		Text:    "The anniversary of the last AGM of {{company}} is in {{daysCount}} days.",
	},
}

// FillTemplate substitutes each {{key}} marker with its context value. Only
// the first occurrence of a marker is replaced.
func FillTemplate(template string, context map[string]string) string {
	for key, value := range context {
		template = strings.Replace(template, "{{"+key+"}}", value, 1)
	}
	return template
}
