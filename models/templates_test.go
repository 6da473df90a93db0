package models_test

import (
	"strings"
	"testing"

	"bitbucket.org/flact/governance_backend/models"
)

func TestFillTemplateReplacesFirstOccurrenceOnly(t *testing.T) {
	out := models.FillTemplate("{{name}} and {{name}}", map[string]string{"name": "Acme"})
	if out != "Acme and {{name}}" {
		t.Fatalf("expected only the first marker replaced, got %q", out)
	}
}

func TestFillTemplateLeavesUnknownMarkers(t *testing.T) {
	out := models.FillTemplate("hello {{who}}", map[string]string{"name": "Acme"})
	if out != "hello {{who}}" {
		t.Fatalf("unknown markers must stay untouched, got %q", out)
	}
}

func TestResolutionTemplatesFillCompletely(t *testing.T) {
	// The context shape the resolution services supply: identity markers from
	// the shadow row plus the per-event extras.
	context := map[string]string{
		"resolutionId":    "42",
		"resolutionTitle": "Budget approval",
		"companyName":     "Acme Pte Ltd",
		"votingStartDate": "01 Mar 2026",
		"votingEndDate":   "10 Mar 2026",
		"link":            "https://sho.rt/a",
		"longLink":        "https://app.example/resolutions/42",
		"userName":        "Jordan Tan",
		"status":          "ACCEPTED",
	}
	events := []string{
		models.EventNewResolutionCreated,
		models.EventResolutionCanceled,
		models.EventStatusAccepted,
		models.EventStatusRejected,
		models.EventCosignatoryLeftComment,
		models.EventCosignatoryUpdateComment,
		models.EventCosignatoryDeleteComment,
	}

	for _, event := range events {
		template, ok := models.NotificationTemplates[event]
		if !ok {
			t.Fatalf("missing template for %s", event)
		}
		subject := models.FillTemplate(template.Subject, context)
		if strings.Contains(subject, "{{") {
			t.Fatalf("%s: unfilled marker in subject %q", event, subject)
		}
		text := models.FillTemplate(template.Text, context)
		if strings.Contains(text, "{{") {
			t.Fatalf("%s: unfilled marker in %q", event, text)
		}
	}
}

func TestCalendarTemplatesUseCompanyAndDaysCount(t *testing.T) {
	calendarEvents := []string{
		models.EventIncorporationDate,
		models.EventFinancialYearEndCosec,
		models.EventFinancialYearEndCosign,
		models.EventAnniversaryOfLastAgmDate,
	}
	context := map[string]string{"company": "Acme Pte Ltd", "daysCount": "14"}

	for _, event := range calendarEvents {
		template, ok := models.NotificationTemplates[event]
		if !ok {
			t.Fatalf("missing template for %s", event)
		}
		text := models.FillTemplate(template.Text, context)
		if strings.Contains(text, "{{") {
			t.Fatalf("%s: unfilled marker in %q", event, text)
		}
		if !strings.Contains(text, "Acme Pte Ltd") || !strings.Contains(text, "14") {
			t.Fatalf("%s: expected company and day count in %q", event, text)
		}
	}
}
