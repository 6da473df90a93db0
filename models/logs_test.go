package models_test

import (
	"testing"

	"bitbucket.org/flact/governance_backend/models"
)

func TestDiffValuesSkipsEqualAndKeepsOrder(t *testing.T) {
	parameters := []string{"name", "email", "phoneNumber"}
	oldValues := map[string]string{"name": "Ann", "email": "a@x.com", "phoneNumber": "123"}
	newValues := map[string]string{"name": "Ann", "email": "b@x.com", "phoneNumber": "456"}

	changes := models.DiffValues(parameters, oldValues, newValues)
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	if changes[0].Parameter != "email" || changes[1].Parameter != "phoneNumber" {
		t.Fatalf("expected parameter order preserved, got %+v", changes)
	}
	if changes[0].OldValue != "a@x.com" || changes[0].NewValue != "b@x.com" {
		t.Fatalf("unexpected change values: %+v", changes[0])
	}
}

func TestDiffValuesNoChanges(t *testing.T) {
	values := map[string]string{"name": "Ann"}
	if changes := models.DiffValues([]string{"name"}, values, values); len(changes) != 0 {
		t.Fatalf("expected no changes, got %+v", changes)
	}
}
