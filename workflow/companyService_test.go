package workflow

import (
	"errors"
	"testing"

	"bitbucket.org/flact/governance_backend/apperr"
	"bitbucket.org/flact/governance_backend/models"
)

func validCompanyInput() models.NewCompany {
	return models.NewCompany{
		Name:        "Acme Holdings Pte Ltd",
		Email:       "office@acme.example",
		PhoneNumber: "+65 6521 8000",
	}
}

func TestValidateCompanyInputAcceptsValidInput(t *testing.T) {
	if err := validateCompanyInput(validCompanyInput()); err != nil {
		t.Fatalf("expected valid input to pass, got %v", err)
	}
}

func TestValidateCompanyInputPhoneIsOptional(t *testing.T) {
	input := validCompanyInput()
	input.PhoneNumber = ""

	if err := validateCompanyInput(input); err != nil {
		t.Fatalf("expected empty phone number to pass, got %v", err)
	}
}

func TestValidateCompanyInputRejectsMissingRequiredFields(t *testing.T) {
	err := validateCompanyInput(models.NewCompany{})
	if !apperr.IsBadRequest(err) {
		t.Fatalf("expected bad request, got %v", err)
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected taxonomy error, got %T", err)
	}
	if len(appErr.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %d: %v", len(appErr.Fields), appErr.Fields)
	}
	// Fields come back sorted by name.
	if appErr.Fields[0].Field != "Email" || appErr.Fields[1].Field != "Name" {
		t.Fatalf("unexpected fields: %v", appErr.Fields)
	}
	for _, f := range appErr.Fields {
		if f.Message != models.ErrValidationFailed {
			t.Fatalf("expected %s, got %s", models.ErrValidationFailed, f.Message)
		}
	}
}

func TestValidateCompanyInputRejectsMalformedEmail(t *testing.T) {
	input := validCompanyInput()
	input.Email = "not-an-email"

	err := validateCompanyInput(input)
	if !apperr.IsBadRequest(err) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestValidateCompanyInputRejectsBogusPhoneNumber(t *testing.T) {
	input := validCompanyInput()
	input.PhoneNumber = "12"

	err := validateCompanyInput(input)
	if !apperr.IsBadRequest(err) {
		t.Fatalf("expected bad request, got %v", err)
	}
}
