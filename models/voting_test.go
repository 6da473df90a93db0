package models_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"bitbucket.org/flact/governance_backend/apperr"
	"bitbucket.org/flact/governance_backend/models"
)

func dec(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func workplace(userId int, votingValue *decimal.Decimal, status models.UserStatus) models.Workplace {
	return models.Workplace{
		UserId:      userId,
		CompanyId:   1,
		VotingValue: votingValue,
		User:        &models.User{ID: userId, Status: status},
	}
}

func TestCompanyVotingTotalSkipsExcludedAndNonActive(t *testing.T) {
	workplaces := []models.Workplace{
		workplace(1, dec("40.00"), models.UserStatusActive),
		workplace(2, dec("30.00"), models.UserStatusActive),
		workplace(3, dec("25.00"), models.UserStatusDeleted),
		workplace(4, nil, models.UserStatusActive),
		workplace(5, dec("15.00"), models.UserStatusInactive),
	}

	total := models.CompanyVotingTotal(workplaces, 2)
	if !total.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected 40.00 (user 2 excluded, users 3 and 5 not active, user 4 nil), got %s", total)
	}
}

func TestCompanyVotingTotalInactiveUserDoesNotCount(t *testing.T) {
	workplaces := []models.Workplace{
		workplace(1, dec("40.00"), models.UserStatusInactive),
	}

	total := models.CompanyVotingTotal(workplaces, 0)
	if !total.IsZero() {
		t.Fatalf("inactive user's voting value must not count, got %s", total)
	}
}

func TestValidateVotingValueExactlyHundredPasses(t *testing.T) {
	workplaces := []models.Workplace{
		workplace(1, dec("60.00"), models.UserStatusActive),
		workplace(2, dec("39.99"), models.UserStatusActive),
	}

	if err := models.ValidateVotingValue(workplaces, 0, dec("0.01"), 1); err != nil {
		t.Fatalf("total of exactly 100.00 must pass, got %v", err)
	}
}

func TestValidateVotingValueOverflowFailsWithCompanyDetail(t *testing.T) {
	workplaces := []models.Workplace{
		workplace(1, dec("70.00"), models.UserStatusActive),
	}

	err := models.ValidateVotingValue(workplaces, 0, dec("35.00"), 7)
	if err == nil {
		t.Fatal("70.00 + 35.00 must exceed the limit")
	}
	if !apperr.IsUnprocessable(err) {
		t.Fatalf("expected unprocessable, got %v", err)
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	field := appErr.Fields[0]
	if field.Field != "votingValue" || field.Message != models.ErrCompanyTotalVotingValueLimit {
		t.Fatalf("unexpected field error: %+v", field)
	}
	if field.Details["companyId"] != 7 {
		t.Fatalf("expected companyId detail 7, got %v", field.Details["companyId"])
	}
}

func TestValidateVotingValueReplacingOwnContribution(t *testing.T) {
	// User 1 already holds 90.00; raising their own value to 95.00 must not
	// double count the old contribution.
	workplaces := []models.Workplace{
		workplace(1, dec("90.00"), models.UserStatusActive),
		workplace(2, dec("5.00"), models.UserStatusActive),
	}

	if err := models.ValidateVotingValue(workplaces, 1, dec("95.00"), 1); err != nil {
		t.Fatalf("replacing own contribution within limit must pass, got %v", err)
	}
	if err := models.ValidateVotingValue(workplaces, 1, dec("95.01"), 1); err == nil {
		t.Fatal("replacing own contribution past the limit must fail")
	}
}

func TestValidateVotingValueNilProposedPasses(t *testing.T) {
	workplaces := []models.Workplace{
		workplace(1, dec("100.00"), models.UserStatusActive),
	}
	if err := models.ValidateVotingValue(workplaces, 0, nil, 1); err != nil {
		t.Fatalf("nil voting value must always pass, got %v", err)
	}
}
