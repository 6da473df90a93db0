package models

import (
	"github.com/shopspring/decimal"

	"bitbucket.org/flact/governance_backend/apperr"
)

var votingValueLimit = decimal.NewFromInt(100)

// CompanyVotingTotal sums the voting values of a company's workplaces,
// skipping the one owned by excludeUserId and any workplace whose user is
// not active. The result is rounded to two decimals.
func CompanyVotingTotal(workplaces []Workplace, excludeUserId int) decimal.Decimal {
	total := decimal.Zero
	for _, w := range workplaces {
		if w.UserId == excludeUserId {
			continue
		}
		if w.User != nil && w.User.Status != UserStatusActive {
			continue
		}
		if w.VotingValue == nil {
			continue
		}
		total = total.Add(*w.VotingValue)
	}
	return total.Round(2)
}

// ValidateVotingValue checks that assigning proposed to the user identified
// by excludeUserId keeps the company's voting total at or below 100.00.
// A nil proposed value always passes.
func ValidateVotingValue(workplaces []Workplace, excludeUserId int, proposed *decimal.Decimal, companyId int) error {
	if proposed == nil {
		return nil
	}
	total := CompanyVotingTotal(workplaces, excludeUserId).Add(*proposed).Round(2)
	if total.GreaterThan(votingValueLimit) {
		return apperr.UnprocessableWithDetails("votingValue", ErrCompanyTotalVotingValueLimit, map[string]any{
			"companyId": companyId,
		})
	}
	return nil
}
