package messaging

import (
	"strings"

	"bitbucket.org/flact/governance_backend/apperr"
	"bitbucket.org/flact/governance_backend/models"
)

const LedgerServiceName = "ledger"

// TranslateLedgerError maps a remote failure onto the local error taxonomy.
// Recognized substrings become stable domain errors keyed on the given
// field; anything else is surfaced as service-unavailable carrying the
// origin service name, never the raw remote text. notFoundMessage is the
// stable key used when the remote side reports a missing entity.
func TranslateLedgerError(remoteMessage, field, notFoundMessage string) error {
	lowered := strings.ToLower(remoteMessage)

	switch {
	case strings.Contains(lowered, "already voted"):
		return apperr.Unprocessable(field, models.ErrCosignatoryAlreadyVoted)
	case strings.Contains(lowered, "voting has not started"):
		return apperr.Unprocessable(field, models.ErrVotingHasNotStarted)
	case strings.Contains(lowered, "voting has already closed"):
		return apperr.Unprocessable(field, models.ErrVotingAlreadyClosed)
	case strings.Contains(lowered, "voting has already started"):
		return apperr.Unprocessable(field, models.ErrVotingAlreadyStarted)
	case strings.Contains(lowered, "does not exist"):
		return apperr.NotFound(field, notFoundMessage)
	default:
		return apperr.ServiceUnavailable(LedgerServiceName, models.ErrServiceUnavailable)
	}
}
