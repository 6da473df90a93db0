package messaging_test

import (
	"context"
	"errors"
	"testing"

	"bitbucket.org/flact/governance_backend/apperr"
	"bitbucket.org/flact/governance_backend/messaging"
	"bitbucket.org/flact/governance_backend/models"
)

// fakeBus answers every request with a fixed error (or result) and records
// the patterns it saw.
type fakeBus struct {
	requestErr error
	patterns   []string
}

func (b *fakeBus) Request(ctx context.Context, pattern string, payload any, result any) error {
	b.patterns = append(b.patterns, pattern)
	return b.requestErr
}

func (b *fakeBus) Emit(ctx context.Context, pattern string, payload any) error {
	b.patterns = append(b.patterns, pattern)
	return nil
}

func TestEditResolutionAlreadyVotedMeansVotingStarted(t *testing.T) {
	bus := &fakeBus{requestErr: &messaging.RemoteError{
		Pattern: messaging.PatternEditResolution,
		Message: "Cosignatory has already voted for this resolution",
	}}
	client := messaging.NewLedgerClient(bus)

	err := client.EditResolution(context.Background(), messaging.EditPayload{ResolutionId: 1})
	if !apperr.IsUnprocessable(err) {
		t.Fatalf("expected unprocessable, got %v", err)
	}
	field := fieldError(t, err)
	if field.Message != models.ErrVotingAlreadyStarted {
		t.Fatalf("a cast vote locks edits as VOTING_ALREADY_STARTED, got %s", field.Message)
	}
}

func TestVoteForResolutionAlreadyVotedKeepsItsOwnMeaning(t *testing.T) {
	bus := &fakeBus{requestErr: &messaging.RemoteError{
		Pattern: messaging.PatternVoteForResolution,
		Message: "Cosignatory has already voted for this resolution",
	}}
	client := messaging.NewLedgerClient(bus)

	err := client.VoteForResolution(context.Background(), messaging.VotePayload{ResolutionId: 1, CosignatoryId: 2})
	field := fieldError(t, err)
	if field.Message != models.ErrCosignatoryAlreadyVoted {
		t.Fatalf("expected COSIGNATORY_ALREADY_VOTED, got %s", field.Message)
	}
}

func TestCreateResolutionMissingCompanyIsNotFound(t *testing.T) {
	bus := &fakeBus{requestErr: &messaging.RemoteError{
		Pattern: messaging.PatternCreateResolution,
		Message: "Company with id 9 does not exist",
	}}
	client := messaging.NewLedgerClient(bus)

	_, err := client.CreateResolution(context.Background(), messaging.ResolutionDraft{CompanyId: 9})
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	field := fieldError(t, err)
	if field.Field != "companyId" || field.Message != models.ErrCompanyNotFound {
		t.Fatalf("unexpected field error: %+v", field)
	}
}

func TestNonRemoteErrorsPassThroughUntranslated(t *testing.T) {
	timeout := errors.New("context deadline exceeded")
	bus := &fakeBus{requestErr: apperr.ServiceUnavailable(messaging.LedgerServiceName, models.ErrServiceUnavailable)}
	client := messaging.NewLedgerClient(bus)

	err := client.CancelResolution(context.Background(), messaging.CancelPayload{ResolutionId: 1})
	if !apperr.IsServiceUnavailable(err) {
		t.Fatalf("service unavailable must survive the boundary, got %v", err)
	}

	bus.requestErr = timeout
	if err := client.CancelResolution(context.Background(), messaging.CancelPayload{ResolutionId: 1}); !errors.Is(err, timeout) {
		t.Fatalf("plain errors must pass through, got %v", err)
	}
}
