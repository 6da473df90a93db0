package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bitbucket.org/flact/governance_backend/apperr"
	"bitbucket.org/flact/governance_backend/messaging"
	"bitbucket.org/flact/governance_backend/models"
)

// fakeLedger records calls; responses are programmable per test.
type fakeLedger struct {
	createCalls int
	voteCalls   int
	info        *messaging.ResolutionInfo
	infoErr     error
}

func (l *fakeLedger) CreateResolution(ctx context.Context, draft messaging.ResolutionDraft) (int, error) {
	l.createCalls++
	return 1, nil
}

func (l *fakeLedger) VoteForResolution(ctx context.Context, payload messaging.VotePayload) error {
	l.voteCalls++
	return nil
}

func (l *fakeLedger) GetResolutionInfo(ctx context.Context, resolutionId int) (*messaging.ResolutionInfo, error) {
	return l.info, l.infoErr
}

func (l *fakeLedger) GetResolutionsInfo(ctx context.Context, filter messaging.ResolutionsFilter) (*messaging.ResolutionsResult, error) {
	return &messaging.ResolutionsResult{}, nil
}

func (l *fakeLedger) CancelResolution(ctx context.Context, payload messaging.CancelPayload) error {
	return nil
}

func (l *fakeLedger) EditResolution(ctx context.Context, payload messaging.EditPayload) error {
	return nil
}

func (l *fakeLedger) RegisterCompany(ctx context.Context, companyId int) error { return nil }

func (l *fakeLedger) CreateDirector(ctx context.Context, payload messaging.CreateCosignatoryPayload) error {
	return nil
}

func (l *fakeLedger) CreateShareholder(ctx context.Context, payload messaging.CreateCosignatoryPayload) error {
	return nil
}

func (l *fakeLedger) RemoveDirector(ctx context.Context, payload messaging.RemoveCosignatoryPayload) error {
	return nil
}

func (l *fakeLedger) RemoveShareholder(ctx context.Context, payload messaging.RemoveCosignatoryPayload) error {
	return nil
}

func (l *fakeLedger) UpdateShareholder(ctx context.Context, payload messaging.UpdateShareholderPayload) error {
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestCreateResolutionInvertedWindowFailsBeforeLedger(t *testing.T) {
	ledger := &fakeLedger{}
	service := NewResolutionService(testLogger(), ledger, nil, nil, nil)

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	_, err := service.CreateResolution(context.Background(), models.NewResolution{
		CompanyId:       1,
		Title:           "Backdated window",
		VotingStartDate: start,
		VotingEndDate:   end,
	}, Principal{UserId: 1, AllianceId: 1, Role: models.UserRoleCoSecretary})

	if !apperr.IsBadRequest(err) {
		t.Fatalf("expected bad request, got %v", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if appErr.Fields[0].Field != "votingEndDate" || appErr.Fields[0].Message != models.ErrVotingStartDateMoreThanEndDate {
		t.Fatalf("unexpected field error: %+v", appErr.Fields[0])
	}
	if ledger.createCalls != 0 {
		t.Fatalf("ledger must not be reached on invalid dates, got %d calls", ledger.createCalls)
	}
}

func TestCreateResolutionEqualDatesPassValidation(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if err := validateVotingDates(date, date); err != nil {
		t.Fatalf("equal start and end must pass, got %v", err)
	}
}

func TestGetResolutionForbiddenForNonVoterCosignatory(t *testing.T) {
	ledger := &fakeLedger{info: &messaging.ResolutionInfo{
		Id:        1,
		CompanyId: 1,
		Votes: map[string]messaging.VoteRecord{
			"2": {Vote: "PENDING"},
		},
	}}
	service := NewResolutionService(testLogger(), ledger, nil, nil, nil)

	_, err := service.GetResolution(context.Background(), 1, Principal{UserId: 3, AllianceId: 1, Role: models.UserRoleCoSignatory})
	if !apperr.IsForbidden(err) {
		t.Fatalf("a cosignatory absent from the vote map must be forbidden, got %v", err)
	}
}

func TestRemovedDocumentIdsIsExactSetDifference(t *testing.T) {
	current := []models.File{{ID: 1}, {ID: 2}, {ID: 3}}

	removed := RemovedDocumentIds(current, []int{2, 4})
	if len(removed) != 2 || removed[0] != 1 || removed[1] != 3 {
		t.Fatalf("expected [1 3], got %v", removed)
	}

	if removed := RemovedDocumentIds(current, []int{1, 2, 3}); len(removed) != 0 {
		t.Fatalf("identical sets must remove nothing, got %v", removed)
	}
	if removed := RemovedDocumentIds(nil, []int{1}); len(removed) != 0 {
		t.Fatalf("no current documents means nothing to remove, got %v", removed)
	}
}

func TestExpandCosignatoryVoteDefaultsForPendingVoter(t *testing.T) {
	weight := decimal.NewFromFloat(12.5)
	user := models.User{
		ID: 2,
		Workplaces: []models.Workplace{
			{CompanyId: 1, VotingValue: &weight, VetoPower: true},
		},
	}
	info := messaging.ResolutionInfo{CompanyId: 1, Type: string(models.ResolutionTypeShareholders)}

	vote := expandCosignatoryVote(user, messaging.VoteRecord{Vote: "PENDING"}, info)
	if vote.VoteDate != nil {
		t.Fatalf("pending voter must have no vote date, got %v", vote.VoteDate)
	}
	if vote.VotingValue == nil || !vote.VotingValue.Equal(weight) {
		t.Fatalf("pending voter shows workplace voting value, got %v", vote.VotingValue)
	}
	if !vote.VetoPower {
		t.Fatal("pending voter shows workplace veto power")
	}
	if vote.Position != string(models.UserPositionShareHolder) {
		t.Fatalf("position derives from resolution type, got %q", vote.Position)
	}
}

func TestExpandCosignatoryVoteWithoutWorkplaceFallsBackToOne(t *testing.T) {
	user := models.User{ID: 2}
	info := messaging.ResolutionInfo{CompanyId: 1, Type: string(models.ResolutionTypeDirectors)}

	vote := expandCosignatoryVote(user, messaging.VoteRecord{Vote: "PENDING"}, info)
	if vote.VotingValue == nil || !vote.VotingValue.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("default voting value is 1, got %v", vote.VotingValue)
	}
	if vote.VetoPower {
		t.Fatal("default veto power is false")
	}
}

func TestExpandCosignatoryVoteRecordedVoteKeepsLedgerValues(t *testing.T) {
	current := decimal.NewFromInt(50)
	recorded := decimal.NewFromInt(30)
	veto := true
	votedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	user := models.User{
		ID: 2,
		Workplaces: []models.Workplace{
			{CompanyId: 1, VotingValue: &current, VetoPower: false},
		},
	}
	info := messaging.ResolutionInfo{CompanyId: 1, Type: string(models.ResolutionTypeShareholders)}
	record := messaging.VoteRecord{
		Vote:      string(models.ResolutionVoteAccept),
		Timestamp: votedAt,
		Weight:    &recorded,
		Veto:      &veto,
	}

	vote := expandCosignatoryVote(user, record, info)
	if vote.VoteDate == nil || !vote.VoteDate.Equal(votedAt) {
		t.Fatalf("recorded vote keeps its timestamp, got %v", vote.VoteDate)
	}
	if !vote.VotingValue.Equal(recorded) {
		t.Fatalf("recorded vote keeps the weight at voting time, got %v", vote.VotingValue)
	}
	if !vote.VetoPower {
		t.Fatal("recorded vote keeps the veto flag at voting time")
	}
}
