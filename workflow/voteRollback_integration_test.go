package workflow

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"bitbucket.org/flact/governance_backend/apperr"
	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/messaging"
	"bitbucket.org/flact/governance_backend/models"
	"bitbucket.org/flact/governance_backend/utils"
)

// rejectingLedger rejects every vote the way the ledger rejects a
// duplicate one.
type rejectingLedger struct {
	fakeLedger
	reject bool
}

func (l *rejectingLedger) VoteForResolution(ctx context.Context, payload messaging.VotePayload) error {
	l.voteCalls++
	if l.reject {
		return apperr.Unprocessable("resolutionId", models.ErrCosignatoryAlreadyVoted)
	}
	return nil
}

func TestVoteRejectionRollsBackActivity(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires MySQL, DB_* env)")
	}

	config.ConnectDatabaseWithRetry()
	if err := models.MigrateTable(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db := config.GetDB()

	alliance := models.Alliance{Name: "vote-rollback-" + time.Now().Format("150405.000")}
	if err := db.Create(&alliance).Error; err != nil {
		t.Fatalf("create alliance: %v", err)
	}

	ctx := utils.SetAllianceIdInContext(context.Background(), alliance.ID)
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")

	company := models.Company{AllianceId: alliance.ID, Name: "Rollback Co"}
	if err := db.WithContext(ctx).Create(&company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	voter := models.User{AllianceId: alliance.ID, Role: models.UserRoleCoSignatory, Email: "voter@test.local"}
	if err := db.WithContext(ctx).Create(&voter).Error; err != nil {
		t.Fatalf("create voter: %v", err)
	}
	shadow := models.Resolution{
		ID:              900001,
		AllianceId:      alliance.ID,
		CompanyId:       company.ID,
		CreatedById:     1,
		Title:           "Rollback subject",
		Type:            models.ResolutionTypeDirectors,
		VotingStartDate: time.Now().Add(-time.Hour),
		VotingEndDate:   time.Now().Add(time.Hour),
	}
	if err := db.WithContext(ctx).Create(&shadow).Error; err != nil {
		t.Fatalf("create shadow resolution: %v", err)
	}

	ledger := &rejectingLedger{reject: true}
	service := NewResolutionService(testLogger(), ledger, nil, nil, nil)
	principal := Principal{UserId: voter.ID, AllianceId: alliance.ID, Role: models.UserRoleCoSignatory}

	err := service.VoteForResolution(ctx, shadow.ID, models.ResolutionVoteAccept, principal)
	if !apperr.IsUnprocessable(err) {
		t.Fatalf("expected ledger rejection to surface, got %v", err)
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.Activity{}).
		Where("resolution_id = ?", shadow.ID).Count(&count).Error; err != nil {
		t.Fatalf("count activities: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected vote must leave no activity row, got %d", count)
	}

	ledger.reject = false
	if err := service.VoteForResolution(ctx, shadow.ID, models.ResolutionVoteAccept, principal); err != nil {
		t.Fatalf("accepted vote failed: %v", err)
	}
	if err := db.WithContext(ctx).Model(&models.Activity{}).
		Where("resolution_id = ?", shadow.ID).Count(&count).Error; err != nil {
		t.Fatalf("count activities: %v", err)
	}
	if count != 1 {
		t.Fatalf("accepted vote writes exactly one activity row, got %d", count)
	}
}
