package workflow

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/messaging"
	"bitbucket.org/flact/governance_backend/models"
	"bitbucket.org/flact/governance_backend/utils"
)

// creatingLedger hands out a fixed resolution id and reports the voter set
// back through GetResolutionInfo, the way the ledger does after creation.
type creatingLedger struct {
	fakeLedger
	nextId int
}

func (l *creatingLedger) CreateResolution(ctx context.Context, draft messaging.ResolutionDraft) (int, error) {
	l.createCalls++
	return l.nextId, nil
}

type countingNotifier struct {
	userIds  []int
	contexts []map[string]string
}

func (n *countingNotifier) SendEventNotifications(ctx context.Context, userId int, template models.NotificationTemplate, data NotificationData) error {
	n.userIds = append(n.userIds, userId)
	n.contexts = append(n.contexts, data.Context)
	return nil
}

type passthroughShortener struct{}

func (passthroughShortener) Shorten(ctx context.Context, longURL string) string { return longURL }

func TestCreateResolutionPersistsShadowActivityAndNotifies(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires MySQL, DB_* env)")
	}

	config.ConnectDatabaseWithRetry()
	if err := models.MigrateTable(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db := config.GetDB()

	alliance := models.Alliance{Name: "resolution-create-" + time.Now().Format("150405.000")}
	if err := db.Create(&alliance).Error; err != nil {
		t.Fatalf("create alliance: %v", err)
	}

	ctx := utils.SetAllianceIdInContext(context.Background(), alliance.ID)
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")

	company := models.Company{AllianceId: alliance.ID, Name: "Create Co"}
	if err := db.WithContext(ctx).Create(&company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	cosec := models.User{AllianceId: alliance.ID, Role: models.UserRoleCoSecretary, Email: "cosec@test.local"}
	if err := db.WithContext(ctx).Create(&cosec).Error; err != nil {
		t.Fatalf("create cosec: %v", err)
	}
	voter := models.User{AllianceId: alliance.ID, Role: models.UserRoleCoSignatory, Email: "voter@test.local"}
	if err := db.WithContext(ctx).Create(&voter).Error; err != nil {
		t.Fatalf("create voter: %v", err)
	}

	resolutionId := int(time.Now().Unix()%1_000_000) + 1_000_000
	ledger := &creatingLedger{nextId: resolutionId}
	ledger.info = &messaging.ResolutionInfo{
		Id:        resolutionId,
		CompanyId: company.ID,
		CosecId:   cosec.ID,
		Type:      string(models.ResolutionTypeDirectors),
		Votes:     map[string]messaging.VoteRecord{strconv.Itoa(voter.ID): {}},
	}

	notifier := &countingNotifier{}
	service := NewResolutionService(testLogger(), ledger, notifier, passthroughShortener{}, nil)
	principal := Principal{UserId: cosec.ID, AllianceId: alliance.ID, Role: models.UserRoleCoSecretary}

	now := time.Now()
	id, err := service.CreateResolution(ctx, models.NewResolution{
		CompanyId:       company.ID,
		Title:           "Appoint auditor",
		Type:            models.ResolutionTypeDirectors,
		VotingStartDate: now,
		VotingEndDate:   now.Add(48 * time.Hour),
		ApprovalRatio:   50,
	}, principal)
	if err != nil {
		t.Fatalf("create resolution: %v", err)
	}
	if id != resolutionId {
		t.Fatalf("resolution id: got %d, want ledger-assigned %d", id, resolutionId)
	}
	if ledger.createCalls != 1 {
		t.Fatalf("ledger create calls: got %d, want 1", ledger.createCalls)
	}

	shadow, err := models.GetResolution(ctx, resolutionId)
	if err != nil {
		t.Fatalf("shadow row missing: %v", err)
	}
	if shadow.CreatedById != cosec.ID || shadow.CompanyId != company.ID {
		t.Fatalf("shadow row fields: createdBy=%d company=%d", shadow.CreatedById, shadow.CompanyId)
	}

	var count int64
	err = db.WithContext(ctx).Model(&models.Activity{}).
		Where("resolution_id = ? AND action = ?", resolutionId, models.ActivityCreatedResolution).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count activities: %v", err)
	}
	if count != 1 {
		t.Fatalf("created-resolution activity rows: got %d, want 1", count)
	}

	if len(notifier.userIds) != 1 || notifier.userIds[0] != voter.ID {
		t.Fatalf("notified users: got %v, want [%d]", notifier.userIds, voter.ID)
	}

	sent := notifier.contexts[0]
	if sent["resolutionTitle"] != "Appoint auditor" {
		t.Fatalf("notification context title: got %q", sent["resolutionTitle"])
	}
	if sent["companyName"] != "Create Co" {
		t.Fatalf("notification context company: got %q", sent["companyName"])
	}
	if sent["votingStartDate"] == "" || sent["votingEndDate"] == "" {
		t.Fatalf("notification context must carry the voting window, got %v", sent)
	}
}
