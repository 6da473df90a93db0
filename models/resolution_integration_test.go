package models_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/models"
	"bitbucket.org/flact/governance_backend/utils"
)

func TestFindResolutionIdsByIdentityStaysInTenant(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires MySQL, DB_* env)")
	}

	config.ConnectDatabaseWithRetry()
	if err := models.MigrateTable(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db := config.GetDB()

	stamp := time.Now().Format("150405.000")
	ours := models.Alliance{Name: "identity-ours-" + stamp}
	if err := db.Create(&ours).Error; err != nil {
		t.Fatalf("create alliance: %v", err)
	}
	theirs := models.Alliance{Name: "identity-theirs-" + stamp}
	if err := db.Create(&theirs).Error; err != nil {
		t.Fatalf("create alliance: %v", err)
	}

	title := "Budget approval " + stamp
	mine := models.Resolution{
		AllianceId:  ours.ID,
		CompanyId:   1,
		CreatedById: 1,
		Title:       title,
		Type:        models.ResolutionTypeDirectors,
	}
	if err := db.Create(&mine).Error; err != nil {
		t.Fatalf("create resolution: %v", err)
	}
	foreign := models.Resolution{
		AllianceId:  theirs.ID,
		CompanyId:   2,
		CreatedById: 2,
		Title:       title,
		Type:        models.ResolutionTypeDirectors,
	}
	if err := db.Create(&foreign).Error; err != nil {
		t.Fatalf("create resolution: %v", err)
	}

	ctx := utils.SetAllianceIdInContext(context.Background(), ours.ID)

	// The shared title matches rows in both alliances; only ours may come back.
	ids, err := models.FindResolutionIdsByIdentity(ctx, []string{title})
	if err != nil {
		t.Fatalf("find by identity: %v", err)
	}
	assertOnlyOwnResolution(t, ids, mine.ID, foreign.ID)

	// Several fragments at once: the first branch of the disjunction must be
	// tenant-scoped too, not just the last one.
	ids, err = models.FindResolutionIdsByIdentity(ctx, []string{
		"%", // matches every id
		title,
	})
	if err != nil {
		t.Fatalf("find by identity: %v", err)
	}
	assertOnlyOwnResolution(t, ids, mine.ID, foreign.ID)
}

func assertOnlyOwnResolution(t *testing.T, ids []int, wantId, foreignId int) {
	t.Helper()
	found := false
	for _, id := range ids {
		if id == foreignId {
			t.Fatalf("foreign alliance resolution %d leaked into the filter set %v", foreignId, ids)
		}
		if id == wantId {
			found = true
		}
	}
	if !found {
		t.Fatalf("own resolution %d missing from filter set %v", wantId, ids)
	}
}
