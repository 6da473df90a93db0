package workflow

import (
	"testing"

	"github.com/shopspring/decimal"

	"bitbucket.org/flact/governance_backend/models"
)

func currentWorkplace(votingValue string, vetoPower bool, positions ...models.UserPosition) models.Workplace {
	w := models.Workplace{VetoPower: vetoPower}
	if votingValue != "" {
		d := decimal.RequireFromString(votingValue)
		w.VotingValue = &d
	}
	for _, p := range positions {
		w.Positions = append(w.Positions, models.WorkplacePosition{Name: p})
	}
	return w
}

func proposedUpdate(votingValue string, vetoPower bool, positions ...models.UserPosition) WorkplaceUpdate {
	u := WorkplaceUpdate{VetoPower: vetoPower, Positions: positions}
	if votingValue != "" {
		d := decimal.RequireFromString(votingValue)
		u.VotingValue = &d
	}
	return u
}

func TestWorkplaceChangedIdenticalStateIsUnchanged(t *testing.T) {
	current := currentWorkplace("50.00", true, models.UserPositionDirector, models.UserPositionShareHolder)
	proposed := proposedUpdate("50.00", true, models.UserPositionDirector, models.UserPositionShareHolder)

	if WorkplaceChanged(current, proposed) {
		t.Fatal("identical state must be detected as unchanged")
	}
}

func TestWorkplaceChangedPositionOrderDoesNotMatter(t *testing.T) {
	current := currentWorkplace("50.00", false, models.UserPositionDirector, models.UserPositionShareHolder)
	proposed := proposedUpdate("50.00", false, models.UserPositionShareHolder, models.UserPositionDirector)

	if WorkplaceChanged(current, proposed) {
		t.Fatal("position order must not count as a change")
	}
}

func TestWorkplaceChangedScaleDoesNotMatter(t *testing.T) {
	current := currentWorkplace("50", false, models.UserPositionDirector)
	proposed := proposedUpdate("50.00", false, models.UserPositionDirector)

	if WorkplaceChanged(current, proposed) {
		t.Fatal("50 and 50.00 are the same voting value")
	}
}

func TestWorkplaceChangedDetectsEachTupleField(t *testing.T) {
	base := currentWorkplace("50.00", false, models.UserPositionDirector)

	if !WorkplaceChanged(base, proposedUpdate("51.00", false, models.UserPositionDirector)) {
		t.Fatal("voting value change must be detected")
	}
	if !WorkplaceChanged(base, proposedUpdate("50.00", true, models.UserPositionDirector)) {
		t.Fatal("veto power change must be detected")
	}
	if !WorkplaceChanged(base, proposedUpdate("50.00", false, models.UserPositionShareHolder)) {
		t.Fatal("position swap must be detected")
	}
	if !WorkplaceChanged(base, proposedUpdate("50.00", false, models.UserPositionDirector, models.UserPositionShareHolder)) {
		t.Fatal("added position must be detected")
	}
	if !WorkplaceChanged(base, proposedUpdate("", false, models.UserPositionDirector)) {
		t.Fatal("dropping the voting value must be detected")
	}
}

func TestWorkplaceChangedDuplicateProposedPositionsNormalize(t *testing.T) {
	current := currentWorkplace("", false, models.UserPositionDirector)
	proposed := proposedUpdate("", false, models.UserPositionDirector, models.UserPositionDirector)

	if WorkplaceChanged(current, proposed) {
		t.Fatal("duplicate proposed positions must normalize away")
	}
}
