package workflow

import (
	"testing"

	"bitbucket.org/flact/governance_backend/models"
)

func TestInvitationParameterPerRole(t *testing.T) {
	if got := invitationParameter(models.UserRoleCoSignatory); got != models.CompanyLogCosignInvitation {
		t.Fatalf("cosignatory invitation row must use %q, got %q", models.CompanyLogCosignInvitation, got)
	}
	if got := invitationParameter(models.UserRoleCoSecretary); got != models.CompanyLogCosecInvitation {
		t.Fatalf("co-secretary invitation row must use %q, got %q", models.CompanyLogCosecInvitation, got)
	}
}

func TestWorkplaceParameterScopesToCompany(t *testing.T) {
	if got := workplaceParameter(models.UserLogVotingValue, "Acme"); got != "votingValue (Acme)" {
		t.Fatalf("unexpected scoped parameter %q", got)
	}
	if got := workplaceParameter(models.UserLogPositions, ""); got != models.UserLogPositions {
		t.Fatalf("missing company name must leave the field bare, got %q", got)
	}
}
