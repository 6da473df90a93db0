package workflow

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/models"
)

// LogService turns entity updates into immutable audit rows. Each changed
// parameter becomes its own row so the history view can render one line per
// field.
type LogService struct {
	logger *logrus.Logger
}

func NewLogService(logger *logrus.Logger) *LogService {
	return &LogService{logger: logger}
}

var companyLogParameters = []string{
	models.CompanyLogName,
	models.CompanyLogRegistrationNo,
	models.CompanyLogIncorporationDate,
	models.CompanyLogFinancialYearEnd,
	models.CompanyLogNextMeetingDate,
	models.CompanyLogLogoName,
}

func formatVotingValue(value *decimal.Decimal) string {
	if value == nil {
		return ""
	}
	return value.StringFixed(2)
}

func formatVetoPower(vetoPower bool) string {
	if vetoPower {
		return "yes"
	}
	return "no"
}

// invitationParameter selects the company-log key recording a new member
// of the given role.
func invitationParameter(role models.UserRole) string {
	if role == models.UserRoleCoSignatory {
		return models.CompanyLogCosignInvitation
	}
	return models.CompanyLogCosecInvitation
}

// workplaceParameter scopes a workplace field to its company so the same
// field changing at two companies yields two distinguishable rows.
func workplaceParameter(field, companyName string) string {
	if companyName == "" {
		return field
	}
	return field + " (" + companyName + ")"
}

// LogCompanyChanges diffs the tracked company parameters and persists one
// row per difference.
func (s *LogService) LogCompanyChanges(ctx context.Context, companyId int, oldValues, newValues map[string]string, principal Principal) error {
	changes := models.DiffValues(companyLogParameters, oldValues, newValues)
	db := config.GetDB()
	return models.InsertCompanyLogs(db, ctx, principal.AllianceId, companyId, principal.InitiatorId(), changes)
}

// LogWorkplaceChanges writes the before/after of one workplace update
// inside the caller's transaction so log rows commit with the change they
// describe.
func (s *LogService) LogWorkplaceChanges(tx *gorm.DB, ctx context.Context, current models.Workplace, proposed WorkplaceUpdate, principal Principal) error {
	companyName := ""
	if current.Company != nil {
		companyName = current.Company.Name
	}

	parameters := []string{
		workplaceParameter(models.UserLogVotingValue, companyName),
		workplaceParameter(models.UserLogVetoPower, companyName),
		workplaceParameter(models.UserLogPositions, companyName),
	}
	oldValues := map[string]string{
		parameters[0]: formatVotingValue(current.VotingValue),
		parameters[1]: formatVetoPower(current.VetoPower),
		parameters[2]: strings.Join(current.PositionNames(), ", "),
	}
	proposedNames := positionNames(proposed.Positions)
	sort.Strings(proposedNames)
	newValues := map[string]string{
		parameters[0]: formatVotingValue(proposed.VotingValue),
		parameters[1]: formatVetoPower(proposed.VetoPower),
		parameters[2]: strings.Join(proposedNames, ", "),
	}

	changes := models.DiffValues(parameters, oldValues, newValues)
	return models.InsertUserLogs(tx, ctx, principal.AllianceId, current.UserId, principal.InitiatorId(), changes)
}

// LogNewWorkplaces records the initial workplace attachment both on the
// user and on each affected company.
func (s *LogService) LogNewWorkplaces(ctx context.Context, workplaces []models.Workplace, role models.UserRole, principal Principal) error {
	db := config.GetDB()
	for _, workplace := range workplaces {
		companyName := ""
		if workplace.Company != nil {
			companyName = workplace.Company.Name
		}
		changes := []models.LogChange{
			{
				Parameter: workplaceParameter(models.UserLogPositions, companyName),
				OldValue:  "",
				NewValue:  strings.Join(workplace.PositionNames(), ", "),
			},
		}
		if workplace.VotingValue != nil {
			changes = append(changes, models.LogChange{
				Parameter: workplaceParameter(models.UserLogVotingValue, companyName),
				OldValue:  "",
				NewValue:  formatVotingValue(workplace.VotingValue),
			})
		}
		if err := models.InsertUserLogs(db, ctx, principal.AllianceId, workplace.UserId, principal.InitiatorId(), changes); err != nil {
			return err
		}

		companyChanges := []models.LogChange{
			{
				Parameter: invitationParameter(role),
				OldValue:  "",
				NewValue:  strings.Join(workplace.PositionNames(), ", "),
			},
		}
		if err := models.InsertCompanyLogs(db, ctx, principal.AllianceId, workplace.CompanyId, principal.InitiatorId(), companyChanges); err != nil {
			return err
		}
	}
	return nil
}

// GetUserLogs serves the per-user audit history, newest first.
func (s *LogService) GetUserLogs(ctx context.Context, userId int) ([]models.UserLog, error) {
	return models.GetUserLogs(ctx, userId)
}

// LogUserStatusChange records a lifecycle transition (activate, deactivate).
func (s *LogService) LogUserStatusChange(ctx context.Context, user models.User, newStatus models.UserStatus, principal Principal) error {
	db := config.GetDB()
	changes := []models.LogChange{
		{
			Parameter: models.UserLogStatus,
			OldValue:  string(user.Status),
			NewValue:  string(newStatus),
		},
	}
	return models.InsertUserLogs(db, ctx, principal.AllianceId, user.ID, principal.InitiatorId(), changes)
}
