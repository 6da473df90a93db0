package workflow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/flact/governance_backend/apperr"
	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/messaging"
	"bitbucket.org/flact/governance_backend/models"
	"bitbucket.org/flact/governance_backend/utils"
)

// WorkplaceService keeps cosignatory shareholdings consistent: the
// company-wide voting-value sum invariant locally, and registrations
// mirrored to the ledger.
type WorkplaceService struct {
	logger *logrus.Logger
	ledger messaging.Ledger
	logs   *LogService
}

func NewWorkplaceService(logger *logrus.Logger, ledger messaging.Ledger, logs *LogService) *WorkplaceService {
	return &WorkplaceService{logger: logger, ledger: ledger, logs: logs}
}

func (s *WorkplaceService) getWorkplaceOrFail(ctx context.Context, userId, companyId int) (*models.Workplace, error) {
	workplace, err := models.GetWorkplaceWithCompanySiblings(ctx, userId, companyId)
	if err != nil {
		return nil, apperr.UnprocessableWithDetails("companyId", models.ErrWorkplaceNotFound, map[string]any{
			"companyId": companyId,
		})
	}
	return workplace, nil
}

// ValidateWorkplaces rejects duplicate company ids within the batch and
// re-validates the voting-sum invariant for every candidate that carries a
// voting value.
func (s *WorkplaceService) ValidateWorkplaces(ctx context.Context, candidates []models.NewWorkplace, allianceId int) error {
	seen := make(map[int]bool, len(candidates))
	for _, candidate := range candidates {
		if seen[candidate.CompanyId] {
			return apperr.BadRequest("workplaces", models.ErrWorkplacesMustBeUnique)
		}
		seen[candidate.CompanyId] = true

		if candidate.VotingValue == nil {
			continue
		}
		company, err := models.GetCompanyWithWorkplaces(ctx, candidate.CompanyId, allianceId)
		if err != nil {
			return apperr.Unprocessable("companyId", models.ErrCompanyNotFound)
		}
		if err := models.ValidateVotingValue(company.Workplaces, 0, candidate.VotingValue, company.ID); err != nil {
			return err
		}
	}
	return nil
}

// RegisterWorkplacesInBlockchain emits one registration per (user, company,
// position) triple. Fire-and-forget: the broker is trusted for delivery.
func (s *WorkplaceService) RegisterWorkplacesInBlockchain(ctx context.Context, userId int, workplaces []models.Workplace) {
	for _, workplace := range workplaces {
		positions := make([]models.UserPosition, 0, len(workplace.Positions))
		for _, position := range workplace.Positions {
			positions = append(positions, position.Name)
		}
		s.registerCosignatory(ctx, positions, userId, workplace.CompanyId, workplace.VotingValue, workplace.VetoPower)
	}
}

func (s *WorkplaceService) registerCosignatory(ctx context.Context, positions []models.UserPosition, userId, companyId int, votingValue *decimal.Decimal, vetoPower bool) {
	payload := messaging.CreateCosignatoryPayload{
		Id:          userId,
		CompanyId:   companyId,
		VotingValue: votingValue,
		VetoPower:   vetoPower,
		IsChairman:  false,
	}
	for _, position := range positions {
		var err error
		switch position {
		case models.UserPositionDirector:
			err = s.ledger.CreateDirector(ctx, payload)
		case models.UserPositionShareHolder:
			err = s.ledger.CreateShareholder(ctx, payload)
		default:
			continue
		}
		if err != nil {
			config.LogError(s.logger, "workplaceService.go", "registerCosignatory", string(position), payload, err)
		}
	}
}

func (s *WorkplaceService) removeCosignatory(ctx context.Context, positions []models.UserPosition, userId, companyId int) {
	payload := messaging.RemoveCosignatoryPayload{CompanyId: companyId, UserId: userId}
	for _, position := range positions {
		var err error
		switch position {
		case models.UserPositionDirector:
			err = s.ledger.RemoveDirector(ctx, payload)
		case models.UserPositionShareHolder:
			err = s.ledger.RemoveShareholder(ctx, payload)
		default:
			continue
		}
		if err != nil {
			config.LogError(s.logger, "workplaceService.go", "removeCosignatory", string(position), payload, err)
		}
	}
}

// WorkplaceUpdate is one proposed workplace state for a cosignatory.
type WorkplaceUpdate struct {
	CompanyId   int                   `json:"company_id"`
	VotingValue *decimal.Decimal      `json:"voting_value"`
	VetoPower   bool                  `json:"veto_power"`
	Positions   []models.UserPosition `json:"positions"`
}

type changedWorkplace struct {
	current  *models.Workplace
	proposed WorkplaceUpdate
}

func positionNames(positions []models.UserPosition) []string {
	names := make([]string, 0, len(positions))
	for _, position := range positions {
		names = append(names, string(position))
	}
	return names
}

// WorkplaceChanged compares the normalized tuple (voting value, veto power,
// sorted position names) of the current workplace against the proposal.
func WorkplaceChanged(current models.Workplace, proposed WorkplaceUpdate) bool {
	if current.VetoPower != proposed.VetoPower {
		return true
	}
	switch {
	case current.VotingValue == nil && proposed.VotingValue != nil,
		current.VotingValue != nil && proposed.VotingValue == nil:
		return true
	case current.VotingValue != nil && proposed.VotingValue != nil &&
		!current.VotingValue.Equal(*proposed.VotingValue):
		return true
	}

	currentNames := current.PositionNames()
	proposedNames := utils.UniqueSlice(positionNames(proposed.Positions))
	if len(currentNames) != len(proposedNames) {
		return true
	}
	for _, name := range proposedNames {
		if !utils.Contains(currentNames, name) {
			return true
		}
	}
	return false
}

// UpdateCosignatoryWorkplaces applies the proposed workplace states for one
// cosignatory. Unchanged workplaces are skipped entirely. For changed ones
// every discovered violation is accumulated so the client can fix all
// reported fields in one round trip.
func (s *WorkplaceService) UpdateCosignatoryWorkplaces(ctx context.Context, userId int, updates []WorkplaceUpdate, principal Principal) error {
	changed, err := s.collectChangedWorkplaces(ctx, userId, updates)
	if err != nil {
		return err
	}

	for _, change := range changed {
		lock, err := AcquireCompanyVotingLock(ctx, change.proposed.CompanyId)
		if err != nil {
			return apperr.ServiceUnavailable("lock", models.ErrServiceUnavailable)
		}
		err = s.applyWorkplaceChange(ctx, change, principal)
		ReleaseCompanyVotingLock(ctx, lock)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *WorkplaceService) collectChangedWorkplaces(ctx context.Context, userId int, updates []WorkplaceUpdate) ([]changedWorkplace, error) {
	var changed []changedWorkplace
	collector := &apperr.Collector{}

	for _, proposed := range updates {
		current, err := s.getWorkplaceOrFail(ctx, userId, proposed.CompanyId)
		if err != nil {
			return nil, err
		}
		if !WorkplaceChanged(*current, proposed) {
			continue
		}

		if err := s.checkActiveResolutions(ctx, userId, proposed.CompanyId); err != nil {
			collector.Add(err)
			continue
		}
		if current.Company != nil {
			if err := models.ValidateVotingValue(current.Company.Workplaces, userId, proposed.VotingValue, proposed.CompanyId); err != nil {
				collector.Add(err)
				continue
			}
		}
		changed = append(changed, changedWorkplace{current: current, proposed: proposed})
	}

	if collector.HasErrors() {
		return nil, collector.Unprocessable()
	}
	return changed, nil
}

func (s *WorkplaceService) applyWorkplaceChange(ctx context.Context, change changedWorkplace, principal Principal) error {
	current := change.current
	proposed := change.proposed

	currentPositions := make([]models.UserPosition, 0, len(current.Positions))
	for _, position := range current.Positions {
		currentPositions = append(currentPositions, position.Name)
	}
	addedPositions := utils.Difference(proposed.Positions, currentPositions)
	removedPositions := utils.Difference(currentPositions, proposed.Positions)

	s.removeCosignatory(ctx, removedPositions, current.UserId, current.CompanyId)
	s.registerCosignatory(ctx, addedPositions, current.UserId, current.CompanyId, proposed.VotingValue, proposed.VetoPower)

	heldShareholder := current.HasPosition(models.UserPositionShareHolder)
	droppedShareholder := utils.Contains(removedPositions, models.UserPositionShareHolder)
	if heldShareholder && !droppedShareholder {
		err := s.ledger.UpdateShareholder(ctx, messaging.UpdateShareholderPayload{
			Id:          current.UserId,
			CompanyId:   current.CompanyId,
			VotingValue: proposed.VotingValue,
			VetoPower:   proposed.VetoPower,
		})
		if err != nil {
			config.LogError(s.logger, "workplaceService.go", "applyWorkplaceChange", "update shareholder", current.UserId, err)
		}
	}

	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"voting_value": proposed.VotingValue,
			"veto_power":   proposed.VetoPower,
		}
		if err := tx.Model(&models.Workplace{}).Where("id = ?", current.ID).Updates(updates).Error; err != nil {
			return err
		}

		if len(removedPositions) > 0 {
			err := tx.Where("workplace_id = ? AND name IN ?", current.ID, removedPositions).
				Delete(&models.WorkplacePosition{}).Error
			if err != nil {
				return err
			}
		}
		for _, position := range addedPositions {
			row := models.WorkplacePosition{WorkplaceId: current.ID, Name: position}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		return s.logs.LogWorkplaceChanges(tx, ctx, *current, proposed, principal)
	})
}

// checkActiveResolutions blocks workplace changes while the cosignatory has
// resolutions awaiting a vote at that company. Only IN_PROGRESS and
// UPCOMING count; terminal statuses never block.
func (s *WorkplaceService) checkActiveResolutions(ctx context.Context, cosignatoryId, companyId int) error {
	now := time.Now()
	statuses := make([]string, 0, len(models.ResolutionActiveStatuses))
	for _, status := range models.ResolutionActiveStatuses {
		statuses = append(statuses, string(status))
	}

	result, err := s.ledger.GetResolutionsInfo(ctx, messaging.ResolutionsFilter{
		CosignatoryId: &cosignatoryId,
		CompanyId:     &companyId,
		Statuses:      statuses,
		IsVote:        utils.NewFalse(),
		EndDateFrom:   &now,
	})
	if err != nil {
		return err
	}
	if result.Count > 0 {
		return apperr.UnprocessableWithDetails("id", models.ErrUserHasActiveResolutions, map[string]any{
			"companyId": companyId,
		})
	}
	return nil
}

// GetCosignatoryWorkplaces lists a cosignatory's workplaces with positions
// and companies loaded.
func (s *WorkplaceService) GetCosignatoryWorkplaces(ctx context.Context, userId int, principal Principal) ([]models.Workplace, error) {
	if _, err := models.GetCosignatory(ctx, userId, principal.AllianceId); err != nil {
		return nil, apperr.NotFound("id", models.ErrUserNotFound)
	}
	return models.GetUserWorkplaces(ctx, userId)
}

// AddCosignatoryWorkplaces attaches new workplaces to a cosignatory and
// registers them on the ledger within the same local transaction scope.
func (s *WorkplaceService) AddCosignatoryWorkplaces(ctx context.Context, userId int, candidates []models.NewWorkplace, principal Principal) ([]models.Workplace, error) {
	cosignatory, err := models.GetCosignatory(ctx, userId, principal.AllianceId)
	if err != nil {
		return nil, apperr.NotFound("id", models.ErrUserNotFound)
	}

	for _, candidate := range candidates {
		for _, existing := range cosignatory.Workplaces {
			if existing.CompanyId == candidate.CompanyId {
				return nil, apperr.Unprocessable("workplaces", models.ErrUserAlreadyInWorkplace)
			}
		}
	}

	if err := s.ValidateWorkplaces(ctx, candidates, principal.AllianceId); err != nil {
		return nil, err
	}

	workplaces := make([]models.Workplace, 0, len(candidates))
	for _, candidate := range candidates {
		workplace := models.Workplace{
			UserId:      userId,
			CompanyId:   candidate.CompanyId,
			VotingValue: candidate.VotingValue,
			VetoPower:   candidate.VetoPower,
		}
		for _, position := range utils.UniqueSlice(candidate.Positions) {
			workplace.Positions = append(workplace.Positions, models.WorkplacePosition{Name: position})
		}
		workplaces = append(workplaces, workplace)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&workplaces).Error; err != nil {
			return err
		}
		s.RegisterWorkplacesInBlockchain(ctx, userId, workplaces)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.logs.LogNewWorkplaces(ctx, workplaces, models.UserRoleCoSignatory, principal); err != nil {
		config.LogError(s.logger, "workplaceService.go", "AddCosignatoryWorkplaces", "log", userId, err)
	}
	return workplaces, nil
}

// DeactivateCosignatory removes every position from the ledger and marks
// the user inactive. Blocked while any of the user's resolutions is still
// IN_PROGRESS or UPCOMING.
func (s *WorkplaceService) DeactivateCosignatory(ctx context.Context, userId int, principal Principal) (*models.User, error) {
	cosignatory, err := models.GetCosignatory(ctx, userId, principal.AllianceId)
	if err != nil {
		return nil, apperr.NotFound("id", models.ErrUserNotFound)
	}
	if cosignatory.Status == models.UserStatusInactive {
		return cosignatory, nil
	}

	result, err := s.ledger.GetResolutionsInfo(ctx, messaging.ResolutionsFilter{CosignatoryId: &userId})
	if err != nil {
		return nil, err
	}
	for _, info := range result.ResolutionsInfo {
		status := models.ResolutionStatus(info.Status)
		if status == models.ResolutionStatusInProgress || status == models.ResolutionStatusUpcoming {
			return nil, apperr.BadRequest("id", models.ErrUserHasActiveResolutions)
		}
	}

	for _, workplace := range cosignatory.Workplaces {
		positions := make([]models.UserPosition, 0, len(workplace.Positions))
		for _, position := range workplace.Positions {
			positions = append(positions, position.Name)
		}
		s.removeCosignatory(ctx, positions, userId, workplace.CompanyId)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userId).
		Update("status", models.UserStatusInactive).Error
	if err != nil {
		return nil, err
	}

	if err := s.logs.LogUserStatusChange(ctx, *cosignatory, models.UserStatusInactive, principal); err != nil {
		config.LogError(s.logger, "workplaceService.go", "DeactivateCosignatory", "log", userId, err)
	}
	cosignatory.Status = models.UserStatusInactive
	return cosignatory, nil
}

// ActivateCosignatory re-validates the voting-sum invariant for every
// workplace's company before any ledger call, then re-registers every
// position.
func (s *WorkplaceService) ActivateCosignatory(ctx context.Context, userId int, principal Principal) (*models.User, error) {
	cosignatory, err := models.GetCosignatory(ctx, userId, principal.AllianceId)
	if err != nil {
		return nil, apperr.NotFound("id", models.ErrUserNotFound)
	}
	if cosignatory.Status == models.UserStatusActive {
		return cosignatory, nil
	}

	for _, workplace := range cosignatory.Workplaces {
		company, err := models.GetCompanyWithWorkplaces(ctx, workplace.CompanyId, principal.AllianceId)
		if err != nil {
			return nil, apperr.Unprocessable("companyId", models.ErrCompanyNotFound)
		}
		if err := models.ValidateVotingValue(company.Workplaces, userId, workplace.VotingValue, company.ID); err != nil {
			return nil, err
		}
	}

	s.RegisterWorkplacesInBlockchain(ctx, userId, cosignatory.Workplaces)

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userId).
		Update("status", models.UserStatusActive).Error
	if err != nil {
		return nil, err
	}

	if err := s.logs.LogUserStatusChange(ctx, *cosignatory, models.UserStatusActive, principal); err != nil {
		config.LogError(s.logger, "workplaceService.go", "ActivateCosignatory", "log", userId, err)
	}
	cosignatory.Status = models.UserStatusActive
	return cosignatory, nil
}

// DeleteCosignatory removes the user entirely. Only cosignatories with no
// ledger resolutions at all can be deleted.
func (s *WorkplaceService) DeleteCosignatory(ctx context.Context, userId int, principal Principal) (*models.User, error) {
	cosignatory, err := models.GetCosignatory(ctx, userId, principal.AllianceId)
	if err != nil {
		return nil, apperr.NotFound("id", models.ErrUserNotFound)
	}

	result, err := s.ledger.GetResolutionsInfo(ctx, messaging.ResolutionsFilter{CosignatoryId: &userId})
	if err != nil {
		return nil, err
	}
	if len(result.ResolutionsInfo) > 0 {
		return nil, apperr.BadRequest("id", models.ErrUserHasResolutions)
	}

	for _, workplace := range cosignatory.Workplaces {
		positions := make([]models.UserPosition, 0, len(workplace.Positions))
		for _, position := range workplace.Positions {
			positions = append(positions, position.Name)
		}
		s.removeCosignatory(ctx, positions, userId, workplace.CompanyId)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		workplaceIds := make([]int, 0, len(cosignatory.Workplaces))
		for _, workplace := range cosignatory.Workplaces {
			workplaceIds = append(workplaceIds, workplace.ID)
		}
		if len(workplaceIds) > 0 {
			if err := tx.Where("workplace_id IN ?", workplaceIds).Delete(&models.WorkplacePosition{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", workplaceIds).Delete(&models.Workplace{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", userId).Delete(&models.UserLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userId).Delete(&models.UserNotification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userId).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", userId).
			Update("status", models.UserStatusDeleted).Error
	})
	if err != nil {
		return nil, err
	}

	cosignatory.Status = models.UserStatusDeleted
	return cosignatory, nil
}
