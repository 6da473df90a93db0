package workflow

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/flact/governance_backend/apperr"
	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/messaging"
	"bitbucket.org/flact/governance_backend/models"
	"bitbucket.org/flact/governance_backend/utils"
)

// CompanyService owns the company registry: local rows plus the mirrored
// registration on the ledger.
type CompanyService struct {
	logger     *logrus.Logger
	ledger     messaging.Ledger
	workplaces *WorkplaceService
	logs       *LogService
	files      FileRemover
}

func NewCompanyService(logger *logrus.Logger, ledger messaging.Ledger, workplaces *WorkplaceService, logs *LogService, files FileRemover) *CompanyService {
	return &CompanyService{logger: logger, ledger: ledger, workplaces: workplaces, logs: logs, files: files}
}

// validateCompanyInput checks tag constraints on the input DTO and the phone
// number format when one is given.
func validateCompanyInput(input models.NewCompany) error {
	if err := utils.ValidateStruct(input); err != nil {
		var fields []apperr.FieldError
		for field, rule := range utils.ProcessValidationErrors(err) {
			fields = append(fields, apperr.FieldError{
				Field:   field,
				Message: models.ErrValidationFailed,
				Details: map[string]any{"rule": rule},
			})
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
		return apperr.BadRequestFields(fields)
	}
	if input.PhoneNumber != "" {
		if err := utils.ValidatePhoneNumber(input.PhoneNumber, utils.CountryCode); err != nil {
			return apperr.BadRequest("phoneNumber", models.ErrPhoneNumberInvalid)
		}
	}
	return nil
}

func (s *CompanyService) getCompanyOrFail(ctx context.Context, companyId, allianceId int) (*models.Company, error) {
	company, err := models.GetCompanyWithLogo(ctx, companyId, allianceId)
	if err != nil {
		return nil, apperr.NotFound("id", models.ErrCompanyNotFound)
	}
	return company, nil
}

// validateCompanyLogo checks that the logo file exists, is an image, and is
// not already in use by another company. A nil logoId is fine.
func (s *CompanyService) validateCompanyLogo(ctx context.Context, logoId *int, companyId int) (*models.File, error) {
	if logoId == nil {
		return nil, nil
	}

	logo, err := models.GetFile(ctx, *logoId)
	if err != nil {
		return nil, apperr.Unprocessable("logoId", models.ErrFileNotFound)
	}
	if !utils.Contains(models.ImageMimeTypes, logo.Type) {
		return nil, apperr.BadRequest("logoId", models.ErrFileInvalidType)
	}
	holder, err := models.CompanyWithLogo(ctx, *logoId)
	if err != nil {
		return nil, err
	}
	if holder != nil && holder.ID != companyId {
		return nil, apperr.Unprocessable("logoId", models.ErrFileAlreadyUsed)
	}
	return logo, nil
}

// CreateCompany saves a company and registers it on the ledger. The company
// name is unique per alliance.
func (s *CompanyService) CreateCompany(ctx context.Context, input models.NewCompany, principal Principal) (*models.Company, error) {
	if err := validateCompanyInput(input); err != nil {
		return nil, err
	}
	exists, err := models.CompanyNameExists(ctx, principal.AllianceId, input.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Unprocessable("name", models.ErrCompanyWithThisNameExist)
	}

	logo, err := s.validateCompanyLogo(ctx, input.LogoId, 0)
	if err != nil {
		return nil, err
	}

	company := models.Company{
		AllianceId:           principal.AllianceId,
		Name:                 input.Name,
		Email:                input.Email,
		NormalizedEmail:      utils.NormalizeEmail(input.Email),
		RegistrationNumber:   input.RegistrationNumber,
		Address:              input.Address,
		PhoneNumber:          input.PhoneNumber,
		IncorporationDate:    input.IncorporationDate,
		FinancialYearEndDate: input.FinancialYearEndDate,
		NextMeetingDate:      input.NextMeetingDate,
		LogoId:               input.LogoId,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, err
	}

	err = s.ledger.RegisterCompany(ctx, company.ID)
	if err != nil {
		config.LogError(s.logger, "companyService.go", "CreateCompany", "register company", company.ID, err)
	}

	if err := s.logCompanyCreation(ctx, company, logo, principal); err != nil {
		config.LogError(s.logger, "companyService.go", "CreateCompany", "log", company.ID, err)
	}
	return &company, nil
}

// UpdateCompany applies the new state, swaps the logo file if it changed
// and records per-field log rows.
func (s *CompanyService) UpdateCompany(ctx context.Context, companyId int, input models.NewCompany, principal Principal) (*models.Company, error) {
	if err := validateCompanyInput(input); err != nil {
		return nil, err
	}
	company, err := s.getCompanyOrFail(ctx, companyId, principal.AllianceId)
	if err != nil {
		return nil, err
	}
	logo, err := s.validateCompanyLogo(ctx, input.LogoId, companyId)
	if err != nil {
		return nil, err
	}

	logoChanged := !utils.IntPtrEqual(company.LogoId, input.LogoId)
	if logoChanged && company.LogoId != nil {
		if err := s.files.RemoveFiles(ctx, []int{*company.LogoId}); err != nil {
			config.LogError(s.logger, "companyService.go", "UpdateCompany", "remove old logo", company.ID, err)
		}
	}

	updates := map[string]interface{}{
		"name":                    input.Name,
		"email":                   input.Email,
		"normalized_email":        utils.NormalizeEmail(input.Email),
		"registration_number":     input.RegistrationNumber,
		"address":                 input.Address,
		"phone_number":            input.PhoneNumber,
		"incorporation_date":      input.IncorporationDate,
		"financial_year_end_date": input.FinancialYearEndDate,
		"next_meeting_date":       input.NextMeetingDate,
		"logo_id":                 input.LogoId,
	}
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&models.Company{}).Where("id = ?", companyId).Updates(updates).Error
	if err != nil {
		return nil, err
	}

	if err := s.logCompanyUpdate(ctx, *company, input, logo, principal); err != nil {
		config.LogError(s.logger, "companyService.go", "UpdateCompany", "log", company.ID, err)
	}
	return models.GetCompanyWithLogo(ctx, companyId, principal.AllianceId)
}

func (s *CompanyService) GetCompany(ctx context.Context, companyId, allianceId int) (*models.Company, error) {
	return s.getCompanyOrFail(ctx, companyId, allianceId)
}

// DeleteCompany removes the company and all of its workplaces. Blocked
// while the ledger still holds any resolution for the company.
func (s *CompanyService) DeleteCompany(ctx context.Context, companyId int, principal Principal) (*models.Company, error) {
	company, err := models.GetCompanyWithWorkplaces(ctx, companyId, principal.AllianceId)
	if err != nil {
		return nil, apperr.NotFound("id", models.ErrCompanyNotFound)
	}

	result, err := s.ledger.GetResolutionsInfo(ctx, messaging.ResolutionsFilter{CompanyId: &companyId})
	if err != nil {
		return nil, err
	}
	if len(result.ResolutionsInfo) > 0 {
		return nil, apperr.Unprocessable("id", models.ErrCompanyHasResolutions)
	}

	for _, workplace := range company.Workplaces {
		positions := make([]models.UserPosition, 0, len(workplace.Positions))
		for _, position := range workplace.Positions {
			positions = append(positions, position.Name)
		}
		s.workplaces.removeCosignatory(ctx, positions, workplace.UserId, companyId)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		workplaceIds := make([]int, 0, len(company.Workplaces))
		for _, workplace := range company.Workplaces {
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
		return tx.Where("id = ? AND alliance_id = ?", companyId, principal.AllianceId).
			Delete(&models.Company{}).Error
	})
	if err != nil {
		return nil, err
	}

	if company.LogoId != nil {
		if err := s.files.RemoveFiles(ctx, []int{*company.LogoId}); err != nil {
			config.LogError(s.logger, "companyService.go", "DeleteCompany", "remove logo", companyId, err)
		}
	}
	return company, nil
}

// GetCompanyUsers lists the company's people. Cosignatories only see other
// cosignatories, and only at companies they belong to.
func (s *CompanyService) GetCompanyUsers(ctx context.Context, companyId int, principal Principal) ([]models.User, error) {
	if _, err := s.getCompanyOrFail(ctx, companyId, principal.AllianceId); err != nil {
		return nil, err
	}

	var roleFilter models.UserRole
	if principal.IsCosignatory() {
		if _, err := models.GetWorkplace(ctx, principal.UserId, companyId); err != nil {
			return nil, apperr.Forbidden("id", models.ErrForbidden)
		}
		roleFilter = models.UserRoleCoSignatory
	}
	return models.GetCompanyUsers(ctx, companyId, roleFilter)
}

func (s *CompanyService) GetCompanyLogs(ctx context.Context, companyId int, principal Principal) ([]models.CompanyLog, error) {
	if _, err := s.getCompanyOrFail(ctx, companyId, principal.AllianceId); err != nil {
		return nil, err
	}
	return models.GetCompanyLogs(ctx, companyId)
}

func (s *CompanyService) logCompanyCreation(ctx context.Context, company models.Company, logo *models.File, principal Principal) error {
	newValues := companyLogValues(company)
	if logo != nil {
		newValues[models.CompanyLogLogoName] = logo.OriginalName
	}
	return s.logs.LogCompanyChanges(ctx, company.ID, map[string]string{}, newValues, principal)
}

func (s *CompanyService) logCompanyUpdate(ctx context.Context, previous models.Company, input models.NewCompany, logo *models.File, principal Principal) error {
	oldValues := companyLogValues(previous)
	if previous.Logo != nil {
		oldValues[models.CompanyLogLogoName] = previous.Logo.OriginalName
	}

	newValues := map[string]string{
		models.CompanyLogName:              input.Name,
		models.CompanyLogRegistrationNo:    input.RegistrationNumber,
		models.CompanyLogIncorporationDate: formatLogDate(input.IncorporationDate),
		models.CompanyLogFinancialYearEnd:  formatLogDate(input.FinancialYearEndDate),
		models.CompanyLogNextMeetingDate:   formatLogDate(input.NextMeetingDate),
	}
	if logo != nil {
		newValues[models.CompanyLogLogoName] = logo.OriginalName
	}
	return s.logs.LogCompanyChanges(ctx, previous.ID, oldValues, newValues, principal)
}

func companyLogValues(company models.Company) map[string]string {
	return map[string]string{
		models.CompanyLogName:              company.Name,
		models.CompanyLogRegistrationNo:    company.RegistrationNumber,
		models.CompanyLogIncorporationDate: formatLogDate(company.IncorporationDate),
		models.CompanyLogFinancialYearEnd:  formatLogDate(company.FinancialYearEndDate),
		models.CompanyLogNextMeetingDate:   formatLogDate(company.NextMeetingDate),
	}
}

func formatLogDate(date *time.Time) string {
	if date == nil {
		return ""
	}
	return utils.FormatDate(*date)
}
