package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/utils"
	"gorm.io/gorm"
)

type Company struct {
	ID                   int           `gorm:"primary_key" json:"id"`
	AllianceId           int           `gorm:"index;not null" json:"alliance_id"`
	Name                 string        `gorm:"index;size:255;not null" json:"name" binding:"required"`
	Email                string        `gorm:"size:255" json:"email"`
	NormalizedEmail      string        `gorm:"size:255" json:"normalized_email"`
	RegistrationNumber   string        `gorm:"size:100" json:"registration_number"`
	Address              string        `gorm:"type:text" json:"address"`
	PhoneNumber          string        `gorm:"size:20" json:"phone_number"`
	IncorporationDate    *time.Time    `json:"incorporation_date"`
	FinancialYearEndDate *time.Time    `json:"financial_year_end_date"`
	NextMeetingDate      *time.Time    `json:"next_meeting_date"`
	LogoId               *int          `gorm:"uniqueIndex" json:"logo_id"`
	Status               CompanyStatus `gorm:"size:20;default:ACTIVE" json:"status"`
	CreatedAt            time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	Logo       *File       `gorm:"foreignKey:LogoId" json:"logo,omitempty"`
	Workplaces []Workplace `gorm:"foreignKey:CompanyId" json:"workplaces,omitempty"`
}

type NewCompany struct {
	Name                 string     `json:"name" binding:"required"`
	Email                string     `json:"email" binding:"required,email"`
	RegistrationNumber   string     `json:"registration_number"`
	Address              string     `json:"address"`
	PhoneNumber          string     `json:"phone_number"`
	IncorporationDate    *time.Time `json:"incorporation_date"`
	FinancialYearEndDate *time.Time `json:"financial_year_end_date"`
	NextMeetingDate      *time.Time `json:"next_meeting_date"`
	LogoId               *int       `json:"logo_id"`
}

func GetCompany(ctx context.Context, id int, allianceId int) (*Company, error) {
	db := config.GetDB()
	var company Company

	err := db.WithContext(ctx).Where("id = ? AND alliance_id = ?", id, allianceId).First(&company).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &company, nil
}

func GetCompanyWithLogo(ctx context.Context, id int, allianceId int) (*Company, error) {
	db := config.GetDB()
	var company Company

	err := db.WithContext(ctx).Preload("Logo").Where("id = ? AND alliance_id = ?", id, allianceId).First(&company).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &company, nil
}

// GetCompanyWithWorkplaces loads the company together with every workplace and
// each workplace's user and positions, as needed by the voting-sum validation.
func GetCompanyWithWorkplaces(ctx context.Context, id int, allianceId int) (*Company, error) {
	db := config.GetDB()
	var company Company

	err := db.WithContext(ctx).
		Preload("Workplaces").
		Preload("Workplaces.User").
		Preload("Workplaces.Positions").
		Where("id = ? AND alliance_id = ?", id, allianceId).
		First(&company).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &company, nil
}

func FindCompanyIdsByName(ctx context.Context, allianceId int, search string) ([]int, error) {
	if search == "" {
		return nil, nil
	}
	db := config.GetDB()
	var ids []int

	err := db.WithContext(ctx).Model(&Company{}).
		Where("alliance_id = ? AND name LIKE ?", allianceId, "%"+search+"%").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func CompanyNameExists(ctx context.Context, allianceId int, name string) (bool, error) {
	db := config.GetDB()
	var count int64

	err := db.WithContext(ctx).Model(&Company{}).
		Where("alliance_id = ? AND name = ?", allianceId, name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CompanyWithLogo returns the company currently using the given logo file, if any.
func CompanyWithLogo(ctx context.Context, logoId int) (*Company, error) {
	db := config.GetDB()
	var company Company

	err := db.WithContext(ctx).Where("logo_id = ?", logoId).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}
