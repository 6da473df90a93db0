package models

import (
	"context"
	"sort"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/utils"
	"github.com/shopspring/decimal"
)

// Workplace is a cosignatory's membership and voting rights within one
// company. VotingValue is set iff the SHARE_HOLDER position is held; veto
// power is only meaningful for shareholders.
type Workplace struct {
	ID          int              `gorm:"primary_key" json:"id"`
	UserId      int              `gorm:"uniqueIndex:idx_workplace_user_company;not null" json:"user_id"`
	CompanyId   int              `gorm:"uniqueIndex:idx_workplace_user_company;not null" json:"company_id"`
	VotingValue *decimal.Decimal `gorm:"type:decimal(5,2)" json:"voting_value"`
	VetoPower   bool             `gorm:"default:false" json:"veto_power"`

	User      *User               `gorm:"foreignKey:UserId" json:"user,omitempty"`
	Company   *Company            `gorm:"foreignKey:CompanyId" json:"company,omitempty"`
	Positions []WorkplacePosition `gorm:"foreignKey:WorkplaceId" json:"positions,omitempty"`
}

type WorkplacePosition struct {
	ID          int          `gorm:"primary_key" json:"id"`
	WorkplaceId int          `gorm:"index;not null" json:"workplace_id"`
	Name        UserPosition `gorm:"size:20;not null" json:"name"`
}

// NewWorkplace is the input shape for adding or updating a workplace.
type NewWorkplace struct {
	CompanyId   int              `json:"company_id" binding:"required"`
	VotingValue *decimal.Decimal `json:"voting_value"`
	VetoPower   bool             `json:"veto_power"`
	Positions   []UserPosition   `json:"positions" binding:"required,min=1"`
}

// PositionNames returns the workplace's position names sorted, the canonical
// form used when diffing proposed workplace updates against current state.
func (w Workplace) PositionNames() []string {
	names := make([]string, 0, len(w.Positions))
	for _, p := range w.Positions {
		names = append(names, string(p.Name))
	}
	sort.Strings(names)
	return names
}

func (w Workplace) HasPosition(position UserPosition) bool {
	for _, p := range w.Positions {
		if p.Name == position {
			return true
		}
	}
	return false
}

func GetWorkplace(ctx context.Context, userId, companyId int) (*Workplace, error) {
	db := config.GetDB()
	var workplace Workplace

	err := db.WithContext(ctx).
		Preload("Positions").
		Where("user_id = ? AND company_id = ?", userId, companyId).
		First(&workplace).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &workplace, nil
}

// GetWorkplaceWithCompanySiblings also loads the company and every sibling
// workplace (with users), as needed by the voting-sum re-validation.
func GetWorkplaceWithCompanySiblings(ctx context.Context, userId, companyId int) (*Workplace, error) {
	db := config.GetDB()
	var workplace Workplace

	err := db.WithContext(ctx).
		Preload("Positions").
		Preload("Company").
		Preload("Company.Workplaces").
		Preload("Company.Workplaces.User").
		Where("user_id = ? AND company_id = ?", userId, companyId).
		First(&workplace).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &workplace, nil
}

func GetUserWorkplaces(ctx context.Context, userId int) ([]Workplace, error) {
	db := config.GetDB()
	var workplaces []Workplace

	err := db.WithContext(ctx).
		Preload("Positions").
		Preload("Company").
		Where("user_id = ?", userId).
		Order("id ASC").
		Find(&workplaces).Error
	if err != nil {
		return nil, err
	}
	return workplaces, nil
}
