package models

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bitbucket.org/flact/governance_backend/config"
)

// UserLog records one changed field on a user profile. A single update
// producing several changes yields several rows sharing an initiator and
// timestamp.
type UserLog struct {
	ID          int       `gorm:"primary_key" json:"id"`
	AllianceId  int       `gorm:"index;not null" json:"alliance_id"`
	UserId      int       `gorm:"index;not null" json:"user_id"`
	InitiatorId *int      `json:"initiator_id"`
	Parameter   string    `gorm:"size:60;not null" json:"parameter"`
	OldValue    string    `gorm:"type:text" json:"old_value"`
	NewValue    string    `gorm:"type:text" json:"new_value"`
	CreatedAt   time.Time `json:"created_at"`

	Initiator *User `gorm:"foreignKey:InitiatorId" json:"initiator,omitempty"`
}

// CompanyLog records one changed field on a company profile.
type CompanyLog struct {
	ID          int       `gorm:"primary_key" json:"id"`
	AllianceId  int       `gorm:"index;not null" json:"alliance_id"`
	CompanyId   int       `gorm:"index;not null" json:"company_id"`
	InitiatorId *int      `json:"initiator_id"`
	Parameter   string    `gorm:"size:60;not null" json:"parameter"`
	OldValue    string    `gorm:"type:text" json:"old_value"`
	NewValue    string    `gorm:"type:text" json:"new_value"`
	CreatedAt   time.Time `json:"created_at"`

	Initiator *User `gorm:"foreignKey:InitiatorId" json:"initiator,omitempty"`
}

// LogChange is one detected difference between an entity's previous and
// proposed state, before it is persisted as a log row.
type LogChange struct {
	Parameter string
	OldValue  string
	NewValue  string
}

// DiffValues compares old and new values per parameter and returns a change
// entry for every parameter whose value actually differs. Iteration follows
// the given parameter order so log rows come out stable.
func DiffValues(parameters []string, oldValues, newValues map[string]string) []LogChange {
	var changes []LogChange
	for _, parameter := range parameters {
		oldValue := oldValues[parameter]
		newValue := newValues[parameter]
		if oldValue == newValue {
			continue
		}
		changes = append(changes, LogChange{
			Parameter: parameter,
			OldValue:  oldValue,
			NewValue:  newValue,
		})
	}
	return changes
}

func InsertUserLogs(db *gorm.DB, ctx context.Context, allianceId, userId int, initiatorId *int, changes []LogChange) error {
	if len(changes) == 0 {
		return nil
	}
	logs := make([]UserLog, 0, len(changes))
	for _, c := range changes {
		logs = append(logs, UserLog{
			AllianceId:  allianceId,
			UserId:      userId,
			InitiatorId: initiatorId,
			Parameter:   c.Parameter,
			OldValue:    c.OldValue,
			NewValue:    c.NewValue,
		})
	}
	return db.WithContext(ctx).Create(&logs).Error
}

func InsertCompanyLogs(db *gorm.DB, ctx context.Context, allianceId, companyId int, initiatorId *int, changes []LogChange) error {
	if len(changes) == 0 {
		return nil
	}
	logs := make([]CompanyLog, 0, len(changes))
	for _, c := range changes {
		logs = append(logs, CompanyLog{
			AllianceId:  allianceId,
			CompanyId:   companyId,
			InitiatorId: initiatorId,
			Parameter:   c.Parameter,
			OldValue:    c.OldValue,
			NewValue:    c.NewValue,
		})
	}
	return db.WithContext(ctx).Create(&logs).Error
}

func GetUserLogs(ctx context.Context, userId int) ([]UserLog, error) {
	db := config.GetDB()
	var logs []UserLog

	err := db.WithContext(ctx).
		Preload("Initiator").
		Where("user_id = ?", userId).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func GetCompanyLogs(ctx context.Context, companyId int) ([]CompanyLog, error) {
	db := config.GetDB()
	var logs []CompanyLog

	err := db.WithContext(ctx).
		Preload("Initiator").
		Where("company_id = ?", companyId).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
