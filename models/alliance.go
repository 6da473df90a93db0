package models

import (
	"context"
	"time"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/utils"
)

// Alliance is the tenant partition. All company/user/resolution queries are
// scoped by alliance id; the tenant guard plugin enforces this on any model
// carrying an alliance_id column.
type Alliance struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Companies []Company `gorm:"foreignKey:AllianceId" json:"companies,omitempty"`
}

func (alliance *Alliance) StoreRedis() error {
	return config.SetRedisObject("Alliance:"+alliance.Name, alliance, 0)
}

// GetAllianceByName resolves the tenant row, cache-aside. The consumer calls
// this on every message, and the row never changes after seeding.
func GetAllianceByName(ctx context.Context, name string) (*Alliance, error) {
	var alliance Alliance

	exists, err := config.GetRedisObject("Alliance:"+name, &alliance)
	if err != nil {
		return nil, err
	}
	if exists {
		return &alliance, nil
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Where("name = ?", name).First(&alliance).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if err := alliance.StoreRedis(); err != nil {
		return nil, err
	}
	return &alliance, nil
}

func GetAllianceWithCompanies(ctx context.Context, name string) (*Alliance, error) {
	db := config.GetDB()
	var alliance Alliance

	err := db.WithContext(ctx).Preload("Companies").Where("name = ?", name).First(&alliance).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &alliance, nil
}
