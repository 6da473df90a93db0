package models

import (
	"bitbucket.org/flact/governance_backend/config"
)

func MigrateTable() error {
	db := config.GetDB()

	return db.AutoMigrate(
		&Alliance{},
		&File{},
		&Company{},
		&User{},
		&UserNotification{},
		&Workplace{},
		&WorkplacePosition{},
		&Resolution{},
		&Activity{},
		&ResolutionComment{},
		&UserLog{},
		&CompanyLog{},
		&Message{},
	)
}
