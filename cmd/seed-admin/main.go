// seed-admin creates or updates the alliance named by CLIENT_NAME and its
// co-secretary admin user.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... CLIENT_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/models"
	"bitbucket.org/flact/governance_backend/utils"
)

const (
	adminEmail    = "admin@flact.local"
	adminPassword = "Fl@ctAdmin1"
	adminName     = "Governance"
	adminSurname  = "Admin"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	clientName := config.ClientName()
	if clientName == "" {
		fmt.Fprintln(os.Stderr, "CLIENT_NAME is required.")
		os.Exit(2)
	}

	email := adminEmail
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		email = v
	}
	if !utils.IsValidEmail(email) {
		fmt.Fprintf(os.Stderr, "invalid admin email %q\n", email)
		os.Exit(2)
	}

	ctx = utils.SetUserIdInContext(ctx, 0)
	ctx = utils.SetUserNameInContext(ctx, "Seed")
	ctx = utils.SetIsAdminInContext(ctx, true)
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)

	var alliance models.Alliance
	err := db.WithContext(ctx).Where("name = ?", clientName).First(&alliance).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup alliance: %v\n", err)
			os.Exit(1)
		}
		alliance = models.Alliance{Name: clientName}
		if err := db.WithContext(ctx).Create(&alliance).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create alliance: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created alliance %q (id=%d)\n", clientName, alliance.ID)
	}

	hashed, err := utils.HashPassword(adminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	var existing models.User
	err = db.WithContext(ctx).
		Where("email = ? AND alliance_id = ?", email, alliance.ID).
		First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		user := models.User{
			AllianceId:            alliance.ID,
			Role:                  models.UserRoleCoSecretary,
			Status:                models.UserStatusActive,
			RegistrationCompleted: true,
			Name:                  adminName,
			Surname:               adminSurname,
			Email:                 email,
			PasswordHash:          string(hashed),
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created co-secretary admin %q (id=%d)\n", email, user.ID)
		return
	}

	err = db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"password_hash": string(hashed),
		"status":        models.UserStatusActive,
	}).Error
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("updated co-secretary admin %q (id=%d)\n", email, existing.ID)
}
