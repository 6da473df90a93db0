package models

import (
	"context"
	"time"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/utils"
)

type User struct {
	ID                    int        `gorm:"primary_key" json:"id"`
	AllianceId            int        `gorm:"index;not null" json:"alliance_id"`
	Role                  UserRole   `gorm:"size:20;not null" json:"role"`
	Status                UserStatus `gorm:"size:20;default:ACTIVE" json:"status"`
	RegistrationCompleted bool       `gorm:"default:false" json:"registration_completed"`
	Name                  string     `gorm:"size:100" json:"name"`
	Surname               string     `gorm:"size:100" json:"surname"`
	Email                 string     `gorm:"size:255;index" json:"email"`
	PhoneNumber           string     `gorm:"size:20" json:"phone_number"`
	PasswordHash          string     `gorm:"size:100" json:"-"`
	AvatarId              *int       `json:"avatar_id"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Avatar        *File              `gorm:"foreignKey:AvatarId" json:"avatar,omitempty"`
	Workplaces    []Workplace        `gorm:"foreignKey:UserId" json:"workplaces,omitempty"`
	Notifications []UserNotification `gorm:"foreignKey:UserId" json:"notifications,omitempty"`
}

// UserNotification is one delivery-channel preference row. Event toggles
// event-triggered notifications; the Before* day offsets select when the
// calendar reminders fire for this channel.
type UserNotification struct {
	ID                         int             `gorm:"primary_key" json:"id"`
	UserId                     int             `gorm:"index;not null" json:"user_id"`
	Delivery                   MessageDelivery `gorm:"size:10;not null" json:"delivery"`
	Enabled                    bool            `gorm:"default:true" json:"enabled"`
	Event                      bool            `gorm:"default:true" json:"event"`
	BeforeIncorporation        *int            `json:"before_incorporation"`
	BeforeFinancialYearEnd     *int            `json:"before_financial_year_end"`
	BeforeAnniversaryOfLastAgm *int            `json:"before_anniversary_of_last_agm"`
}

func GetUser(ctx context.Context, id int, allianceId int) (*User, error) {
	db := config.GetDB()
	var user User

	err := db.WithContext(ctx).Where("id = ? AND alliance_id = ?", id, allianceId).First(&user).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &user, nil
}

func GetUsersByIds(ctx context.Context, ids []int) ([]User, error) {
	db := config.GetDB()
	var users []User

	err := db.WithContext(ctx).
		Preload("Avatar").
		Preload("Workplaces").
		Where("id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetCosignatory loads an active-or-inactive cosignatory with workplaces and
// their positions/companies.
func GetCosignatory(ctx context.Context, id int, allianceId int) (*User, error) {
	db := config.GetDB()
	var user User

	err := db.WithContext(ctx).
		Preload("Workplaces").
		Preload("Workplaces.Positions").
		Preload("Workplaces.Company").
		Where("id = ? AND alliance_id = ? AND role = ?", id, allianceId, UserRoleCoSignatory).
		Where("status IN ?", []UserStatus{UserStatusActive, UserStatusInactive}).
		First(&user).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &user, nil
}

// EnabledNotificationFilter selects users with at least one enabled
// notification preference matching the calendar reminder kind.
type EnabledNotificationFilter struct {
	AllianceId                 int
	Role                       UserRole
	Position                   UserPosition
	BeforeIncorporation        bool
	BeforeFinancialYearEnd     bool
	BeforeAnniversaryOfLastAgm bool
}

func GetUsersWithEnabledNotifications(ctx context.Context, filter EnabledNotificationFilter) ([]User, error) {
	db := config.GetDB()
	var users []User

	q := db.WithContext(ctx).
		Preload("Notifications").
		Preload("Workplaces").
		Preload("Workplaces.Company").
		Joins("JOIN user_notifications ON user_notifications.user_id = users.id AND user_notifications.enabled = ?", true).
		Where("users.alliance_id = ? AND users.status = ?", filter.AllianceId, UserStatusActive)

	if filter.Role != "" {
		q = q.Where("users.role = ?", filter.Role)
	}
	if filter.Position != "" {
		q = q.Joins("JOIN workplaces ON workplaces.user_id = users.id").
			Joins("JOIN workplace_positions ON workplace_positions.workplace_id = workplaces.id AND workplace_positions.name = ?", filter.Position)
	}
	if filter.BeforeIncorporation {
		q = q.Where("user_notifications.before_incorporation IS NOT NULL")
	}
	if filter.BeforeFinancialYearEnd {
		q = q.Where("user_notifications.before_financial_year_end IS NOT NULL")
	}
	if filter.BeforeAnniversaryOfLastAgm {
		q = q.Where("user_notifications.before_anniversary_of_last_agm IS NOT NULL")
	}

	err := q.Distinct("users.*").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetCompanyUsers lists users holding a workplace at the company, optionally
// narrowed to one role. Deleted users are excluded.
func GetCompanyUsers(ctx context.Context, companyId int, role UserRole) ([]User, error) {
	db := config.GetDB()
	var users []User

	q := db.WithContext(ctx).
		Preload("Avatar").
		Joins("JOIN workplaces ON workplaces.user_id = users.id AND workplaces.company_id = ?", companyId).
		Where("users.status <> ?", UserStatusDeleted)
	if role != "" {
		q = q.Where("users.role = ?", role)
	}

	err := q.Distinct("users.*").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func GetUserNotificationPreferences(ctx context.Context, userId int) ([]UserNotification, error) {
	db := config.GetDB()
	var prefs []UserNotification

	err := db.WithContext(ctx).
		Where("user_id = ? AND enabled = ? AND event = ?", userId, true, true).
		Find(&prefs).Error
	if err != nil {
		return nil, err
	}
	return prefs, nil
}
