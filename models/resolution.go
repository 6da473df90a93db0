package models

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/utils"
)

// Resolution is the local shadow of a ledger resolution. Status and votes
// are authoritative on the ledger side; this record anchors documents,
// comments and the activity trail.
type Resolution struct {
	ID              int            `gorm:"primary_key" json:"id"`
	AllianceId      int            `gorm:"index;not null" json:"alliance_id"`
	CompanyId       int            `gorm:"index;not null" json:"company_id"`
	CreatedById     int            `gorm:"not null" json:"created_by_id"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	Type            ResolutionType `gorm:"size:20;not null" json:"type"`
	VotingStartDate time.Time      `json:"voting_start_date"`
	VotingEndDate   time.Time      `json:"voting_end_date"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	Company   *Company   `gorm:"foreignKey:CompanyId" json:"company,omitempty"`
	CreatedBy *User      `gorm:"foreignKey:CreatedById" json:"created_by,omitempty"`
	Documents []File     `gorm:"many2many:resolution_documents;" json:"documents,omitempty"`
	Activity  []Activity `gorm:"foreignKey:ResolutionId" json:"activity,omitempty"`
}

// Activity is one audit entry on a resolution's trail, written in the same
// transaction as the action it records.
type Activity struct {
	ID           int            `gorm:"primary_key" json:"id"`
	AllianceId   int            `gorm:"index;not null" json:"alliance_id"`
	ResolutionId int            `gorm:"index;not null" json:"resolution_id"`
	UserId       *int           `json:"user_id"`
	Action       ActivityAction `gorm:"size:30;not null" json:"action"`
	CreatedAt    time.Time      `json:"created_at"`

	User *User `gorm:"foreignKey:UserId" json:"user,omitempty"`
}

// NewResolution is the input shape for creating a resolution.
type NewResolution struct {
	CompanyId       int            `json:"company_id" binding:"required"`
	Title           string         `json:"title" binding:"required,max=255"`
	Description     string         `json:"description"`
	Type            ResolutionType `json:"type" binding:"required"`
	VotingStartDate time.Time      `json:"voting_start_date" binding:"required"`
	VotingEndDate   time.Time      `json:"voting_end_date" binding:"required"`
	ApprovalRatio   int            `json:"approval_ratio" binding:"required,min=1,max=100"`
	Emergency       bool           `json:"emergency"`
	DocumentIds     []int          `json:"document_ids"`
}

// EditResolution carries the mutable fields of an upcoming resolution.
type EditResolution struct {
	Title           *string    `json:"title" binding:"omitempty,max=255"`
	Description     *string    `json:"description"`
	VotingStartDate *time.Time `json:"voting_start_date"`
	VotingEndDate   *time.Time `json:"voting_end_date"`
	DocumentIds     []int      `json:"document_ids"`
}

func GetResolution(ctx context.Context, id int) (*Resolution, error) {
	db := config.GetDB()
	var resolution Resolution

	err := db.WithContext(ctx).
		Preload("Documents").
		Preload("Company").
		First(&resolution, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &resolution, nil
}

func GetResolutionWithActivity(ctx context.Context, id int) (*Resolution, error) {
	db := config.GetDB()
	var resolution Resolution

	err := db.WithContext(ctx).
		Preload("Documents").
		Preload("Company").
		Preload("Activity", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("activities.created_at ASC, activities.id ASC")
		}).
		Preload("Activity.User").
		First(&resolution, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &resolution, nil
}

func GetResolutionsByIds(ctx context.Context, ids []int) ([]Resolution, error) {
	db := config.GetDB()
	var resolutions []Resolution

	err := db.WithContext(ctx).
		Preload("Documents").
		Preload("Company").
		Where("id IN ?", ids).
		Find(&resolutions).Error
	if err != nil {
		return nil, err
	}
	return resolutions, nil
}

// FindResolutionIdsByIdentity matches shadow resolutions whose numeric id
// or title contains any of the given fragments. Empty fragments are skipped.
func FindResolutionIdsByIdentity(ctx context.Context, fragments []string) ([]int, error) {
	db := config.GetDB()

	var terms []string
	for _, fragment := range fragments {
		if fragment != "" {
			terms = append(terms, fragment)
		}
	}
	if len(terms) == 0 {
		return nil, nil
	}

	// The disjunction is grouped so the tenant guard's alliance_id filter
	// applies to every branch, not just the last one.
	var conditions *gorm.DB
	for _, term := range terms {
		pattern := "%" + term + "%"
		if conditions == nil {
			conditions = db.Where("CAST(id AS CHAR) LIKE ? OR title LIKE ?", pattern, pattern)
		} else {
			conditions = conditions.Or("CAST(id AS CHAR) LIKE ? OR title LIKE ?", pattern, pattern)
		}
	}

	var ids []int
	q := db.WithContext(ctx).Model(&Resolution{}).Where(conditions)
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func InsertActivity(db *gorm.DB, ctx context.Context, activity *Activity) error {
	return db.WithContext(ctx).Create(activity).Error
}
