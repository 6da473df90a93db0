package models

import (
	"context"
	"time"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/utils"
)

// ResolutionComment holds one cosignatory's comment on a resolution. Each
// author gets at most one comment per resolution; editing replaces the text.
type ResolutionComment struct {
	ID           int       `gorm:"primary_key" json:"id"`
	AllianceId   int       `gorm:"index;not null" json:"alliance_id"`
	ResolutionId int       `gorm:"uniqueIndex:idx_comment_resolution_author;not null" json:"resolution_id"`
	AuthorId     int       `gorm:"uniqueIndex:idx_comment_resolution_author;not null" json:"author_id"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Author *User `gorm:"foreignKey:AuthorId" json:"author,omitempty"`
}

func GetResolutionComment(ctx context.Context, resolutionId, authorId int) (*ResolutionComment, error) {
	db := config.GetDB()
	var comment ResolutionComment

	err := db.WithContext(ctx).
		Where("resolution_id = ? AND author_id = ?", resolutionId, authorId).
		First(&comment).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &comment, nil
}

func GetResolutionComments(ctx context.Context, resolutionId int) ([]ResolutionComment, error) {
	db := config.GetDB()
	var comments []ResolutionComment

	err := db.WithContext(ctx).
		Preload("Author").
		Where("resolution_id = ?", resolutionId).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
