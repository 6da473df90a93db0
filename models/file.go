package models

import (
	"context"
	"time"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/utils"
)

// File is the stored-document entity. Hash is the content hash registered with
// the ledger for resolution attachments; Type is the MIME type used by the
// document/image allow-list checks.
type File struct {
	ID           int       `gorm:"primary_key" json:"id"`
	OriginalName string    `gorm:"size:255;not null" json:"original_name"`
	Path         string    `gorm:"size:512;not null" json:"path"`
	Type         string    `gorm:"size:100;not null" json:"type"`
	Hash         string    `gorm:"size:128;index" json:"hash"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func GetFilesByIds(ctx context.Context, ids []int) ([]File, error) {
	db := config.GetDB()
	var files []File

	err := db.WithContext(ctx).Where("id IN ?", utils.UniqueSlice(ids)).Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func GetFile(ctx context.Context, id int) (*File, error) {
	db := config.GetDB()
	var file File

	err := db.WithContext(ctx).First(&file, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &file, nil
}
