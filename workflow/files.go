package workflow

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/models"
)

// FileRemover deletes stored documents once nothing references them.
type FileRemover interface {
	RemoveFiles(ctx context.Context, fileIds []int) error
}

// DiskFileRemover removes both the database rows and the files on disk
// under UPLOADS_DIR.
type DiskFileRemover struct {
	logger *logrus.Logger
	dir    string
}

func NewDiskFileRemover(logger *logrus.Logger) *DiskFileRemover {
	return &DiskFileRemover{logger: logger, dir: os.Getenv("UPLOADS_DIR")}
}

func (r *DiskFileRemover) RemoveFiles(ctx context.Context, fileIds []int) error {
	if len(fileIds) == 0 {
		return nil
	}
	db := config.GetDB()

	files, err := models.GetFilesByIds(ctx, fileIds)
	if err != nil {
		return err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("id IN ?", fileIds).Delete(&models.File{}).Error
	})
	if err != nil {
		return err
	}

	for _, file := range files {
		path := file.Path
		if r.dir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(r.dir, path)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			config.LogError(r.logger, "files.go", "RemoveFiles", "remove from disk", path, err)
		}
	}
	return nil
}
