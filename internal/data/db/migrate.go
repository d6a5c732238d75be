package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/dailylesson-backend/internal/domain/lesson"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&lesson.VariationRow{},
		&lesson.DNARow{},
	)
}
