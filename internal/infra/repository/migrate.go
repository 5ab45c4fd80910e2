package repository

import "gorm.io/gorm"

// Migrate creates or updates the reminder and category tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&ReminderModel{}, &CategoryModel{})
}
