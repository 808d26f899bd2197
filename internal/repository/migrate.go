package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the heroes and users tables and fills the
// search key of rows written before the column existed.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&heroModel{}, &userModel{}); err != nil {
		return err
	}
	return backfillSearchKeys(db)
}

func backfillSearchKeys(db *gorm.DB) error {
	var rows []heroModel
	err := db.Model(&heroModel{}).
		Select("id", "name", "biography_full_name", "biography_publisher").
		Where("search_key = '' OR search_key IS NULL").
		Find(&rows).Error
	if err != nil {
		return err
	}
	for _, m := range rows {
		key := searchKey(m.Name, m.Biography.FullName, m.Biography.Publisher)
		if err := db.Model(&heroModel{}).Where("id = ?", m.ID).UpdateColumn("search_key", key).Error; err != nil {
			return err
		}
	}
	return nil
}
