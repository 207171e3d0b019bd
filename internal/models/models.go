package models

import "gorm.io/gorm"

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserPermission{},
		&Group{},
		&Post{},
		&Comment{},
		&Follow{},
	}
}

// Migrate brings the schema up to date with the models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
