package scope

import "gorm.io/gorm"

// OrderByName is the listing order of every named catalog object.
func OrderByName(db *gorm.DB) *gorm.DB {
	return db.Order("name ASC")
}

// OrderByCreatedAsc keeps insertion order.
func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}
