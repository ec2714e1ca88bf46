package database

import (
	"gorm.io/gorm"
)

var DB *gorm.DB

// GetDB returns the shared gorm handle.
func GetDB() *gorm.DB {
	return DB
}
