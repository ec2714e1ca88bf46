package model

import (
	"time"
)

// User is an admin/operator account for the ledger screens.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:128;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:128;not null" json:"-"`
	Names     string    `gorm:"size:128" json:"names"`
	Role      string    `gorm:"size:20;not null;default:admin" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
