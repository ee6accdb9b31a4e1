package models

import "time"

// User is the account table the import notice resolves recipients from.
type User struct {
	ID        string  `gorm:"type:uuid;primaryKey"`
	Name      string  `gorm:"size:255;not null"`
	Email     *string `gorm:"size:320"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
