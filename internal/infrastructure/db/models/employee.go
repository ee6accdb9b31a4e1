package models

import "time"

// Employee has a plain index on work_email. Two batches of one import may race
// on the same email and both insert it.
type Employee struct {
	ID        string  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name      string  `gorm:"type:text;not null"`
	WorkEmail *string `gorm:"type:text;index"`
	JobTitle  *string `gorm:"type:text"`
	WorkPhone *string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Employee) TableName() string {
	return "employees"
}
