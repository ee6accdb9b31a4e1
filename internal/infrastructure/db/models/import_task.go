package models

import "time"

type ImportTask struct {
	ID             string  `gorm:"type:uuid;primaryKey"`
	GroupID        *string `gorm:"type:uuid;index"`
	DependsOnGroup *string `gorm:"type:uuid;index"`
	Kind           string  `gorm:"type:text;not null"`
	Payload        string  `gorm:"type:text;not null"`
	Status         string  `gorm:"type:text;not null;index"`
	Attempts       int     `gorm:"not null;default:0"`
	MaxAttempts    int     `gorm:"not null;default:5"`
	Result         *string `gorm:"type:text"`
	ErrorMessage   *string `gorm:"type:text"`
	HeartbeatAt    *time.Time
	LeaseExpiresAt *time.Time
	StartedAt      *time.Time
	FinishedAt     *time.Time
	CreatedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time
}

func (ImportTask) TableName() string {
	return "import_tasks"
}
