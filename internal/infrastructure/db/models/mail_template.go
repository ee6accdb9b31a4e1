package models

import "time"

type MailTemplate struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"size:120;not null;uniqueIndex"`
	Subject   string `gorm:"type:text;not null"`
	Body      string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MailTemplate) TableName() string {
	return "mail_templates"
}
