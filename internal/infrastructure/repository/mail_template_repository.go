package repository

import (
	"context"

	"github.com/go-faster/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
	"github.com/mohammadpnp/employee-import/internal/infrastructure/db/models"
)

type MailTemplateRepository struct {
	db *gorm.DB
}

func NewMailTemplateRepository(db *gorm.DB) *MailTemplateRepository {
	return &MailTemplateRepository{db: db}
}

func (r *MailTemplateRepository) FindByName(ctx context.Context, name string) (domain.MailTemplate, error) {
	var row models.MailTemplate

	err := r.db.WithContext(ctx).First(&row, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MailTemplate{}, domain.ErrTemplateNotFound
		}
		return domain.MailTemplate{}, errors.Wrap(err, "get mail template")
	}

	return domain.MailTemplate{
		Name:    row.Name,
		Subject: row.Subject,
		Body:    row.Body,
	}, nil
}

// EnsureDefault inserts the template unless one with the same name exists.
// An operator-edited template is never overwritten.
func (r *MailTemplateRepository) EnsureDefault(ctx context.Context, tmpl domain.MailTemplate) error {
	row := models.MailTemplate{
		Name:    tmpl.Name,
		Subject: tmpl.Subject,
		Body:    tmpl.Body,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return errors.Wrap(err, "seed mail template")
	}
	return nil
}
