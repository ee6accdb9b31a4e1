package repository

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"gorm.io/gorm"

	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
	"github.com/mohammadpnp/employee-import/internal/infrastructure/db/models"
)

type UserDirectoryRepository struct {
	db *gorm.DB
}

func NewUserDirectoryRepository(db *gorm.DB) *UserDirectoryRepository {
	return &UserDirectoryRepository{db: db}
}

// ContactEmail returns the user's email, or an empty string when the user has none.
func (r *UserDirectoryRepository) ContactEmail(ctx context.Context, userID string) (string, error) {
	var row models.User

	err := r.db.WithContext(ctx).
		Select("id", "email").
		First(&row, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", errors.Wrap(err, "get user contact email")
	}

	if row.Email == nil {
		return "", nil
	}
	return strings.TrimSpace(*row.Email), nil
}
