package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	app "github.com/mohammadpnp/employee-import/internal/application/employee"
	"github.com/mohammadpnp/employee-import/internal/infrastructure/db/models"
	"github.com/mohammadpnp/employee-import/internal/infrastructure/repository"
)

// Database bundles the gorm handle used by the queue and lookups with the pgx
// pool used by the employee record store.
type Database struct {
	Gorm *gorm.DB
	Pool *pgxpool.Pool
}

func OpenDatabase(ctx context.Context, databaseURL string) (*Database, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	return &Database{Gorm: db, Pool: pool}, nil
}

func (d *Database) Close() {
	d.Pool.Close()
	if sqlDB, err := d.Gorm.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Migrate creates the tables and seeds the default import notice template.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}

	err := db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Employee{},
		&models.ImportTask{},
		&models.MailTemplate{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := repository.NewMailTemplateRepository(db).EnsureDefault(ctx, app.DefaultImportDoneTemplate); err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}
	return nil
}
