package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
)

// EmployeeRepository is the record store the import writes employees to.
// Each call runs in its own statement; there is no batch-wide transaction.
type EmployeeRepository struct {
	pool *pgxpool.Pool
}

func NewEmployeeRepository(pool *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

func (r *EmployeeRepository) FindByWorkEmail(ctx context.Context, email string) (string, bool, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
SELECT id::text
FROM employees
WHERE work_email = $1
ORDER BY created_at
LIMIT 1
`, email).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find employee by work_email: %w", err)
	}
	return id, true, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, fields domain.NewEmployee) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
INSERT INTO employees (name, work_email, job_title, work_phone, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
RETURNING id::text
`, fields.Name, fields.WorkEmail, fields.JobTitle, fields.WorkPhone).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert employee: %w", err)
	}
	return id, nil
}
