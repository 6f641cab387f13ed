package postgres

import (
	"context"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/ports"
)

// EmployeeRepo implements ports.EmployeeRepository.
type EmployeeRepo struct {
	db *DB
}

func NewEmployeeRepo(db *DB) *EmployeeRepo { return &EmployeeRepo{db: db} }

var _ ports.EmployeeRepository = (*EmployeeRepo)(nil)

func (r *EmployeeRepo) GetByID(ctx context.Context, id string) (domain.Employee, error) {
	var (
		e            domain.Employee
		role, status string
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, operator_id, full_name, role, status, license_expiry
		FROM employees WHERE id = $1
	`, id).Scan(&e.ID, &e.OperatorID, &e.FullName, &role, &status, &e.LicenseExpiry)
	if err != nil {
		return domain.Employee{}, notFound("employee", id, err)
	}
	e.Role = domain.EmployeeRole(role)
	e.Status = domain.EmployeeStatus(status)
	return e, nil
}
