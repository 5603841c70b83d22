package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/timeclock-kiosk/internal/persistence"
)

// EmployeeRepository implements persistence.EmployeeDirectory using SQLite
type EmployeeRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEmployeeRepository creates a new SQLite employee repository
func NewEmployeeRepository(pool *ConnectionPool) *EmployeeRepository {
	return &EmployeeRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const employeeColumns = `employee_id, first_name, last_name, email, phone, pic_path, employee_role, position, department`

// GetEmployee retrieves one employee by id.
func (r *EmployeeRepository) GetEmployee(ctx context.Context, id int64) (persistence.Employee, error) {
	if id < 0 {
		return persistence.Employee{}, persistence.ErrNotFound
	}

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE employee_id = ?`

	employee, err := scanEmployee(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Employee{}, persistence.ErrNotFound
		}
		return persistence.Employee{}, r.mapper.MapError(err)
	}
	return employee, nil
}

// ListEmployees returns the full directory ordered by last name, first name, id.
func (r *EmployeeRepository) ListEmployees(ctx context.Context) ([]persistence.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY last_name, first_name, employee_id`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var employees []persistence.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return employees, nil
}

// UpsertEmployee inserts the employee or replaces every column of an existing one.
func (r *EmployeeRepository) UpsertEmployee(ctx context.Context, employee persistence.Employee) error {
	if employee.ID < 0 {
		return persistence.ErrConstraintViolation
	}
	if strings.TrimSpace(employee.FirstName) == "" || strings.TrimSpace(employee.LastName) == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			phone = excluded.phone,
			pic_path = excluded.pic_path,
			employee_role = excluded.employee_role,
			position = excluded.position,
			department = excluded.department
	`

	_, err := r.helper.Exec(ctx, query,
		employee.ID,
		employee.FirstName,
		employee.LastName,
		strings.ToLower(strings.TrimSpace(employee.Email)),
		strings.TrimSpace(employee.Phone),
		employee.PhotoPath,
		employee.Role,
		employee.Position,
		employee.Department,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (persistence.Employee, error) {
	var employee persistence.Employee
	err := row.Scan(
		&employee.ID,
		&employee.FirstName,
		&employee.LastName,
		&employee.Email,
		&employee.Phone,
		&employee.PhotoPath,
		&employee.Role,
		&employee.Position,
		&employee.Department,
	)
	return employee, err
}
