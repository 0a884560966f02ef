package repository

import (
	"context"
	"database/sql"

	"github.com/spec-kit/incident-analytics/internal/domain"
)

// EmployeeRepository manages employee persistence.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	List(ctx context.Context) ([]domain.Employee, error)
}

type pgEmployeeRepository struct {
	db pgDB
}

func (r *pgEmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	const query = `INSERT INTO employees (id, name, level, hired_at) VALUES ($1,$2,$3,$4)`
	_, err := r.db.Exec(ctx, query, employee.ID, employee.Name, employee.Level, employee.HiredAt)
	return err
}

func (r *pgEmployeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, level, hired_at FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Level, &e.HiredAt); err != nil {
			return nil, err
		}
		e.HiredAt = utcPtr(e.HiredAt)
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

type sqliteEmployeeRepository struct {
	db sqlDB
}

func (r *sqliteEmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	const query = `INSERT INTO employees (id, name, level, hired_at) VALUES (?,?,?,?)`
	_, err := r.db.ExecContext(ctx, query,
		employee.ID,
		employee.Name,
		employee.Level,
		formatSQLiteTimePtr(employee.HiredAt),
	)
	return err
}

func (r *sqliteEmployeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, level, hired_at FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		var (
			e     domain.Employee
			hired sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Level, &hired); err != nil {
			return nil, err
		}
		if e.HiredAt, err = parseSQLiteTime("hired_at", hired); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}
