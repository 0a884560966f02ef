package repository

import (
	"context"

	"github.com/spec-kit/incident-analytics/internal/domain"
)

// CustomerRepository manages customer persistence.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	List(ctx context.Context) ([]domain.Customer, error)
}

// IncidentTypeRepository manages the incident type catalogue.
type IncidentTypeRepository interface {
	Create(ctx context.Context, kind *domain.IncidentType) error
	List(ctx context.Context) ([]domain.IncidentType, error)
}

type pgCustomerRepository struct {
	db pgDB
}

func (r *pgCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `INSERT INTO customers (id, name, phone, province) VALUES ($1,$2,$3,$4)`
	_, err := r.db.Exec(ctx, query, customer.ID, customer.Name, customer.Phone, customer.Province)
	return err
}

func (r *pgCustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, phone, province FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Province); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

type pgIncidentTypeRepository struct {
	db pgDB
}

func (r *pgIncidentTypeRepository) Create(ctx context.Context, kind *domain.IncidentType) error {
	_, err := r.db.Exec(ctx, `INSERT INTO incident_types (id, name) VALUES ($1,$2)`, kind.ID, kind.Name)
	return err
}

func (r *pgIncidentTypeRepository) List(ctx context.Context) ([]domain.IncidentType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM incident_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kinds []domain.IncidentType
	for rows.Next() {
		var k domain.IncidentType
		if err := rows.Scan(&k.ID, &k.Name); err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, rows.Err()
}

type sqliteCustomerRepository struct {
	db sqlDB
}

func (r *sqliteCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `INSERT INTO customers (id, name, phone, province) VALUES (?,?,?,?)`
	_, err := r.db.ExecContext(ctx, query, customer.ID, customer.Name, customer.Phone, customer.Province)
	return err
}

func (r *sqliteCustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, phone, province FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Province); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

type sqliteIncidentTypeRepository struct {
	db sqlDB
}

func (r *sqliteIncidentTypeRepository) Create(ctx context.Context, kind *domain.IncidentType) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO incident_types (id, name) VALUES (?,?)`, kind.ID, kind.Name)
	return err
}

func (r *sqliteIncidentTypeRepository) List(ctx context.Context) ([]domain.IncidentType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM incident_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kinds []domain.IncidentType
	for rows.Next() {
		var k domain.IncidentType
		if err := rows.Scan(&k.ID, &k.Name); err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, rows.Err()
}
