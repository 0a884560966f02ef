package repository

import (
	"context"
	"database/sql"

	"github.com/spec-kit/incident-analytics/internal/domain"
)

// ContactRepository persists employee work logged against tickets.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	List(ctx context.Context) ([]domain.Contact, error)
}

type pgContactRepository struct {
	db pgDB
}

func (r *pgContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
        INSERT INTO contacts (ticket_id, employee_id, contacted_at, hours)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		contact.TicketID,
		contact.EmployeeID,
		contact.ContactedAt,
		contact.Hours,
	).Scan(&contact.ID)
}

func (r *pgContactRepository) List(ctx context.Context) ([]domain.Contact, error) {
	const query = `
        SELECT id, ticket_id, employee_id, contacted_at, hours
        FROM contacts ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.TicketID, &c.EmployeeID, &c.ContactedAt, &c.Hours); err != nil {
			return nil, err
		}
		c.ContactedAt = c.ContactedAt.UTC()
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

type sqliteContactRepository struct {
	db sqlDB
}

func (r *sqliteContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
        INSERT INTO contacts (ticket_id, employee_id, contacted_at, hours)
        VALUES (?,?,?,?)`
	res, err := r.db.ExecContext(ctx, query,
		contact.TicketID,
		contact.EmployeeID,
		formatSQLiteTime(contact.ContactedAt),
		contact.Hours,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	contact.ID = id
	return nil
}

func (r *sqliteContactRepository) List(ctx context.Context) ([]domain.Contact, error) {
	const query = `
        SELECT id, ticket_id, employee_id, contacted_at, hours
        FROM contacts ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		var (
			c   domain.Contact
			raw sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.TicketID, &c.EmployeeID, &raw, &c.Hours); err != nil {
			return nil, err
		}
		when, err := parseSQLiteTime("contacted_at", raw)
		if err != nil {
			return nil, err
		}
		if when != nil {
			c.ContactedAt = *when
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
