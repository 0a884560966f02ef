package repository

import (
	"context"
	"database/sql"

	"github.com/spec-kit/incident-analytics/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	List(ctx context.Context) ([]domain.Ticket, error)
}

type pgTicketRepository struct {
	db pgDB
}

func (r *pgTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (customer_id, opened_at, closed_at, maintenance, satisfaction, incident_type)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		ticket.CustomerID,
		ticket.OpenedAt,
		ticket.ClosedAt,
		ticket.Maintenance,
		ticket.Satisfaction,
		ticket.IncidentType,
	).Scan(&ticket.ID)
}

func (r *pgTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	const query = `
        SELECT id, customer_id, opened_at, closed_at, maintenance, satisfaction, incident_type
        FROM tickets ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(
			&t.ID,
			&t.CustomerID,
			&t.OpenedAt,
			&t.ClosedAt,
			&t.Maintenance,
			&t.Satisfaction,
			&t.IncidentType,
		); err != nil {
			return nil, err
		}
		t.OpenedAt, t.ClosedAt = utcPtr(t.OpenedAt), utcPtr(t.ClosedAt)
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

type sqliteTicketRepository struct {
	db sqlDB
}

func (r *sqliteTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (customer_id, opened_at, closed_at, maintenance, satisfaction, incident_type)
        VALUES (?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, query,
		ticket.CustomerID,
		formatSQLiteTimePtr(ticket.OpenedAt),
		formatSQLiteTimePtr(ticket.ClosedAt),
		ticket.Maintenance,
		ticket.Satisfaction,
		ticket.IncidentType,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ticket.ID = id
	return nil
}

func (r *sqliteTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	const query = `
        SELECT id, customer_id, opened_at, closed_at, maintenance, satisfaction, incident_type
        FROM tickets ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var (
			t              domain.Ticket
			opened, closed sql.NullString
		)
		if err := rows.Scan(
			&t.ID,
			&t.CustomerID,
			&opened,
			&closed,
			&t.Maintenance,
			&t.Satisfaction,
			&t.IncidentType,
		); err != nil {
			return nil, err
		}
		if t.OpenedAt, err = parseSQLiteTime("opened_at", opened); err != nil {
			return nil, err
		}
		if t.ClosedAt, err = parseSQLiteTime("closed_at", closed); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
