package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/incident-analytics/internal/domain"
)

// SeedResult reports what a bulk load wrote.
type SeedResult struct {
	Customers     int
	Employees     int
	IncidentTypes int
	Tickets       int
	Contacts      int
	BackFilled    int64
}

// SeedRepository replaces the whole store content in one transaction.
type SeedRepository interface {
	Replace(ctx context.Context, batch *domain.SeedBatch) (SeedResult, error)
}

type pgSeedRepository struct {
	pool *pgxpool.Pool
}

func (r *pgSeedRepository) Replace(ctx context.Context, batch *domain.SeedBatch) (SeedResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return SeedResult{}, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const reset = `TRUNCATE contacts, tickets, incident_types, employees, customers RESTART IDENTITY`
	if _, err := tx.Exec(ctx, reset); err != nil {
		return SeedResult{}, fmt.Errorf("reset tables: %w", err)
	}

	result, err := insertBatch(ctx, newPostgresRepos(tx), batch)
	if err != nil {
		return SeedResult{}, err
	}

	const backFill = `
        UPDATE tickets t SET closed_at = c.last_contact
        FROM (SELECT ticket_id, MAX(contacted_at) AS last_contact FROM contacts GROUP BY ticket_id) c
        WHERE c.ticket_id = t.id`
	tag, err := tx.Exec(ctx, backFill)
	if err != nil {
		return SeedResult{}, fmt.Errorf("back-fill close dates: %w", err)
	}
	result.BackFilled = tag.RowsAffected()

	if err := tx.Commit(ctx); err != nil {
		return SeedResult{}, fmt.Errorf("commit seed: %w", err)
	}
	return result, nil
}

type sqliteSeedRepository struct {
	db *sql.DB
}

func (r *sqliteSeedRepository) Replace(ctx context.Context, batch *domain.SeedBatch) (SeedResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return SeedResult{}, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range []string{
		`DELETE FROM contacts`,
		`DELETE FROM tickets`,
		`DELETE FROM incident_types`,
		`DELETE FROM employees`,
		`DELETE FROM customers`,
		`DELETE FROM sqlite_sequence WHERE name IN ('tickets', 'contacts')`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return SeedResult{}, fmt.Errorf("reset tables: %w", err)
		}
	}

	result, err := insertBatch(ctx, newSQLiteRepos(tx), batch)
	if err != nil {
		return SeedResult{}, err
	}

	// Fixed-width UTC text compares in time order, so MAX picks the latest contact.
	const backFill = `
        UPDATE tickets SET closed_at = (
            SELECT MAX(contacted_at) FROM contacts WHERE contacts.ticket_id = tickets.id
        )
        WHERE EXISTS (SELECT 1 FROM contacts WHERE contacts.ticket_id = tickets.id)`
	res, err := tx.ExecContext(ctx, backFill)
	if err != nil {
		return SeedResult{}, fmt.Errorf("back-fill close dates: %w", err)
	}
	if result.BackFilled, err = res.RowsAffected(); err != nil {
		return SeedResult{}, fmt.Errorf("back-fill close dates: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return SeedResult{}, fmt.Errorf("commit seed: %w", err)
	}
	return result, nil
}

func insertBatch(ctx context.Context, repos *Store, batch *domain.SeedBatch) (SeedResult, error) {
	var result SeedResult
	for i := range batch.Customers {
		if err := repos.Customers.Create(ctx, &batch.Customers[i]); err != nil {
			return result, fmt.Errorf("insert customer %s: %w", batch.Customers[i].ID, err)
		}
		result.Customers++
	}
	for i := range batch.Employees {
		if err := repos.Employees.Create(ctx, &batch.Employees[i]); err != nil {
			return result, fmt.Errorf("insert employee %s: %w", batch.Employees[i].ID, err)
		}
		result.Employees++
	}
	for i := range batch.IncidentTypes {
		if err := repos.IncidentTypes.Create(ctx, &batch.IncidentTypes[i]); err != nil {
			return result, fmt.Errorf("insert incident type %s: %w", batch.IncidentTypes[i].ID, err)
		}
		result.IncidentTypes++
	}
	for i := range batch.Tickets {
		entry := &batch.Tickets[i]
		if err := repos.Tickets.Create(ctx, &entry.Ticket); err != nil {
			return result, fmt.Errorf("insert ticket %d of batch: %w", i, err)
		}
		result.Tickets++
		for j := range entry.Contacts {
			contact := &entry.Contacts[j]
			contact.TicketID = entry.Ticket.ID
			if err := repos.Contacts.Create(ctx, contact); err != nil {
				return result, fmt.Errorf("insert contact for ticket %d: %w", entry.Ticket.ID, err)
			}
			result.Contacts++
		}
	}
	return result, nil
}
