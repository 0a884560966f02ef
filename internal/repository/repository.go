package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/incident-analytics/internal/domain"
)

// pgDB is satisfied by *pgxpool.Pool and pgx.Tx.
type pgDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// sqlDB is satisfied by *sql.DB and *sql.Tx.
type sqlDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store bundles the repositories of one backend.
type Store struct {
	Tickets       TicketRepository
	Contacts      ContactRepository
	Employees     EmployeeRepository
	Customers     CustomerRepository
	IncidentTypes IncidentTypeRepository
	Seed          SeedRepository
}

// NewPostgresStore builds every repository on a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	store := newPostgresRepos(pool)
	store.Seed = &pgSeedRepository{pool: pool}
	return store
}

func newPostgresRepos(db pgDB) *Store {
	return &Store{
		Tickets:       &pgTicketRepository{db: db},
		Contacts:      &pgContactRepository{db: db},
		Employees:     &pgEmployeeRepository{db: db},
		Customers:     &pgCustomerRepository{db: db},
		IncidentTypes: &pgIncidentTypeRepository{db: db},
	}
}

// NewSQLiteStore builds every repository on a database/sql handle opened with modernc.org/sqlite.
func NewSQLiteStore(db *sql.DB) *Store {
	store := newSQLiteRepos(db)
	store.Seed = &sqliteSeedRepository{db: db}
	return store
}

func newSQLiteRepos(db sqlDB) *Store {
	return &Store{
		Tickets:       &sqliteTicketRepository{db: db},
		Contacts:      &sqliteContactRepository{db: db},
		Employees:     &sqliteEmployeeRepository{db: db},
		Customers:     &sqliteCustomerRepository{db: db},
		IncidentTypes: &sqliteIncidentTypeRepository{db: db},
	}
}

// Snapshot reads all five collections into one dataset.
func (s *Store) Snapshot(ctx context.Context) (*domain.Dataset, error) {
	tickets, err := s.Tickets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	contacts, err := s.Contacts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	employees, err := s.Employees.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	customers, err := s.Customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	types, err := s.IncidentTypes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list incident types: %w", err)
	}
	return &domain.Dataset{
		Tickets:       tickets,
		Contacts:      contacts,
		Employees:     employees,
		Customers:     customers,
		IncidentTypes: types,
		LoadedAt:      time.Now().UTC(),
	}, nil
}

// SQLiteTimeLayout is the fixed-width UTC text form of every SQLite timestamp.
const SQLiteTimeLayout = "2006-01-02 15:04:05"

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(SQLiteTimeLayout)
}

func formatSQLiteTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatSQLiteTime(*t)
}

func parseSQLiteTime(column string, raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(SQLiteTimeLayout, raw.String, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse %s %q: %w", column, raw.String, err)
	}
	return &t, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
