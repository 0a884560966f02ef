package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/incident-analytics/internal/domain"
)

// ErrNilSnapshot is returned when no snapshot is supplied.
var ErrNilSnapshot = errors.New("nil dataset snapshot")

// Dataset is the normalized analysis context. Every view is a pure function of a
// Dataset (or a Subset of it); nothing in it is mutated after construction.
type Dataset struct {
	Tickets  []NormalizedTicket
	Contacts []domain.Contact
	LoadedAt time.Time

	employees     map[string]domain.Employee
	customers     map[string]domain.Customer
	incidentTypes map[string]domain.IncidentType
	ticketIndex   map[int64]int
	location      *time.Location
	issues        []*TicketDateError
}

type datasetOptions struct {
	location *time.Location
	strict   bool
}

// DatasetOption configures NewDataset.
type DatasetOption func(*datasetOptions)

// WithLocation sets the time zone used to derive weekdays.
func WithLocation(loc *time.Location) DatasetOption {
	return func(o *datasetOptions) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithStrictDates makes NewDataset fail when any ticket has a date issue.
func WithStrictDates(strict bool) DatasetOption {
	return func(o *datasetOptions) {
		o.strict = strict
	}
}

// NewDataset normalizes a snapshot and indexes its reference data. In strict mode a
// ticket with missing or inverted dates fails the whole run; otherwise the ticket is
// kept, flagged, and left out of duration statistics.
func NewDataset(snapshot *domain.Dataset, opts ...DatasetOption) (*Dataset, error) {
	if snapshot == nil {
		return nil, ErrNilSnapshot
	}
	o := datasetOptions{location: time.UTC, strict: true}
	for _, opt := range opts {
		opt(&o)
	}

	tickets, err := Normalize(snapshot.Tickets, snapshot.Contacts)
	if err != nil && o.strict {
		return nil, fmt.Errorf("normalize tickets: %w", err)
	}

	ds := &Dataset{
		Tickets:       tickets,
		Contacts:      snapshot.Contacts,
		LoadedAt:      snapshot.LoadedAt,
		employees:     make(map[string]domain.Employee, len(snapshot.Employees)),
		customers:     make(map[string]domain.Customer, len(snapshot.Customers)),
		incidentTypes: make(map[string]domain.IncidentType, len(snapshot.IncidentTypes)),
		ticketIndex:   make(map[int64]int, len(tickets)),
		location:      o.location,
	}
	for _, e := range snapshot.Employees {
		ds.employees[e.ID] = e
	}
	for _, c := range snapshot.Customers {
		ds.customers[c.ID] = c
	}
	for _, it := range snapshot.IncidentTypes {
		ds.incidentTypes[it.ID] = it
	}
	for i, t := range tickets {
		ds.ticketIndex[t.ID] = i
	}
	for _, t := range tickets {
		if dateErr := t.DateError(); dateErr != nil {
			ds.issues = append(ds.issues, dateErr)
		}
	}
	return ds, nil
}

// Issues lists tickets flagged during normalization.
func (ds *Dataset) Issues() []*TicketDateError {
	return ds.issues
}

// Location is the zone weekdays are computed in.
func (ds *Dataset) Location() *time.Location {
	return ds.location
}

// Ticket looks up a normalized ticket by id.
func (ds *Dataset) Ticket(id int64) (NormalizedTicket, bool) {
	i, ok := ds.ticketIndex[id]
	if !ok {
		return NormalizedTicket{}, false
	}
	return ds.Tickets[i], true
}

// Employee looks up reference data for an employee.
func (ds *Dataset) Employee(id string) (domain.Employee, bool) {
	e, ok := ds.employees[id]
	return e, ok
}

// Customer looks up reference data for a customer.
func (ds *Dataset) Customer(id string) (domain.Customer, bool) {
	c, ok := ds.customers[id]
	return c, ok
}

// IncidentType looks up reference data for an incident type code.
func (ds *Dataset) IncidentType(code string) (domain.IncidentType, bool) {
	it, ok := ds.incidentTypes[code]
	return it, ok
}

// TicketPredicate selects tickets for a Subset.
type TicketPredicate func(NormalizedTicket) bool

// IncidentTypeIs matches tickets of one incident type code.
func IncidentTypeIs(code string) TicketPredicate {
	return func(t NormalizedTicket) bool {
		return t.IncidentType == code
	}
}

// AllTickets matches every ticket.
func AllTickets(NormalizedTicket) bool {
	return true
}

// Subset is a filtered view of a Dataset: the matching tickets and every contact
// referencing one of them.
type Subset struct {
	ds       *Dataset
	Tickets  []NormalizedTicket
	Contacts []domain.Contact
}

// Subset filters the dataset.
func (ds *Dataset) Subset(pred TicketPredicate) Subset {
	s := Subset{ds: ds}
	ids := make(map[int64]struct{})
	for _, t := range ds.Tickets {
		if pred(t) {
			s.Tickets = append(s.Tickets, t)
			ids[t.ID] = struct{}{}
		}
	}
	for _, c := range ds.Contacts {
		if _, ok := ids[c.TicketID]; ok {
			s.Contacts = append(s.Contacts, c)
		}
	}
	return s
}

// Dataset returns the dataset the subset was drawn from.
func (s Subset) Dataset() *Dataset {
	return s.ds
}
