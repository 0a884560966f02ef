package domain

import "time"

// Ticket is one customer-reported incident as stored.
type Ticket struct {
	ID           int64
	CustomerID   string
	OpenedAt     *time.Time
	ClosedAt     *time.Time
	Maintenance  bool
	Satisfaction int
	IncidentType string
}

// Contact is one unit of employee work logged against a ticket.
type Contact struct {
	ID          int64
	TicketID    int64
	EmployeeID  string
	ContactedAt time.Time
	Hours       float64
}
