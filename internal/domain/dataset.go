package domain

import "time"

// Dataset is a read-only snapshot of every collection, loaded once per analysis run.
type Dataset struct {
	Tickets       []Ticket
	Contacts      []Contact
	Employees     []Employee
	Customers     []Customer
	IncidentTypes []IncidentType
	LoadedAt      time.Time
}

// SeedTicket pairs a ticket with the contacts logged against it before ids are assigned.
type SeedTicket struct {
	Ticket   Ticket
	Contacts []Contact
}

// SeedBatch is the full content of a bulk load.
type SeedBatch struct {
	Customers     []Customer
	Employees     []Employee
	IncidentTypes []IncidentType
	Tickets       []SeedTicket
}
