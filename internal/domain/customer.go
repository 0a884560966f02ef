package domain

// Customer owns tickets.
type Customer struct {
	ID       string
	Name     string
	Phone    string
	Province string
}

// IncidentType classifies tickets by code.
type IncidentType struct {
	ID   string
	Name string
}
