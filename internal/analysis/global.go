package analysis

import (
	"github.com/spec-kit/incident-analytics/internal/analysis/stats"
)

// SatisfactionThreshold is the minimum customer satisfaction counted as satisfied.
const SatisfactionThreshold = 5

// GlobalStats are the dataset-wide figures computed over every ticket.
type GlobalStats struct {
	TotalTickets         int           `json:"total_tickets" msgpack:"total_tickets"`
	SatisfiedTickets     int           `json:"satisfied_tickets" msgpack:"satisfied_tickets"`
	SatisfiedPerCustomer stats.Summary `json:"satisfied_tickets_per_customer" msgpack:"satisfied_tickets_per_customer"`
	TicketsPerCustomer   stats.Summary `json:"tickets_per_customer" msgpack:"tickets_per_customer"`
	HoursPerTicket       stats.Summary `json:"hours_per_ticket" msgpack:"hours_per_ticket"`
	HoursPerEmployee     stats.Summary `json:"hours_per_employee" msgpack:"hours_per_employee"`
	DurationDays         stats.Summary `json:"duration_days" msgpack:"duration_days"`
	TicketsPerEmployee   stats.Summary `json:"tickets_per_employee" msgpack:"tickets_per_employee"`
	FlaggedTickets       int           `json:"flagged_tickets" msgpack:"flagged_tickets"`
}

// ComputeGlobal derives the dataset-wide statistics. Duration figures only use
// tickets whose dates passed normalization.
func ComputeGlobal(ds *Dataset) GlobalStats {
	g := GlobalStats{TotalTickets: len(ds.Tickets)}

	perCustomer := map[string]int{}
	satisfiedPerCustomer := map[string]int{}
	var durations []float64
	for _, t := range ds.Tickets {
		perCustomer[t.CustomerID]++
		if t.Satisfaction >= SatisfactionThreshold {
			g.SatisfiedTickets++
			satisfiedPerCustomer[t.CustomerID]++
		}
		if t.Valid() {
			durations = append(durations, float64(t.DurationDays))
		} else {
			g.FlaggedTickets++
		}
	}
	g.TicketsPerCustomer = stats.Summarize(stats.ValuesByKey(perCustomer))
	g.SatisfiedPerCustomer = stats.Summarize(stats.ValuesByKey(satisfiedPerCustomer))
	g.DurationDays = stats.Summarize(durations)

	hoursPerTicket := map[int64]float64{}
	hoursPerEmployee := map[string]float64{}
	ticketsPerEmployee := tallies[string]{}
	for _, c := range ds.Contacts {
		hoursPerTicket[c.TicketID] += c.Hours
		hoursPerEmployee[c.EmployeeID] += c.Hours
		ticketsPerEmployee.get(c.EmployeeID).add(c.TicketID, true)
	}
	g.HoursPerTicket = stats.Summarize(stats.ValuesByKey(hoursPerTicket))
	g.HoursPerEmployee = stats.Summarize(stats.ValuesByKey(hoursPerEmployee))

	distinct := make([]float64, 0, len(ticketsPerEmployee))
	for _, row := range ticketsPerEmployee.rows(identity) {
		distinct = append(distinct, float64(row.Incidents))
	}
	g.TicketsPerEmployee = stats.Summarize(distinct)
	return g
}

// DurationSummary summarizes duration in days over the valid tickets of a subset.
func DurationSummary(s Subset) stats.Summary {
	var values []float64
	for _, t := range s.Tickets {
		if t.Valid() {
			values = append(values, float64(t.DurationDays))
		}
	}
	return stats.Summarize(values)
}
