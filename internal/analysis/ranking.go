package analysis

import (
	"cmp"
	"slices"
)

// DefaultTopN is the ranking length used when callers have no preference.
const DefaultTopN = 10

// RankedCustomer is a row of the customers-by-ticket-count ranking.
type RankedCustomer struct {
	CustomerID string `json:"customer_id" msgpack:"customer_id"`
	Name       string `json:"name" msgpack:"name"`
	Tickets    int    `json:"tickets" msgpack:"tickets"`
}

// RankedIncidentType is a row of the slowest-incident-types ranking.
type RankedIncidentType struct {
	IncidentType        string  `json:"incident_type" msgpack:"incident_type"`
	Name                string  `json:"name" msgpack:"name"`
	Tickets             int     `json:"tickets" msgpack:"tickets"`
	MeanResolutionHours float64 `json:"mean_resolution_hours" msgpack:"mean_resolution_hours"`
}

// RankedEmployee is a row of the employees-by-logged-hours ranking.
type RankedEmployee struct {
	EmployeeID string  `json:"employee_id" msgpack:"employee_id"`
	Name       string  `json:"name" msgpack:"name"`
	Hours      float64 `json:"hours" msgpack:"hours"`
}

// TopCustomers ranks customers by ticket count, descending.
func TopCustomers(ds *Dataset, n int) []RankedCustomer {
	return rankCustomers(ds, ds.Tickets, n)
}

func rankCustomers(ds *Dataset, tickets []NormalizedTicket, n int) []RankedCustomer {
	counts := map[string]int{}
	for _, t := range tickets {
		counts[t.CustomerID]++
	}
	rows := make([]RankedCustomer, 0, len(counts))
	for _, id := range sortedKeys(counts) {
		c, _ := ds.Customer(id)
		rows = append(rows, RankedCustomer{CustomerID: id, Name: c.Name, Tickets: counts[id]})
	}
	return topN(rows, n, func(r RankedCustomer) int { return r.Tickets })
}

// TopIncidentTypesByResolution ranks incident types by mean resolution time in
// hours, descending. Tickets flagged during normalization are left out.
func TopIncidentTypesByResolution(ds *Dataset, n int) []RankedIncidentType {
	type acc struct {
		hours float64
		count int
	}
	byType := map[string]*acc{}
	for _, t := range ds.Tickets {
		if !t.Valid() {
			continue
		}
		a, ok := byType[t.IncidentType]
		if !ok {
			a = &acc{}
			byType[t.IncidentType] = a
		}
		a.hours += t.ResolutionHours()
		a.count++
	}
	rows := make([]RankedIncidentType, 0, len(byType))
	for _, code := range sortedKeys(byType) {
		a := byType[code]
		it, _ := ds.IncidentType(code)
		rows = append(rows, RankedIncidentType{
			IncidentType:        code,
			Name:                it.Name,
			Tickets:             a.count,
			MeanResolutionHours: a.hours / float64(a.count),
		})
	}
	return topN(rows, n, func(r RankedIncidentType) float64 { return r.MeanResolutionHours })
}

// TopEmployeesByHours ranks employees by total logged hours, descending.
func TopEmployeesByHours(ds *Dataset, n int) []RankedEmployee {
	hours := map[string]float64{}
	for _, c := range ds.Contacts {
		hours[c.EmployeeID] += c.Hours
	}
	rows := make([]RankedEmployee, 0, len(hours))
	for _, id := range sortedKeys(hours) {
		e, _ := ds.Employee(id)
		rows = append(rows, RankedEmployee{EmployeeID: id, Name: e.Name, Hours: hours[id]})
	}
	return topN(rows, n, func(r RankedEmployee) float64 { return r.Hours })
}

// topN sorts rows by score descending, keeping the input order of ties, and
// keeps at most n of them. n <= 0 yields an empty slice.
func topN[T any, S cmp.Ordered](rows []T, n int, score func(T) S) []T {
	if n <= 0 {
		return []T{}
	}
	slices.SortStableFunc(rows, func(a, b T) int {
		return cmp.Compare(score(b), score(a))
	})
	if n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
