package analysis

import (
	"cmp"
	"fmt"
	"strconv"
	"time"

	"github.com/spec-kit/incident-analytics/internal/analysis/stats"
)

// Dimension names a grouped view.
type Dimension string

const (
	DimensionEmployee     Dimension = "employee"
	DimensionLevel        Dimension = "level"
	DimensionCustomer     Dimension = "customer"
	DimensionIncidentType Dimension = "incident-type"
	DimensionWeekday      Dimension = "weekday"
)

// Dimensions lists every grouped view in report order.
var Dimensions = []Dimension{
	DimensionEmployee,
	DimensionLevel,
	DimensionCustomer,
	DimensionIncidentType,
	DimensionWeekday,
}

// DayNames maps weekday numbers (Monday = 0) to display names.
var DayNames = [7]string{"Lunes", "Martes", "Miercoles", "Jueves", "Viernes", "Sabado", "Domingo"}

// GroupRow is one row of a grouped view. Incidents counts distinct tickets,
// Actions counts contact rows. Weekday and Day are set only on weekday rows.
type GroupRow struct {
	Key       string `json:"key" msgpack:"key"`
	Weekday   *int   `json:"weekday,omitempty" msgpack:"weekday"`
	Day       string `json:"day,omitempty" msgpack:"day"`
	Incidents int    `json:"incidencias" msgpack:"incidencias"`
	Actions   int    `json:"actuaciones" msgpack:"actuaciones"`
}

// GroupView is a grouped table with the summary of its Incidents column.
type GroupView struct {
	Dimension Dimension     `json:"dimension" msgpack:"dimension"`
	Rows      []GroupRow    `json:"rows" msgpack:"rows"`
	Summary   stats.Summary `json:"summary" msgpack:"summary"`
}

// View computes one grouped view over a subset.
func View(s Subset, d Dimension) (GroupView, error) {
	var rows []GroupRow
	switch d {
	case DimensionEmployee:
		rows = ByEmployee(s)
	case DimensionLevel:
		rows = ByLevel(s)
	case DimensionCustomer:
		rows = ByCustomer(s)
	case DimensionIncidentType:
		rows = ByIncidentType(s)
	case DimensionWeekday:
		rows = ByWeekday(s)
	default:
		return GroupView{}, fmt.Errorf("unknown dimension %q", d)
	}
	return GroupView{Dimension: d, Rows: rows, Summary: SummarizeIncidents(rows)}, nil
}

// SummarizeIncidents applies the summary statistics to the Incidents column.
func SummarizeIncidents(rows []GroupRow) stats.Summary {
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		values = append(values, float64(r.Incidents))
	}
	return stats.Summarize(values)
}

type tally struct {
	tickets map[int64]struct{}
	actions int
}

func (t *tally) add(ticketID int64, action bool) {
	if t.tickets == nil {
		t.tickets = make(map[int64]struct{})
	}
	t.tickets[ticketID] = struct{}{}
	if action {
		t.actions++
	}
}

type tallies[K cmp.Ordered] map[K]*tally

func (m tallies[K]) get(k K) *tally {
	t, ok := m[k]
	if !ok {
		t = &tally{}
		m[k] = t
	}
	return t
}

func (m tallies[K]) rows(format func(K) string) []GroupRow {
	out := make([]GroupRow, 0, len(m))
	for _, k := range sortedKeys(m) {
		t := m[k]
		out = append(out, GroupRow{Key: format(k), Incidents: len(t.tickets), Actions: t.actions})
	}
	return out
}

func identity(s string) string { return s }

// ByEmployee counts, per employee in the subset's contacts, the distinct tickets
// touched and the contact rows logged.
func ByEmployee(s Subset) []GroupRow {
	acc := tallies[string]{}
	for _, c := range s.Contacts {
		acc.get(c.EmployeeID).add(c.TicketID, true)
	}
	return acc.rows(identity)
}

// ByLevel groups ByEmployee rows by the employee's level and sums both columns.
// Incidents is a sum of per-employee distinct counts: two employees of the same
// level working one ticket count it twice. Employees missing from the reference
// data have no level and are left out.
func ByLevel(s Subset) []GroupRow {
	sums := map[int]*GroupRow{}
	for _, row := range ByEmployee(s) {
		emp, ok := s.ds.Employee(row.Key)
		if !ok {
			continue
		}
		agg, ok := sums[emp.Level]
		if !ok {
			agg = &GroupRow{Key: strconv.Itoa(emp.Level)}
			sums[emp.Level] = agg
		}
		agg.Incidents += row.Incidents
		agg.Actions += row.Actions
	}
	out := make([]GroupRow, 0, len(sums))
	for _, lvl := range sortedKeys(sums) {
		out = append(out, *sums[lvl])
	}
	return out
}

// ByCustomer counts the subset's tickets per customer and the contact rows
// logged against them.
func ByCustomer(s Subset) []GroupRow {
	return byTicketAttribute(s, func(t NormalizedTicket) string { return t.CustomerID })
}

// ByIncidentType counts the subset's tickets per incident type and the contact
// rows logged against them.
func ByIncidentType(s Subset) []GroupRow {
	return byTicketAttribute(s, func(t NormalizedTicket) string { return t.IncidentType })
}

func byTicketAttribute(s Subset, attr func(NormalizedTicket) string) []GroupRow {
	acc := tallies[string]{}
	keyOf := make(map[int64]string, len(s.Tickets))
	for _, t := range s.Tickets {
		k := attr(t)
		keyOf[t.ID] = k
		acc.get(k).add(t.ID, false)
	}
	for _, c := range s.Contacts {
		if k, ok := keyOf[c.TicketID]; ok {
			acc.get(k).actions++
		}
	}
	return acc.rows(identity)
}

// ByWeekday always returns seven rows, Monday (0) to Sunday (6). Incidents counts
// tickets by the weekday of their first contact; Actions counts contact rows by
// their own weekday. Tickets without contacts do not contribute.
func ByWeekday(s Subset) []GroupRow {
	loc := s.ds.Location()
	var incidents, actions [7]int
	for _, t := range s.Tickets {
		if t.FirstContact == nil {
			continue
		}
		incidents[WeekdayIndex(*t.FirstContact, loc)]++
	}
	for _, c := range s.Contacts {
		actions[WeekdayIndex(c.ContactedAt, loc)]++
	}
	return weekdayRows(incidents, actions)
}

func weekdayRows(incidents, actions [7]int) []GroupRow {
	out := make([]GroupRow, 0, 7)
	for i := range 7 {
		wd := i
		out = append(out, GroupRow{
			Key:       strconv.Itoa(i),
			Weekday:   &wd,
			Day:       DayNames[i],
			Incidents: incidents[i],
			Actions:   actions[i],
		})
	}
	return out
}

// WeekdayIndex returns 0 for Monday through 6 for Sunday, evaluated in loc.
func WeekdayIndex(t time.Time, loc *time.Location) int {
	if loc != nil {
		t = t.In(loc)
	}
	return (int(t.Weekday()) + 6) % 7
}
