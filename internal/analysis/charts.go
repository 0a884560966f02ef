package analysis

import (
	"github.com/spec-kit/incident-analytics/internal/analysis/stats"
)

// ChartOptions tunes the critical-customer series.
type ChartOptions struct {
	CriticalExcludedType string
	CriticalTopN         int
}

// Charts holds the series the reporting front end plots.
type Charts struct {
	MaintenanceDuration []MaintenancePoint   `json:"maintenance_duration" msgpack:"maintenance_duration"`
	ResolutionByType    []BoxStats           `json:"resolution_by_type" msgpack:"resolution_by_type"`
	CriticalCustomers   []RankedCustomer     `json:"critical_customers" msgpack:"critical_customers"`
	ActionsByEmployee   []EmployeeActions    `json:"actions_by_employee" msgpack:"actions_by_employee"`
	ActionsByWeekday    []WeekdayActionPoint `json:"actions_by_weekday" msgpack:"actions_by_weekday"`
}

// MaintenancePoint is the mean ticket duration for one value of the maintenance flag.
type MaintenancePoint struct {
	Maintenance      bool    `json:"maintenance" msgpack:"maintenance"`
	Label            string  `json:"label" msgpack:"label"`
	Tickets          int     `json:"tickets" msgpack:"tickets"`
	MeanDurationDays float64 `json:"mean_duration_days" msgpack:"mean_duration_days"`
}

// BoxStats describes the spread of durations (days) for one incident type.
type BoxStats struct {
	IncidentType string  `json:"incident_type" msgpack:"incident_type"`
	Count        int     `json:"count" msgpack:"count"`
	Min          float64 `json:"min" msgpack:"min"`
	P5           float64 `json:"p5" msgpack:"p5"`
	Q1           float64 `json:"q1" msgpack:"q1"`
	Median       float64 `json:"median" msgpack:"median"`
	Q3           float64 `json:"q3" msgpack:"q3"`
	P90          float64 `json:"p90" msgpack:"p90"`
	Max          float64 `json:"max" msgpack:"max"`
}

// EmployeeActions is the number of contact rows an employee logged.
type EmployeeActions struct {
	EmployeeID string `json:"employee_id" msgpack:"employee_id"`
	Name       string `json:"name" msgpack:"name"`
	Actions    int    `json:"actuaciones" msgpack:"actuaciones"`
}

// WeekdayActionPoint is the number of contact rows logged on one weekday.
type WeekdayActionPoint struct {
	Weekday int    `json:"weekday" msgpack:"weekday"`
	Day     string `json:"day" msgpack:"day"`
	Actions int    `json:"actuaciones" msgpack:"actuaciones"`
}

var maintenanceLabels = map[bool]string{false: "No Mantenimiento", true: "Mantenimiento"}

// BuildCharts computes every chart series over the whole dataset.
func BuildCharts(ds *Dataset, opts ChartOptions) Charts {
	return Charts{
		MaintenanceDuration: MaintenanceDuration(ds),
		ResolutionByType:    ResolutionByType(ds),
		CriticalCustomers:   CriticalCustomers(ds, opts.CriticalExcludedType, opts.CriticalTopN),
		ActionsByEmployee:   ActionsByEmployee(ds),
		ActionsByWeekday:    ActionsByWeekday(ds),
	}
}

// MaintenanceDuration averages duration in days for non-maintenance then
// maintenance tickets. A flag value with no valid ticket is omitted.
func MaintenanceDuration(ds *Dataset) []MaintenancePoint {
	var sums [2]float64
	var counts [2]int
	for _, t := range ds.Tickets {
		if !t.Valid() {
			continue
		}
		i := 0
		if t.Maintenance {
			i = 1
		}
		sums[i] += float64(t.DurationDays)
		counts[i]++
	}
	out := make([]MaintenancePoint, 0, 2)
	for i, flag := range []bool{false, true} {
		if counts[i] == 0 {
			continue
		}
		out = append(out, MaintenancePoint{
			Maintenance:      flag,
			Label:            maintenanceLabels[flag],
			Tickets:          counts[i],
			MeanDurationDays: sums[i] / float64(counts[i]),
		})
	}
	return out
}

// ResolutionByType computes box statistics of duration in days per incident type.
func ResolutionByType(ds *Dataset) []BoxStats {
	byType := map[string][]float64{}
	for _, t := range ds.Tickets {
		if t.Valid() {
			byType[t.IncidentType] = append(byType[t.IncidentType], float64(t.DurationDays))
		}
	}
	out := make([]BoxStats, 0, len(byType))
	for _, code := range sortedKeys(byType) {
		values := byType[code]
		minV, maxV := stats.MinMax(values)
		out = append(out, BoxStats{
			IncidentType: code,
			Count:        len(values),
			Min:          minV,
			P5:           stats.Quantile(values, 0.05),
			Q1:           stats.Quantile(values, 0.25),
			Median:       stats.Median(values),
			Q3:           stats.Quantile(values, 0.75),
			P90:          stats.Quantile(values, 0.90),
			Max:          maxV,
		})
	}
	return out
}

// CriticalCustomers ranks customers by maintenance tickets whose incident type is
// not excludedType.
func CriticalCustomers(ds *Dataset, excludedType string, n int) []RankedCustomer {
	var critical []NormalizedTicket
	for _, t := range ds.Tickets {
		if t.Maintenance && t.IncidentType != excludedType {
			critical = append(critical, t)
		}
	}
	return rankCustomers(ds, critical, n)
}

// ActionsByEmployee counts contact rows per employee across every ticket.
func ActionsByEmployee(ds *Dataset) []EmployeeActions {
	counts := map[string]int{}
	for _, c := range ds.Contacts {
		counts[c.EmployeeID]++
	}
	out := make([]EmployeeActions, 0, len(counts))
	for _, id := range sortedKeys(counts) {
		e, _ := ds.Employee(id)
		out = append(out, EmployeeActions{EmployeeID: id, Name: e.Name, Actions: counts[id]})
	}
	return out
}

// ActionsByWeekday counts contact rows per weekday across every ticket, always seven points.
func ActionsByWeekday(ds *Dataset) []WeekdayActionPoint {
	var counts [7]int
	for _, c := range ds.Contacts {
		counts[WeekdayIndex(c.ContactedAt, ds.Location())]++
	}
	out := make([]WeekdayActionPoint, 0, 7)
	for i := range 7 {
		out = append(out, WeekdayActionPoint{Weekday: i, Day: DayNames[i], Actions: counts[i]})
	}
	return out
}
