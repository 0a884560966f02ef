package analysis

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/incident-analytics/internal/analysis/stats"
)

// ReportOptions selects the subset and chart parameters of a report.
type ReportOptions struct {
	FraudIncidentType string
	Charts            ChartOptions
}

// FlaggedTicket lists a ticket excluded from duration statistics.
type FlaggedTicket struct {
	TicketID int64     `json:"ticket_id" msgpack:"ticket_id"`
	Issue    DateIssue `json:"issue" msgpack:"issue"`
}

// Report is the full output of one analysis run.
type Report struct {
	RunID             string          `json:"run_id" msgpack:"run_id"`
	GeneratedAt       time.Time       `json:"generated_at" msgpack:"generated_at"`
	DatasetLoadedAt   time.Time       `json:"dataset_loaded_at" msgpack:"dataset_loaded_at"`
	FraudIncidentType string          `json:"fraud_incident_type" msgpack:"fraud_incident_type"`
	FraudTickets      int             `json:"fraud_tickets" msgpack:"fraud_tickets"`
	Global            GlobalStats     `json:"global" msgpack:"global"`
	Groups            []GroupView     `json:"groups" msgpack:"groups"`
	FraudDuration     stats.Summary   `json:"fraud_duration_days" msgpack:"fraud_duration_days"`
	Charts            Charts          `json:"charts" msgpack:"charts"`
	Flagged           []FlaggedTicket `json:"flagged_tickets" msgpack:"flagged_tickets"`
}

// Group returns the grouped view for a dimension.
func (r *Report) Group(d Dimension) (GroupView, bool) {
	for _, g := range r.Groups {
		if g.Dimension == d {
			return g, true
		}
	}
	return GroupView{}, false
}

// Build runs every view over the dataset. The dataset is only read, so a failed
// build leaves it usable for the next one.
func Build(ds *Dataset, opts ReportOptions) (*Report, error) {
	if ds == nil {
		return nil, ErrNilSnapshot
	}
	fraud := ds.Subset(IncidentTypeIs(opts.FraudIncidentType))

	report := &Report{
		RunID:             uuid.NewString(),
		GeneratedAt:       time.Now().UTC(),
		DatasetLoadedAt:   ds.LoadedAt,
		FraudIncidentType: opts.FraudIncidentType,
		FraudTickets:      len(fraud.Tickets),
		Global:            ComputeGlobal(ds),
		FraudDuration:     DurationSummary(fraud),
		Charts:            BuildCharts(ds, opts.Charts),
		Groups:            make([]GroupView, 0, len(Dimensions)),
		Flagged:           make([]FlaggedTicket, 0, len(ds.Issues())),
	}
	for _, d := range Dimensions {
		view, err := View(fraud, d)
		if err != nil {
			return nil, fmt.Errorf("build %s view: %w", d, err)
		}
		report.Groups = append(report.Groups, view)
	}
	for _, issue := range ds.Issues() {
		report.Flagged = append(report.Flagged, FlaggedTicket{TicketID: issue.TicketID, Issue: issue.Issue})
	}
	return report, nil
}
