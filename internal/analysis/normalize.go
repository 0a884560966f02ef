// Package analysis turns a loaded dataset into the statistics, grouped views
// and rankings served to the reporting front end.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/spec-kit/incident-analytics/internal/domain"
)

// DateIssue flags a ticket whose duration cannot be trusted.
type DateIssue string

const (
	DateIssueNone           DateIssue = ""
	DateIssueMissingOpen    DateIssue = "missing_open"
	DateIssueMissingClose   DateIssue = "missing_close"
	DateIssueOpenAfterClose DateIssue = "open_after_close"
)

var (
	ErrMissingOpen    = errors.New("ticket has no open timestamp")
	ErrMissingClose   = errors.New("ticket has no close timestamp and no contacts")
	ErrOpenAfterClose = errors.New("ticket opens after its effective close")
)

// TicketDateError reports the date issue of a single ticket.
type TicketDateError struct {
	TicketID int64
	Issue    DateIssue
	Err      error
}

func (e *TicketDateError) Error() string {
	return fmt.Sprintf("ticket %d: %v", e.TicketID, e.Err)
}

func (e *TicketDateError) Unwrap() error {
	return e.Err
}

// NormalizedTicket is a ticket with its effective close reconciled against contact history.
type NormalizedTicket struct {
	domain.Ticket
	EffectiveClose *time.Time
	LastContact    *time.Time
	FirstContact   *time.Time
	Duration       time.Duration
	DurationDays   int
	Issue          DateIssue
}

// Valid reports whether the duration fields are meaningful.
func (t NormalizedTicket) Valid() bool {
	return t.Issue == DateIssueNone
}

// DateError describes the ticket's date issue, nil when its dates are sound.
func (t NormalizedTicket) DateError() *TicketDateError {
	var cause error
	switch t.Issue {
	case DateIssueNone:
		return nil
	case DateIssueMissingOpen:
		cause = ErrMissingOpen
	case DateIssueMissingClose:
		cause = ErrMissingClose
	default:
		cause = ErrOpenAfterClose
	}
	return &TicketDateError{TicketID: t.ID, Issue: t.Issue, Err: cause}
}

// ResolutionHours is the open-to-close time in fractional hours, NaN when invalid.
func (t NormalizedTicket) ResolutionHours() float64 {
	if !t.Valid() {
		return math.NaN()
	}
	return t.Duration.Hours()
}

// Normalize reconciles every ticket's close timestamp with the latest contact
// logged against it and derives its duration in whole days. The returned slice
// always has one entry per ticket in input order; the error joins one
// *TicketDateError per ticket whose dates are missing or inverted.
func Normalize(tickets []domain.Ticket, contacts []domain.Contact) ([]NormalizedTicket, error) {
	first := make(map[int64]time.Time, len(tickets))
	last := make(map[int64]time.Time, len(tickets))
	for _, c := range contacts {
		if cur, ok := last[c.TicketID]; !ok || c.ContactedAt.After(cur) {
			last[c.TicketID] = c.ContactedAt
		}
		if cur, ok := first[c.TicketID]; !ok || c.ContactedAt.Before(cur) {
			first[c.TicketID] = c.ContactedAt
		}
	}

	out := make([]NormalizedTicket, 0, len(tickets))
	var errs []error
	for _, t := range tickets {
		nt := NormalizedTicket{Ticket: t}
		if lc, ok := last[t.ID]; ok {
			nt.LastContact = &lc
			fc := first[t.ID]
			nt.FirstContact = &fc
		}
		nt.EffectiveClose = laterOf(t.ClosedAt, nt.LastContact)

		switch {
		case t.OpenedAt == nil:
			nt.Issue = DateIssueMissingOpen
		case nt.EffectiveClose == nil:
			nt.Issue = DateIssueMissingClose
		default:
			nt.Duration = nt.EffectiveClose.Sub(*t.OpenedAt)
			nt.DurationDays = DaysFloor(nt.Duration)
			if nt.Duration < 0 {
				nt.Issue = DateIssueOpenAfterClose
			}
		}
		if err := nt.DateError(); err != nil {
			errs = append(errs, err)
		}
		out = append(out, nt)
	}
	return out, errors.Join(errs...)
}

// DaysFloor converts a duration to whole calendar days rounding toward negative infinity.
func DaysFloor(d time.Duration) int {
	return int(math.Floor(d.Hours() / 24))
}

func laterOf(a, b *time.Time) *time.Time {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		v := *b
		return &v
	case b == nil:
		v := *a
		return &v
	case b.After(*a):
		v := *b
		return &v
	default:
		v := *a
		return &v
	}
}
