// Package billing holds the pure billing-alert computations: settlement of a
// single alert within its owning collection, and the upcoming-alerts window
// shown on the dashboard.
package billing

import (
	"fmt"

	"github.com/thiagovferrari/crm2026/internal/domain"
)

var ErrAlertNotFound = fmt.Errorf("alert not found")

// Advance returns a copy of the alert with the charge date moved forward by
// exactly one period measured from the current charge date, not from today.
// Overdue alerts are not caught up: one settlement advances one period, so an
// alert several cycles behind stays in the past until settled again.
// RecurrenceOnce alerts never advance (they are removed by Settle).
func Advance(alert domain.BillingAlert) domain.BillingAlert {
	next := alert
	switch alert.Recurrence {
	case domain.RecurrenceWeekly:
		next.ChargeDate = alert.ChargeDate.AddDate(0, 0, 7)
	case domain.RecurrenceMonthly:
		next.ChargeDate = alert.ChargeDate.AddDate(0, 1, 0)
	case domain.RecurrenceYearly:
		next.ChargeDate = alert.ChargeDate.AddDate(1, 0, 0)
	}
	return next
}

// Outcome describes what a settlement did to the alert.
type Outcome int

const (
	// OutcomeRemoved: a Once alert was consumed and removed.
	OutcomeRemoved Outcome = iota
	// OutcomeAdvanced: a recurring alert moved to its next cycle.
	OutcomeAdvanced
)

// Settle marks the alert with the given id as paid inside its collection.
// Once alerts are removed; recurring alerts are replaced by their advanced
// copy at the same position. The input slice is not mutated; callers replace
// the collection wholesale with the returned one.
func Settle(alerts []domain.BillingAlert, alertID string) ([]domain.BillingAlert, Outcome, error) {
	idx := -1
	for i, a := range alerts {
		if a.ID == alertID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, 0, fmt.Errorf("settle alert %s: %w", alertID, ErrAlertNotFound)
	}

	if alerts[idx].Recurrence == domain.RecurrenceOnce {
		out := make([]domain.BillingAlert, 0, len(alerts)-1)
		out = append(out, alerts[:idx]...)
		out = append(out, alerts[idx+1:]...)
		return out, OutcomeRemoved, nil
	}

	out := make([]domain.BillingAlert, len(alerts))
	copy(out, alerts)
	out[idx] = Advance(out[idx])
	return out, OutcomeAdvanced, nil
}
