package billing

import (
	"sort"

	"github.com/thiagovferrari/crm2026/internal/domain"
)

// UpcomingWindowDays is the dashboard look-ahead, inclusive on both ends.
const UpcomingWindowDays = 10

// UpcomingAlert is a billing alert annotated with its owning contact.
type UpcomingAlert struct {
	domain.BillingAlert
	ContactName string `json:"contact_name"`
	CompanyName string `json:"company_name"`
}

// Upcoming flattens all alerts whose charge date falls in
// [today, today+10d] inclusive, annotated with contact name/company and
// sorted ascending by charge date. Pure; recomputed per call.
func Upcoming(contacts []domain.ContactWithDetails, today domain.Date) []UpcomingAlert {
	limit := today.AddDate(0, 0, UpcomingWindowDays)

	var out []UpcomingAlert
	for _, c := range contacts {
		for _, a := range c.Alerts {
			if a.ChargeDate.Before(today) || a.ChargeDate.After(limit) {
				continue
			}
			out = append(out, UpcomingAlert{
				BillingAlert: a,
				ContactName:  c.Name,
				CompanyName:  c.Company,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ChargeDate.Before(out[j].ChargeDate)
	})
	return out
}
