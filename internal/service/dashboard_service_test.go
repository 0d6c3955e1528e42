package service_test

import (
	"testing"
	"time"

	"github.com/thiagovferrari/crm2026/internal/domain"
	"github.com/thiagovferrari/crm2026/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryContact(name, company string, status domain.ContactStatus, paid float64) domain.ContactWithDetails {
	return domain.ContactWithDetails{
		Contact: domain.Contact{ID: "id-" + name, Name: name, Company: company, Status: status},
		Financials: []domain.FinancialRecord{
			{ServiceName: "service", ValueCharged: paid, ValuePaid: paid},
		},
	}
}

func TestSummarize_CountsAndTotals(t *testing.T) {
	today := domain.NewDate(2024, time.May, 1)
	contacts := []domain.ContactWithDetails{
		summaryContact("Alice", "Acme", domain.StatusActive, 100),
		summaryContact("Bob", "Globex", domain.StatusActive, 250),
		summaryContact("Carol", "Initech", domain.StatusProspect, 0),
		summaryContact("Dave", "Umbrella", domain.StatusInactive, 50),
	}

	s := service.Summarize(contacts, today)

	assert.Equal(t, 4, s.TotalContacts)
	assert.Equal(t, 2, s.ActiveCount)
	assert.Equal(t, 1, s.ProspectCount)
	assert.Equal(t, 1, s.InactiveCount)
	assert.Equal(t, 400.0, s.TotalReceived)
}

func TestSummarize_BillingByClientTopFiveDescending(t *testing.T) {
	today := domain.NewDate(2024, time.May, 1)
	contacts := []domain.ContactWithDetails{
		summaryContact("A", "Co1", domain.StatusActive, 10),
		summaryContact("B", "Co2", domain.StatusActive, 60),
		summaryContact("C", "Co3", domain.StatusActive, 30),
		summaryContact("D", "Co4", domain.StatusActive, 40),
		summaryContact("E", "Co5", domain.StatusActive, 50),
		summaryContact("F", "Co6", domain.StatusActive, 20),
	}

	s := service.Summarize(contacts, today)

	require.Len(t, s.BillingByClient, 5)
	assert.Equal(t, "Co2", s.BillingByClient[0].Name)
	assert.Equal(t, 60.0, s.BillingByClient[0].Value)
	assert.Equal(t, "Co5", s.BillingByClient[1].Name)
	// The smallest company fell off the top five.
	for _, b := range s.BillingByClient {
		assert.NotEqual(t, "Co1", b.Name)
	}
}

func TestSummarize_AggregatesSameCompany(t *testing.T) {
	today := domain.NewDate(2024, time.May, 1)
	contacts := []domain.ContactWithDetails{
		summaryContact("Alice", "Acme", domain.StatusActive, 100),
		summaryContact("Bob", "Acme", domain.StatusActive, 150),
	}

	s := service.Summarize(contacts, today)

	require.Len(t, s.BillingByClient, 1)
	assert.Equal(t, "Acme", s.BillingByClient[0].Name)
	assert.Equal(t, 250.0, s.BillingByClient[0].Value)
}

func TestSummarize_IncludesUpcomingAlerts(t *testing.T) {
	today := domain.NewDate(2024, time.May, 1)
	c := summaryContact("Alice", "Acme", domain.StatusActive, 0)
	c.Alerts = []domain.BillingAlert{
		{ID: "a1", Reason: "Renewal", ChargeDate: domain.NewDate(2024, time.May, 5), Recurrence: domain.RecurrenceMonthly},
		{ID: "a2", Reason: "Too far", ChargeDate: domain.NewDate(2024, time.June, 15), Recurrence: domain.RecurrenceOnce},
	}

	s := service.Summarize([]domain.ContactWithDetails{c}, today)

	require.Len(t, s.UpcomingAlerts, 1)
	assert.Equal(t, "a1", s.UpcomingAlerts[0].ID)
	assert.Equal(t, "Alice", s.UpcomingAlerts[0].ContactName)
}

func TestSummarize_Empty(t *testing.T) {
	s := service.Summarize(nil, domain.Today())

	assert.Equal(t, 0, s.TotalContacts)
	assert.Equal(t, 0.0, s.TotalReceived)
	assert.Empty(t, s.BillingByClient)
	assert.Empty(t, s.UpcomingAlerts)
}
