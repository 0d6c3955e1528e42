package service

import (
	"context"
	"sort"

	"github.com/thiagovferrari/crm2026/internal/billing"
	"github.com/thiagovferrari/crm2026/internal/domain"
)

// CompanyBilling 按客户公司汇总的已收金额
type CompanyBilling struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// DashboardSummary 仪表盘聚合结果
type DashboardSummary struct {
	TotalContacts   int                     `json:"total_contacts"`
	ActiveCount     int                     `json:"active_count"`
	ProspectCount   int                     `json:"prospect_count"`
	InactiveCount   int                     `json:"inactive_count"`
	TotalReceived   float64                 `json:"total_received"`
	BillingByClient []CompanyBilling        `json:"billing_by_client"`
	UpcomingAlerts  []billing.UpcomingAlert `json:"upcoming_alerts"`
}

// DashboardService 仪表盘服务
// Pure aggregation over the current store snapshot; recomputed per request,
// no caching layer or incremental index.
type DashboardService struct {
	contacts *ContactService
}

func NewDashboardService(contacts *ContactService) *DashboardService {
	return &DashboardService{contacts: contacts}
}

func (s *DashboardService) Summary(ctx context.Context, userID string) (*DashboardSummary, error) {
	contacts, err := s.contacts.List(ctx, userID, "", domain.StatusAll)
	if err != nil {
		return nil, err
	}
	summary := Summarize(contacts, domain.Today())
	return &summary, nil
}

// Summarize computes the dashboard aggregates for a snapshot.
func Summarize(contacts []domain.ContactWithDetails, today domain.Date) DashboardSummary {
	summary := DashboardSummary{
		TotalContacts:   len(contacts),
		BillingByClient: []CompanyBilling{},
	}

	byCompany := map[string]float64{}
	var companies []string
	for _, c := range contacts {
		switch c.Status {
		case domain.StatusActive:
			summary.ActiveCount++
		case domain.StatusProspect:
			summary.ProspectCount++
		case domain.StatusInactive:
			summary.InactiveCount++
		}

		var received float64
		for _, f := range c.Financials {
			received += f.ValuePaid
		}
		summary.TotalReceived += received

		if _, seen := byCompany[c.Company]; !seen {
			companies = append(companies, c.Company)
		}
		byCompany[c.Company] += received
	}

	sort.SliceStable(companies, func(i, j int) bool {
		return byCompany[companies[i]] > byCompany[companies[j]]
	})
	if len(companies) > 5 {
		companies = companies[:5]
	}
	for _, name := range companies {
		summary.BillingByClient = append(summary.BillingByClient, CompanyBilling{Name: name, Value: byCompany[name]})
	}

	summary.UpcomingAlerts = billing.Upcoming(contacts, today)
	return summary
}
