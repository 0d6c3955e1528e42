package service_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/thiagovferrari/crm2026/internal/domain"
	"github.com/thiagovferrari/crm2026/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGenerateWorkbook(t *testing.T) {
	contacts := []domain.ContactWithDetails{
		{
			Contact: domain.Contact{
				Name:      "Alice Martins",
				Company:   "Acme Corp",
				Email:     "alice@acme.test",
				Status:    domain.StatusActive,
				CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			},
			Financials: []domain.FinancialRecord{
				{
					ServiceName:  "Website redesign",
					ValueCharged: 1200,
					ValuePaid:    1200,
					PaymentDate:  domain.NewDate(2024, time.May, 2),
					Status:       domain.FinancialPaid,
				},
			},
		},
		{
			Contact: domain.Contact{
				Name:    "Bob Silva",
				Company: "Globex",
				Status:  domain.StatusProspect,
			},
		},
	}

	raw, err := service.GenerateWorkbook(contacts)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Contacts")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, "Alice Martins", rows[1][0])
	assert.Equal(t, "Acme Corp", rows[1][1])
	assert.Equal(t, "Active", rows[1][5])
	assert.Equal(t, "Bob Silva", rows[2][0])

	finRows, err := f.GetRows("Financials")
	require.NoError(t, err)
	require.Len(t, finRows, 2)
	assert.Equal(t, "Alice Martins", finRows[1][0])
	assert.Equal(t, "Website redesign", finRows[1][1])
	assert.Equal(t, "Paid", finRows[1][5])
}

func TestGenerateWorkbook_EmptyCollection(t *testing.T) {
	raw, err := service.GenerateWorkbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Contacts")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
