package domain_test

import (
	"testing"

	"github.com/thiagovferrari/crm2026/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contact(name, company string, status domain.ContactStatus) domain.ContactWithDetails {
	return domain.ContactWithDetails{
		Contact: domain.Contact{ID: "id-" + name, Name: name, Company: company, Status: status},
	}
}

func testContacts() []domain.ContactWithDetails {
	return []domain.ContactWithDetails{
		contact("Alice Martins", "Acme Corp", domain.StatusActive),
		contact("Bob Silva", "Globex", domain.StatusProspect),
		contact("Carol Chen", "acme labs", domain.StatusInactive),
	}
}

func TestFilterContacts_NoFilterReturnsInputUnchanged(t *testing.T) {
	contacts := testContacts()

	out := domain.FilterContacts(contacts, "", domain.StatusAll)
	assert.Len(t, out, 3)

	out = domain.FilterContacts(contacts, "   ", "")
	assert.Len(t, out, 3)
}

func TestFilterContacts_QueryMatchesNameOrCompany(t *testing.T) {
	out := domain.FilterContacts(testContacts(), "ACME", domain.StatusAll)

	require.Len(t, out, 2)
	assert.Equal(t, "Alice Martins", out[0].Name)
	assert.Equal(t, "Carol Chen", out[1].Name)
}

func TestFilterContacts_StatusNarrows(t *testing.T) {
	out := domain.FilterContacts(testContacts(), "", domain.StatusProspect)

	require.Len(t, out, 1)
	assert.Equal(t, "Bob Silva", out[0].Name)
}

func TestFilterContacts_QueryAndStatusCombined(t *testing.T) {
	out := domain.FilterContacts(testContacts(), "acme", domain.StatusInactive)

	require.Len(t, out, 1)
	assert.Equal(t, "Carol Chen", out[0].Name)
}

func TestFilterContacts_NoMatch(t *testing.T) {
	out := domain.FilterContacts(testContacts(), "nonexistent", domain.StatusAll)
	assert.Empty(t, out)
}
