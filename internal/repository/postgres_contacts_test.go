package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/thiagovferrari/crm2026/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresContactsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresContactsRepository(db)
	return db, mock, repo
}

var contactCols = []string{
	"contact_id", "user_id", "name", "company", "website",
	"email", "phone", "status", "commercial_area", "created_at",
}

func TestListWithDetails_AttachesChildrenByContact(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	now := time.Now()
	parents := sqlmock.NewRows(contactCols).
		AddRow("c1", "user-1", "Alice", "Acme", "", "alice@acme.test", "", "Active", "Design", now).
		AddRow("c2", "user-1", "Bob", "Globex", "", "", "", "Prospect", "", now)

	mock.ExpectQuery(`SELECT(.|\n)+FROM contacts`).
		WithArgs("user-1").
		WillReturnRows(parents)

	mock.ExpectQuery(`SELECT interaction_id`).
		WillReturnRows(sqlmock.NewRows([]string{"interaction_id", "contact_id", "kind", "content", "date"}).
			AddRow("i1", "c2", "Call", "intro call", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	mock.ExpectQuery(`SELECT financial_id`).
		WillReturnRows(sqlmock.NewRows([]string{"financial_id", "contact_id", "service_name", "value_charged", "value_paid", "payment_date", "status", "created_at"}).
			AddRow("f1", "c1", "Hosting", 120.0, 120.0, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), "Paid", now))
	mock.ExpectQuery(`SELECT alert_id`).
		WillReturnRows(sqlmock.NewRows([]string{"alert_id", "contact_id", "reason", "value", "charge_date", "recurrence", "created_at"}).
			AddRow("a1", "c1", "Renewal", 99.0, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "Monthly", now))
	mock.ExpectQuery(`SELECT note_id`).
		WillReturnRows(sqlmock.NewRows([]string{"note_id", "contact_id", "content", "date"}))

	contacts, err := repo.ListWithDetails(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, contacts, 2)

	assert.Equal(t, "Alice", contacts[0].Name)
	require.Len(t, contacts[0].Financials, 1)
	assert.Equal(t, domain.FinancialPaid, contacts[0].Financials[0].Status)
	require.Len(t, contacts[0].Alerts, 1)
	assert.Equal(t, "2024-06-01", contacts[0].Alerts[0].ChargeDate.String())
	assert.Empty(t, contacts[0].Interactions)

	require.Len(t, contacts[1].Interactions, 1)
	assert.Equal(t, domain.InteractionCall, contacts[1].Interactions[0].Kind)
	// Empty child collections come back as empty slices, not nil.
	assert.NotNil(t, contacts[1].Financials)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWithDetails_NoContactsSkipsChildQueries(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT(.|\n)+FROM contacts`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(contactCols))

	contacts, err := repo.ListWithDetails(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Empty(t, contacts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWithDetails_RequiresUserID(t *testing.T) {
	db, _, repo := setupMockDB(t)
	defer db.Close()

	_, err := repo.ListWithDetails(context.Background(), "")
	assert.Error(t, err)
}

func TestGetWithDetails_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT(.|\n)+FROM contacts`).
		WithArgs("user-1", "c-missing").
		WillReturnError(sql.ErrNoRows)

	contact, err := repo.GetWithDetails(context.Background(), "user-1", "c-missing")

	assert.Nil(t, contact)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateContact(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	now := time.Now()
	c := domain.Contact{
		ID:        "c1",
		UserID:    "user-1",
		Name:      "Alice",
		Company:   "Acme",
		Status:    domain.StatusActive,
		CreatedAt: now,
	}

	mock.ExpectExec(`INSERT INTO contacts`).
		WithArgs("c1", "user-1", "Alice", "Acme", "", "", "", "Active", "", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), &c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateContact_RequiresUserID(t *testing.T) {
	db, _, repo := setupMockDB(t)
	defer db.Close()

	err := repo.Create(context.Background(), &domain.Contact{ID: "c1", Name: "Alice"})
	assert.Error(t, err)
}

func TestUpdateContact_DynamicSetClause(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	name := "Alice Updated"
	status := domain.StatusInactive

	mock.ExpectExec(`UPDATE contacts SET name = \$1, status = \$2 WHERE user_id = \$3 AND contact_id = \$4`).
		WithArgs("Alice Updated", "Inactive", "user-1", "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "user-1", "c1", ContactPatch{Name: &name, Status: &status})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateContact_EmptyPatchIsNoop(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	// No SQL expected.
	err := repo.Update(context.Background(), "user-1", "c1", ContactPatch{})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateContact_NotOwned(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	name := "Alice"
	mock.ExpectExec(`UPDATE contacts SET`).
		WithArgs("Alice", "user-2", "c1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "user-2", "c1", ContactPatch{Name: &name})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteContact(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM contacts`).
		WithArgs("user-1", "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "user-1", "c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteContact_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM contacts`).
		WithArgs("user-1", "c-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "user-1", "c-missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
