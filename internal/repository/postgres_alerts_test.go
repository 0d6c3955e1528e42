package repository

import (
	"context"
	"testing"
	"time"

	"github.com/thiagovferrari/crm2026/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAlertsDB(t *testing.T) (sqlmock.Sqlmock, *PostgresAlertsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return mock, NewPostgresAlertsRepository(db)
}

func TestAlerts_ListByContactScopesByOwner(t *testing.T) {
	mock, repo := setupAlertsDB(t)

	mock.ExpectQuery(`SELECT alert_id(.|\n)+contact_id IN \(SELECT contact_id FROM contacts WHERE user_id = \$2\)`).
		WithArgs("c1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"alert_id", "contact_id", "reason", "value", "charge_date", "recurrence", "created_at"}).
			AddRow("a1", "c1", "Renewal", 99.0, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "Monthly", time.Now()))

	alerts, err := repo.ListByContact(context.Background(), "user-1", "c1")

	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "a1", alerts[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlerts_CreateRequiresOwnedContact(t *testing.T) {
	mock, repo := setupAlertsDB(t)

	alert := domain.BillingAlert{
		ID:         "a1",
		ContactID:  "c-foreign",
		Reason:     "Renewal",
		Value:      99,
		ChargeDate: domain.NewDate(2024, time.June, 1),
		Recurrence: domain.RecurrenceMonthly,
		CreatedAt:  time.Now(),
	}

	// The contact belongs to someone else, so the INSERT ... SELECT matches
	// nothing and no row is written.
	mock.ExpectExec(`INSERT INTO alerts(.|\n)+FROM contacts WHERE contact_id = \$7 AND user_id = \$8`).
		WithArgs("a1", "Renewal", 99.0, alert.ChargeDate, "Monthly", alert.CreatedAt, "c-foreign", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Create(context.Background(), "user-2", &alert)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlerts_DeleteOtherUsersAlertNotFound(t *testing.T) {
	mock, repo := setupAlertsDB(t)

	mock.ExpectExec(`DELETE FROM alerts(.|\n)+contact_id IN \(SELECT contact_id FROM contacts WHERE user_id = \$2\)`).
		WithArgs("a1", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "user-2", "a1")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlerts_UpdateChargeDateScopesByOwner(t *testing.T) {
	mock, repo := setupAlertsDB(t)

	next := domain.NewDate(2024, time.July, 1)
	mock.ExpectExec(`UPDATE alerts SET charge_date = \$1(.|\n)+contact_id IN \(SELECT contact_id FROM contacts WHERE user_id = \$3\)`).
		WithArgs(next, "a1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateChargeDate(context.Background(), "user-1", "a1", next))
	assert.NoError(t, mock.ExpectationsWereMet())
}
