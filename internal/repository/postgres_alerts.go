package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/thiagovferrari/crm2026/internal/domain"
)

// PostgresAlertsRepository 账单提醒Repository实现
type PostgresAlertsRepository struct {
	db *sql.DB
}

func NewPostgresAlertsRepository(db *sql.DB) *PostgresAlertsRepository {
	return &PostgresAlertsRepository{db: db}
}

var _ AlertsRepository = (*PostgresAlertsRepository)(nil)

func (r *PostgresAlertsRepository) ListByContact(ctx context.Context, userID, contactID string) ([]domain.BillingAlert, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT alert_id::text, contact_id::text, reason, value, charge_date, recurrence, created_at
		FROM alerts
		WHERE contact_id = $1
		  AND contact_id IN (SELECT contact_id FROM contacts WHERE user_id = $2)
		ORDER BY charge_date ASC`, contactID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := []domain.BillingAlert{}
	for rows.Next() {
		var a domain.BillingAlert
		if err := rows.Scan(&a.ID, &a.ContactID, &a.Reason, &a.Value, &a.ChargeDate, &a.Recurrence, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (r *PostgresAlertsRepository) Create(ctx context.Context, userID string, alert *domain.BillingAlert) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts (alert_id, contact_id, reason, value, charge_date, recurrence, created_at)
		SELECT $1, contact_id, $2, $3, $4, $5, $6
		FROM contacts WHERE contact_id = $7 AND user_id = $8`,
		alert.ID, alert.Reason, alert.Value, alert.ChargeDate, alert.Recurrence, alert.CreatedAt, alert.ContactID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("contact %s: %w", alert.ContactID, ErrNotFound)
	}
	return nil
}

func (r *PostgresAlertsRepository) UpdateChargeDate(ctx context.Context, userID, id string, next domain.Date) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE alerts SET charge_date = $1
		WHERE alert_id = $2
		  AND contact_id IN (SELECT contact_id FROM contacts WHERE user_id = $3)`,
		next, id, userID)
	if err != nil {
		return fmt.Errorf("failed to advance alert: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *PostgresAlertsRepository) Update(ctx context.Context, userID, id string, patch AlertPatch) error {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Reason != nil {
		add("reason", *patch.Reason)
	}
	if patch.Value != nil {
		add("value", *patch.Value)
	}
	if patch.ChargeDate != nil {
		add("charge_date", *patch.ChargeDate)
	}
	if patch.Recurrence != nil {
		add("recurrence", *patch.Recurrence)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id, userID)
	query := fmt.Sprintf(
		"UPDATE alerts SET %s WHERE alert_id = $%d AND contact_id IN (SELECT contact_id FROM contacts WHERE user_id = $%d)",
		strings.Join(set, ", "), len(args)-1, len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *PostgresAlertsRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM alerts
		WHERE alert_id = $1
		  AND contact_id IN (SELECT contact_id FROM contacts WHERE user_id = $2)`,
		id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	return nil
}
