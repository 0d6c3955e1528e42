package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thiagovferrari/crm2026/internal/domain"
)

// PostgresFinancialsRepository 财务记录Repository实现
type PostgresFinancialsRepository struct {
	db *sql.DB
}

func NewPostgresFinancialsRepository(db *sql.DB) *PostgresFinancialsRepository {
	return &PostgresFinancialsRepository{db: db}
}

var _ FinancialsRepository = (*PostgresFinancialsRepository)(nil)

func (r *PostgresFinancialsRepository) Get(ctx context.Context, userID, id string) (*domain.FinancialRecord, error) {
	var rec domain.FinancialRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT financial_id::text, contact_id::text, service_name, value_charged, value_paid, payment_date, status, created_at
		FROM financials
		WHERE financial_id = $1
		  AND contact_id IN (SELECT contact_id FROM contacts WHERE user_id = $2)`,
		id, userID,
	).Scan(&rec.ID, &rec.ContactID, &rec.ServiceName, &rec.ValueCharged, &rec.ValuePaid, &rec.PaymentDate, &rec.Status, &rec.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("financial record %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get financial record: %w", err)
	}
	return &rec, nil
}

func (r *PostgresFinancialsRepository) Create(ctx context.Context, userID string, rec *domain.FinancialRecord) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO financials (financial_id, contact_id, service_name, value_charged, value_paid, payment_date, status, created_at)
		SELECT $1, contact_id, $2, $3, $4, $5, $6, $7
		FROM contacts WHERE contact_id = $8 AND user_id = $9`,
		rec.ID, rec.ServiceName, rec.ValueCharged, rec.ValuePaid, rec.PaymentDate, rec.Status, rec.CreatedAt, rec.ContactID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to create financial record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("contact %s: %w", rec.ContactID, ErrNotFound)
	}
	return nil
}

// Update writes the full scalar row. The service hands in a normalized
// record, so the stored status always matches the amounts.
func (r *PostgresFinancialsRepository) Update(ctx context.Context, userID string, rec *domain.FinancialRecord) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE financials
		SET service_name = $1, value_charged = $2, value_paid = $3, payment_date = $4, status = $5
		WHERE financial_id = $6
		  AND contact_id IN (SELECT contact_id FROM contacts WHERE user_id = $7)`,
		rec.ServiceName, rec.ValueCharged, rec.ValuePaid, rec.PaymentDate, rec.Status, rec.ID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update financial record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("financial record %s: %w", rec.ID, ErrNotFound)
	}
	return nil
}

func (r *PostgresFinancialsRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM financials
		WHERE financial_id = $1
		  AND contact_id IN (SELECT contact_id FROM contacts WHERE user_id = $2)`,
		id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete financial record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("financial record %s: %w", id, ErrNotFound)
	}
	return nil
}
