package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/thiagovferrari/crm2026/internal/domain"

	"github.com/lib/pq"
)

// PostgresContactsRepository 联系人Repository实现
type PostgresContactsRepository struct {
	db *sql.DB
}

func NewPostgresContactsRepository(db *sql.DB) *PostgresContactsRepository {
	return &PostgresContactsRepository{db: db}
}

// 确保实现了接口
var _ ContactsRepository = (*PostgresContactsRepository)(nil)

const contactColumns = `
	contact_id::text,
	user_id::text,
	name,
	company,
	website,
	email,
	phone,
	status,
	commercial_area,
	created_at
`

func scanContact(row interface{ Scan(...any) error }) (domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Company,
		&c.Website,
		&c.Email,
		&c.Phone,
		&c.Status,
		&c.CommercialArea,
		&c.CreatedAt,
	)
	return c, err
}

// ListWithDetails 查询用户的全部联系人及其子记录
// One query for the parent rows plus one per child table with
// contact_id = ANY(...), bucketed in memory. No N+1.
func (r *PostgresContactsRepository) ListWithDetails(ctx context.Context, userID string) ([]domain.ContactWithDetails, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []domain.ContactWithDetails
	var ids []string
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, domain.ContactWithDetails{
			Contact:       c,
			InternalNotes: []domain.InternalNote{},
			Interactions:  []domain.Interaction{},
			Financials:    []domain.FinancialRecord{},
			Alerts:        []domain.BillingAlert{},
		})
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	if len(contacts) == 0 {
		return []domain.ContactWithDetails{}, nil
	}

	if err := r.attachChildren(ctx, contacts, ids); err != nil {
		return nil, err
	}
	return contacts, nil
}

// GetWithDetails 查询单个联系人及其子记录
func (r *PostgresContactsRepository) GetWithDetails(ctx context.Context, userID, contactID string) (*domain.ContactWithDetails, error) {
	if userID == "" || contactID == "" {
		return nil, ErrNotFound
	}

	query := `SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1 AND contact_id = $2`

	c, err := scanContact(r.db.QueryRowContext(ctx, query, userID, contactID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	result := []domain.ContactWithDetails{{
		Contact:       c,
		InternalNotes: []domain.InternalNote{},
		Interactions:  []domain.Interaction{},
		Financials:    []domain.FinancialRecord{},
		Alerts:        []domain.BillingAlert{},
	}}
	if err := r.attachChildren(ctx, result, []string{c.ID}); err != nil {
		return nil, err
	}
	return &result[0], nil
}

func (r *PostgresContactsRepository) attachChildren(ctx context.Context, contacts []domain.ContactWithDetails, ids []string) error {
	index := make(map[string]int, len(contacts))
	for i, c := range contacts {
		index[c.ID] = i
	}

	// interactions
	rows, err := r.db.QueryContext(ctx, `
		SELECT interaction_id::text, contact_id::text, kind, content, date
		FROM interactions
		WHERE contact_id = ANY($1)
		ORDER BY date DESC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to list interactions: %w", err)
	}
	for rows.Next() {
		var rec domain.Interaction
		if err := rows.Scan(&rec.ID, &rec.ContactID, &rec.Kind, &rec.Content, &rec.Date); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan interaction: %w", err)
		}
		if i, ok := index[rec.ContactID]; ok {
			contacts[i].Interactions = append(contacts[i].Interactions, rec)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to list interactions: %w", err)
	}

	// financials
	rows, err = r.db.QueryContext(ctx, `
		SELECT financial_id::text, contact_id::text, service_name, value_charged, value_paid, payment_date, status, created_at
		FROM financials
		WHERE contact_id = ANY($1)
		ORDER BY created_at DESC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to list financials: %w", err)
	}
	for rows.Next() {
		var rec domain.FinancialRecord
		if err := rows.Scan(&rec.ID, &rec.ContactID, &rec.ServiceName, &rec.ValueCharged, &rec.ValuePaid, &rec.PaymentDate, &rec.Status, &rec.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan financial record: %w", err)
		}
		if i, ok := index[rec.ContactID]; ok {
			contacts[i].Financials = append(contacts[i].Financials, rec)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to list financials: %w", err)
	}

	// alerts
	rows, err = r.db.QueryContext(ctx, `
		SELECT alert_id::text, contact_id::text, reason, value, charge_date, recurrence, created_at
		FROM alerts
		WHERE contact_id = ANY($1)
		ORDER BY charge_date ASC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to list alerts: %w", err)
	}
	for rows.Next() {
		var rec domain.BillingAlert
		if err := rows.Scan(&rec.ID, &rec.ContactID, &rec.Reason, &rec.Value, &rec.ChargeDate, &rec.Recurrence, &rec.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan alert: %w", err)
		}
		if i, ok := index[rec.ContactID]; ok {
			contacts[i].Alerts = append(contacts[i].Alerts, rec)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to list alerts: %w", err)
	}

	// internal notes
	rows, err = r.db.QueryContext(ctx, `
		SELECT note_id::text, contact_id::text, content, date
		FROM internal_notes
		WHERE contact_id = ANY($1)
		ORDER BY date DESC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to list internal notes: %w", err)
	}
	for rows.Next() {
		var rec domain.InternalNote
		if err := rows.Scan(&rec.ID, &rec.ContactID, &rec.Content, &rec.Date); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan internal note: %w", err)
		}
		if i, ok := index[rec.ContactID]; ok {
			contacts[i].InternalNotes = append(contacts[i].InternalNotes, rec)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to list internal notes: %w", err)
	}

	return nil
}

// Create 创建联系人
func (r *PostgresContactsRepository) Create(ctx context.Context, contact *domain.Contact) error {
	if contact.UserID == "" {
		return fmt.Errorf("user_id is required")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts (contact_id, user_id, name, company, website, email, phone, status, commercial_area, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		contact.ID,
		contact.UserID,
		contact.Name,
		contact.Company,
		contact.Website,
		contact.Email,
		contact.Phone,
		contact.Status,
		contact.CommercialArea,
		contact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// Update 部分更新联系人（动态构建SET子句）
func (r *PostgresContactsRepository) Update(ctx context.Context, userID, contactID string, patch ContactPatch) error {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Company != nil {
		add("company", *patch.Company)
	}
	if patch.Website != nil {
		add("website", *patch.Website)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.CommercialArea != nil {
		add("commercial_area", *patch.CommercialArea)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, userID, contactID)
	query := fmt.Sprintf(
		"UPDATE contacts SET %s WHERE user_id = $%d AND contact_id = $%d",
		strings.Join(set, ", "), len(args)-1, len(args),
	)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
	}
	return nil
}

// Delete 删除联系人（子记录按外键级联删除）
func (r *PostgresContactsRepository) Delete(ctx context.Context, userID, contactID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM contacts WHERE user_id = $1 AND contact_id = $2`,
		userID, contactID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
	}
	return nil
}
