package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/thiagovferrari/crm2026/internal/domain"
)

// PostgresInteractionsRepository 互动记录Repository实现
type PostgresInteractionsRepository struct {
	db *sql.DB
}

func NewPostgresInteractionsRepository(db *sql.DB) *PostgresInteractionsRepository {
	return &PostgresInteractionsRepository{db: db}
}

var _ InteractionsRepository = (*PostgresInteractionsRepository)(nil)

func (r *PostgresInteractionsRepository) Create(ctx context.Context, userID string, rec *domain.Interaction) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO interactions (interaction_id, contact_id, kind, content, date)
		SELECT $1, contact_id, $2, $3, $4
		FROM contacts WHERE contact_id = $5 AND user_id = $6`,
		rec.ID, rec.Kind, rec.Content, rec.Date, rec.ContactID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to create interaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("contact %s: %w", rec.ContactID, ErrNotFound)
	}
	return nil
}

func (r *PostgresInteractionsRepository) Update(ctx context.Context, userID, id string, patch InteractionPatch) error {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Kind != nil {
		add("kind", *patch.Kind)
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.Date != nil {
		add("date", *patch.Date)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id, userID)
	query := fmt.Sprintf(
		"UPDATE interactions SET %s WHERE interaction_id = $%d AND contact_id IN (SELECT contact_id FROM contacts WHERE user_id = $%d)",
		strings.Join(set, ", "), len(args)-1, len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update interaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("interaction %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *PostgresInteractionsRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM interactions
		WHERE interaction_id = $1
		  AND contact_id IN (SELECT contact_id FROM contacts WHERE user_id = $2)`,
		id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete interaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("interaction %s: %w", id, ErrNotFound)
	}
	return nil
}
