package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thiagovferrari/crm2026/internal/domain"
)

// PostgresNotesRepository 内部备注Repository实现
type PostgresNotesRepository struct {
	db *sql.DB
}

func NewPostgresNotesRepository(db *sql.DB) *PostgresNotesRepository {
	return &PostgresNotesRepository{db: db}
}

var _ NotesRepository = (*PostgresNotesRepository)(nil)

func (r *PostgresNotesRepository) Create(ctx context.Context, userID string, note *domain.InternalNote) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO internal_notes (note_id, contact_id, content, date)
		SELECT $1, contact_id, $2, $3
		FROM contacts WHERE contact_id = $4 AND user_id = $5`,
		note.ID, note.Content, note.Date, note.ContactID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to create internal note: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("contact %s: %w", note.ContactID, ErrNotFound)
	}
	return nil
}

func (r *PostgresNotesRepository) Update(ctx context.Context, userID, id string, content string, date domain.Date) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE internal_notes SET content = $1, date = $2
		WHERE note_id = $3
		  AND contact_id IN (SELECT contact_id FROM contacts WHERE user_id = $4)`,
		content, date, id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update internal note: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("internal note %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *PostgresNotesRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM internal_notes
		WHERE note_id = $1
		  AND contact_id IN (SELECT contact_id FROM contacts WHERE user_id = $2)`,
		id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete internal note: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("internal note %s: %w", id, ErrNotFound)
	}
	return nil
}
