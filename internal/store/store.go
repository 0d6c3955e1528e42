package store

import (
	"context"
	"errors"

	"github.com/thiagovferrari/crm2026/internal/domain"
	"github.com/thiagovferrari/crm2026/internal/repository"
)

// ErrNotConfirmed 删除未确认（user-facing confirmation gate）
var ErrNotConfirmed = errors.New("delete not confirmed")

// ContactInput 创建联系人的输入（server assigns id and created_at）
type ContactInput struct {
	Name           string               `json:"name"`
	Company        string               `json:"company"`
	Website        string               `json:"website"`
	Email          string               `json:"email"`
	Phone          string               `json:"phone"`
	Status         domain.ContactStatus `json:"status"`
	CommercialArea string               `json:"commercial_area"`
}

// ContactStore is the view-model store: the single interface both state
// disciplines implement.
//
//   - LocalStore: the full collection lives in memory and is persisted
//     verbatim to the durable KV on every mutation. Last writer wins.
//   - SyncedStore: Postgres is authoritative; mutations are issued
//     immediately and the visible snapshot only changes by re-fetching,
//     either directly after a mutation settles or through the debounced
//     change-feed refresh.
//
// A failed mutation returns the error and leaves visible state untouched.
type ContactStore interface {
	// List returns the visible snapshot, newest contact first.
	List(ctx context.Context) ([]domain.ContactWithDetails, error)
	Create(ctx context.Context, input ContactInput) (*domain.ContactWithDetails, error)
	Update(ctx context.Context, contactID string, patch repository.ContactPatch) error
	// Delete refuses to issue anything unless confirmed is true.
	Delete(ctx context.Context, contactID string, confirmed bool) error

	AddInteraction(ctx context.Context, contactID string, rec domain.Interaction) (*domain.Interaction, error)
	UpdateInteraction(ctx context.Context, contactID, id string, patch repository.InteractionPatch) error
	DeleteInteraction(ctx context.Context, contactID, id string) error

	AddFinancial(ctx context.Context, contactID string, rec domain.FinancialRecord) (*domain.FinancialRecord, error)
	UpdateFinancial(ctx context.Context, contactID string, rec domain.FinancialRecord) error
	DeleteFinancial(ctx context.Context, contactID, id string) error

	AddAlert(ctx context.Context, contactID string, alert domain.BillingAlert) (*domain.BillingAlert, error)
	UpdateAlert(ctx context.Context, contactID, id string, patch repository.AlertPatch) error
	DeleteAlert(ctx context.Context, contactID, id string) error
	// SettleAlert marks an alert paid: Once alerts are removed, recurring
	// alerts advance by exactly one period from their prior charge date.
	SettleAlert(ctx context.Context, contactID, alertID string) error

	AddNote(ctx context.Context, contactID string, note domain.InternalNote) (*domain.InternalNote, error)
	UpdateNote(ctx context.Context, contactID, id string, content string, date domain.Date) error
	DeleteNote(ctx context.Context, contactID, id string) error

	// Reset drops the in-memory snapshot (session teardown).
	Reset()
	// Close cancels pending refresh timers and unsubscribes the change feed.
	Close() error
}
